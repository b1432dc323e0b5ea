// Package metadata signs rendered reports with a content hash and verifies them.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- REPORT_METADATA"
	// TagEnd is the end of the metadata block.
	TagEnd = "REPORT_METADATA_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes the run that produced a report.
type Metadata struct {
	Generated     time.Time
	RunID         string
	ReferenceDate string
	Hash          string
	Rows          int
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?s)<!--\s*REPORT_METADATA\s*\n(.*?)\n\s*REPORT_METADATA_END\s*-->`)

// Extract removes the metadata block from content and returns both the metadata and the cleaned content.
// The cleaned content is what gets hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	cleanContent := metadataRegex.ReplaceAllString(content, "")
	cleanContent = strings.TrimRight(cleanContent, "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	meta := &Metadata{}

	for _, line := range strings.Split(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "RUN_ID":
			meta.RunID = val
		case "GENERATED":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.Generated = t
			}
		case "REFERENCE_DATE":
			meta.ReferenceDate = val
		case "ROWS":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Rows = n
			}
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, cleanContent
}

// CalculateHash computes the SHA-256 hash of the content (excluding metadata).
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign replaces any existing metadata block with one describing meta and
// carrying a fresh hash. A zero Generated time is set to now.
func Sign(content string, meta Metadata) string {
	_, clean := Extract(content)

	if meta.Generated.IsZero() {
		meta.Generated = time.Now()
	}

	block := fmt.Sprintf("\n\n%s\nRUN_ID: %s\nGENERATED: %s\nREFERENCE_DATE: %s\nROWS: %d\nHASH: %s\n%s\n",
		TagStart,
		meta.RunID,
		meta.Generated.UTC().Format(time.RFC3339),
		meta.ReferenceDate,
		meta.Rows,
		CalculateHash(clean),
		TagEnd)

	return clean + block
}

// Verify checks that content matches the hash in its metadata and returns the metadata.
func Verify(content string) (*Metadata, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return nil, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return meta, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return meta, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return meta, nil
}

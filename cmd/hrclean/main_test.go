package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `ï»¿id,first_name,last_name,birthdate,gender,race,department,jobtitle,location,hire_date,termdate,location_city,location_state
00-01,Ada,Lovelace,06/04/1991,Female,White,Engineering,Engineer,Headquarters,01-20-2010,,Cleveland,Ohio
00-02,Bob,Marley,1-2-1980,Male,Black,Engineering,Engineer,Remote,03/01/2012,2020-03-01 00:00:00 UTC,Cleveland,Ohio
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hr.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	return path
}

func TestQueriesCmd(t *testing.T) {
	out, err := execute(t, "queries")
	require.NoError(t, err)
	assert.Contains(t, out, "department_turnover")
	assert.Contains(t, out, "yearly_hire_trend")
}

func TestReportCmd(t *testing.T) {
	src := writeSample(t)

	out, err := execute(t, "report", "--source", src, "--reference-date", "2024-06-15", "-q", "gender_breakdown,9")
	require.NoError(t, err)
	assert.Contains(t, out, "Gender breakdown")
	assert.Contains(t, out, "Average tenure of terminated employees")
	assert.NotContains(t, out, "Headcount by state")

	_, err = os.Stat(filepath.Join(filepath.Dir(src), "hr_clean.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCmd_SignedMarkdownVerifies(t *testing.T) {
	src := writeSample(t)
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "run", "--source", src, "--reference-date", "2024-06-15",
		"--format", "markdown", "--sign", "--out", outDir, "--write-normalized")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(src), "hr_clean.csv"))

	report := filepath.Join(outDir, "report.md")

	out, err := execute(t, "verify", "--sections", "15", report)
	require.NoError(t, err)
	assert.Contains(t, out, "reference date 2024-06-15, 2 employees")

	out, err = execute(t, "fmt", "--check", report)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, "verify", "--sections", "3", report)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(report, []byte("tampered"), 0o644))

	_, err = execute(t, "verify", report)
	require.Error(t, err)
}

func TestNormalizeCmd(t *testing.T) {
	src := writeSample(t)

	out, err := execute(t, "normalize", "--source", src, "--reference-date", "2024-06-15")
	require.NoError(t, err)
	assert.Contains(t, out, "rows kept")
	assert.FileExists(t, filepath.Join(filepath.Dir(src), "hr_clean.csv"))
}

func TestInvalidFlags(t *testing.T) {
	_, err := execute(t, "report", "--source", writeSample(t), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = execute(t, "report", "--source", writeSample(t), "-q", "16")
	require.Error(t, err)
}

func TestInitConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrclean.yaml")

	_, err := execute(t, "init-config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "report", "--config", path, "--source", writeSample(t))
	require.NoError(t, err)

	_, err = execute(t, "init-config", path)
	require.Error(t, err)
}

package formatter

import (
	"strings"
	"testing"
)

func TestFormatMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |
`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |
`,
		},
		{
			name: "Trim spaces in cells",
			input: `
|   Col A   |   Col B   |
| --- | --- |
|   val A   |   val B   |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| val A | val B |
`,
		},
		{
			name: "Mixed content",
			input: `
# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.
`,
			expected: `
# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.
`,
		},
		{
			name: "Keep alignment markers",
			input: `
| department | rate |
| :--- | ---: |
| Sales | 0.3 |
| Engineering | 0.3333 |
`,
			expected: `
| department  |   rate |
| :---------- | -----: |
| Sales       |    0.3 |
| Engineering | 0.3333 |
`,
		},
		{
			name: "Escaped pipes stay in the cell",
			input: `
| name | n |
| --- | --- |
| R\|D | 1 |
`,
			expected: `
| name | n   |
| ---- | --- |
| R\|D | 1   |
`,
		},
		{
			name: "Mixed CJK and ASCII",
			input: `
| department | count |
| --- | --- |
| 人力資源部 | 12 |
| Engineering | 7 |
`,
			expected: `
| department  | count |
| ----------- | ----- |
| 人力資源部  | 12    |
| Engineering | 7     |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatMarkdown(strings.TrimSpace(tt.input))
			if err != nil {
				t.Errorf("FormatMarkdown() error = %v", err)

				return
			}

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatMarkdown() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

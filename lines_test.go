package logfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLines(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		offsets []uint32
		content []string
	}{
		{name: "empty", input: ""},
		{
			name:    "terminated lines",
			input:   "line1\nline2\n",
			offsets: []uint32{0, 6},
			content: []string{"line1\n", "line2\n"},
		},
		{
			name:    "trailing partial line",
			input:   "a\nb",
			offsets: []uint32{0, 2},
			content: []string{"a\n", "b"},
		},
		{
			name:    "carriage return stays in content",
			input:   "a\r\n\r\nb\r\n",
			offsets: []uint32{0, 3, 5},
			content: []string{"a\r\n", "\r\n", "b\r\n"},
		},
		{
			name:    "blank lines",
			input:   "\n\n",
			offsets: []uint32{0, 1},
			content: []string{"\n", "\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := TokenizeLines([]byte(tt.input))
			require.Len(t, lines, len(tt.offsets))

			var covered uint32
			for i, ln := range lines {
				assert.Equal(t, tt.offsets[i], ln.Offset)
				assert.Equal(t, tt.content[i], string(ln.Content))
				assert.Equal(t, covered, ln.Offset, "records must not leave gaps")
				covered = ln.End()
			}
			assert.Equal(t, uint32(len(tt.input)), covered)
		})
	}
}

func TestTokenizeLinesContentIsCapped(t *testing.T) {
	buf := []byte("a\nb\n")
	lines := TokenizeLines(buf)
	require.Len(t, lines, 2)

	// Appending to a record must never overwrite the following line.
	_ = append(lines[0].Content, 'X')
	assert.Equal(t, "a\nb\n", string(buf))
}

func TestComparisonKey(t *testing.T) {
	tests := []struct {
		name string
		opts CompareOptions
		line string
		want string
	}{
		{"no modes", CompareOptions{}, "  Ab c\r\n", "  Ab c\r\n"},
		{"ignore case", CompareOptions{IgnoreCase: true}, "Ab c\n", "AB C\n"},
		{"ignore eol crlf", CompareOptions{IgnoreEOLChanges: true}, "abc\r\n", "abc"},
		{"ignore eol lf", CompareOptions{IgnoreEOLChanges: true}, "abc\n", "abc"},
		{"ignore eol bare cr kept", CompareOptions{IgnoreEOLChanges: true}, "abc\r", "abc\r"},
		{"ignore all whitespace", CompareOptions{IgnoreAllWhitespace: true}, " a\tb c \n", "abc\n"},
		{"ignore leading whitespace", CompareOptions{IgnoreLeadingWhitespace: true}, " \t a b \n", "a b \n"},
		{
			"all whitespace wins over leading",
			CompareOptions{IgnoreAllWhitespace: true, IgnoreLeadingWhitespace: true},
			"  a b\n", "ab\n",
		},
		{
			"every mode",
			CompareOptions{IgnoreCase: true, IgnoreEOLChanges: true, IgnoreAllWhitespace: true},
			" a B\r\n", "AB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := []byte(tt.line)
			got := tt.opts.ComparisonKey(line)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.line, string(line), "the line itself must not change")
		})
	}
}

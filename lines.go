// lines.go
//
// Line tokenization for the diff engine.
// A buffer is split into *line records* → *byte offsets* so that every
// alignment result can be translated back into exact byte positions inside the
// original file. Records cover the whole buffer with no gaps: the terminator
// (and a preceding '\r') stays inside the record, and a trailing partial line
// is emitted as its own record.
//
// Comparison normalization never touches the stored bytes. CompareOptions
// derives a separate comparison key per line; only the key takes part in
// equality checks, while the original content is what ends up in edit scripts.

package logfile

import "bytes"

// LineRecord is one line of a file anchored at its starting byte offset.
//
// Content aliases the tokenized buffer and includes the line terminator when
// one is present. Callers must treat it as read-only.
type LineRecord struct {
	// Offset is the absolute position of the first byte of the line.
	Offset uint32

	// Content holds the raw line bytes.
	Content []byte
}

// End returns the offset one past the last byte of the line.
func (l LineRecord) End() uint32 { return l.Offset + uint32(len(l.Content)) }

// TokenizeLines splits buf on '\n' and returns one LineRecord per line.
//
// An empty buffer yields nil. A final line without a terminator is still
// returned. Records share memory with buf.
func TokenizeLines(buf []byte) []LineRecord {
	if len(buf) == 0 {
		return nil
	}

	lines := make([]LineRecord, 0, bytes.Count(buf, []byte{'\n'})+1)
	start := 0
	for start < len(buf) {
		i := bytes.IndexByte(buf[start:], '\n')
		end := len(buf)
		if i >= 0 {
			end = start + i + 1
		}
		lines = append(lines, LineRecord{
			Offset:  uint32(start),
			Content: buf[start:end:end],
		})
		start = end
	}
	return lines
}

// CompareOptions selects which differences between two lines are ignored.
//
// The zero value compares lines byte for byte. The modes are applied in a
// fixed order: case folding, end-of-line stripping, then whitespace removal.
// IgnoreAllWhitespace takes precedence over IgnoreLeadingWhitespace.
type CompareOptions struct {
	// IgnoreCase upper-cases both sides before comparing.
	IgnoreCase bool

	// IgnoreEOLChanges strips a trailing "\r\n" or "\n".
	IgnoreEOLChanges bool

	// IgnoreAllWhitespace removes every tab and space from the line.
	IgnoreAllWhitespace bool

	// IgnoreLeadingWhitespace trims tabs and spaces from the start of the line.
	IgnoreLeadingWhitespace bool
}

// normalizes reports whether any mode is active.
func (o CompareOptions) normalizes() bool {
	return o.IgnoreCase || o.IgnoreEOLChanges || o.IgnoreAllWhitespace || o.IgnoreLeadingWhitespace
}

// ComparisonKey returns the bytes that represent line during equality checks.
//
// line is never modified. When no mode is active the result is line itself;
// otherwise it is either a sub-slice of line or a freshly allocated buffer.
func (o CompareOptions) ComparisonKey(line []byte) []byte {
	key := line
	if o.IgnoreCase {
		key = bytes.ToUpper(key)
	}
	if o.IgnoreEOLChanges {
		switch {
		case bytes.HasSuffix(key, []byte("\r\n")):
			key = key[:len(key)-2]
		case bytes.HasSuffix(key, []byte("\n")):
			key = key[:len(key)-1]
		}
	}
	switch {
	case o.IgnoreAllWhitespace:
		key = stripBlanks(key)
	case o.IgnoreLeadingWhitespace:
		key = bytes.TrimLeft(key, " \t")
	}
	return key
}

// stripBlanks returns a copy of b without any tab or space characters.
func stripBlanks(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != ' ' && c != '\t' {
			out = append(out, c)
		}
	}
	return out
}

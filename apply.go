package logfile

import "fmt"

// ApplyEditScript materializes the revision described by deltas on top of
// base.
//
// Deltas must be sorted by SeekPosition and their consumed ranges
// (SeekPosition through SeekPosition+DeletedByteCount) must not overlap. The
// output is pre-sized to len(base) plus the total number of inserted bytes
// and trimmed to the bytes actually produced. base is never modified.
//
// A delta that starts before the end of the previous one, or that reaches past
// the end of base, yields ErrEditOutOfRange.
func ApplyEditScript(base []byte, deltas []Delta) ([]byte, error) {
	var grow int
	for i := range deltas {
		grow += int(deltas[i].InsertedByteCount)
	}
	out := make([]byte, 0, len(base)+grow)

	var cursor uint32
	baseLen := uint64(len(base))
	for i := range deltas {
		d := &deltas[i]
		if d.SeekPosition < cursor {
			return nil, fmt.Errorf("%w: delta %d seeks to %d, before %d", ErrEditOutOfRange, i, d.SeekPosition, cursor)
		}
		if uint64(d.SeekPosition)+uint64(d.DeletedByteCount) > baseLen {
			return nil, fmt.Errorf("%w: delta %d covers [%d,%d) of a %d byte base",
				ErrEditOutOfRange, i, d.SeekPosition, uint64(d.SeekPosition)+uint64(d.DeletedByteCount), baseLen)
		}

		out = append(out, base[cursor:d.SeekPosition]...)
		if d.Type.hasPayload() {
			out = append(out, d.Inserted...)
		}
		cursor = d.consumedEnd()
	}
	return append(out, base[cursor:]...), nil
}

// ApplyEditScriptBytes decodes an encoded edit script and applies it to base.
//
// The header's base size must match len(base); a mismatch means the script
// was produced against a different file and is reported as
// ErrEditOutOfRange.
func ApplyEditScriptBytes(base, script []byte) ([]byte, error) {
	s, err := ParseEditScript(script)
	if err != nil {
		return nil, err
	}
	if uint64(s.Header.BaseFileSize) != uint64(len(base)) {
		return nil, fmt.Errorf("%w: script expects a %d byte base, got %d",
			ErrEditOutOfRange, s.Header.BaseFileSize, len(base))
	}
	return ApplyEditScript(base, s.Deltas)
}

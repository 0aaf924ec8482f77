package logfile

// EditType enumerates the kinds of edit records that can appear in an edit
// script.
//
// The numeric values are the on-disk 2-byte tags and must not change.
// The String method returns the upper-case spelling used in diagnostics.
type EditType uint16

const (
	// EditDelete removes DeletedByteCount bytes of the base file.
	EditDelete EditType = iota

	// EditInsert splices InsertedByteCount new bytes into the base file
	// without consuming any of it.
	EditInsert

	// EditReplace removes DeletedByteCount bytes and splices the inserted
	// payload in their place.
	EditReplace
)

var editTypeNames = map[EditType]string{
	EditDelete:  "DELETE",
	EditInsert:  "INSERT",
	EditReplace: "REPLACE",
}

func (t EditType) String() string {
	if s, ok := editTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// valid reports whether t is one of the three known tags.
func (t EditType) valid() bool { return t <= EditReplace }

// hasPayload reports whether records of this type carry inserted bytes.
func (t EditType) hasPayload() bool { return t == EditInsert || t == EditReplace }

// Delta is a single edit anchored at a byte offset of the base file.
//
// Only the fields that matter for Type are populated: a Delete carries no
// payload and a zero InsertedByteCount, an Insert has a zero
// DeletedByteCount. For Insert and Replace, len(Inserted) always equals
// InsertedByteCount.
type Delta struct {
	Type EditType

	// SeekPosition is the offset in the base file where the edit applies.
	SeekPosition uint32

	// DeletedByteCount is the number of base bytes consumed by the edit.
	DeletedByteCount uint32

	// InsertedByteCount is the number of bytes supplied by the edit.
	InsertedByteCount uint32

	// Inserted holds the literal bytes spliced in by Insert and Replace.
	Inserted []byte
}

// AffectedLength is the length of the base range an edit is considered to
// cover when checking for overlaps: the deleted count for a Delete, the
// inserted count for an Insert, and the larger of the two for a Replace.
func (d Delta) AffectedLength() uint32 {
	switch d.Type {
	case EditDelete:
		return d.DeletedByteCount
	case EditInsert:
		return d.InsertedByteCount
	case EditReplace:
		return max(d.DeletedByteCount, d.InsertedByteCount)
	default:
		return 0
	}
}

// consumedEnd returns the base offset one past the last byte the edit
// deletes. For an Insert this is SeekPosition.
func (d Delta) consumedEnd() uint32 { return d.SeekPosition + d.DeletedByteCount }

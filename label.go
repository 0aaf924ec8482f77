package logfile

import (
	"fmt"
	"io"
)

// LabelState distinguishes live labels from obsolete placeholders.
type LabelState uint8

const (
	LabelActive LabelState = iota

	// LabelObsolete marks a deleted label whose slot is kept in the archive.
	// It is stored as a single (-1, -1) pair with an empty name.
	LabelObsolete
)

func (s LabelState) String() string {
	if s == LabelObsolete {
		return "obsolete"
	}
	return "active"
}

// LabelInfo is a named revision stored in an archive.
//
// The encoded form is revisionCount u16, creatorIndex u16, labelStringSize
// u16 (including the NUL), revisionCount major/minor pairs, then the
// NUL-terminated label name.
type LabelInfo struct {
	Label        string
	CreatorIndex int
	Pairs        []MajorMinor
	State        LabelState

	// noName records a label read with labelStringSize 0, which has no NUL
	// on disk and must be written back the same way.
	noName bool
}

// NewLabelInfo labels revision with label.
//
// A floating label follows the tip of the branch it names: the minor number
// of its final pair is replaced with the sentinel -1 whatever revision said.
// A malformed revision string yields a *LabelError.
func NewLabelInfo(label, revision string, floating bool, creatorIndex int) (*LabelInfo, error) {
	pairs, err := ParseRevision(revision)
	if err != nil {
		return nil, err
	}
	if floating {
		pairs[len(pairs)-1].Minor = sentinelMinor
	}
	return &LabelInfo{Label: label, CreatorIndex: creatorIndex, Pairs: pairs}, nil
}

// NewObsoleteLabel returns the placeholder that replaces a deleted label.
func NewObsoleteLabel(creatorIndex int) *LabelInfo {
	return &LabelInfo{
		CreatorIndex: creatorIndex,
		Pairs:        []MajorMinor{{Major: -1, Minor: -1}},
		State:        LabelObsolete,
	}
}

func (l *LabelInfo) IsObsolete() bool { return l.State == LabelObsolete }

// IsFloating reports whether the label tracks a branch tip.
func (l *LabelInfo) IsFloating() bool {
	return !l.IsObsolete() && len(l.Pairs) > 0 && l.Pairs[len(l.Pairs)-1].Minor == sentinelMinor
}

// Depth is the branch depth of the labelled revision; trunk revisions have
// depth 0.
func (l *LabelInfo) Depth() int { return len(l.Pairs) - 1 }

// RevisionString renders the labelled revision. A floating label drops its
// final minor number ("1.2.3" rather than "1.2.3.-1").
func (l *LabelInfo) RevisionString() string { return FormatRevision(l.Pairs) }

// SortableRevisionString is the fixed-width form used to order labels.
func (l *LabelInfo) SortableRevisionString() string { return SortableRevision(l.Pairs) }

func (l *LabelInfo) String() string { return l.Label }

// nameSize is the stored labelStringSize.
func (l *LabelInfo) nameSize() int {
	if l.noName && l.Label == "" {
		return 0
	}
	return len(l.Label) + 1
}

// EncodedSize is the number of bytes WriteTo produces.
func (l *LabelInfo) EncodedSize() int {
	return 6 + len(l.Pairs)*4 + l.nameSize()
}

// WriteTo encodes the label.
func (l *LabelInfo) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, l.EncodedSize())
	archiveOrder.PutUint16(buf[0:], uint16(len(l.Pairs)))
	archiveOrder.PutUint16(buf[2:], encodeShort(l.CreatorIndex))
	archiveOrder.PutUint16(buf[4:], uint16(l.nameSize()))
	putPairs(buf[6:], l.Pairs)
	copy(buf[6+len(l.Pairs)*4:], l.Label) // trailing NUL is already zero
	written, err := w.Write(buf)
	return int64(written), err
}

// ReadLabelInfo decodes one label.
func ReadLabelInfo(r io.Reader) (*LabelInfo, error) {
	var hdr [6]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	count := int(archiveOrder.Uint16(hdr[0:]))
	l := &LabelInfo{CreatorIndex: decodeShort(archiveOrder.Uint16(hdr[2:]))}
	size := int(archiveOrder.Uint16(hdr[4:]))

	pairs, err := readPairs(r, count)
	if err != nil {
		return nil, fmt.Errorf("label pairs: %w", err)
	}
	l.Pairs = pairs

	if size > 0 {
		name := make([]byte, size)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("label name: %w", err)
		}
		l.Label = string(name[:size-1])
	} else {
		l.noName = true
	}
	if len(pairs) > 0 && pairs[0] == (MajorMinor{Major: -1, Minor: -1}) {
		l.State = LabelObsolete
	}
	return l, nil
}

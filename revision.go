// revision.go
//
// Revision numbering.
// A revision is named by a chain of major/minor pairs, one pair per branch
// level: "1.4" is the fourth trunk revision, "1.4.2.1" the first revision of
// the second branch rooted at 1.4. Labels and the archive's default branch
// are stored as such chains.
//
// On disk each number occupies 16 bits. The value 0xFFFF is reserved for the
// sentinel -1 (the minor number of a floating label, or both numbers of an
// obsolete label); every other value is read as unsigned.

package logfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// sentinelMinor marks the tip-tracking final pair of a floating label.
const sentinelMinor = -1

// maxRevisionNumber is the largest number a pair can store; 0xFFFF is taken
// by the sentinel.
const maxRevisionNumber = 0xFFFE

// MajorMinor is one branch level of a revision.
type MajorMinor struct {
	Major int
	Minor int
}

// String renders the pair as "major.minor", leaving out a sentinel minor.
func (p MajorMinor) String() string {
	if p.Minor == sentinelMinor {
		return strconv.Itoa(p.Major)
	}
	return strconv.Itoa(p.Major) + "." + strconv.Itoa(p.Minor)
}

// ParseRevision splits a revision string into major/minor pairs.
//
// The string must hold an even, non-zero number of dot separated decimal
// integers, each between -1 and maxRevisionNumber so that it survives the
// 16-bit encoding. Anything else yields a *LabelError.
func ParseRevision(rev string) ([]MajorMinor, error) {
	parts := strings.Split(rev, ".")
	if rev == "" || len(parts)%2 != 0 {
		return nil, &LabelError{Revision: rev, Reason: fmt.Sprintf("%d segments, want an even count", len(parts))}
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, &LabelError{Revision: rev, Reason: fmt.Sprintf("segment %q is not a number", p)}
		}
		if n < sentinelMinor || n > maxRevisionNumber {
			return nil, &LabelError{Revision: rev, Reason: fmt.Sprintf("segment %d is outside [-1, %d]", n, maxRevisionNumber)}
		}
		nums[i] = n
	}
	pairs := make([]MajorMinor, len(parts)/2)
	for i := range pairs {
		pairs[i] = MajorMinor{Major: nums[2*i], Minor: nums[2*i+1]}
	}
	return pairs, nil
}

// FormatRevision joins pairs with dots.
func FormatRevision(pairs []MajorMinor) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

// SortableRevision renders pairs as fixed-width four digit fields so that
// string order matches revision order. Negative numbers render as a minus
// sign followed by four digits.
func SortableRevision(pairs []MajorMinor) string {
	var sb strings.Builder
	sb.Grow(len(pairs) * 8)
	for _, p := range pairs {
		sb.WriteString(fourDigits(p.Major))
		sb.WriteString(fourDigits(p.Minor))
	}
	return sb.String()
}

func fourDigits(n int) string {
	if n < 0 {
		return fmt.Sprintf("-%04d", -n)
	}
	return fmt.Sprintf("%04d", n)
}

func encodeShort(v int) uint16 { return uint16(int16(v)) }

func decodeShort(u uint16) int {
	if u == 0xFFFF {
		return -1
	}
	return int(u)
}

func putPairs(buf []byte, pairs []MajorMinor) {
	for i, p := range pairs {
		archiveOrder.PutUint16(buf[i*4:], encodeShort(p.Major))
		archiveOrder.PutUint16(buf[i*4+2:], encodeShort(p.Minor))
	}
}

func readPairs(r io.Reader, n int) ([]MajorMinor, error) {
	buf := make([]byte, n*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	pairs := make([]MajorMinor, n)
	for i := range pairs {
		pairs[i] = MajorMinor{
			Major: decodeShort(archiveOrder.Uint16(buf[i*4:])),
			Minor: decodeShort(archiveOrder.Uint16(buf[i*4+2:])),
		}
	}
	return pairs, nil
}

// RevisionDescriptor locates a revision in the branch tree. The archive
// header stores one for its default branch.
type RevisionDescriptor struct {
	Pairs      []MajorMinor
	Attributes uint16
}

// NewRevisionDescriptor parses rev into a descriptor.
func NewRevisionDescriptor(rev string) (*RevisionDescriptor, error) {
	pairs, err := ParseRevision(rev)
	if err != nil {
		return nil, err
	}
	return &RevisionDescriptor{Pairs: pairs}, nil
}

// ElementCount is the number of branch levels.
func (d *RevisionDescriptor) ElementCount() int { return len(d.Pairs) }

// TrunkMinorNumber returns the minor number of the trunk pair.
func (d *RevisionDescriptor) TrunkMinorNumber() int { return d.Pairs[0].Minor }

func (d *RevisionDescriptor) String() string { return FormatRevision(d.Pairs) }

// Sortable returns the fixed-width sortable form of the descriptor.
func (d *RevisionDescriptor) Sortable() string { return SortableRevision(d.Pairs) }

// descriptorTrailer is a zero pair followed by a zero int32. Every
// descriptor on disk ends with it and readers must skip it.
const descriptorTrailer = 4 + 4

// EncodedSize is the number of bytes WriteTo produces.
func (d *RevisionDescriptor) EncodedSize() int {
	if len(d.Pairs) == 0 {
		return 0
	}
	return 2 + 2 + len(d.Pairs)*4 + descriptorTrailer
}

// WriteTo encodes the descriptor. An empty descriptor writes nothing.
func (d *RevisionDescriptor) WriteTo(w io.Writer) (int64, error) {
	n := d.EncodedSize()
	if n == 0 {
		return 0, nil
	}
	buf := make([]byte, n)
	archiveOrder.PutUint16(buf[0:], uint16(len(d.Pairs)))
	archiveOrder.PutUint16(buf[2:], d.Attributes)
	putPairs(buf[4:], d.Pairs)
	written, err := w.Write(buf)
	return int64(written), err
}

// ReadRevisionDescriptor decodes a descriptor of count levels. The count is
// not self-describing on disk; it comes from the archive header.
func ReadRevisionDescriptor(r io.Reader, count int) (*RevisionDescriptor, error) {
	d := &RevisionDescriptor{}
	if count <= 0 {
		return d, nil
	}
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("revision descriptor: %w", err)
	}
	if got := int(archiveOrder.Uint16(hdr[0:])); got != count {
		return nil, fmt.Errorf("revision descriptor: element count %d, header says %d", got, count)
	}
	d.Attributes = archiveOrder.Uint16(hdr[2:])

	pairs, err := readPairs(r, count)
	if err != nil {
		return nil, fmt.Errorf("revision descriptor: %w", err)
	}
	d.Pairs = pairs

	var trailer [descriptorTrailer]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, fmt.Errorf("revision descriptor trailer: %w", err)
	}
	return d, nil
}

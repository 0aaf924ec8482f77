// headerinfo.go
//
// The variable-length part of the archive header.
// After the fixed header an archive stores, in this order: the default
// branch descriptor (only when DefaultDepth > 0), five NUL-terminated strings
// (access list, modifier list, comment prefix, owner, module description),
// an opaque supplemental-info block, and VersionCount labels. Every length
// needed to walk this area lives in the fixed header, so HeaderInfo keeps the
// header's size fields in step with its contents.

package logfile

import (
	"fmt"
	"io"
)

// HeaderInfo is an archive header together with the records that follow it.
type HeaderInfo struct {
	Header LogFileHeader

	defaultBranch     *RevisionDescriptor
	accessList        string
	modifierList      string
	commentPrefix     string
	owner             string
	moduleDescription string
	supplemental      []byte
	labels            []*LabelInfo

	sizeChanged bool
}

// NewHeaderInfo returns the header info of a new, empty archive.
func NewHeaderInfo() *HeaderInfo {
	return &HeaderInfo{Header: *NewLogFileHeader()}
}

// ReadHeaderInfo reads the header at offset 0 of r and the records that
// follow it. A corrupt header is reported as *ChecksumError before any
// variable-length data is touched.
func ReadHeaderInfo(r io.ReadSeeker) (*HeaderInfo, error) {
	hi := &HeaderInfo{}
	if err := hi.Header.Read(r); err != nil {
		return nil, err
	}

	br := getBR(r)
	defer putBR(br)

	h := &hi.Header
	if h.DefaultDepth > 0 {
		d, err := ReadRevisionDescriptor(br, int(h.DefaultDepth))
		if err != nil {
			return nil, err
		}
		hi.defaultBranch = d
	}

	for _, f := range []struct {
		size uint16
		dst  *string
		name string
	}{
		{h.AccessSize, &hi.accessList, "access list"},
		{h.ModifierSize, &hi.modifierList, "modifier list"},
		{h.CommentSize, &hi.commentPrefix, "comment prefix"},
		{h.OwnerSize, &hi.owner, "owner"},
		{h.DescSize, &hi.moduleDescription, "module description"},
	} {
		s, err := readCString(br, int(f.size))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = s
	}

	if h.SupplementalInfoSize > 0 {
		hi.supplemental = make([]byte, h.SupplementalInfoSize)
		if _, err := io.ReadFull(br, hi.supplemental); err != nil {
			return nil, fmt.Errorf("supplemental info: %w", err)
		}
	}

	hi.labels = make([]*LabelInfo, 0, h.VersionCount)
	for i := 0; i < int(h.VersionCount); i++ {
		l, err := ReadLabelInfo(br)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		hi.labels = append(hi.labels, l)
	}
	return hi, nil
}

// readCString reads a NUL-terminated string whose stored size includes the
// terminator. A zero size is the empty string.
func readCString(r io.Reader, size int) (string, error) {
	if size == 0 {
		return "", nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf[:size-1]), nil
}

// writeCString writes s NUL-terminated into a field of size bytes. A zero
// size writes nothing; an empty string with size 1 is a lone NUL.
func writeCString(w io.Writer, s string, size uint16) error {
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	copy(buf[:size-1], s)
	_, err := w.Write(buf)
	return err
}

// Write writes the header at offset 0 of w followed by the variable-length
// records.
func (hi *HeaderInfo) Write(w io.WriteSeeker) error {
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := hi.WriteTo(w)
	return err
}

// WriteTo encodes the header, with a fresh checksum, and the records that
// follow it.
func (hi *HeaderInfo) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := getBW(cw)
	defer putBW(bw)

	hdr, _ := hi.Header.MarshalBinary()
	if _, err := bw.Write(hdr); err != nil {
		return cw.n, err
	}
	if hi.defaultBranch != nil {
		if _, err := hi.defaultBranch.WriteTo(bw); err != nil {
			return cw.n, err
		}
	}
	h := &hi.Header
	for _, f := range []struct {
		s    string
		size uint16
	}{
		{hi.accessList, h.AccessSize},
		{hi.modifierList, h.ModifierSize},
		{hi.commentPrefix, h.CommentSize},
		{hi.owner, h.OwnerSize},
		{hi.moduleDescription, h.DescSize},
	} {
		if err := writeCString(bw, f.s, f.size); err != nil {
			return cw.n, err
		}
	}
	if _, err := bw.Write(hi.supplemental); err != nil {
		return cw.n, err
	}
	for _, l := range hi.labels {
		if _, err := l.WriteTo(bw); err != nil {
			return cw.n, err
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	hi.sizeChanged = false
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// EncodedSize is the number of bytes Write produces.
func (hi *HeaderInfo) EncodedSize() int {
	n := HeaderSize
	if hi.defaultBranch != nil {
		n += hi.defaultBranch.EncodedSize()
	}
	h := &hi.Header
	n += int(h.AccessSize) + int(h.ModifierSize) + int(h.CommentSize) + int(h.OwnerSize) + int(h.DescSize)
	n += len(hi.supplemental)
	for _, l := range hi.labels {
		n += l.EncodedSize()
	}
	return n
}

// SizeChanged reports whether a setter changed the encoded size since the
// header info was last read or written.
func (hi *HeaderInfo) SizeChanged() bool { return hi.sizeChanged }

// cstringSize is the stored size of s, terminator included. A set string is
// never zero-sized, even when empty.
func cstringSize(s string) uint16 { return uint16(len(s) + 1) }

func (hi *HeaderInfo) setString(dst *string, size *uint16, s string) {
	n := cstringSize(s)
	if *size != n {
		hi.sizeChanged = true
	}
	*dst = s
	*size = n
}

func (hi *HeaderInfo) AccessList() string        { return hi.accessList }
func (hi *HeaderInfo) ModifierList() string      { return hi.modifierList }
func (hi *HeaderInfo) CommentPrefix() string     { return hi.commentPrefix }
func (hi *HeaderInfo) Owner() string             { return hi.owner }
func (hi *HeaderInfo) ModuleDescription() string { return hi.moduleDescription }
func (hi *HeaderInfo) SupplementalInfo() []byte  { return hi.supplemental }

func (hi *HeaderInfo) SetAccessList(s string) {
	hi.setString(&hi.accessList, &hi.Header.AccessSize, s)
}

func (hi *HeaderInfo) SetModifierList(s string) {
	hi.setString(&hi.modifierList, &hi.Header.ModifierSize, s)
}

func (hi *HeaderInfo) SetCommentPrefix(s string) {
	hi.setString(&hi.commentPrefix, &hi.Header.CommentSize, s)
}

func (hi *HeaderInfo) SetOwner(s string) {
	hi.setString(&hi.owner, &hi.Header.OwnerSize, s)
}

func (hi *HeaderInfo) SetModuleDescription(s string) {
	hi.setString(&hi.moduleDescription, &hi.Header.DescSize, s)
}

// SetSupplementalInfo stores an opaque block after the module description.
func (hi *HeaderInfo) SetSupplementalInfo(b []byte) {
	if len(b) != len(hi.supplemental) {
		hi.sizeChanged = true
	}
	hi.supplemental = b
	hi.Header.SupplementalInfoSize = uint16(len(b))
}

// DefaultBranch returns the default branch descriptor, or nil when the
// archive uses the trunk.
func (hi *HeaderInfo) DefaultBranch() *RevisionDescriptor { return hi.defaultBranch }

// SetDefaultBranch sets or, with nil, clears the default branch.
func (hi *HeaderInfo) SetDefaultBranch(d *RevisionDescriptor) {
	if d != nil && d.ElementCount() == 0 {
		d = nil
	}
	hi.defaultBranch = d
	hi.Header.DefaultDepth = 0
	if d != nil {
		hi.Header.DefaultDepth = uint16(d.ElementCount())
	}
	hi.sizeChanged = true
}

// Labels returns the stored labels, obsolete placeholders included.
func (hi *HeaderInfo) Labels() []*LabelInfo { return hi.labels }

// AddLabel appends l.
func (hi *HeaderInfo) AddLabel(l *LabelInfo) {
	hi.labels = append(hi.labels, l)
	hi.Header.VersionCount = uint16(len(hi.labels))
	hi.sizeChanged = true
}

// FindLabel returns the active label named name.
func (hi *HeaderInfo) FindLabel(name string) (*LabelInfo, bool) {
	for _, l := range hi.labels {
		if !l.IsObsolete() && l.Label == name {
			return l, true
		}
	}
	return nil, false
}

// HasLabel reports whether an active label named name exists.
func (hi *HeaderInfo) HasLabel(name string) bool {
	_, ok := hi.FindLabel(name)
	return ok
}

// RemoveLabel replaces the active label named name with an obsolete
// placeholder attributed to creatorIndex. The slot is kept so that label
// indexes stay stable.
func (hi *HeaderInfo) RemoveLabel(name string, creatorIndex int) bool {
	for i, l := range hi.labels {
		if !l.IsObsolete() && l.Label == name {
			hi.labels[i] = NewObsoleteLabel(creatorIndex)
			hi.sizeChanged = true
			return true
		}
	}
	return false
}

// IsObsolete reports whether any label slot holds an obsolete placeholder.
func (hi *HeaderInfo) IsObsolete() bool {
	for _, l := range hi.labels {
		if l.IsObsolete() {
			return true
		}
	}
	return false
}

package logfile

import "strings"

// ArchiveAttributes is the attribute bitmask stored in an archive header.
type ArchiveAttributes uint16

// Attribute bits. Bit 0x01 and 0x04 are unused.
const (
	AttrDeleteWork      ArchiveAttributes = 0x0002
	AttrProtectArchive  ArchiveAttributes = 0x0008
	AttrProtectWorkfile ArchiveAttributes = 0x0010
	AttrBinaryFile      ArchiveAttributes = 0x0020
	AttrJournalFile     ArchiveAttributes = 0x0040
	AttrCompression     ArchiveAttributes = 0x0080
	AttrAutoMerge       ArchiveAttributes = 0x0100

	// AttrNoComputeDelta is stored inverted: a clear bit means revisions are
	// stored as edit scripts.
	AttrNoComputeDelta ArchiveAttributes = 0x0200

	AttrLatestRevOnly ArchiveAttributes = 0x0400
)

// DefaultAttributes is the attribute set of a newly created archive.
const DefaultAttributes = AttrNoComputeDelta | AttrJournalFile

func (a ArchiveAttributes) has(bit ArchiveAttributes) bool { return a&bit != 0 }

func (a ArchiveAttributes) IsDeleteWork() bool      { return a.has(AttrDeleteWork) }
func (a ArchiveAttributes) IsProtectArchive() bool  { return a.has(AttrProtectArchive) }
func (a ArchiveAttributes) IsProtectWorkfile() bool { return a.has(AttrProtectWorkfile) }
func (a ArchiveAttributes) IsBinaryFile() bool      { return a.has(AttrBinaryFile) }
func (a ArchiveAttributes) IsJournalFile() bool     { return a.has(AttrJournalFile) }
func (a ArchiveAttributes) IsCompression() bool     { return a.has(AttrCompression) }
func (a ArchiveAttributes) IsAutoMerge() bool       { return a.has(AttrAutoMerge) }
func (a ArchiveAttributes) IsComputeDelta() bool    { return !a.has(AttrNoComputeDelta) }
func (a ArchiveAttributes) IsLatestRevOnly() bool   { return a.has(AttrLatestRevOnly) }

// With returns a with bit set or cleared according to on.
func (a ArchiveAttributes) With(bit ArchiveAttributes, on bool) ArchiveAttributes {
	if on {
		return a | bit
	}
	return a &^ bit
}

// WithComputeDelta returns a with delta computation switched on or off,
// hiding the inverted storage of the bit.
func (a ArchiveAttributes) WithComputeDelta(on bool) ArchiveAttributes {
	return a.With(AttrNoComputeDelta, !on)
}

var attributeNames = []struct {
	name string
	get  func(ArchiveAttributes) bool
}{
	{"DELETEWORK", ArchiveAttributes.IsDeleteWork},
	{"PROTECTARCHIVE", ArchiveAttributes.IsProtectArchive},
	{"PROTECTWORKFILE", ArchiveAttributes.IsProtectWorkfile},
	{"BINARYFILE", ArchiveAttributes.IsBinaryFile},
	{"JOURNALFILE", ArchiveAttributes.IsJournalFile},
	{"COMPRESSION", ArchiveAttributes.IsCompression},
	{"AUTOMERGE", ArchiveAttributes.IsAutoMerge},
	{"COMPUTEDELTA", ArchiveAttributes.IsComputeDelta},
	{"LATESTREVONLY", ArchiveAttributes.IsLatestRevOnly},
}

// String lists every attribute, prefixing the ones that are off with "NO".
func (a ArchiveAttributes) String() string {
	parts := make([]string, len(attributeNames))
	for i, n := range attributeNames {
		if n.get(a) {
			parts[i] = n.name
		} else {
			parts[i] = "NO" + n.name
		}
	}
	return strings.Join(parts, " ")
}

// header.go
//
// Archive header record.
// Every archive starts with a fixed 30-byte header: fifteen 16-bit
// little-endian fields, the last of which is an additive checksum (mod 2^16)
// of the fourteen before it. The checksum is the archive's only structural
// self-check; a mismatch means the file is corrupt and must not be used.
//
// Read and Write always seek to offset 0 first, so they ignore and disturb
// the stream position of the caller.

package logfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// ArchiveVersion is the header version written by this package.
	ArchiveVersion = 6

	headerFieldCount = 15

	// HeaderSize is the encoded size of LogFileHeader.
	HeaderSize = headerFieldCount * 2
)

var archiveOrder = binary.LittleEndian

// LogFileHeader is the fixed header of an archive file. Field order matches
// the on-disk order.
type LogFileHeader struct {
	Version     uint16
	MajorNumber uint16
	MinorNumber uint16
	Attributes  ArchiveAttributes

	// VersionCount is the number of labels stored in the archive.
	VersionCount  uint16
	RevisionCount uint16

	// DefaultDepth is the number of pairs in the default branch descriptor;
	// zero means the descriptor is absent.
	DefaultDepth uint16
	LockCount    uint16

	// Sizes of the variable-length strings that follow the header. Each
	// includes the terminating NUL.
	AccessSize           uint16
	ModifierSize         uint16
	CommentSize          uint16
	OwnerSize            uint16
	DescSize             uint16
	SupplementalInfoSize uint16

	// Checksum is the value read from disk or last written.
	Checksum uint16
}

// NewLogFileHeader returns the header of a new, empty archive.
func NewLogFileHeader() *LogFileHeader {
	return &LogFileHeader{
		Version:    ArchiveVersion,
		Attributes: DefaultAttributes,
	}
}

func (h *LogFileHeader) fields() [headerFieldCount - 1]uint16 {
	return [headerFieldCount - 1]uint16{
		h.Version, h.MajorNumber, h.MinorNumber, uint16(h.Attributes),
		h.VersionCount, h.RevisionCount, h.DefaultDepth, h.LockCount,
		h.AccessSize, h.ModifierSize, h.CommentSize, h.OwnerSize,
		h.DescSize, h.SupplementalInfoSize,
	}
}

// ComputeChecksum returns the 16-bit sum of every field except Checksum.
func (h *LogFileHeader) ComputeChecksum() uint16 {
	var sum uint16
	for _, v := range h.fields() {
		sum += v
	}
	return sum
}

// Verify compares the stored checksum with a freshly computed one.
func (h *LogFileHeader) Verify() error {
	if c := h.ComputeChecksum(); c != h.Checksum {
		return &ChecksumError{Stored: h.Checksum, Computed: c}
	}
	return nil
}

// MarshalBinary encodes the header with a freshly computed checksum. The
// receiver's Checksum field is updated to match.
func (h *LogFileHeader) MarshalBinary() ([]byte, error) {
	h.Checksum = h.ComputeChecksum()
	buf := make([]byte, HeaderSize)
	for i, v := range h.fields() {
		archiveOrder.PutUint16(buf[i*2:], v)
	}
	archiveOrder.PutUint16(buf[HeaderSize-2:], h.Checksum)
	return buf, nil
}

// UnmarshalBinary decodes and verifies a header. The fields are populated
// even when the checksum does not match, so callers can report them.
func (h *LogFileHeader) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("archive header: %w", io.ErrUnexpectedEOF)
	}
	u := func(i int) uint16 { return archiveOrder.Uint16(buf[i*2:]) }
	*h = LogFileHeader{
		Version:              u(0),
		MajorNumber:          u(1),
		MinorNumber:          u(2),
		Attributes:           ArchiveAttributes(u(3)),
		VersionCount:         u(4),
		RevisionCount:        u(5),
		DefaultDepth:         u(6),
		LockCount:            u(7),
		AccessSize:           u(8),
		ModifierSize:         u(9),
		CommentSize:          u(10),
		OwnerSize:            u(11),
		DescSize:             u(12),
		SupplementalInfoSize: u(13),
		Checksum:             u(14),
	}
	return h.Verify()
}

// Read seeks r to offset 0 and decodes the header found there. A checksum
// mismatch is returned as *ChecksumError.
func (h *LogFileHeader) Read(r io.ReadSeeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("archive header: %w", err)
	}
	return h.UnmarshalBinary(buf[:])
}

// Write seeks w to offset 0 and writes the header with a recomputed
// checksum.
func (h *LogFileHeader) Write(w io.WriteSeeker) error {
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	buf, _ := h.MarshalBinary()
	_, err := w.Write(buf)
	return err
}

// IncrementRevisionCount records a newly added revision.
func (h *LogFileHeader) IncrementRevisionCount() { h.RevisionCount++ }

// IncrementLockCount records a newly taken lock.
func (h *LogFileHeader) IncrementLockCount() { h.LockCount++ }

// DecrementLockCount records a released lock. The count never drops below
// zero.
func (h *LogFileHeader) DecrementLockCount() {
	if h.LockCount > 0 {
		h.LockCount--
	}
}

// IncrementMinorNumber advances the trunk tip revision.
func (h *LogFileHeader) IncrementMinorNumber() { h.MinorNumber++ }

// LatestTrunkRevision returns the trunk tip as "major.minor".
func (h *LogFileHeader) LatestTrunkRevision() string {
	return fmt.Sprintf("%d.%d", h.MajorNumber, h.MinorNumber)
}

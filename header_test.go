package logfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileHeaderZeroFields(t *testing.T) {
	buf := make([]byte, HeaderSize)

	var h LogFileHeader
	require.NoError(t, h.Read(bytes.NewReader(buf)), "an all-zero header has a zero checksum")

	buf[HeaderSize-2] = 1
	err := h.Read(bytes.NewReader(buf))
	require.ErrorIs(t, err, ErrChecksumMismatch)

	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint16(1), ce.Stored)
	assert.Equal(t, uint16(0), ce.Computed)
}

func sampleHeader() *LogFileHeader {
	h := NewLogFileHeader()
	h.MajorNumber = 1
	h.MinorNumber = 12
	h.VersionCount = 2
	h.RevisionCount = 13
	h.LockCount = 1
	h.AccessSize = 6
	h.OwnerSize = 6
	h.DescSize = 40
	return h
}

func TestLogFileHeaderBitFlips(t *testing.T) {
	buf, err := sampleHeader().MarshalBinary()
	require.NoError(t, err)

	var h LogFileHeader
	require.NoError(t, h.UnmarshalBinary(buf))

	for bit := 0; bit < (HeaderSize-2)*8; bit++ {
		corrupt := append([]byte(nil), buf...)
		corrupt[bit/8] ^= 1 << (bit % 8)
		assert.ErrorIs(t, h.UnmarshalBinary(corrupt), ErrChecksumMismatch, "bit %d", bit)
	}
}

func TestLogFileHeaderChecksumIsAdditive(t *testing.T) {
	h := &LogFileHeader{Version: 0xFFFF, MajorNumber: 2, DescSize: 0x10}
	assert.Equal(t, uint16(0x11), h.ComputeChecksum(), "the sum wraps at 16 bits")
}

func TestLogFileHeaderWriteRecomputesChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("0123456789012345678901234567890123456789"))
	require.NoError(t, err)

	h := sampleHeader()
	h.Checksum = 0xBEEF
	require.NoError(t, h.Write(f))
	assert.Equal(t, h.ComputeChecksum(), h.Checksum)

	var got LogFileHeader
	require.NoError(t, got.Read(f))
	assert.Equal(t, *h, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data[HeaderSize:]), "write only replaces the header bytes")
}

func TestLogFileHeaderFieldOrder(t *testing.T) {
	h := &LogFileHeader{Version: 6, MajorNumber: 1, MinorNumber: 2, Attributes: 0x0240, SupplementalInfoSize: 0x0102}
	buf, err := h.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, []byte{6, 0}, buf[0:2])
	assert.Equal(t, []byte{1, 0}, buf[2:4])
	assert.Equal(t, []byte{2, 0}, buf[4:6])
	assert.Equal(t, []byte{0x40, 0x02}, buf[6:8])
	assert.Equal(t, []byte{0x02, 0x01}, buf[26:28])
	assert.Equal(t, []byte{0x4b, 0x03}, buf[28:30])
}

func TestLogFileHeaderTruncated(t *testing.T) {
	var h LogFileHeader
	assert.Error(t, h.Read(bytes.NewReader(make([]byte, HeaderSize-1))))
}

func TestLogFileHeaderCounters(t *testing.T) {
	h := NewLogFileHeader()
	assert.Equal(t, uint16(ArchiveVersion), h.Version)
	assert.Equal(t, DefaultAttributes, h.Attributes)

	h.MajorNumber = 1
	h.IncrementMinorNumber()
	h.IncrementMinorNumber()
	h.IncrementRevisionCount()
	assert.Equal(t, "1.2", h.LatestTrunkRevision())
	assert.Equal(t, uint16(1), h.RevisionCount)

	h.IncrementLockCount()
	h.DecrementLockCount()
	h.DecrementLockCount()
	assert.Equal(t, uint16(0), h.LockCount, "lock count floors at zero")
}

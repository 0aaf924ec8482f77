package logfile

import (
	"fmt"

	"github.com/golang/snappy"
)

// CompressRevision compresses an encoded edit script for storage in an
// archive whose COMPRESSION attribute is set. The 8-byte script header is
// kept uncompressed so that the base size and timestamp stay readable; the
// records after it are snappy-encoded.
func CompressRevision(script []byte) ([]byte, error) {
	if len(script) < EditHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptEditScript, len(script))
	}
	body := snappy.Encode(nil, script[EditHeaderSize:])
	out := make([]byte, EditHeaderSize+len(body))
	copy(out, script[:EditHeaderSize])
	copy(out[EditHeaderSize:], body)
	return out, nil
}

// DecompressRevision reverses CompressRevision.
func DecompressRevision(stored []byte) ([]byte, error) {
	if len(stored) < EditHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptEditScript, len(stored))
	}
	n, err := snappy.DecodedLen(stored[EditHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEditScript, err)
	}
	out := make([]byte, EditHeaderSize+n)
	copy(out, stored[:EditHeaderSize])
	if _, err := snappy.Decode(out[EditHeaderSize:], stored[EditHeaderSize:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEditScript, err)
	}
	return out, nil
}

// StoreRevision returns script in the form an archive with attrs stores it.
func StoreRevision(attrs ArchiveAttributes, script []byte) ([]byte, error) {
	if !attrs.IsCompression() {
		return script, nil
	}
	return CompressRevision(script)
}

// LoadRevision returns the plain edit script of a revision body read from an
// archive with attrs.
func LoadRevision(attrs ArchiveAttributes, stored []byte) ([]byte, error) {
	if !attrs.IsCompression() {
		return stored, nil
	}
	return DecompressRevision(stored)
}

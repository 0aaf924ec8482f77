// editscript.go
//
// Binary edit-script codec.
// An edit script is the on-disk form of a Diff result: a fixed 8-byte header
// followed by one variable-size record per delta, in increasing seek order.
//
//	header:  baseFileSize u32 | timeOfTarget u32 (seconds since the Unix epoch)
//	record:  editType u16 | seekPosition u32 | deletedByteCount u32 |
//	         insertedByteCount u32 | insertedBytes[insertedByteCount]
//
// insertedBytes is present only for INSERT and REPLACE records; its length is
// taken from the declared count, never from a terminator. All integers are
// big-endian. The layout is shared with archives written by earlier releases
// and must not change.

package logfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// EditHeaderSize is the byte size of the edit-script header.
	EditHeaderSize = 8

	// editRecordSize is the size of a record's fixed part.
	editRecordSize = 2 + 4 + 4 + 4
)

var scriptOrder = binary.BigEndian

// EditHeader is the fixed prefix of every edit script.
type EditHeader struct {
	// BaseFileSize is the byte size of the file the script applies to.
	BaseFileSize uint32

	// TimeOfTarget records when the script was produced. Only whole seconds
	// survive serialization.
	TimeOfTarget time.Time
}

// EditScript is a decoded edit script.
type EditScript struct {
	Header EditHeader
	Deltas []Delta
}

// Equal reports whether the script describes no change at all.
func (s *EditScript) Equal() bool { return len(s.Deltas) == 0 }

// WriteEditScript serializes s to w.
//
// Deltas are validated while they are written: the edit type must be known
// and, for INSERT and REPLACE, len(Inserted) must match InsertedByteCount.
// The first violation aborts the write.
func WriteEditScript(w io.Writer, s *EditScript) error {
	bw := getBW(w)
	defer putBW(bw)

	var hdr [EditHeaderSize]byte
	scriptOrder.PutUint32(hdr[0:4], s.Header.BaseFileSize)
	scriptOrder.PutUint32(hdr[4:8], uint32(s.Header.TimeOfTarget.Unix()))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	var rec [editRecordSize]byte
	for i, d := range s.Deltas {
		if !d.Type.valid() {
			return fmt.Errorf("delta %d: %w %d", i, ErrUnknownEditType, d.Type)
		}
		if d.Type.hasPayload() && uint32(len(d.Inserted)) != d.InsertedByteCount {
			return fmt.Errorf("delta %d: payload is %d bytes, header declares %d: %w",
				i, len(d.Inserted), d.InsertedByteCount, ErrCorruptEditScript)
		}

		scriptOrder.PutUint16(rec[0:2], uint16(d.Type))
		scriptOrder.PutUint32(rec[2:6], d.SeekPosition)
		scriptOrder.PutUint32(rec[6:10], d.DeletedByteCount)
		scriptOrder.PutUint32(rec[10:14], d.InsertedByteCount)
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
		if d.Type.hasPayload() {
			if _, err := bw.Write(d.Inserted); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadEditScript reads r to EOF and decodes the result.
func ReadEditScript(r io.Reader) (*EditScript, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseEditScript(data)
}

// ParseEditScript decodes a complete edit script held in memory.
//
// Inserted payloads are copied out of data, so the caller may reuse the
// buffer afterwards. Truncated input yields ErrCorruptEditScript and an
// unrecognized record tag yields ErrUnknownEditType; both errors mention the
// offending offset.
func ParseEditScript(data []byte) (*EditScript, error) {
	if len(data) < EditHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptEditScript, len(data))
	}

	s := &EditScript{
		Header: EditHeader{
			BaseFileSize: scriptOrder.Uint32(data[0:4]),
			TimeOfTarget: time.Unix(int64(scriptOrder.Uint32(data[4:8])), 0),
		},
	}

	pos := EditHeaderSize
	for pos < len(data) {
		if len(data)-pos < editRecordSize {
			return nil, fmt.Errorf("%w: truncated record @%d", ErrCorruptEditScript, pos)
		}
		d := Delta{
			Type:              EditType(scriptOrder.Uint16(data[pos : pos+2])),
			SeekPosition:      scriptOrder.Uint32(data[pos+2 : pos+6]),
			DeletedByteCount:  scriptOrder.Uint32(data[pos+6 : pos+10]),
			InsertedByteCount: scriptOrder.Uint32(data[pos+10 : pos+14]),
		}
		if !d.Type.valid() {
			return nil, fmt.Errorf("%w %d @%d", ErrUnknownEditType, d.Type, pos)
		}
		pos += editRecordSize

		if d.Type.hasPayload() {
			n := int(d.InsertedByteCount)
			if len(data)-pos < n {
				return nil, fmt.Errorf("%w: payload of %d bytes truncated @%d", ErrCorruptEditScript, n, pos)
			}
			d.Inserted = append([]byte(nil), data[pos:pos+n]...)
			pos += n
		}
		s.Deltas = append(s.Deltas, d)
	}
	return s, nil
}

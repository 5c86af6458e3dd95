// Binary codec for the fixed-size workload record.
// Layout is packed (no padding), little-endian:
//
//	offset size field
//	0      32   name (NUL padded)
//	32     4    id
//	36     1    status
//	37     4    burst
//	41     4    base register
//	45     8    limit register
//	53     1    type
//	54     4    file count
//	58     1    priority (signed)
//	59     4    checksum

package sim

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// NameSize is the fixed width of the on-disk name buffer.
	NameSize = 32
	// RecordSize is the encoded size of one Process.
	RecordSize = 63
)

const (
	offID       = 32
	offStatus   = 36
	offBurst    = 37
	offBase     = 41
	offLimit    = 45
	offType     = 53
	offFiles    = 54
	offPriority = 58
	offChecksum = 59
)

var byteOrder = binary.LittleEndian

// EncodeProcess writes p into a new RecordSize-byte buffer.
// Names longer than NameSize bytes are rejected.
func EncodeProcess(p *Process) ([]byte, error) {
	buf := make([]byte, RecordSize)
	if err := PutProcess(buf, p); err != nil {
		return nil, err
	}
	return buf, nil
}

// PutProcess encodes p into buf, which must hold at least RecordSize bytes.
func PutProcess(buf []byte, p *Process) error {
	if len(buf) < RecordSize {
		return fmt.Errorf("encoding process %d: buffer holds %d bytes, need %d", p.ID, len(buf), RecordSize)
	}
	if len(p.Name) > NameSize {
		return fmt.Errorf("encoding process %d: name %q exceeds %d bytes", p.ID, p.Name, NameSize)
	}
	clear(buf[:NameSize])
	copy(buf[:NameSize], p.Name)
	byteOrder.PutUint32(buf[offID:], uint32(p.ID))
	buf[offStatus] = p.Status
	byteOrder.PutUint32(buf[offBurst:], uint32(p.RemainingBurst))
	byteOrder.PutUint32(buf[offBase:], uint32(p.BaseRegister))
	byteOrder.PutUint64(buf[offLimit:], uint64(p.LimitRegister))
	buf[offType] = p.Type
	byteOrder.PutUint32(buf[offFiles:], uint32(p.NumFiles))
	buf[offPriority] = byte(p.Priority)
	byteOrder.PutUint32(buf[offChecksum:], uint32(p.Checksum))
	return nil
}

// DecodeProcess reads one record from the first RecordSize bytes of buf.
// InitialBurst is set to the decoded burst.
func DecodeProcess(buf []byte) (*Process, error) {
	if len(buf) < RecordSize {
		return nil, fmt.Errorf("%w: truncated record: %d bytes, need %d", ErrStorage, len(buf), RecordSize)
	}
	name := buf[:NameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	burst := int32(byteOrder.Uint32(buf[offBurst:]))
	return &Process{
		Name:           string(name),
		ID:             int32(byteOrder.Uint32(buf[offID:])),
		Status:         buf[offStatus],
		RemainingBurst: burst,
		BaseRegister:   int32(byteOrder.Uint32(buf[offBase:])),
		LimitRegister:  int64(byteOrder.Uint64(buf[offLimit:])),
		Type:           buf[offType],
		NumFiles:       int32(byteOrder.Uint32(buf[offFiles:])),
		Priority:       int8(buf[offPriority]),
		Checksum:       int32(byteOrder.Uint32(buf[offChecksum:])),
		InitialBurst:   burst,
	}, nil
}

// DecodeProcesses splits data into records. len(data) must be a multiple of RecordSize
// and every burst must be non-negative.
func DecodeProcesses(data []byte) ([]*Process, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: invalid file size %d: not a multiple of record size %d", ErrStorage, len(data), RecordSize)
	}
	procs := make([]*Process, 0, len(data)/RecordSize)
	for off := 0; off < len(data); off += RecordSize {
		p, err := DecodeProcess(data[off : off+RecordSize])
		if err != nil {
			return nil, err
		}
		if p.RemainingBurst < 0 {
			return nil, fmt.Errorf("%w: record %d (pid %d) has negative burst %d", ErrStorage, off/RecordSize, p.ID, p.RemainingBurst)
		}
		procs = append(procs, p)
	}
	return procs, nil
}

// EncodeProcesses concatenates the encoded records in order.
func EncodeProcesses(procs []*Process) ([]byte, error) {
	data := make([]byte, len(procs)*RecordSize)
	for i, p := range procs {
		if err := PutProcess(data[i*RecordSize:], p); err != nil {
			return nil, err
		}
	}
	return data, nil
}

package protocol

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the size of one packet quadword.
const RecordSize = 16

// Tag identifies a GS register or GIF control value.
type Tag uint32

// Register map. Values are fixed by the GS hardware.
const (
	TagTex0     Tag = 0x06
	TagClamp    Tag = 0x08
	TagTexFlush Tag = 0x3f
	TagAlpha    Tag = 0x42
	TagColClamp Tag = 0x46
	TagTest     Tag = 0x47
	TagBitBlt   Tag = 0x50
	TagTrxPos   Tag = 0x51
	TagTrxReg   Tag = 0x52

	// TagPackedAD is the GIF tag REGS value for packed A+D; it opens every image block.
	TagPackedAD Tag = 0x0e
)

// addressID is the DMA tag id (top nibble of lane 0) of a payload reference.
const addressID = 0x3

func (t Tag) String() string {
	switch t {
	case TagTex0:
		return "TEX0_1"
	case TagClamp:
		return "CLAMP_1"
	case TagTexFlush:
		return "TEXFLUSH"
	case TagAlpha:
		return "ALPHA_1"
	case TagColClamp:
		return "COLCLAMP"
	case TagTest:
		return "TEST_1"
	case TagBitBlt:
		return "BITBLTBUF"
	case TagTrxPos:
		return "TRXPOS"
	case TagTrxReg:
		return "TRXREG"
	case TagPackedAD:
		return "GIF_PACKED_AD"
	default:
		return fmt.Sprintf("0x%02x", uint32(t))
	}
}

// Record is a borrowed view of one 16 byte quadword.
type Record []byte

// Lane64 returns 64-bit lane i (0 or 1).
func (r Record) Lane64(i int) uint64 {
	return binary.LittleEndian.Uint64(r[i*8 : i*8+8])
}

// Lane32 returns 32-bit lane i (0..3).
func (r Record) Lane32(i int) uint32 {
	return binary.LittleEndian.Uint32(r[i*4 : i*4+4])
}

// Tag returns the control tag held in 32-bit lane 2.
func (r Record) Tag() Tag {
	return Tag(r.Lane32(2))
}

// Data returns the register payload (64-bit lane 0).
func (r Record) Data() uint64 {
	return r.Lane64(0)
}

// Addr returns the A+D register address (64-bit lane 1).
func (r Record) Addr() uint64 {
	return r.Lane64(1)
}

// IsAddress reports whether r is a payload reference record.
func (r Record) IsAddress() bool {
	return r.Lane32(0)>>28 == addressID
}

// Ref returns the stored payload reference of an address record.
func (r Record) Ref() uint32 {
	return r.Lane32(1)
}

// Stream is an ordered, length-known view over records.
type Stream struct {
	buf []byte
}

// NewStream wraps buf without copying. len(buf) must be a multiple of RecordSize.
func NewStream(buf []byte) (Stream, error) {
	if len(buf)%RecordSize != 0 {
		return Stream{}, ErrTruncated
	}
	return Stream{buf: buf}, nil
}

// Len returns the number of records.
func (s Stream) Len() int {
	return len(s.buf) / RecordSize
}

// At returns record i. It panics when i is out of range.
func (s Stream) At(i int) Record {
	off := i * RecordSize
	return Record(s.buf[off : off+RecordSize : off+RecordSize])
}

// Resolver maps a stored reference to a borrowed byte span starting at it.
type Resolver interface {
	Resolve(ref uint32) ([]byte, error)
}

// CommandList is a stored reference to Count records.
type CommandList struct {
	Ref   uint32
	Count int
}

// Open resolves c into a bounded stream. An empty list yields an empty stream
// without touching the resolver.
func (c CommandList) Open(r Resolver) (Stream, error) {
	if c.Count == 0 {
		return Stream{}, nil
	}
	if c.Count < 0 {
		return Stream{}, fmt.Errorf("%w: negative record count %d", ErrInvalidLength, c.Count)
	}
	span, err := r.Resolve(c.Ref)
	if err != nil {
		return Stream{}, unresolved(c.Ref, err)
	}
	size := c.Count * RecordSize
	if len(span) < size {
		return Stream{}, unresolved(c.Ref, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, size, len(span)))
	}
	return Stream{buf: span[:size:size]}, nil
}

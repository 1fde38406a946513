package protocol

import "encoding/binary"

// Builder appends records to a little endian buffer.
type Builder struct {
	buf []byte
}

// Bytes returns the encoded records.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Len returns the number of records written.
func (b *Builder) Len() int {
	return len(b.buf) / RecordSize
}

// Raw appends a record from its two 64-bit lanes.
func (b *Builder) Raw(lane0, lane1 uint64) *Builder {
	var rec [RecordSize]byte
	binary.LittleEndian.PutUint64(rec[0:8], lane0)
	binary.LittleEndian.PutUint64(rec[8:16], lane1)
	b.buf = append(b.buf, rec[:]...)
	return b
}

// Register appends an A+D record writing data to the register tag.
func (b *Builder) Register(tag Tag, data uint64) *Builder {
	return b.Raw(data, uint64(tag))
}

// Boundary appends a packed A+D GIF tag carrying nloop register writes.
func (b *Builder) Boundary(nloop uint16) *Builder {
	const nreg1 = uint64(1) << 60
	return b.Raw(uint64(nloop&0x7fff)|nreg1, uint64(TagPackedAD))
}

// Address appends a DMA reference to qwc quadwords at ref.
func (b *Builder) Address(ref uint32, qwc uint16) *Builder {
	return b.Raw(uint64(qwc)|uint64(addressID)<<28|uint64(ref)<<32, 0)
}

// Flush appends the TEXFLUSH end marker.
func (b *Builder) Flush() *Builder {
	return b.Register(TagTexFlush, 0)
}

// Image appends one complete host to local transfer block.
func (b *Builder) Image(ref uint32, w, h uint16, dbp uint16, dpsm uint8) *Builder {
	qwc := uint16((int(w)*int(h)*BitsPerPixel(dpsm)/8 + RecordSize - 1) / RecordSize)
	return b.Boundary(4).
		Register(TagBitBlt, uint64(NewBitBltBuf(dbp, uint8(max(1, int(w)/64)), dpsm))).
		Register(TagTrxPos, uint64(NewTrxPos(0, 0, 0))).
		Register(TagTrxReg, uint64(NewTrxReg(w, h))).
		Address(ref, qwc)
}

package protocol

// Transfer is the stream-derived part of one image block.
type Transfer struct {
	Region     TrxReg
	Position   TrxPos
	Binding    BitBltBuf
	PayloadRef uint32
	Payload    []byte // borrowed from the resolver
}

// Complete reports whether the block has a payload and a non-empty region.
func (t Transfer) Complete() bool {
	return t.Payload != nil && t.Region.RRW() != 0 && t.Region.RRH() != 0
}

// IsZero reports whether nothing was written to the block.
func (t Transfer) IsZero() bool {
	return t.Region == 0 && t.Position == 0 && t.Binding == 0 && t.PayloadRef == 0 && t.Payload == nil
}

// Upload is the segmentation of one upload command list.
type Upload struct {
	Mips    []Transfer
	Palette Transfer
}

type uploadState int

const (
	stateIdle uploadState = iota
	stateMip
	statePalette
	stateDone
)

type uploadDecoder struct {
	records  Stream
	resolver Resolver
	out      Upload
	state    uploadState
	filled   int
	target   *Transfer
}

// DecodeUpload segments an upload command list into mipSlots mip blocks and an
// optional palette block. Every GIF_PACKED_AD tag opens a block; once all mip
// slots are taken, a block that is not immediately closed by TEXFLUSH goes to the
// palette slot. TEXFLUSH must be the last record; it closes the current block
// without checking it, so a declared mip slot may stay partly filled. A stream
// that ends without TEXFLUSH must leave its last block complete.
func DecodeUpload(records Stream, mipSlots int, resolver Resolver) (Upload, error) {
	if mipSlots < 0 {
		return Upload{}, violation(-1, TagPackedAD, "negative mip slot count %d", mipSlots)
	}
	d := uploadDecoder{
		records:  records,
		resolver: resolver,
		out:      Upload{Mips: make([]Transfer, mipSlots)},
	}
	for i := 0; i < records.Len(); i++ {
		if err := d.step(i, records.At(i)); err != nil {
			return Upload{}, err
		}
	}
	if d.state != stateDone {
		if err := d.checkTarget(-1, TagTexFlush); err != nil {
			return Upload{}, err
		}
	}
	return d.out, nil
}

func (d *uploadDecoder) step(i int, rec Record) error {
	switch tag := rec.Tag(); {
	case tag == TagPackedAD:
		return d.boundary(i)
	case tag == TagTexFlush:
		if i != d.records.Len()-1 {
			return violation(i, tag, "end marker is not the last record")
		}
		d.state = stateDone
		d.target = nil
		return nil
	}

	switch rec.Addr() {
	case uint64(TagTrxReg):
		return d.set(i, TagTrxReg, func(t *Transfer) { t.Region = TrxReg(rec.Data()) })
	case uint64(TagTrxPos):
		return d.set(i, TagTrxPos, func(t *Transfer) { t.Position = TrxPos(rec.Data()) })
	case uint64(TagBitBlt):
		return d.set(i, TagBitBlt, func(t *Transfer) { t.Binding = BitBltBuf(rec.Data()) })
	}

	if rec.IsAddress() {
		ref := rec.Ref()
		if d.target == nil {
			return violation(i, rec.Tag(), "payload reference 0x%08x outside an image block", ref)
		}
		span, err := d.resolver.Resolve(ref)
		if err != nil {
			return &ViolationError{Kind: UnresolvedReference, Index: i, Tag: rec.Tag(), Reason: "payload reference", Err: err}
		}
		d.target.PayloadRef = ref
		d.target.Payload = span
	}
	return nil
}

func (d *uploadDecoder) boundary(i int) error {
	if err := d.checkTarget(i, TagPackedAD); err != nil {
		return err
	}
	switch {
	case d.filled < len(d.out.Mips):
		d.target = &d.out.Mips[d.filled]
		d.state = stateMip
		d.filled++
	case !d.nextIsFlush(i):
		// Some bitmaps declare fewer mips than they upload; the extra block is the palette.
		d.target = &d.out.Palette
		d.state = statePalette
	default:
		d.target = nil
	}
	return nil
}

func (d *uploadDecoder) nextIsFlush(i int) bool {
	return i+1 < d.records.Len() && d.records.At(i+1).Tag() == TagTexFlush
}

func (d *uploadDecoder) checkTarget(i int, tag Tag) error {
	if d.target == nil || d.target.Complete() {
		return nil
	}
	if d.target.Payload == nil {
		return violation(i, tag, "%s block closed without payload", d.targetName())
	}
	return violation(i, tag, "%s block closed with empty transfer region %dx%d",
		d.targetName(), d.target.Region.RRW(), d.target.Region.RRH())
}

func (d *uploadDecoder) set(i int, tag Tag, apply func(*Transfer)) error {
	if d.target == nil {
		return violation(i, tag, "register outside an image block")
	}
	apply(d.target)
	return nil
}

func (d *uploadDecoder) targetName() string {
	if d.state == statePalette {
		return "palette"
	}
	return "mip"
}

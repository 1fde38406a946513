package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

const (
	refP0 = 0x100
	refP1 = 0x200
	refP2 = 0x300
)

func payloads() spanResolver {
	buf := make([]byte, 0x400)
	for i := range buf {
		buf[i] = byte(i >> 8)
	}
	return spanResolver(buf)
}

func TestDecodeUploadScenarioA(t *testing.T) {
	var b Builder
	b.Boundary(2).Address(refP0, 1).Register(TagTrxReg, uint64(NewTrxReg(4, 4))).
		Boundary(2).Address(refP1, 4).Register(TagTrxReg, uint64(NewTrxReg(8, 8))).
		Flush()

	up, err := DecodeUpload(mustStream(t, &b), 2, payloads())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(up.Mips) != 2 {
		t.Fatalf("expected 2 mips, got %d", len(up.Mips))
	}
	want := []struct {
		w, h uint16
		ref  uint32
	}{{4, 4, refP0}, {8, 8, refP1}}
	for i, w := range want {
		m := up.Mips[i]
		if m.Region.RRW() != w.w || m.Region.RRH() != w.h || m.PayloadRef != w.ref {
			t.Fatalf("mip %d: got %dx%d ref=0x%x", i, m.Region.RRW(), m.Region.RRH(), m.PayloadRef)
		}
		if !m.Complete() || m.Payload[0] != byte(w.ref>>8) {
			t.Fatalf("mip %d payload not resolved", i)
		}
	}
	if !up.Palette.IsZero() {
		t.Fatalf("expected empty palette, got %+v", up.Palette)
	}
}

func TestDecodeUploadPartition(t *testing.T) {
	for mips := 1; mips <= 4; mips++ {
		var b Builder
		for i := 0; i < mips; i++ {
			b.Image(refP0, uint16(8<<i), uint16(8<<i), uint16(i), PSMCT32)
		}
		b.Flush()
		up, err := DecodeUpload(mustStream(t, &b), mips, payloads())
		if err != nil {
			t.Fatalf("mips=%d decode: %v", mips, err)
		}
		for i, m := range up.Mips {
			if !m.Complete() || int(m.Region.RRW()) != 8<<i || m.Binding.DBP() != uint16(i) {
				t.Fatalf("mips=%d slot %d not filled: %+v", mips, i, m)
			}
		}
		if !up.Palette.IsZero() {
			t.Fatalf("mips=%d palette should stay empty", mips)
		}
	}
}

func TestDecodeUploadOverflowGoesToPalette(t *testing.T) {
	var b Builder
	b.Image(refP0, 16, 16, 0x10, PSMT8).
		Image(refP1, 8, 8, 0x20, PSMT8).
		Image(refP2, 16, 16, 0x30, PSMCT32).
		Flush()

	up, err := DecodeUpload(mustStream(t, &b), 2, payloads())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if up.Mips[0].Binding.DBP() != 0x10 || up.Mips[1].Binding.DBP() != 0x20 {
		t.Fatalf("mips routed wrong: %x %x", up.Mips[0].Binding.DBP(), up.Mips[1].Binding.DBP())
	}
	if up.Palette.Binding.DBP() != 0x30 || up.Palette.PayloadRef != refP2 || !up.Palette.Complete() {
		t.Fatalf("third block should fill the palette, got %+v", up.Palette)
	}
}

func TestDecodeUploadBoundaryBeforeFlushSelectsNothing(t *testing.T) {
	var b Builder
	b.Image(refP0, 16, 16, 0, PSMT8).Boundary(0).Flush()

	up, err := DecodeUpload(mustStream(t, &b), 1, payloads())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !up.Palette.IsZero() {
		t.Fatalf("palette should stay empty when the extra block is closed by TEXFLUSH")
	}
}

func TestDecodeUploadFlushMustBeLast(t *testing.T) {
	var b Builder
	b.Image(refP0, 4, 4, 0, PSMCT32).Flush().Register(TagTrxReg, uint64(NewTrxReg(4, 4)))

	_, err := DecodeUpload(mustStream(t, &b), 1, payloads())
	var v *ViolationError
	if !errors.As(err, &v) || v.Kind != ProtocolViolation || v.Tag != TagTexFlush {
		t.Fatalf("expected TEXFLUSH violation, got %v", err)
	}
}

func TestDecodeUploadFlushClosesOpenMipSlot(t *testing.T) {
	var b Builder
	b.Image(refP0, 4, 4, 0, PSMCT32).Boundary(1).Flush()

	up, err := DecodeUpload(mustStream(t, &b), 2, payloads())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !up.Mips[0].Complete() || up.Mips[0].PayloadRef != refP0 {
		t.Fatalf("first mip should be filled, got %+v", up.Mips[0])
	}
	if !up.Mips[1].IsZero() {
		t.Fatalf("second mip should stay empty, got %+v", up.Mips[1])
	}
	if !up.Palette.IsZero() {
		t.Fatalf("palette should stay empty, got %+v", up.Palette)
	}
}

func TestDecodeUploadFlushClosesPartialBlock(t *testing.T) {
	var b Builder
	b.Image(refP0, 4, 4, 0, PSMCT32).Boundary(1).Register(TagTrxReg, uint64(NewTrxReg(2, 2))).Flush()

	up, err := DecodeUpload(mustStream(t, &b), 2, payloads())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if up.Mips[1].Complete() || up.Mips[1].Region.RRW() != 2 {
		t.Fatalf("second mip should keep its partial region, got %+v", up.Mips[1])
	}
}

func TestDecodeUploadRecordsOutsideBlock(t *testing.T) {
	cases := map[string]*Builder{
		"region before boundary":   new(Builder).Register(TagTrxReg, uint64(NewTrxReg(4, 4))),
		"address before boundary":  new(Builder).Address(refP0, 1),
		"position before boundary": new(Builder).Register(TagTrxPos, 0),
		"binding before boundary":  new(Builder).Register(TagBitBlt, 0),
	}
	for name, b := range cases {
		if _, err := DecodeUpload(mustStream(t, b), 1, payloads()); !errors.Is(err, ErrProtocolViolation) {
			t.Fatalf("%s: expected ErrProtocolViolation, got %v", name, err)
		}
	}
}

func TestDecodeUploadIncompleteBlock(t *testing.T) {
	var noPayload Builder
	noPayload.Boundary(1).Register(TagTrxReg, uint64(NewTrxReg(4, 4))).Boundary(1)
	if _, err := DecodeUpload(mustStream(t, &noPayload), 2, payloads()); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected violation for block without payload, got %v", err)
	}

	var emptyRegion Builder
	emptyRegion.Boundary(1).Address(refP0, 1).Register(TagTrxReg, uint64(NewTrxReg(4, 0))).Boundary(1).Flush()
	if _, err := DecodeUpload(mustStream(t, &emptyRegion), 2, payloads()); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected violation for empty region, got %v", err)
	}

	var unterminated Builder
	unterminated.Boundary(1).Address(refP0, 1)
	if _, err := DecodeUpload(mustStream(t, &unterminated), 1, payloads()); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected violation for unterminated block, got %v", err)
	}
}

func TestDecodeUploadUnresolvedPayload(t *testing.T) {
	var b Builder
	b.Boundary(1).Address(0xffff0, 1)
	_, err := DecodeUpload(mustStream(t, &b), 1, payloads())
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
	if errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("unresolved reference must stay distinct from protocol violations")
	}
}

func TestDecodeUploadEmptyAndNegative(t *testing.T) {
	up, err := DecodeUpload(Stream{}, 3, payloads())
	if err != nil {
		t.Fatalf("empty stream: %v", err)
	}
	if len(up.Mips) != 3 || !up.Mips[0].IsZero() {
		t.Fatalf("expected 3 empty mip slots")
	}
	if _, err := DecodeUpload(Stream{}, -1, payloads()); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected violation for negative slot count, got %v", err)
	}
}

func TestDecodeUploadIsIdempotent(t *testing.T) {
	var b Builder
	b.Image(refP0, 16, 16, 1, PSMT4).Image(refP1, 8, 2, 2, PSMCT32).Flush()
	s := mustStream(t, &b)
	res := payloads()

	first, err := DecodeUpload(s, 1, res)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := DecodeUpload(s, 1, res)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decodes differ")
	}
	if !bytes.Equal(first.Palette.Payload, second.Palette.Payload) {
		t.Fatalf("palette payload differs")
	}
}

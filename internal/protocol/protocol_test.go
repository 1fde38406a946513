package protocol

import (
	"errors"
	"fmt"
	"testing"
)

// spanResolver treats references as offsets into one buffer.
type spanResolver []byte

func (s spanResolver) Resolve(ref uint32) ([]byte, error) {
	if int(ref) >= len(s) {
		return nil, fmt.Errorf("ref 0x%x outside %d bytes", ref, len(s))
	}
	return s[ref:], nil
}

func mustStream(t *testing.T, b *Builder) Stream {
	t.Helper()
	s, err := NewStream(b.Bytes())
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	return s
}

func TestNewStreamRejectsPartialRecord(t *testing.T) {
	if _, err := NewStream(make([]byte, RecordSize+3)); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	s, err := NewStream(make([]byte, 3*RecordSize))
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", s.Len())
	}
}

func TestRecordLanesAreBorrowed(t *testing.T) {
	var b Builder
	b.Raw(0x1122334455667788, 0x99aabbccddeeff00)
	buf := b.Bytes()
	s := mustStream(t, &b)

	rec := s.At(0)
	if rec.Lane64(0) != 0x1122334455667788 || rec.Lane64(1) != 0x99aabbccddeeff00 {
		t.Fatalf("unexpected 64-bit lanes: %x %x", rec.Lane64(0), rec.Lane64(1))
	}
	if rec.Lane32(0) != 0x55667788 || rec.Lane32(1) != 0x11223344 || rec.Lane32(2) != 0xddeeff00 || rec.Lane32(3) != 0x99aabbcc {
		t.Fatalf("unexpected 32-bit lanes")
	}

	buf[0] = 0x00
	if s.At(0).Lane32(0) != 0x55667700 {
		t.Fatalf("record is not a view over the caller buffer")
	}
}

func TestAddressRecordDetection(t *testing.T) {
	var b Builder
	b.Address(0x1234, 4).Register(TagTrxReg, uint64(NewTrxReg(8, 8)))
	s := mustStream(t, &b)
	if !s.At(0).IsAddress() || s.At(0).Ref() != 0x1234 {
		t.Fatalf("expected address record with ref 0x1234")
	}
	if s.At(1).IsAddress() {
		t.Fatalf("register record misread as address")
	}
}

func TestCommandListOpen(t *testing.T) {
	var b Builder
	b.Register(TagTex0, 1).Register(TagClamp, 2).Register(TagTest, 3)
	backing := append(make([]byte, 32), b.Bytes()...)

	s, err := CommandList{Ref: 32, Count: 2}.Open(spanResolver(backing))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Len() != 2 || s.At(1).Tag() != TagClamp {
		t.Fatalf("unexpected stream: len=%d", s.Len())
	}

	if _, err := (CommandList{Ref: 32, Count: 4}).Open(spanResolver(backing)); !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference for short span, got %v", err)
	}
	if _, err := (CommandList{Ref: 4096, Count: 1}).Open(spanResolver(backing)); !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference for bad ref, got %v", err)
	}
	empty, err := CommandList{}.Open(nil)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("empty list should open without resolver: len=%d err=%v", empty.Len(), err)
	}
}

func TestViolationErrorMatchesKindSentinel(t *testing.T) {
	err := violation(3, TagTexFlush, "boom")
	if !errors.Is(err, ErrProtocolViolation) || errors.Is(err, ErrStructuralInvariant) {
		t.Fatalf("protocol violation matched wrong sentinel: %v", err)
	}
	var v *ViolationError
	if !errors.As(err, &v) || v.Index != 3 || v.Tag != TagTexFlush {
		t.Fatalf("expected ViolationError at 3, got %#v", err)
	}
	if !errors.Is(Structural("palette"), ErrStructuralInvariant) {
		t.Fatalf("structural violation did not match sentinel")
	}
}

package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/g2dtex/internal/protocol"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Section is a resident dump. Stored references are byte offsets into it.
type Section struct {
	buf []byte
}

var _ protocol.Resolver = (*Section)(nil)

// NewSection wraps buf without copying.
func NewSection(buf []byte) *Section {
	return &Section{buf: buf}
}

// Len returns the size of the section in bytes.
func (s *Section) Len() int {
	return len(s.buf)
}

// Resolve returns the borrowed span starting at ref.
func (s *Section) Resolve(ref uint32) ([]byte, error) {
	if uint64(ref) >= uint64(len(s.buf)) {
		return nil, fmt.Errorf("%w: ref 0x%08x outside section of %d bytes", protocol.ErrUnresolvedReference, ref, len(s.buf))
	}
	return s.buf[ref:], nil
}

// Open resolves a command list stored in the section.
func (s *Section) Open(list protocol.CommandList) (protocol.Stream, error) {
	return list.Open(s)
}

// ReadSection reads a dump from r, decompressing zstd frames.
func ReadSection(r io.Reader) (*Section, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return NewSection(raw), nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: zstd dump: %w", err)
	}
	return NewSection(plain), nil
}

// LoadSection reads a dump file.
func LoadSection(path string) (*Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open dump (%s): %w", path, err)
	}
	defer f.Close()
	s, err := ReadSection(f)
	if err != nil {
		return nil, fmt.Errorf("archive: read dump (%s): %w", path, err)
	}
	return s, nil
}

// Compress encodes a dump as a single zstd frame.
func Compress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

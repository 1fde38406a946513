package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/g2dtex/internal/protocol"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
name = "LEVEL\\MENU.G2D"

[[materials]]
hash = "MAT_MENU"
offset = 0x10
render = { offset = 0x0, count = 2 }

  [[materials.layers]]
  palette_id = 1

    [materials.layers.texture]
    hash = "TEX_MENU"
    has_palette = true

      [materials.layers.texture.bitmap]
      offset = 0x40
      width = 32
      height = 32
      psm = 0x13
      mip_levels = 1
      upload = [{ offset = 0x20, count = 1 }, { offset = 0x30, count = 1 }]

      [[materials.layers.texture.palettes]]
      offset = 0x50
      width = 8
      height = 2
      mip_levels = 1

      [[materials.layers.texture.palettes]]
      offset = 0x60
      width = 16
      height = 16
      mip_levels = 1
      upload = [{ offset = 0x0, count = 2 }]
`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestSectionResolveIsBorrowed(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	s := NewSection(buf)

	span, err := s.Resolve(4)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5, 6, 7}, span)

	buf[5] = 0xff
	require.Equal(t, byte(0xff), span[1])

	_, err = s.Resolve(8)
	require.ErrorIs(t, err, protocol.ErrUnresolvedReference)
}

func TestSectionOpenCommandList(t *testing.T) {
	var b protocol.Builder
	b.Register(protocol.TagTex0, 7).Register(protocol.TagClamp, 1)
	s := NewSection(append(make([]byte, 16), b.Bytes()...))

	stream, err := s.Open(protocol.CommandList{Ref: 16, Count: 2})
	require.NoError(t, err)
	require.Equal(t, 2, stream.Len())
	require.Equal(t, protocol.TagClamp, stream.At(1).Tag())

	_, err = s.Open(protocol.CommandList{Ref: 32, Count: 2})
	require.ErrorIs(t, err, protocol.ErrUnresolvedReference)
}

func TestReadSectionDecompressesZstd(t *testing.T) {
	raw := bytes.Repeat([]byte("g2d-dump"), 512)
	packed, err := Compress(raw)
	require.NoError(t, err)
	require.Less(t, len(packed), len(raw))

	plain, err := ReadSection(bytes.NewReader(packed))
	require.NoError(t, err)
	require.Equal(t, len(raw), plain.Len())

	direct, err := ReadSection(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, plain.buf, direct.buf)
}

func TestLoadManifestDefaultsAndLookups(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "menu.toml", []byte(sampleManifest))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Equal(t, `LEVEL\MENU.G2D`, m.Name)
	require.Equal(t, "menu.bin", m.Dump)
	require.Len(t, m.Materials, 1)

	mat := m.Materials[0]
	require.Equal(t, protocol.CommandList{Ref: 0, Count: 2}, mat.Render.List())
	tex := mat.Layers[0].Texture
	require.NotNil(t, tex)
	require.Equal(t, uint8(0x13), tex.Bitmap.PSM)

	lists := tex.Bitmap.UploadLists()
	require.Equal(t, protocol.CommandList{Ref: 0x20, Count: 1}, lists[0])
	require.Equal(t, protocol.CommandList{Ref: 0x30, Count: 1}, lists[1])

	pal := tex.Palette(mat.Layers[0].PaletteID)
	require.NotNil(t, pal)
	require.Equal(t, uint32(0x60), pal.Offset)
	require.Equal(t, protocol.CommandList{}, pal.UploadLists()[1])
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.toml", []byte("name = \"x\"\nmystery = 1\n"))
	_, err := LoadManifest(path)
	require.ErrorIs(t, err, ErrInvalidManifest)
}

func TestValidateManifestFailures(t *testing.T) {
	good := func() Manifest {
		return Manifest{Name: "a", Dump: "a.bin", Materials: []MaterialEntry{{
			Hash: "m",
			Layers: []LayerEntry{{Texture: &TextureEntry{
				Hash:   "t",
				Bitmap: &BitmapEntry{MipLevels: 1},
			}}},
		}}}
	}
	require.NoError(t, ValidateManifest(good()))

	cases := map[string]func(*Manifest){
		"missing name":     func(m *Manifest) { m.Name = " " },
		"missing hash":     func(m *Manifest) { m.Materials[0].Hash = "" },
		"zero mips":        func(m *Manifest) { m.Materials[0].Layers[0].Texture.Bitmap.MipLevels = 0 },
		"palette id range": func(m *Manifest) { m.Materials[0].Layers[0].Texture.HasPalette = true },
		"too many uploads": func(m *Manifest) { m.Materials[0].Layers[0].Texture.Bitmap.Upload = make([]CommandListEntry, 3) },
		"negative render":  func(m *Manifest) { m.Materials[0].Render.Count = -1 },
	}
	for name, mutate := range cases {
		m := good()
		mutate(&m)
		require.ErrorIs(t, ValidateManifest(m), ErrInvalidManifest, name)
	}
}

func TestOpenLoadsCompressedDump(t *testing.T) {
	dir := t.TempDir()
	raw := bytes.Repeat([]byte{0xab}, 256)
	packed, err := Compress(raw)
	require.NoError(t, err)
	writeFile(t, dir, "menu.bin", packed)
	path := writeFile(t, dir, "menu.toml", []byte(sampleManifest))

	a, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 256, a.Section.Len())
	require.Equal(t, "MENU.G2D", a.ShortName())
	require.Equal(t, KeyOf(`LEVEL\MENU.G2D`, 0x10), a.Key(0x10))
}

func TestKeyRoundTripAndStability(t *testing.T) {
	k := KeyOf("A.G2D", 0x40)
	require.Equal(t, k, KeyOf("A.G2D", 0x40))
	require.NotEqual(t, k, KeyOf("A.G2D", 0x41))
	require.NotEqual(t, k, KeyOf("B.G2D", 0x40))

	parsed, err := ParseKey(k.String())
	require.NoError(t, err)
	require.Equal(t, k, parsed)

	_, err = ParseKey("not-hex")
	require.Error(t, err)

	text, err := k.MarshalText()
	require.NoError(t, err)
	var back Key
	require.NoError(t, back.UnmarshalText(text))
	require.Equal(t, k, back)
}

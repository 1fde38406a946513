// Package fixture builds a small G2D dump and manifest for tests.
//
// Layout of the dump:
// - 0x0000 material render commands (5 records)
// - 0x0100 upload commands of TEX_A: two mips
// - 0x0300 upload commands of TEX_B: indexed pixels + CLUT
// - 0x0500 render commands without TEX0 (broken material)
// - 0x1000.. pixel payloads
package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/protocol"
)

const (
	Name = `DATA\LEVEL\MENU.G2D`

	RenderRef  = 0x0000
	UploadARef = 0x0100
	UploadBRef = 0x0300
	BrokenRef  = 0x0500

	MipA0Data    = 0x1000
	MipA1Data    = 0x1400
	PixelsBData  = 0x2000
	PaletteBData = 0x2400

	MaterialARef = 0x0010
	MaterialBRef = 0x0020
	BitmapARef   = 0x0040
	BitmapBRef   = 0x0050
	PaletteBRef  = 0x0060

	dumpSize = 0x3000
)

// Tex0 is the TEX0_1 value written to the render commands.
const Tex0 = 0x20004005_E1310100

// Manifest is the TOML manifest describing Dump.
const Manifest = `
name = "DATA\\LEVEL\\MENU.G2D"
dump = "menu.bin"

[[materials]]
hash = "MAT_A"
offset = 0x10
render = { offset = 0x0, count = 5 }

  [[materials.layers]]
  flags = 1

    [materials.layers.texture]
    hash = "TEX_A"

      [materials.layers.texture.bitmap]
      offset = 0x40
      width = 16
      height = 16
      psm = 0x00
      mip_levels = 2
      upload = [{ offset = 0x100, count = 11 }, { offset = 0x100, count = 11 }]

  [[materials.layers]]
  palette_id = 0

    [materials.layers.texture]
    hash = "TEX_B"
    has_palette = true

      [materials.layers.texture.bitmap]
      offset = 0x50
      width = 32
      height = 32
      psm = 0x13
      mip_levels = 1

      [[materials.layers.texture.palettes]]
      offset = 0x60
      width = 16
      height = 16
      psm = 0x00
      mip_levels = 1
      upload = [{ offset = 0x300, count = 11 }]

[[materials]]
hash = "MAT_B"
offset = 0x20
render = { offset = 0x0, count = 5 }

  [[materials.layers]]
  flags = 2
`

// Dump returns the raw dump bytes.
func Dump() []byte {
	buf := make([]byte, dumpSize)

	var render protocol.Builder
	render.Register(protocol.TagTex0, Tex0).
		Register(protocol.TagClamp, 0x1).
		Register(protocol.TagAlpha, uint64(protocol.NewAlpha(0, 1, 0, 1, 0x80))).
		Register(protocol.TagTest, 0x3).
		Register(protocol.TagColClamp, 1)
	copy(buf[RenderRef:], render.Bytes())

	var uploadA protocol.Builder
	uploadA.Image(MipA0Data, 16, 16, 0x100, protocol.PSMCT32).
		Image(MipA1Data, 8, 8, 0x110, protocol.PSMCT32).
		Flush()
	copy(buf[UploadARef:], uploadA.Bytes())

	var uploadB protocol.Builder
	uploadB.Image(PixelsBData, 32, 32, 0x200, protocol.PSMT8).
		Image(PaletteBData, 16, 16, 0x300, protocol.PSMCT32).
		Flush()
	copy(buf[UploadBRef:], uploadB.Bytes())

	var broken protocol.Builder
	broken.Register(protocol.TagClamp, 0x1)
	copy(buf[BrokenRef:], broken.Bytes())

	for i := 0x1000; i < dumpSize; i++ {
		buf[i] = byte(i ^ i>>8)
	}
	return buf
}

// ParseManifest decodes Manifest.
func ParseManifest(t testing.TB) archive.Manifest {
	t.Helper()
	var m archive.Manifest
	if _, err := toml.Decode(Manifest, &m); err != nil {
		t.Fatalf("fixture manifest: %v", err)
	}
	return m
}

// Archive returns the fixture as a resident archive.
func Archive(t testing.TB) *archive.Archive {
	t.Helper()
	return &archive.Archive{Manifest: ParseManifest(t), Section: archive.NewSection(Dump())}
}

// Write stores the manifest and dump in dir and returns the manifest path.
func Write(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "menu.toml")
	if err := os.WriteFile(path, []byte(Manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "menu.bin"), Dump(), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

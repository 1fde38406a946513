package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/g2dtex/internal/protocol"
)

var ErrInvalidManifest = errors.New("archive: invalid manifest")

// Manifest describes the material hierarchy of one G2D dump.
type Manifest struct {
	Name      string          `toml:"name"`
	Dump      string          `toml:"dump"`
	Materials []MaterialEntry `toml:"materials"`
}

type MaterialEntry struct {
	Hash   string           `toml:"hash"`
	Offset uint32           `toml:"offset"`
	Flags  uint32           `toml:"flags"`
	Render CommandListEntry `toml:"render"`
	Layers []LayerEntry     `toml:"layers"`
}

type LayerEntry struct {
	Flags     uint32        `toml:"flags"`
	PaletteID int           `toml:"palette_id"`
	Texture   *TextureEntry `toml:"texture"`
}

type TextureEntry struct {
	Hash       string        `toml:"hash"`
	HasPalette bool          `toml:"has_palette"`
	Bitmap     *BitmapEntry  `toml:"bitmap"`
	Palettes   []BitmapEntry `toml:"palettes"`
}

type BitmapEntry struct {
	Offset    uint32             `toml:"offset"`
	Width     uint16             `toml:"width"`
	Height    uint16             `toml:"height"`
	PSM       uint8              `toml:"psm"`
	MipLevels int                `toml:"mip_levels"`
	Upload    []CommandListEntry `toml:"upload"`
}

type CommandListEntry struct {
	Offset uint32 `toml:"offset"`
	Count  int    `toml:"count"`
}

// List converts the entry into a protocol command list.
func (c CommandListEntry) List() protocol.CommandList {
	return protocol.CommandList{Ref: c.Offset, Count: c.Count}
}

// UploadLists returns the double buffered upload lists, padding missing ones.
func (b BitmapEntry) UploadLists() [2]protocol.CommandList {
	var out [2]protocol.CommandList
	for i := 0; i < len(b.Upload) && i < len(out); i++ {
		out[i] = b.Upload[i].List()
	}
	return out
}

// Palette returns the palette entry a layer selects, or nil when the texture has none.
func (t TextureEntry) Palette(paletteID int) *BitmapEntry {
	if !t.HasPalette || paletteID < 0 || paletteID >= len(t.Palettes) {
		return nil
	}
	return &t.Palettes[paletteID]
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidManifest, undecoded[0].String(), path)
	}
	if !meta.IsDefined("name") {
		m.Name = filepath.Base(path)
	}
	if !meta.IsDefined("dump") {
		base := filepath.Base(path)
		m.Dump = strings.TrimSuffix(base, filepath.Ext(base)) + ".bin"
	}
	if err := ValidateManifest(m); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ValidateManifest checks the hierarchy for references the decoder cannot follow.
func ValidateManifest(m Manifest) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidManifest)
	}
	if strings.TrimSpace(m.Dump) == "" {
		return fmt.Errorf("%w: dump is required", ErrInvalidManifest)
	}
	for i, mat := range m.Materials {
		if err := validateMaterial(mat); err != nil {
			return fmt.Errorf("%w: material[%d] %s", ErrInvalidManifest, i, err)
		}
	}
	return nil
}

func validateMaterial(mat MaterialEntry) error {
	if strings.TrimSpace(mat.Hash) == "" {
		return errors.New("hash is required")
	}
	if mat.Render.Count < 0 {
		return errors.New("render count is negative")
	}
	for i, layer := range mat.Layers {
		tex := layer.Texture
		if tex == nil {
			continue
		}
		if tex.HasPalette && (layer.PaletteID < 0 || layer.PaletteID >= len(tex.Palettes)) {
			return fmt.Errorf("layer[%d] palette_id %d out of range (%d palettes)", i, layer.PaletteID, len(tex.Palettes))
		}
		if tex.Bitmap != nil {
			if err := validateBitmap(*tex.Bitmap); err != nil {
				return fmt.Errorf("layer[%d] bitmap %s", i, err)
			}
		}
		for j, pal := range tex.Palettes {
			if err := validateBitmap(pal); err != nil {
				return fmt.Errorf("layer[%d] palette[%d] %s", i, j, err)
			}
		}
	}
	return nil
}

func validateBitmap(b BitmapEntry) error {
	if b.MipLevels <= 0 {
		return fmt.Errorf("mip_levels must be positive, got %d", b.MipLevels)
	}
	if len(b.Upload) > 2 {
		return fmt.Errorf("has %d upload lists, at most 2 allowed", len(b.Upload))
	}
	for _, up := range b.Upload {
		if up.Count < 0 {
			return errors.New("upload count is negative")
		}
	}
	return nil
}

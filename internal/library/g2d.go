package library

import (
	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/protocol"
	"github.com/danmuck/g2dtex/internal/renderer"
)

// G2D is a loaded archive and the materials built from it.
type G2D struct {
	Name      string      `json:"name"`
	ShortName string      `json:"short_name"`
	Materials []*Material `json:"materials"`

	archive *archive.Archive
}

// Archive returns the archive the G2D was built from.
func (g *G2D) Archive() *archive.Archive {
	return g.archive
}

// TextureCount returns the number of created textures.
func (g *G2D) TextureCount() int {
	n := 0
	for _, m := range g.Materials {
		for _, l := range m.Layers {
			if l.Texture != nil {
				n++
			}
		}
	}
	return n
}

func (g *G2D) handles() []renderer.Handle {
	var out []renderer.Handle
	for _, m := range g.Materials {
		for _, l := range m.Layers {
			if l.Texture != nil {
				out = append(out, l.Texture.Handle)
			}
		}
	}
	return out
}

// Material is one material of a G2D.
type Material struct {
	Key    archive.Key          `json:"key"`
	Hash   string               `json:"hash"`
	Index  int                  `json:"index"`
	Flags  uint32               `json:"flags"`
	Render protocol.CommandList `json:"-"`
	Layers []Layer              `json:"layers"`

	g2d *G2D
}

// G2D returns the owning archive view.
func (m *Material) G2D() *G2D {
	return m.g2d
}

// FindTextureFromBitmap returns the texture whose bitmap or palette is stored at key.
func (m *Material) FindTextureFromBitmap(key archive.Key) (*Texture, bool) {
	for i := range m.Layers {
		tex := m.Layers[i].Texture
		if tex == nil {
			continue
		}
		if tex.Bitmap == key || (tex.HasPalette && tex.Palette == key) {
			return tex, true
		}
	}
	return nil, false
}

// InUse reports whether any texture of the material is bound on backend.
func (m *Material) InUse(backend renderer.Backend) bool {
	for _, l := range m.Layers {
		if l.Texture != nil && backend.InUse(l.Texture.Handle) {
			return true
		}
	}
	return false
}

// Layer is one layer of a material. Layers without a texture are kept so
// indices match the archive.
type Layer struct {
	Index     int      `json:"index"`
	Flags     uint32   `json:"flags"`
	PaletteID int      `json:"palette_id"`
	Texture   *Texture `json:"texture,omitempty"`
}

// Texture is a created backend texture.
type Texture struct {
	Hash       string               `json:"hash"`
	Bitmap     archive.Key          `json:"bitmap"`
	Palette    archive.Key          `json:"palette,omitempty"`
	HasPalette bool                 `json:"has_palette"`
	MipLevels  int                  `json:"mip_levels"`
	Handle     renderer.Handle      `json:"handle"`
	Registers  protocol.RenderState `json:"-"`
}

// Package library turns loaded G2D archives into backend textures and answers
// material and bitmap lookups at draw time.
package library

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/observability"
	"github.com/danmuck/g2dtex/internal/protocol"
	"github.com/danmuck/g2dtex/internal/renderer"
	"github.com/danmuck/g2dtex/internal/texture"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyLoaded    = errors.New("library: archive already loaded")
	ErrDuplicateKey     = errors.New("library: duplicate material key")
	ErrMaterialNotFound = errors.New("library: material not found")
	ErrTextureNotFound  = errors.New("library: texture not found")
)

// DMAMaterial pairs a material with the bitmap a draw samples from.
type DMAMaterial struct {
	Material archive.Key
	Bitmap   archive.Key
}

// Library owns every loaded G2D.
type Library struct {
	backend renderer.Backend
	cache   *Cache
	logger  zerolog.Logger

	mu    sync.RWMutex
	g2ds  []*G2D
	names map[string]struct{}
}

// New creates an empty library creating textures on backend.
func New(backend renderer.Backend, logger zerolog.Logger) *Library {
	return &Library{
		backend: backend,
		cache:   NewCache(),
		logger:  logger.With().Str("component", "library").Logger(),
		names:   make(map[string]struct{}),
	}
}

// Add builds every material and texture of a and publishes them. When any
// texture fails, the textures already created for a are released and nothing
// is published.
func (l *Library) Add(a *archive.Archive) (*G2D, error) {
	name := a.Name()
	if l.loaded(name) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, name)
	}

	start := time.Now()
	g, err := l.build(a)
	observability.RecordDecode(observability.StageArchive, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("g2d %s: %w", name, err)
	}

	if err := l.publish(g); err != nil {
		l.release(g.handles())
		return nil, err
	}
	l.logger.Info().
		Str("g2d", name).
		Int("materials", len(g.Materials)).
		Int("textures", g.TextureCount()).
		Dur("duration", time.Since(start)).
		Msg("g2d loaded")
	return g, nil
}

func (l *Library) loaded(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.names[name]
	return ok
}

func (l *Library) publish(g *G2D) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.names[g.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, g.Name)
	}
	if err := l.cache.InsertAll(g.Materials); err != nil {
		return fmt.Errorf("g2d %s: %w", g.Name, err)
	}
	l.names[g.Name] = struct{}{}
	l.g2ds = append(l.g2ds, g)
	observability.SetArchivesLoaded(len(l.g2ds))
	return nil
}

func (l *Library) release(handles []renderer.Handle) {
	for _, h := range handles {
		l.backend.Release(h)
	}
}

// FindMaterial returns the material stored under key.
func (l *Library) FindMaterial(key archive.Key) (*Material, error) {
	m, ok := l.cache.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMaterialNotFound, key)
	}
	return m, nil
}

// BindFromDMAMaterial binds the texture a draw samples from.
func (l *Library) BindFromDMAMaterial(dma DMAMaterial) error {
	m, err := l.FindMaterial(dma.Material)
	if err != nil {
		return err
	}
	tex, ok := m.FindTextureFromBitmap(dma.Bitmap)
	if !ok {
		return fmt.Errorf("%w: bitmap %s in material %s", ErrTextureNotFound, dma.Bitmap, m.Hash)
	}
	return l.backend.Bind(tex.Handle)
}

// Find returns the G2D with the given full or short name.
func (l *Library) Find(name string) (*G2D, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, g := range l.g2ds {
		if g.Name == name || g.ShortName == name {
			return g, true
		}
	}
	return nil, false
}

// ForEach calls fn for every G2D in load order.
func (l *Library) ForEach(fn func(*G2D)) {
	l.mu.RLock()
	list := make([]*G2D, len(l.g2ds))
	copy(list, l.g2ds)
	l.mu.RUnlock()
	for _, g := range list {
		fn(g)
	}
}

// Count returns the number of loaded G2Ds.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.g2ds)
}

// Backend returns the backend textures are created on.
func (l *Library) Backend() renderer.Backend {
	return l.backend
}

// builder tracks the handles created while building one G2D.
type builder struct {
	lib     *Library
	g       *G2D
	created []renderer.Handle
}

func (l *Library) build(a *archive.Archive) (*G2D, error) {
	b := &builder{
		lib: l,
		g: &G2D{
			Name:      a.Name(),
			ShortName: a.ShortName(),
			Materials: make([]*Material, 0, len(a.Manifest.Materials)),
			archive:   a,
		},
	}
	for i, entry := range a.Manifest.Materials {
		m, err := b.material(i, entry)
		if err != nil {
			l.release(b.created)
			return nil, err
		}
		b.g.Materials = append(b.g.Materials, m)
	}
	return b.g, nil
}

func (b *builder) material(index int, entry archive.MaterialEntry) (*Material, error) {
	a := b.g.archive
	m := &Material{
		Key:    a.Key(entry.Offset),
		Hash:   entry.Hash,
		Index:  index,
		Flags:  entry.Flags,
		Render: entry.Render.List(),
		Layers: make([]Layer, 0, len(entry.Layers)),
		g2d:    b.g,
	}
	for j, le := range entry.Layers {
		layer := Layer{Index: j, Flags: le.Flags, PaletteID: le.PaletteID}
		if le.Texture != nil {
			loc := renderer.Location{
				Layer:         j,
				Material:      index,
				LayerCount:    len(entry.Layers),
				MaterialCount: len(a.Manifest.Materials),
			}
			tex, err := b.layerTexture(m, loc, *le.Texture, le.PaletteID)
			if err != nil {
				return nil, fmt.Errorf("material %s layer %d: %w", entry.Hash, j, err)
			}
			layer.Texture = tex
		}
		m.Layers = append(m.Layers, layer)
	}
	return m, nil
}

func (b *builder) layerTexture(m *Material, loc renderer.Location, entry archive.TextureEntry, paletteID int) (*Texture, error) {
	a := b.g.archive
	if entry.Bitmap == nil {
		return nil, protocol.Structural("texture %s has no bitmap", entry.Hash)
	}
	tex := &Texture{
		Hash:       entry.Hash,
		Bitmap:     a.Key(entry.Bitmap.Offset),
		HasPalette: entry.HasPalette,
	}

	var palette *texture.Bitmap
	if entry.HasPalette {
		pe := entry.Palette(paletteID)
		if pe == nil {
			return nil, protocol.Structural("texture %s has no palette %d", entry.Hash, paletteID)
		}
		p := bitmapOf(*pe)
		palette = &p
		tex.Palette = a.Key(pe.Offset)
	}

	img, err := texture.Decode(bitmapOf(*entry.Bitmap), palette, m.Render, a.Section)
	if err != nil {
		return nil, err
	}
	b.lib.logger.Debug().
		Str("g2d", b.g.Name).
		Str("material", m.Hash).
		Str("texture", entry.Hash).
		Int("mips", len(img.Mips)).
		Bool("palette", img.HasPalette()).
		Object("registers", img.Registers).
		Msg("texture decoded")

	h, err := b.lib.backend.Create(b.g.ShortName, loc, img)
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", entry.Hash, err)
	}
	b.created = append(b.created, h)
	tex.Handle = h
	tex.MipLevels = len(img.Mips)
	tex.Registers = img.Registers
	return tex, nil
}

func bitmapOf(e archive.BitmapEntry) texture.Bitmap {
	return texture.Bitmap{
		Meta: texture.BitmapMeta{
			Width:       e.Width,
			Height:      e.Height,
			PixelFormat: e.PSM,
			MipLevels:   e.MipLevels,
		},
		Upload: e.UploadLists(),
	}
}

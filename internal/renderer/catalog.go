package renderer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/danmuck/g2dtex/internal/observability"
	"github.com/danmuck/g2dtex/internal/protocol"
	"github.com/danmuck/g2dtex/internal/texture"
	"github.com/rs/zerolog"
)

// Entry describes one created texture.
type Entry struct {
	Handle          Handle               `json:"handle"`
	Name            string               `json:"name"`
	Location        Location             `json:"location"`
	Width           uint16               `json:"width"`
	Height          uint16               `json:"height"`
	PixelFormat     uint8                `json:"psm"`
	MipLevels       int                  `json:"mip_levels"`
	Palette         bool                 `json:"palette"`
	Checksum        uint64               `json:"checksum,string"`
	PaletteChecksum uint64               `json:"palette_checksum,string,omitempty"`
	Registers       protocol.RenderState `json:"-"`
	Bound           bool                 `json:"bound"`
}

// Catalog is a Backend that keeps texture metadata and pixel checksums in
// memory instead of uploading to a device.
type Catalog struct {
	mu      sync.RWMutex
	next    Handle
	entries map[Handle]Entry
	bound   map[Handle]struct{}
	logger  zerolog.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog(logger zerolog.Logger) *Catalog {
	return &Catalog{
		entries: make(map[Handle]Entry),
		bound:   make(map[Handle]struct{}),
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

// Create records img under a new handle. The base mip and, when present, the
// palette must carry a readable payload.
func (c *Catalog) Create(name string, loc Location, img texture.CombinedImageData) (Handle, error) {
	if len(img.Mips) == 0 {
		return 0, ErrEmptyImage
	}
	base := img.Mips[0]
	pixels, err := base.Pixels()
	if err != nil {
		return 0, fmt.Errorf("texture %s base mip: %w", name, err)
	}
	entry := Entry{
		Name:        name,
		Location:    loc,
		Width:       base.Width,
		Height:      base.Height,
		PixelFormat: base.PixelFormat,
		MipLevels:   len(img.Mips),
		Palette:     img.HasPalette(),
		Checksum:    xxhash.Sum64(pixels),
		Registers:   img.Registers,
	}
	if entry.Palette {
		clut, err := img.Palette.Pixels()
		if err != nil {
			return 0, fmt.Errorf("texture %s palette: %w", name, err)
		}
		entry.PaletteChecksum = xxhash.Sum64(clut)
	}

	c.mu.Lock()
	c.next++
	entry.Handle = c.next
	c.entries[entry.Handle] = entry
	c.mu.Unlock()

	observability.RecordTextureCreated()
	c.logger.Debug().
		Uint64("handle", uint64(entry.Handle)).
		Str("name", name).
		Int("material", loc.Material).
		Int("layer", loc.Layer).
		Int("mips", entry.MipLevels).
		Bool("palette", entry.Palette).
		Msg("texture created")
	return entry.Handle, nil
}

// Release forgets h. Unknown handles are ignored.
func (c *Catalog) Release(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, h)
	delete(c.bound, h)
}

// Bind marks h as used by the current frame.
func (c *Catalog) Bind(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	c.bound[h] = struct{}{}
	return nil
}

// InUse reports whether h was bound since the last EndFrame.
func (c *Catalog) InUse(h Handle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bound[h]
	return ok
}

// EndFrame clears the bound set.
func (c *Catalog) EndFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.bound)
}

// Get returns the entry for h.
func (c *Catalog) Get(h Handle) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[h]
	if ok {
		_, e.Bound = c.bound[h]
	}
	return e, ok
}

// Entries returns a snapshot ordered by handle.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.entries))
	for h, e := range c.entries {
		_, e.Bound = c.bound[h]
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Handle < out[j].Handle
	})
	return out
}

// Len returns the number of live textures.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Package renderer defines the backend that owns created textures and an
// in-memory catalog implementation of it.
package renderer

import (
	"errors"

	"github.com/danmuck/g2dtex/internal/texture"
)

var (
	ErrUnknownHandle = errors.New("renderer: unknown handle")
	ErrEmptyImage    = errors.New("renderer: image has no mip levels")
)

// Handle identifies a created texture. The zero handle is never issued.
type Handle uint64

// Location places a texture inside its archive.
type Location struct {
	Layer         int `json:"layer"`
	Material      int `json:"material"`
	LayerCount    int `json:"layer_count"`
	MaterialCount int `json:"material_count"`
}

// Backend creates and binds textures. Implementations must be safe for
// concurrent use.
type Backend interface {
	Create(name string, loc Location, img texture.CombinedImageData) (Handle, error)
	Release(h Handle)
	Bind(h Handle) error
	InUse(h Handle) bool
}

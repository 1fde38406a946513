// Package texture assembles decoded upload and render state into the image
// aggregate handed to a renderer backend.
package texture

import (
	"image"

	"github.com/danmuck/g2dtex/internal/protocol"
)

// BitmapMeta is the header of one stored bitmap.
type BitmapMeta struct {
	Width       uint16
	Height      uint16
	PixelFormat uint8
	MipLevels   int
}

// Bitmap is a stored bitmap and its double buffered upload command lists.
type Bitmap struct {
	Meta   BitmapMeta
	Upload [2]protocol.CommandList
}

// UploadDefault returns the upload list the decoder consumes. The second buffer
// is never read.
func (b Bitmap) UploadDefault() protocol.CommandList {
	return b.Upload[0]
}

// ImageDescriptor is one mip level or the palette.
type ImageDescriptor struct {
	Width       uint16
	Height      uint16
	PixelFormat uint8
	MipLevels   int
	protocol.Transfer
}

func shell(meta BitmapMeta) ImageDescriptor {
	return ImageDescriptor{
		Width:       meta.Width,
		Height:      meta.Height,
		PixelFormat: meta.PixelFormat,
		MipLevels:   meta.MipLevels,
	}
}

// Rect returns the destination rectangle of the transfer.
func (d ImageDescriptor) Rect() image.Rectangle {
	x, y := int(d.Position.DSAX()), int(d.Position.DSAY())
	return image.Rect(x, y, x+int(d.Region.RRW()), y+int(d.Region.RRH()))
}

// PayloadSize returns the number of payload bytes the transfer moves, or 0 when
// the destination format is unknown.
func (d ImageDescriptor) PayloadSize() int {
	bpp := protocol.BitsPerPixel(d.Binding.DPSM())
	return (int(d.Region.RRW())*int(d.Region.RRH())*bpp + 7) / 8
}

// Pixels returns the payload bounded to PayloadSize.
func (d ImageDescriptor) Pixels() ([]byte, error) {
	if !d.Complete() {
		return nil, protocol.Structural("image transfer is incomplete")
	}
	n := d.PayloadSize()
	if n == 0 {
		return nil, protocol.Structural("unknown destination pixel format 0x%02x", d.Binding.DPSM())
	}
	if len(d.Payload) < n {
		return nil, protocol.Structural("payload at 0x%08x has %d bytes, transfer needs %d", d.PayloadRef, len(d.Payload), n)
	}
	return d.Payload[:n:n], nil
}

// CombinedImageData is everything a backend needs to create one texture.
// It is built once per texture layer and must not be modified afterwards.
type CombinedImageData struct {
	Registers protocol.RenderState
	Mips      []ImageDescriptor
	Palette   ImageDescriptor
}

// HasPalette reports whether the palette slot was filled.
func (c CombinedImageData) HasPalette() bool {
	return c.Palette.Complete()
}

// WithRenderState returns c with the render registers merged in.
func (c CombinedImageData) WithRenderState(state protocol.RenderState) CombinedImageData {
	c.Registers = state
	return c
}

package texture

import (
	"fmt"
	"time"

	"github.com/danmuck/g2dtex/internal/observability"
	"github.com/danmuck/g2dtex/internal/protocol"
)

// Assemble builds the mip and palette shells for bitmap and fills them from the
// upload commands. When a palette is present its upload list carries both the
// indexed pixels and the CLUT, so it is used instead of the bitmap's.
func Assemble(bitmap Bitmap, palette *Bitmap, resolver protocol.Resolver) (CombinedImageData, error) {
	// A bitmap without mip levels is rejected before its upload list is opened;
	// every block would otherwise fall through to the palette or be dropped.
	if bitmap.Meta.MipLevels <= 0 {
		return CombinedImageData{}, protocol.Structural("bitmap declares %d mip levels, want at least 1", bitmap.Meta.MipLevels)
	}

	out := CombinedImageData{Mips: make([]ImageDescriptor, bitmap.Meta.MipLevels)}
	for i := range out.Mips {
		out.Mips[i] = shell(bitmap.Meta)
	}

	source := bitmap.UploadDefault()
	if palette != nil {
		if palette.Meta.MipLevels != 1 {
			return CombinedImageData{}, protocol.Structural("palette declares %d mip levels, want 1", palette.Meta.MipLevels)
		}
		out.Palette = shell(palette.Meta)
		source = palette.UploadDefault()
	}

	records, err := source.Open(resolver)
	if err != nil {
		return CombinedImageData{}, fmt.Errorf("open upload commands: %w", err)
	}
	upload, err := protocol.DecodeUpload(records, len(out.Mips), resolver)
	if err != nil {
		return CombinedImageData{}, err
	}
	for i := range out.Mips {
		out.Mips[i].Transfer = upload.Mips[i]
	}
	out.Palette.Transfer = upload.Palette
	return out, nil
}

// Decode pairs Assemble with the render state of the owning material.
func Decode(bitmap Bitmap, palette *Bitmap, render protocol.CommandList, resolver protocol.Resolver) (CombinedImageData, error) {
	start := time.Now()
	img, err := Assemble(bitmap, palette, resolver)
	observability.RecordDecode(observability.StageUpload, time.Since(start), err)
	if err != nil {
		return CombinedImageData{}, err
	}

	start = time.Now()
	state, err := decodeRender(render, resolver)
	observability.RecordDecode(observability.StageRender, time.Since(start), err)
	if err != nil {
		return CombinedImageData{}, err
	}
	return img.WithRenderState(state), nil
}

func decodeRender(render protocol.CommandList, resolver protocol.Resolver) (protocol.RenderState, error) {
	records, err := render.Open(resolver)
	if err != nil {
		return protocol.RenderState{}, fmt.Errorf("open render commands: %w", err)
	}
	return protocol.DecodeRenderState(records)
}

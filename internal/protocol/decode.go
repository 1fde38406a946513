package protocol

// DecodeRenderState scans a material render command list and collects the
// texture state registers. TEX0_1 must appear exactly once; the other registers
// are optional and a repeat overwrites the earlier value. Unknown tags are skipped.
func DecodeRenderState(records Stream) (RenderState, error) {
	var state RenderState
	for i := 0; i < records.Len(); i++ {
		rec := records.At(i)
		tag := rec.Tag()
		switch tag {
		case TagTex0:
			if state.Has(HasTex0) {
				return RenderState{}, violation(i, tag, "texture setup register repeated")
			}
			state.TextureSetup = Tex0(rec.Data())
			state.Present |= HasTex0
		case TagClamp:
			state.Clamp = Clamp(rec.Data())
			state.Present |= HasClamp
		case TagTest:
			state.Test = Test(rec.Data())
			state.Present |= HasTest
		case TagAlpha:
			state.AlphaBlend = Alpha(rec.Data())
			state.Present |= HasAlpha
		case TagColClamp:
			state.ColorClamp = ColClamp(rec.Data())
			state.Present |= HasColClamp
		}
	}
	if !state.Has(HasTex0) {
		return RenderState{}, violation(-1, TagTex0, "texture setup register missing")
	}
	return state, nil
}

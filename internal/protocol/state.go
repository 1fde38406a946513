package protocol

import "github.com/rs/zerolog"

// RegisterSet records which render registers appeared in a stream.
type RegisterSet uint8

const (
	HasTex0 RegisterSet = 1 << iota
	HasClamp
	HasAlpha
	HasTest
	HasColClamp
)

// RenderState is the sampling and blend state of one material.
type RenderState struct {
	TextureSetup Tex0
	Clamp        Clamp
	AlphaBlend   Alpha
	Test         Test
	ColorClamp   ColClamp
	Present      RegisterSet
}

// Has reports whether every register in set was present.
func (s RenderState) Has(set RegisterSet) bool {
	return s.Present&set == set
}

func (s RenderState) MarshalZerologObject(e *zerolog.Event) {
	e.Object("tex0", s.TextureSetup)
	if s.Has(HasClamp) {
		e.Object("clamp", s.Clamp)
	}
	if s.Has(HasAlpha) {
		e.Object("alpha", s.AlphaBlend)
	}
	if s.Has(HasTest) {
		e.Object("test", s.Test)
	}
	if s.Has(HasColClamp) {
		e.Object("colclamp", s.ColorClamp)
	}
}

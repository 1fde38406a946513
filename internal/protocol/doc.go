// Package protocol owns the GS packet contract and its decoders.
//
// Ownership boundary:
// - record/stream primitives (16 byte little endian quadwords)
// - register tags and bit-packed register layouts
// - render state decoding (TEX0/CLAMP/TEST/ALPHA/COLCLAMP)
// - upload sequence segmentation (mips + palette)
//
// Records are borrowed views into caller-owned memory. Nothing in this package
// copies or retains a stream beyond the decode call that received it, except the
// payload spans handed back by a Resolver.
package protocol

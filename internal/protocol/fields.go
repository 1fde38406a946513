package protocol

import "github.com/rs/zerolog"

func bits(v uint64, lo, width uint) uint64 {
	return (v >> lo) & (1<<width - 1)
}

func put(v uint64, lo, width uint) uint64 {
	return (v & (1<<width - 1)) << lo
}

// Tex0 is the TEX0_1 texture setup register.
type Tex0 uint64

func (t Tex0) TBP0() uint16 { return uint16(bits(uint64(t), 0, 14)) }
func (t Tex0) TBW() uint8   { return uint8(bits(uint64(t), 14, 6)) }
func (t Tex0) PSM() uint8   { return uint8(bits(uint64(t), 20, 6)) }
func (t Tex0) TW() uint8    { return uint8(bits(uint64(t), 26, 4)) }
func (t Tex0) TH() uint8    { return uint8(bits(uint64(t), 30, 4)) }
func (t Tex0) TCC() bool    { return bits(uint64(t), 34, 1) == 1 }
func (t Tex0) TFX() uint8   { return uint8(bits(uint64(t), 35, 2)) }
func (t Tex0) CBP() uint16  { return uint16(bits(uint64(t), 37, 14)) }
func (t Tex0) CPSM() uint8  { return uint8(bits(uint64(t), 51, 4)) }
func (t Tex0) CSM() uint8   { return uint8(bits(uint64(t), 55, 1)) }
func (t Tex0) CSA() uint8   { return uint8(bits(uint64(t), 56, 5)) }
func (t Tex0) CLD() uint8   { return uint8(bits(uint64(t), 61, 3)) }

// Width returns 1<<TW.
func (t Tex0) Width() int { return 1 << t.TW() }

// Height returns 1<<TH.
func (t Tex0) Height() int { return 1 << t.TH() }

func (t Tex0) MarshalZerologObject(e *zerolog.Event) {
	e.Uint16("cbp", t.CBP()).
		Uint8("cld", t.CLD()).
		Uint8("cpsm", t.CPSM()).
		Uint8("csa", t.CSA()).
		Uint8("csm", t.CSM()).
		Uint8("psm", t.PSM()).
		Uint16("tbp0", t.TBP0()).
		Uint8("tbw", t.TBW()).
		Bool("tcc", t.TCC()).
		Uint8("tfx", t.TFX()).
		Uint8("tw", t.TW()).
		Uint8("th", t.TH())
}

// Clamp is the CLAMP_1 wrap mode register.
type Clamp uint64

func (c Clamp) WMS() uint8   { return uint8(bits(uint64(c), 0, 2)) }
func (c Clamp) WMT() uint8   { return uint8(bits(uint64(c), 2, 2)) }
func (c Clamp) MINU() uint16 { return uint16(bits(uint64(c), 4, 10)) }
func (c Clamp) MAXU() uint16 { return uint16(bits(uint64(c), 14, 10)) }
func (c Clamp) MINV() uint16 { return uint16(bits(uint64(c), 24, 10)) }
func (c Clamp) MAXV() uint16 { return uint16(bits(uint64(c), 34, 10)) }

func (c Clamp) MarshalZerologObject(e *zerolog.Event) {
	e.Uint8("wms", c.WMS()).
		Uint8("wmt", c.WMT()).
		Uint16("minu", c.MINU()).
		Uint16("maxu", c.MAXU()).
		Uint16("maxv", c.MAXV()).
		Uint16("minv", c.MINV())
}

// Test is the TEST_1 pixel test register.
type Test uint64

func (t Test) ATE() bool    { return bits(uint64(t), 0, 1) == 1 }
func (t Test) ATST() uint8  { return uint8(bits(uint64(t), 1, 3)) }
func (t Test) AREF() uint8  { return uint8(bits(uint64(t), 4, 8)) }
func (t Test) AFAIL() uint8 { return uint8(bits(uint64(t), 12, 2)) }
func (t Test) DATE() bool   { return bits(uint64(t), 14, 1) == 1 }
func (t Test) DATM() uint8  { return uint8(bits(uint64(t), 15, 1)) }
func (t Test) ZTE() bool    { return bits(uint64(t), 16, 1) == 1 }
func (t Test) ZTST() uint8  { return uint8(bits(uint64(t), 17, 2)) }

func (t Test) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("ate", t.ATE()).
		Uint8("atst", t.ATST()).
		Uint8("aref", t.AREF()).
		Uint8("afail", t.AFAIL()).
		Bool("date", t.DATE()).
		Uint8("datm", t.DATM()).
		Bool("zte", t.ZTE()).
		Uint8("ztst", t.ZTST())
}

// Alpha is the ALPHA_1 blend register: ((A - B) * C >> 7) + D.
type Alpha uint64

// NewAlpha packs the blend selectors and fixed alpha.
func NewAlpha(a, b, c, d, fix uint8) Alpha {
	return Alpha(put(uint64(a), 0, 2) | put(uint64(b), 2, 2) | put(uint64(c), 4, 2) |
		put(uint64(d), 6, 2) | put(uint64(fix), 32, 8))
}

func (a Alpha) A() uint8   { return uint8(bits(uint64(a), 0, 2)) }
func (a Alpha) B() uint8   { return uint8(bits(uint64(a), 2, 2)) }
func (a Alpha) C() uint8   { return uint8(bits(uint64(a), 4, 2)) }
func (a Alpha) D() uint8   { return uint8(bits(uint64(a), 6, 2)) }
func (a Alpha) FIX() uint8 { return uint8(bits(uint64(a), 32, 8)) }

var (
	colorOperands = [...]string{"Cs", "Cd", "0", "reserved"}
	alphaOperands = [...]string{"As", "Ad", "FIX", "reserved"}
)

// Equation renders the blend equation with operand names.
func (a Alpha) Equation() string {
	return "((" + colorOperands[a.A()] + " - " + colorOperands[a.B()] + ") * " +
		alphaOperands[a.C()] + ") + " + colorOperands[a.D()]
}

func (a Alpha) MarshalZerologObject(e *zerolog.Event) {
	e.Uint8("a", a.A()).
		Uint8("b", a.B()).
		Uint8("c", a.C()).
		Uint8("d", a.D()).
		Uint8("fix", a.FIX()).
		Str("equation", a.Equation())
}

// ColClamp is the COLCLAMP register.
type ColClamp uint64

func (c ColClamp) Clamp() bool { return bits(uint64(c), 0, 1) == 1 }

func (c ColClamp) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("clamp", c.Clamp())
}

// TrxReg is the TRXREG transfer size register.
type TrxReg uint64

// NewTrxReg packs a transfer width and height.
func NewTrxReg(w, h uint16) TrxReg {
	return TrxReg(put(uint64(w), 0, 12) | put(uint64(h), 32, 12))
}

func (t TrxReg) RRW() uint16 { return uint16(bits(uint64(t), 0, 12)) }
func (t TrxReg) RRH() uint16 { return uint16(bits(uint64(t), 32, 12)) }

// TrxPos is the TRXPOS transfer position register.
type TrxPos uint64

// NewTrxPos packs a destination position and transfer direction.
func NewTrxPos(dsax, dsay uint16, dir uint8) TrxPos {
	return TrxPos(put(uint64(dsax), 32, 11) | put(uint64(dsay), 48, 11) | put(uint64(dir), 59, 2))
}

func (t TrxPos) SSAX() uint16 { return uint16(bits(uint64(t), 0, 11)) }
func (t TrxPos) SSAY() uint16 { return uint16(bits(uint64(t), 16, 11)) }
func (t TrxPos) DSAX() uint16 { return uint16(bits(uint64(t), 32, 11)) }
func (t TrxPos) DSAY() uint16 { return uint16(bits(uint64(t), 48, 11)) }
func (t TrxPos) DIR() uint8   { return uint8(bits(uint64(t), 59, 2)) }

// BitBltBuf is the BITBLTBUF transfer buffer register.
type BitBltBuf uint64

// NewBitBltBuf packs the destination buffer of a host to local transfer.
func NewBitBltBuf(dbp uint16, dbw, dpsm uint8) BitBltBuf {
	return BitBltBuf(put(uint64(dbp), 32, 14) | put(uint64(dbw), 48, 6) | put(uint64(dpsm), 56, 6))
}

func (b BitBltBuf) SBP() uint16 { return uint16(bits(uint64(b), 0, 14)) }
func (b BitBltBuf) SBW() uint8  { return uint8(bits(uint64(b), 16, 6)) }
func (b BitBltBuf) SPSM() uint8 { return uint8(bits(uint64(b), 24, 6)) }
func (b BitBltBuf) DBP() uint16 { return uint16(bits(uint64(b), 32, 14)) }
func (b BitBltBuf) DBW() uint8  { return uint8(bits(uint64(b), 48, 6)) }
func (b BitBltBuf) DPSM() uint8 { return uint8(bits(uint64(b), 56, 6)) }

// Pixel storage formats.
const (
	PSMCT32  uint8 = 0x00
	PSMCT24  uint8 = 0x01
	PSMCT16  uint8 = 0x02
	PSMCT16S uint8 = 0x0a
	PSMT8    uint8 = 0x13
	PSMT4    uint8 = 0x14
	PSMT8H   uint8 = 0x1b
	PSMT4HL  uint8 = 0x24
	PSMT4HH  uint8 = 0x2c
)

// BitsPerPixel returns the transfer size of one pixel in psm, or 0 when unknown.
func BitsPerPixel(psm uint8) int {
	switch psm {
	case PSMCT32:
		return 32
	case PSMCT24:
		return 24
	case PSMCT16, PSMCT16S:
		return 16
	case PSMT8, PSMT8H:
		return 8
	case PSMT4, PSMT4HL, PSMT4HH:
		return 4
	default:
		return 0
	}
}

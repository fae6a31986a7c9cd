package diff

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/tessera/internal/renderer/core"
)

// moveTo emits a cursor position sequence. Terminal rows and columns
// are 1-based.
func (r *Renderer) moveTo(row, col int) {
	r.buf.WriteString("\x1b[")
	r.writeInt(row + 1)
	r.buf.WriteByte(';')
	r.writeInt(col + 1)
	r.buf.WriteByte('H')
}

// writeInt appends a non-negative integer without allocating.
func (r *Renderer) writeInt(n int) {
	if n < 0 {
		n = 0
	}
	if n == 0 {
		r.buf.WriteByte('0')
		return
	}
	var scratch [10]byte
	i := len(scratch)
	for n > 0 {
		i--
		scratch[i] = byte('0' + n%10)
		n /= 10
	}
	r.buf.Write(scratch[i:])
}

// writeStyle emits a complete SGR sequence for the style. Starting
// from 0 resets every attribute the previous pen state may have set,
// so the sequence never depends on what came before it.
func (r *Renderer) writeStyle(st core.Style) {
	r.buf.WriteString("\x1b[0")
	if st.Attributes.Has(core.AttrBold) {
		r.buf.WriteString(";1")
	}
	if st.Attributes.Has(core.AttrDim) {
		r.buf.WriteString(";2")
	}
	if st.Attributes.Has(core.AttrItalic) {
		r.buf.WriteString(";3")
	}
	if st.Attributes.Has(core.AttrUnderline) {
		r.buf.WriteString(";4")
	}
	if st.Attributes.Has(core.AttrBlink) {
		r.buf.WriteString(";5")
	}
	if st.Attributes.Has(core.AttrReverse) {
		r.buf.WriteString(";7")
	}
	if st.Attributes.Has(core.AttrStrikethrough) {
		r.buf.WriteString(";9")
	}
	r.writeColor(r.quantize(st.Foreground), true)
	r.writeColor(r.quantize(st.Background), false)
	r.buf.WriteByte('m')
}

// writeColor appends one color parameter of an SGR sequence.
func (r *Renderer) writeColor(c core.Color, foreground bool) {
	switch {
	case c.Default:
		if foreground {
			r.buf.WriteString(";39")
		} else {
			r.buf.WriteString(";49")
		}
	case c.Indexed && c.R < 8:
		base := 40 + int(c.R)
		if foreground {
			base = 30 + int(c.R)
		}
		r.buf.WriteByte(';')
		r.writeInt(base)
	case c.Indexed && c.R < 16:
		base := 100 + int(c.R) - 8
		if foreground {
			base = 90 + int(c.R) - 8
		}
		r.buf.WriteByte(';')
		r.writeInt(base)
	case c.Indexed:
		if foreground {
			r.buf.WriteString(";38;5;")
		} else {
			r.buf.WriteString(";48;5;")
		}
		r.writeInt(int(c.R))
	default:
		if foreground {
			r.buf.WriteString(";38;2;")
		} else {
			r.buf.WriteString(";48;2;")
		}
		r.writeInt(int(c.R))
		r.buf.WriteByte(';')
		r.writeInt(int(c.G))
		r.buf.WriteByte(';')
		r.writeInt(int(c.B))
	}
}

// quantize degrades a color to the renderer's configured depth.
func (r *Renderer) quantize(c core.Color) core.Color {
	if c.Default {
		return c
	}
	switch r.opts.Depth {
	case DepthTrueColor:
		return c
	case Depth256:
		if c.Indexed {
			return c
		}
		return core.Color{R: index256(c), Indexed: true}
	case Depth16:
		if c.Indexed && c.R < 16 {
			return c
		}
		return core.Color{R: nearest16(c), Indexed: true}
	default:
		return core.Color{Default: true}
	}
}

// basic16 holds the xterm default palette for the first 16 indexed
// colors.
var basic16 = [16]core.Color{
	{R: 0, G: 0, B: 0},
	{R: 128, G: 0, B: 0},
	{R: 0, G: 128, B: 0},
	{R: 128, G: 128, B: 0},
	{R: 0, G: 0, B: 128},
	{R: 128, G: 0, B: 128},
	{R: 0, G: 128, B: 128},
	{R: 192, G: 192, B: 192},
	{R: 128, G: 128, B: 128},
	{R: 255, G: 0, B: 0},
	{R: 0, G: 255, B: 0},
	{R: 255, G: 255, B: 0},
	{R: 0, G: 0, B: 255},
	{R: 255, G: 0, B: 255},
	{R: 0, G: 255, B: 255},
	{R: 255, G: 255, B: 255},
}

// nearest16 maps a color onto the closest entry of the 16-color
// palette. Indexed colors outside the basic range are resolved through
// the xterm 256-color palette first.
func nearest16(c core.Color) uint8 {
	target := rgbOf(c)
	cf := colorful.Color{
		R: float64(target.R) / 255,
		G: float64(target.G) / 255,
		B: float64(target.B) / 255,
	}
	best, bestDist := 0, -1.0
	for i, p := range basic16 {
		pf := colorful.Color{
			R: float64(p.R) / 255,
			G: float64(p.G) / 255,
			B: float64(p.B) / 255,
		}
		d := cf.DistanceRgb(pf)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

// index256 maps an RGB color into the xterm 6x6x6 cube or the
// grayscale ramp.
func index256(c core.Color) uint8 {
	if c.R == c.G && c.G == c.B {
		v := int(c.R)
		if v < 8 {
			return 16
		}
		if v > 238 {
			return 231
		}
		return uint8(232 + (v-8)/10)
	}
	return uint8(16 + 36*cubeLevel(c.R) + 6*cubeLevel(c.G) + cubeLevel(c.B))
}

// cubeLevel maps one channel onto the cube levels 0, 95, 135, 175,
// 215, 255.
func cubeLevel(v uint8) int {
	if v < 48 {
		return 0
	}
	if v < 115 {
		return 1
	}
	return int(v-35) / 40
}

// rgbOf resolves an indexed color to its RGB value.
func rgbOf(c core.Color) core.Color {
	if !c.Indexed {
		return c
	}
	if c.R < 16 {
		return basic16[c.R]
	}
	idx := int(c.R)
	if idx >= 232 {
		v := uint8(8 + 10*(idx-232))
		return core.Color{R: v, G: v, B: v}
	}
	idx -= 16
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	return core.Color{
		R: levels[idx/36],
		G: levels[(idx/6)%6],
		B: levels[idx%6],
	}
}

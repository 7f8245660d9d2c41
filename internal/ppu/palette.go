package ppu

// Shade colours as packed RGBA (0xRRGGBBAA), lightest first
const (
	ShadeWhite     uint32 = 0xFFFFFFFF
	ShadeLightGray uint32 = 0xAAAAAAFF
	ShadeDarkGray  uint32 = 0x555555FF
	ShadeBlack     uint32 = 0x000000FF
)

// Shades maps a 2-bit shade number to its RGBA colour
var Shades = [4]uint32{ShadeWhite, ShadeLightGray, ShadeDarkGray, ShadeBlack}

// Palette maps the four colour indices of a tile to shade numbers
type Palette [4]uint8

// DecodePalette splits a BGP/OBP register into four 2-bit shade fields
func DecodePalette(value uint8) Palette {
	return Palette{
		value & 0x03,
		(value >> 2) & 0x03,
		(value >> 4) & 0x03,
		(value >> 6) & 0x03,
	}
}

// Encode packs the palette back into register form
func (p Palette) Encode() uint8 {
	return p[0]&0x03 | (p[1]&0x03)<<2 | (p[2]&0x03)<<4 | (p[3]&0x03)<<6
}

// Color resolves a colour index to RGBA
func (p Palette) Color(index uint8) uint32 {
	return Shades[p[index&0x03]]
}

// RGBA splits a packed colour into its channels
func RGBA(color uint32) (r, g, b, a uint8) {
	return uint8(color >> 24), uint8(color >> 16), uint8(color >> 8), uint8(color)
}

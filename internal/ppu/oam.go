package ppu

// OAM layout
const (
	SpriteCount = 40
	SpriteBytes = 4
	OAMSize     = SpriteCount * SpriteBytes

	maxLineSprites = 10
)

// Attribute flag bits (byte 3 of an OAM entry)
const (
	attrPriority = 0x80 // background colours 1-3 draw over the sprite
	attrYFlip    = 0x40
	attrXFlip    = 0x20
	attrPalette  = 0x10 // 0 = OBP0, 1 = OBP1
	attrUnused   = 0x0F
)

// Sprite is one decoded OAM entry. Y and X carry the hardware offsets
// (Y-16, X-8 is the top-left corner on screen).
type Sprite struct {
	Y        uint8
	X        uint8
	Tile     uint8
	Priority bool
	YFlip    bool
	XFlip    bool
	Palette  uint8 // 0 or 1
	Unused   uint8 // attribute bits 0-3, ignored on this model
}

// UnpackSprite decodes four OAM bytes
func UnpackSprite(b [SpriteBytes]uint8) Sprite {
	attr := b[3]
	s := Sprite{
		Y:        b[0],
		X:        b[1],
		Tile:     b[2],
		Priority: attr&attrPriority != 0,
		YFlip:    attr&attrYFlip != 0,
		XFlip:    attr&attrXFlip != 0,
		Unused:   attr & attrUnused,
	}
	if attr&attrPalette != 0 {
		s.Palette = 1
	}
	return s
}

// Pack encodes the sprite into four OAM bytes
func (s Sprite) Pack() [SpriteBytes]uint8 {
	attr := s.Unused & attrUnused
	if s.Priority {
		attr |= attrPriority
	}
	if s.YFlip {
		attr |= attrYFlip
	}
	if s.XFlip {
		attr |= attrXFlip
	}
	if s.Palette != 0 {
		attr |= attrPalette
	}
	return [SpriteBytes]uint8{s.Y, s.X, s.Tile, attr}
}

// lineSprite is a sprite selected during OAM scan with its tile row prefetched
type lineSprite struct {
	Sprite
	lo, hi uint8
}

// pixel returns the colour index of the sprite at screen column x, 0 when outside
func (s *lineSprite) pixel(x int) uint8 {
	col := x - (int(s.X) - 8)
	if col < 0 || col > 7 {
		return 0
	}
	if s.XFlip {
		col = 7 - col
	}
	bit := uint(7 - col)
	return (s.hi>>bit&1)<<1 | s.lo>>bit&1
}

// Sprite returns OAM entry i
func (p *PPU) Sprite(i int) Sprite {
	var b [SpriteBytes]uint8
	copy(b[:], p.oam[i*SpriteBytes:])
	return UnpackSprite(b)
}

// SetSprite stores OAM entry i
func (p *PPU) SetSprite(i int, s Sprite) {
	b := s.Pack()
	copy(p.oam[i*SpriteBytes:], b[:])
}

package ppu

// fetchState is a pixel fetcher step
type fetchState uint8

const (
	fetchTile fetchState = iota
	fetchDataLow
	fetchDataHigh
	fetchSleep
	fetchPush
)

// fetcher holds the background/window fetch state for one line
type fetcher struct {
	state  fetchState
	tileX  int // tile column relative to the start of the line (or window)
	tileNo uint8
	lo, hi uint8
	window bool
}

func (f *fetcher) reset(window bool) {
	*f = fetcher{window: window}
}

// fetcherStep advances the fetcher by one step; called every other dot
func (p *PPU) fetcherStep() {
	f := &p.fetch

	switch f.state {
	case fetchTile:
		f.tileNo = p.vram[p.tileMapAddress()-vramBase]
		f.state = fetchDataLow
	case fetchDataLow:
		f.lo = p.vram[p.tileDataAddress(f.tileNo)-vramBase]
		f.state = fetchDataHigh
	case fetchDataHigh:
		f.hi = p.vram[p.tileDataAddress(f.tileNo)+1-vramBase]
		f.state = fetchSleep
	case fetchSleep:
		f.state = fetchPush
	case fetchPush:
		if p.bgFIFO.Len() > 8 {
			return
		}
		for bit := 7; bit >= 0; bit-- {
			color := (f.hi>>uint(bit)&1)<<1 | f.lo>>uint(bit)&1
			screenX := p.lineX + p.bgFIFO.Len() - p.discard
			p.bgFIFO.Push(bgPixel{color: color})
			p.objFIFO.Push(p.spritePixel(screenX))
		}
		f.tileX++
		f.state = fetchTile
	}
}

// tileMapAddress returns the map entry for the fetcher's current tile
func (p *PPU) tileMapAddress() uint16 {
	f := &p.fetch
	var base uint16 = 0x9800
	var x, y int

	if f.window {
		if p.lcdc&lcdcWindowMap != 0 {
			base = 0x9C00
		}
		x = f.tileX & 31
		y = p.windowLine
	} else {
		if p.lcdc&lcdcBGMap != 0 {
			base = 0x9C00
		}
		x = (int(p.scx)/8 + f.tileX) & 31
		y = (p.ly + int(p.scy)) & 0xFF
	}
	return base + uint16(y/8)*32 + uint16(x)
}

// tileDataAddress returns the low bitplane address of the current row of tile
func (p *PPU) tileDataAddress(tile uint8) uint16 {
	row := (p.ly + int(p.scy)) & 7
	if p.fetch.window {
		row = p.windowLine & 7
	}
	if p.lcdc&lcdcTileData != 0 {
		return 0x8000 + uint16(tile)*16 + uint16(row)*2
	}
	return uint16(0x9000+int(int8(tile))*16) + uint16(row)*2
}

// spritePixel resolves the highest priority opaque sprite pixel at screen column x
func (p *PPU) spritePixel(x int) objPixel {
	if p.lcdc&lcdcOBJEnable == 0 || x < 0 || x >= Width {
		return objPixel{}
	}
	for i := range p.lineSprites {
		s := &p.lineSprites[i]
		if color := s.pixel(x); color != 0 {
			return objPixel{color: color, palette: s.Palette, priority: s.Priority}
		}
	}
	return objPixel{}
}

// popPixel runs once per dot of pixel transfer and emits at most one pixel
func (p *PPU) popPixel() {
	if p.windowVisible() && !p.fetch.window && p.lineX+7 >= int(p.wx) {
		p.startWindow()
		return
	}

	if p.bgFIFO.Len() <= 8 {
		return
	}
	bg, _ := p.bgFIFO.Pop()
	obj, _ := p.objFIFO.Pop()

	if p.discard > 0 {
		p.discard--
		return
	}

	bgColor := bg.color
	if p.lcdc&lcdcBGEnable == 0 {
		bgColor = 0
	}
	color := p.bgPalette.Color(bgColor)
	if obj.color != 0 && !(obj.priority && bgColor != 0) {
		color = p.objPalettes[obj.palette].Color(obj.color)
	}

	p.back[p.ly*Width+p.lineX] = color
	p.lineX++
}

// windowVisible reports whether the window may be drawn on the current line
func (p *PPU) windowVisible() bool {
	return p.lcdc&lcdcWindowEnable != 0 && p.windowTriggered && p.wx <= 166
}

// startWindow restarts the fetcher on the window map at the current column
func (p *PPU) startWindow() {
	p.bgFIFO.Clear()
	p.objFIFO.Clear()
	p.fetch.reset(true)
	p.discard = 0
	if p.lineX == 0 && p.wx < 7 {
		p.discard = 7 - int(p.wx)
	}
	p.windowDrawn = true
}

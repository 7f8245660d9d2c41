// Package ppu implements the graphics controller: LCD registers, the per-dot
// mode state machine, the pixel fetcher and FIFOs, OAM and OAM DMA.
package ppu

import (
	"sort"
	"sync"

	"gogb/internal/interrupts"
)

// Display dimensions
const (
	Width  = 160
	Height = 144
)

// Timing
const (
	DotsPerLine   = 456
	OAMScanDots   = 80
	VisibleLines  = 144
	LinesPerFrame = 154
	DotsPerFrame  = DotsPerLine * LinesPerFrame
)

// Memory regions
const (
	vramBase = 0x8000
	vramSize = 0x2000
	oamBase  = 0xFE00
)

// Register addresses
const (
	LCDC = 0xFF40
	STAT = 0xFF41
	SCY  = 0xFF42
	SCX  = 0xFF43
	LY   = 0xFF44
	LYC  = 0xFF45
	BGP  = 0xFF47
	OBP0 = 0xFF48
	OBP1 = 0xFF49
	WY   = 0xFF4A
	WX   = 0xFF4B
)

// LCDC bits
const (
	lcdcBGEnable     = 0x01
	lcdcOBJEnable    = 0x02
	lcdcOBJSize      = 0x04
	lcdcBGMap        = 0x08
	lcdcTileData     = 0x10
	lcdcWindowEnable = 0x20
	lcdcWindowMap    = 0x40
	lcdcDisplay      = 0x80
)

// STAT bits
const (
	statModeMask    = 0x03
	statCoincidence = 0x04
	statHBlankIRQ   = 0x08
	statVBlankIRQ   = 0x10
	statOAMIRQ      = 0x20
	statLYCIRQ      = 0x40
	statWritable    = statHBlankIRQ | statVBlankIRQ | statOAMIRQ | statLYCIRQ
)

// Mode is the graphics controller state, numbered as reported in STAT
type Mode uint8

const (
	HBlank        Mode = 0
	VBlank        Mode = 1
	OAMScan       Mode = 2
	PixelTransfer Mode = 3
)

func (m Mode) String() string {
	switch m {
	case HBlank:
		return "HBLANK"
	case VBlank:
		return "VBLANK"
	case OAMScan:
		return "OAM"
	case PixelTransfer:
		return "TRANSFER"
	}
	return "UNKNOWN"
}

// PPU represents the graphics controller
type PPU struct {
	// Registers
	lcdc uint8
	stat uint8 // interrupt enable bits only; mode and coincidence are derived
	scy  uint8
	scx  uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	bgPalette   Palette
	objPalettes [2]Palette

	// Memory
	vram [vramSize]uint8
	oam  [OAMSize]uint8

	// State machine
	mode        Mode
	dot         int
	ly          int
	coincidence bool

	// Pixel pipeline
	fetch       fetcher
	bgFIFO      fifo[bgPixel]
	objFIFO     fifo[objPixel]
	lineX       int // pixels emitted on the current line
	discard     int // pixels still to drop for fine scroll
	lineSprites []lineSprite

	// Window
	windowLine      int
	windowTriggered bool
	windowDrawn     bool

	// OAM DMA
	dma dma
	bus BusReader

	// Frame buffers, swapped on v-blank entry
	back     [Width * Height]uint32
	front    [Width * Height]uint32
	frontMu  sync.RWMutex
	frameCnt uint64

	irq                   interrupts.Sink
	frameCompleteCallback func()
}

// New creates a graphics controller that raises interrupts through sink
func New(sink interrupts.Sink) *PPU {
	p := &PPU{irq: sink, lineSprites: make([]lineSprite, 0, maxLineSprites)}
	p.Reset()
	return p
}

// Reset restores the post-boot register state and starts line 0 in OAM scan
func (p *PPU) Reset() {
	p.lcdc = 0x91
	p.stat = 0
	p.scy, p.scx = 0, 0
	p.lyc = 0
	p.wy, p.wx = 0, 0
	p.writePalette(BGP, 0xFC)
	p.writePalette(OBP0, 0xFF)
	p.writePalette(OBP1, 0xFF)

	p.vram = [vramSize]uint8{}
	p.oam = [OAMSize]uint8{}

	p.mode = OAMScan
	p.dot = 0
	p.ly = 0
	p.windowLine = 0
	p.windowTriggered = false
	p.dma = dma{}
	p.frameCnt = 0
	p.updateCoincidence()

	p.ClearFrameBuffer(ShadeWhite)
}

// SetFrameCompleteCallback sets the function called on v-blank entry
func (p *PPU) SetFrameCompleteCallback(callback func()) {
	p.frameCompleteCallback = callback
}

// Tick advances the controller by one dot and an active OAM DMA by one byte
func (p *PPU) Tick() {
	p.stepDMA()

	if p.lcdc&lcdcDisplay == 0 {
		return
	}

	p.dot++

	switch p.mode {
	case OAMScan:
		if p.dot == OAMScanDots {
			p.scanOAM()
			p.enterPixelTransfer()
		}
	case PixelTransfer:
		if p.dot%2 == 0 {
			p.fetcherStep()
		}
		p.popPixel()
		if p.lineX == Width {
			p.enterHBlank()
		}
	case HBlank:
		if p.dot == DotsPerLine {
			p.nextLine()
			if p.ly == VisibleLines {
				p.enterVBlank()
			} else {
				p.enterOAMScan()
			}
		}
	case VBlank:
		if p.dot == DotsPerLine {
			p.nextLine()
			if p.ly == LinesPerFrame {
				p.ly = 0
				p.windowLine = 0
				p.windowTriggered = false
				p.updateCoincidence()
				p.enterOAMScan()
			}
		}
	}
}

// nextLine moves to the following line and reruns the LY compare
func (p *PPU) nextLine() {
	p.dot = 0
	p.ly++
	p.updateCoincidence()
}

func (p *PPU) enterOAMScan() {
	p.mode = OAMScan
	if p.ly == int(p.wy) {
		p.windowTriggered = true
	}
	p.requestStat(statOAMIRQ)
}

func (p *PPU) enterPixelTransfer() {
	p.mode = PixelTransfer
	p.fetch.reset(false)
	p.bgFIFO.Clear()
	p.objFIFO.Clear()
	p.lineX = 0
	p.discard = int(p.scx % 8)
	p.windowDrawn = false
}

func (p *PPU) enterHBlank() {
	p.mode = HBlank
	if p.windowDrawn {
		p.windowLine++
	}
	p.requestStat(statHBlankIRQ)
}

func (p *PPU) enterVBlank() {
	p.mode = VBlank
	p.request(interrupts.VBlank)
	p.requestStat(statVBlankIRQ)

	p.frontMu.Lock()
	p.front = p.back
	p.frontMu.Unlock()
	p.frameCnt++

	if p.frameCompleteCallback != nil {
		p.frameCompleteCallback()
	}
}

// requestStat raises LCDStat when the STAT enable bit for the event is set
func (p *PPU) requestStat(bit uint8) {
	if p.stat&bit != 0 {
		p.request(interrupts.LCDStat)
	}
}

func (p *PPU) request(kind interrupts.Kind) {
	if p.irq != nil {
		p.irq.Request(kind)
	}
}

// updateCoincidence compares LY with LYC
func (p *PPU) updateCoincidence() {
	p.coincidence = p.ly == int(p.lyc)
	if p.coincidence {
		p.requestStat(statLYCIRQ)
	}
}

// scanOAM selects the sprites on the current line and prefetches their rows
func (p *PPU) scanOAM() {
	p.lineSprites = p.lineSprites[:0]

	height := 8
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	for i := 0; i < SpriteCount && len(p.lineSprites) < maxLineSprites; i++ {
		s := p.Sprite(i)
		top := int(s.Y) - 16
		if p.ly < top || p.ly >= top+height {
			continue
		}

		row := p.ly - top
		if s.YFlip {
			row = height - 1 - row
		}
		tile := s.Tile
		if height == 16 {
			tile &^= 1
		}
		addr := uint16(tile)*16 + uint16(row)*2
		p.lineSprites = append(p.lineSprites, lineSprite{
			Sprite: s,
			lo:     p.vram[addr],
			hi:     p.vram[addr+1],
		})
	}

	sort.SliceStable(p.lineSprites, func(a, b int) bool {
		return p.lineSprites[a].X < p.lineSprites[b].X
	})
}

// Read returns an LCD register
func (p *PPU) Read(address uint16) uint8 {
	switch address {
	case LCDC:
		return p.lcdc
	case STAT:
		value := 0x80 | p.stat
		if p.coincidence {
			value |= statCoincidence
		}
		if p.lcdc&lcdcDisplay != 0 {
			value |= uint8(p.mode) & statModeMask
		}
		return value
	case SCY:
		return p.scy
	case SCX:
		return p.scx
	case LY:
		return uint8(p.ly)
	case LYC:
		return p.lyc
	case DMAAddress:
		return p.dma.page
	case BGP:
		return p.bgp
	case OBP0:
		return p.obp0
	case OBP1:
		return p.obp1
	case WY:
		return p.wy
	case WX:
		return p.wx
	}
	return 0xFF
}

// Write sets an LCD register. LY is read-only and STAT accepts only its
// interrupt enable bits.
func (p *PPU) Write(address uint16, value uint8) {
	switch address {
	case LCDC:
		p.writeLCDC(value)
	case STAT:
		p.stat = value & statWritable
	case SCY:
		p.scy = value
	case SCX:
		p.scx = value
	case LYC:
		p.lyc = value
		p.updateCoincidence()
	case DMAAddress:
		p.StartDMA(value)
	case BGP, OBP0, OBP1:
		p.writePalette(address, value)
	case WY:
		p.wy = value
	case WX:
		p.wx = value
	}
}

func (p *PPU) writeLCDC(value uint8) {
	wasOn := p.lcdc&lcdcDisplay != 0
	p.lcdc = value
	isOn := value&lcdcDisplay != 0

	switch {
	case wasOn && !isOn:
		p.ly = 0
		p.dot = 0
		p.mode = HBlank
		p.windowLine = 0
		p.windowTriggered = false
	case !wasOn && isOn:
		p.ly = 0
		p.dot = 0
		p.updateCoincidence()
		p.enterOAMScan()
	}
}

func (p *PPU) writePalette(address uint16, value uint8) {
	switch address {
	case BGP:
		p.bgp = value
		p.bgPalette = DecodePalette(value)
	case OBP0:
		p.obp0 = value
		p.objPalettes[0] = DecodePalette(value)
	case OBP1:
		p.obp1 = value
		p.objPalettes[1] = DecodePalette(value)
	}
}

// ReadVRAM reads video RAM at a bus address in 0x8000-0x9FFF
func (p *PPU) ReadVRAM(address uint16) uint8 {
	return p.vram[(address-vramBase)&(vramSize-1)]
}

// WriteVRAM writes video RAM at a bus address in 0x8000-0x9FFF
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	p.vram[(address-vramBase)&(vramSize-1)] = value
}

// ReadOAM reads OAM at a bus address in 0xFE00-0xFE9F; 0xFF while DMA runs
func (p *PPU) ReadOAM(address uint16) uint8 {
	if p.dma.active {
		return 0xFF
	}
	offset := int(address - oamBase)
	if offset >= OAMSize {
		return 0xFF
	}
	return p.oam[offset]
}

// WriteOAM writes OAM at a bus address in 0xFE00-0xFE9F; dropped while DMA runs
func (p *PPU) WriteOAM(address uint16, value uint8) {
	if p.dma.active {
		return
	}
	offset := int(address - oamBase)
	if offset < OAMSize {
		p.oam[offset] = value
	}
}

// OAMByte returns a raw OAM byte regardless of DMA state
func (p *PPU) OAMByte(offset int) uint8 {
	return p.oam[offset]
}

// GetFrameBuffer returns a copy of the last completed frame
func (p *PPU) GetFrameBuffer() [Width * Height]uint32 {
	p.frontMu.RLock()
	defer p.frontMu.RUnlock()
	return p.front
}

// ClearFrameBuffer fills both buffers with a colour
func (p *PPU) ClearFrameBuffer(color uint32) {
	p.frontMu.Lock()
	defer p.frontMu.Unlock()
	for i := range p.back {
		p.back[i] = color
		p.front[i] = color
	}
}

// GetFrameCount returns the number of completed frames
func (p *PPU) GetFrameCount() uint64 {
	return p.frameCnt
}

// Mode returns the current state machine mode
func (p *PPU) Mode() Mode {
	return p.mode
}

// GetScanline returns LY
func (p *PPU) GetScanline() int {
	return p.ly
}

// GetDot returns the dot within the current line
func (p *PPU) GetDot() int {
	return p.dot
}

// IsDisplayEnabled reports LCDC bit 7
func (p *PPU) IsDisplayEnabled() bool {
	return p.lcdc&lcdcDisplay != 0
}

// IsVBlank returns true if currently in vertical blank
func (p *PPU) IsVBlank() bool {
	return p.mode == VBlank
}

package ppu

import (
	"testing"

	"gogb/internal/interrupts"
)

// MockSink records interrupt requests
type MockSink struct {
	requests map[interrupts.Kind]int
}

func NewMockSink() *MockSink {
	return &MockSink{requests: make(map[interrupts.Kind]int)}
}

// Request implements interrupts.Sink
func (m *MockSink) Request(kind interrupts.Kind) {
	m.requests[kind]++
}

// MockBus is a flat 64 KiB address space for DMA tests
type MockBus struct {
	data  [0x10000]uint8
	reads int
}

// Read implements BusReader
func (m *MockBus) Read(address uint16) uint8 {
	m.reads++
	return m.data[address]
}

func newTestPPU() (*PPU, *MockSink) {
	sink := NewMockSink()
	return New(sink), sink
}

func tickN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Tick()
	}
}

func TestPPUCreation(t *testing.T) {
	p, _ := newTestPPU()

	if p.Mode() != OAMScan {
		t.Errorf("Expected initial mode OAM, got %s", p.Mode())
	}
	if p.GetScanline() != 0 || p.GetDot() != 0 {
		t.Errorf("Expected LY=0 dot=0, got LY=%d dot=%d", p.GetScanline(), p.GetDot())
	}
	if got := p.Read(LCDC); got != 0x91 {
		t.Errorf("Expected LCDC=0x91, got 0x%02X", got)
	}
	if got := p.Read(BGP); got != 0xFC {
		t.Errorf("Expected BGP=0xFC, got 0x%02X", got)
	}
}

func TestScanlineCycle(t *testing.T) {
	p, _ := newTestPPU()

	var modes []Mode
	last := p.Mode()
	modes = append(modes, last)

	for i := 0; i < DotsPerLine; i++ {
		p.Tick()
		if p.Mode() != last {
			last = p.Mode()
			modes = append(modes, last)
		}
	}

	if p.GetScanline() != 1 {
		t.Errorf("Expected LY=1 after 456 dots, got %d", p.GetScanline())
	}

	expected := []Mode{OAMScan, PixelTransfer, HBlank, OAMScan}
	if len(modes) != len(expected) {
		t.Fatalf("Expected mode sequence %v, got %v", expected, modes)
	}
	for i := range expected {
		if modes[i] != expected[i] {
			t.Errorf("Mode %d: expected %s, got %s", i, expected[i], modes[i])
		}
	}
}

func TestPixelTransferLength(t *testing.T) {
	p, _ := newTestPPU()

	tickN(p, OAMScanDots)
	if p.Mode() != PixelTransfer {
		t.Fatalf("Expected pixel transfer at dot 80, got %s", p.Mode())
	}

	transfer := 0
	for p.Mode() == PixelTransfer {
		p.Tick()
		transfer++
	}
	if transfer < 172 || OAMScanDots+transfer >= DotsPerLine {
		t.Errorf("Pixel transfer took %d dots", transfer)
	}
}

func TestVBlank(t *testing.T) {
	p, sink := newTestPPU()

	frames := 0
	p.SetFrameCompleteCallback(func() { frames++ })

	tickN(p, VisibleLines*DotsPerLine)

	if p.Mode() != VBlank {
		t.Fatalf("Expected v-blank at LY=144, got %s", p.Mode())
	}
	if p.GetScanline() != 144 {
		t.Errorf("Expected LY=144, got %d", p.GetScanline())
	}
	if sink.requests[interrupts.VBlank] != 1 {
		t.Errorf("Expected one VBLANK request, got %d", sink.requests[interrupts.VBlank])
	}
	if sink.requests[interrupts.LCDStat] != 0 {
		t.Errorf("STAT interrupts are disabled, got %d requests", sink.requests[interrupts.LCDStat])
	}
	if frames != 1 || p.GetFrameCount() != 1 {
		t.Errorf("Expected one completed frame, callback=%d count=%d", frames, p.GetFrameCount())
	}

	tickN(p, 10*DotsPerLine)
	if p.GetScanline() != 0 || p.Mode() != OAMScan {
		t.Errorf("Expected wrap to LY=0 OAM, got LY=%d %s", p.GetScanline(), p.Mode())
	}
}

func TestStatInterrupts(t *testing.T) {
	tests := []struct {
		name     string
		stat     uint8
		dots     int
		expected int
	}{
		{"hblank", statHBlankIRQ, DotsPerLine, 1},
		{"oam", statOAMIRQ, DotsPerLine, 1},
		{"vblank", statVBlankIRQ, VisibleLines * DotsPerLine, 1},
		{"disabled", 0, DotsPerLine, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, sink := newTestPPU()
			p.Write(LYC, 0xFF)
			p.Write(STAT, tt.stat)
			tickN(p, tt.dots)

			if got := sink.requests[interrupts.LCDStat]; got != tt.expected {
				t.Errorf("Expected %d STAT requests, got %d", tt.expected, got)
			}
		})
	}
}

func TestLYCCompare(t *testing.T) {
	p, sink := newTestPPU()
	p.Write(STAT, statLYCIRQ)
	p.Write(LYC, 3)

	tickN(p, 3*DotsPerLine)

	if p.Read(STAT)&statCoincidence == 0 {
		t.Error("Expected coincidence flag at LY=3")
	}
	if sink.requests[interrupts.LCDStat] != 1 {
		t.Errorf("Expected one STAT request, got %d", sink.requests[interrupts.LCDStat])
	}

	tickN(p, DotsPerLine)
	if p.Read(STAT)&statCoincidence != 0 {
		t.Error("Coincidence flag should clear at LY=4")
	}
}

func TestRegisterWrites(t *testing.T) {
	p, _ := newTestPPU()

	p.Write(STAT, 0xFF)
	if got := p.Read(STAT); got&0x78 != 0x78 || got&statModeMask != uint8(OAMScan) {
		t.Errorf("STAT write should set only bits 3-6, got 0x%02X", got)
	}

	tickN(p, 10)
	p.Write(LY, 0x50)
	if p.GetScanline() != 0 {
		t.Errorf("LY must be read-only, got %d", p.GetScanline())
	}

	for _, addr := range []uint16{SCY, SCX, WY, WX, OBP0, OBP1} {
		p.Write(addr, 0x5A)
		if got := p.Read(addr); got != 0x5A {
			t.Errorf("Register 0x%04X: expected 0x5A, got 0x%02X", addr, got)
		}
	}
}

func TestLCDDisable(t *testing.T) {
	p, _ := newTestPPU()
	tickN(p, 5*DotsPerLine+100)

	p.Write(LCDC, 0x11)
	if p.GetScanline() != 0 || p.GetDot() != 0 || p.Mode() != HBlank {
		t.Errorf("Disable should reset to LY=0 dot=0 HBLANK, got LY=%d dot=%d %s",
			p.GetScanline(), p.GetDot(), p.Mode())
	}
	if p.Read(STAT)&statModeMask != 0 {
		t.Error("STAT mode bits should read 0 while the display is off")
	}

	tickN(p, 1000)
	if p.GetScanline() != 0 || p.GetDot() != 0 {
		t.Error("State machine must not advance while the display is off")
	}

	p.Write(LCDC, 0x91)
	if p.Mode() != OAMScan {
		t.Errorf("Enable should start in OAM scan, got %s", p.Mode())
	}
}

func TestDMATransfer(t *testing.T) {
	p, _ := newTestPPU()
	bus := &MockBus{}
	for i := 0; i < OAMSize; i++ {
		bus.data[0xC000+i] = uint8(i*3 + 1)
	}
	p.SetBusReader(bus)

	p.Write(DMAAddress, 0xC0)
	if !p.DMAActive() {
		t.Fatal("DMA should be active after trigger")
	}
	if got := p.ReadOAM(0xFE00); got != 0xFF {
		t.Errorf("OAM reads must return 0xFF during DMA, got 0x%02X", got)
	}
	p.WriteOAM(0xFE00, 0x12)

	tickN(p, 162)

	if p.DMAActive() {
		t.Error("DMA should be finished after 162 ticks")
	}
	if got := p.ReadOAM(0xFE00); got != bus.data[0xC000] {
		t.Errorf("Expected OAM[0]=0x%02X, got 0x%02X", bus.data[0xC000], got)
	}
	if got := p.ReadOAM(0xFE9F); got != bus.data[0xC09F] {
		t.Errorf("Expected OAM[159]=0x%02X, got 0x%02X", bus.data[0xC09F], got)
	}
	if bus.reads != OAMSize {
		t.Errorf("Expected %d bus reads, got %d", OAMSize, bus.reads)
	}
	if got := p.Read(DMAAddress); got != 0xC0 {
		t.Errorf("Expected DMA register 0xC0, got 0x%02X", got)
	}
}

func TestDMAStartDelay(t *testing.T) {
	p, _ := newTestPPU()
	bus := &MockBus{}
	bus.data[0xC000] = 0x77
	p.SetBusReader(bus)

	p.StartDMA(0xC0)
	tickN(p, 2)
	if p.OAMByte(0) != 0 {
		t.Error("No byte should move during the start delay")
	}
	tickN(p, 1)
	if p.OAMByte(0) != 0x77 {
		t.Errorf("Expected first byte after delay, got 0x%02X", p.OAMByte(0))
	}
}

func TestDMAWhileDisplayOff(t *testing.T) {
	p, _ := newTestPPU()
	bus := &MockBus{}
	bus.data[0xC000] = 0x5A
	bus.data[0xC09F] = 0xA5
	p.SetBusReader(bus)

	p.Write(LCDC, 0x00)
	p.Write(DMAAddress, 0xC0)
	tickN(p, 162)

	if p.DMAActive() {
		t.Fatal("DMA should finish with the display off")
	}
	if p.OAMByte(0) != 0x5A || p.OAMByte(159) != 0xA5 {
		t.Errorf("Expected OAM 0x5A..0xA5, got 0x%02X..0x%02X", p.OAMByte(0), p.OAMByte(159))
	}
	if p.GetScanline() != 0 || p.GetDot() != 0 {
		t.Error("DMA must not advance the display state machine")
	}
}

func TestDecodePalette(t *testing.T) {
	tests := []struct {
		value    uint8
		expected Palette
	}{
		{0xE4, Palette{0, 1, 2, 3}},
		{0x1B, Palette{3, 2, 1, 0}},
		{0xFC, Palette{0, 3, 3, 3}},
		{0x00, Palette{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		got := DecodePalette(tt.value)
		if got != tt.expected {
			t.Errorf("DecodePalette(0x%02X): expected %v, got %v", tt.value, tt.expected, got)
		}
		if got.Encode() != tt.value {
			t.Errorf("Encode: expected 0x%02X, got 0x%02X", tt.value, got.Encode())
		}
	}

	if c := DecodePalette(0xE4).Color(3); c != ShadeBlack {
		t.Errorf("Expected black for index 3, got 0x%08X", c)
	}
}

func TestSpritePacking(t *testing.T) {
	raw := [SpriteBytes]uint8{0x50, 0x28, 0x07, 0xB3}
	s := UnpackSprite(raw)

	if s.Y != 0x50 || s.X != 0x28 || s.Tile != 0x07 {
		t.Errorf("Unexpected position/tile: %+v", s)
	}
	if !s.Priority || s.YFlip || !s.XFlip || s.Palette != 1 || s.Unused != 0x03 {
		t.Errorf("Unexpected attributes: %+v", s)
	}
	if s.Pack() != raw {
		t.Errorf("Pack: expected %v, got %v", raw, s.Pack())
	}

	p, _ := newTestPPU()
	p.SetSprite(39, s)
	if p.Sprite(39) != s {
		t.Errorf("OAM entry 39 did not round trip: %+v", p.Sprite(39))
	}
	if p.ReadOAM(0xFE00+39*4+3) != 0xB3 {
		t.Error("Attribute byte not stored at entry*4+3")
	}
}

// writeTile stores a tile whose every pixel has colour index color
func writeTile(p *PPU, base uint16, tile int, color uint8) {
	var lo, hi uint8
	if color&1 != 0 {
		lo = 0xFF
	}
	if color&2 != 0 {
		hi = 0xFF
	}
	for row := 0; row < 8; row++ {
		addr := base + uint16(tile*16+row*2)
		p.WriteVRAM(addr, lo)
		p.WriteVRAM(addr+1, hi)
	}
}

func pixelAt(p *PPU, x, y int) uint32 {
	fb := p.GetFrameBuffer()
	return fb[y*Width+x]
}

func TestRenderBackground(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(BGP, 0xE4)

	// Tile 1 solid colour 3, placed at map column 1 row 0
	writeTile(p, 0x8000, 1, 3)
	p.WriteVRAM(0x9801, 1)

	p.RunFrameForTesting()

	if got := pixelAt(p, 0, 0); got != ShadeWhite {
		t.Errorf("Pixel (0,0): expected white, got 0x%08X", got)
	}
	if got := pixelAt(p, 8, 0); got != ShadeBlack {
		t.Errorf("Pixel (8,0): expected black, got 0x%08X", got)
	}
	if got := pixelAt(p, 15, 7); got != ShadeBlack {
		t.Errorf("Pixel (15,7): expected black, got 0x%08X", got)
	}
	if got := pixelAt(p, 16, 0); got != ShadeWhite {
		t.Errorf("Pixel (16,0): expected white, got 0x%08X", got)
	}
	if got := pixelAt(p, 8, 8); got != ShadeWhite {
		t.Errorf("Pixel (8,8): expected white, got 0x%08X", got)
	}
}

func TestRenderFineScroll(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(BGP, 0xE4)
	writeTile(p, 0x8000, 1, 3)
	p.WriteVRAM(0x9801, 1)
	p.Write(SCX, 3)

	p.RunFrameForTesting()

	if got := pixelAt(p, 4, 0); got != ShadeWhite {
		t.Errorf("Pixel (4,0): expected white, got 0x%08X", got)
	}
	if got := pixelAt(p, 5, 0); got != ShadeBlack {
		t.Errorf("Pixel (5,0): expected black after scroll, got 0x%08X", got)
	}
	if got := pixelAt(p, 12, 0); got != ShadeBlack {
		t.Errorf("Pixel (12,0): expected black, got 0x%08X", got)
	}
	if got := pixelAt(p, 13, 0); got != ShadeWhite {
		t.Errorf("Pixel (13,0): expected white, got 0x%08X", got)
	}
}

func TestRenderSignedTileData(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(BGP, 0xE4)
	p.Write(LCDC, 0x81) // 0x9000 signed addressing

	// Tile -1 lives at 0x8FF0
	writeTile(p, 0x9000, -1, 2)
	p.WriteVRAM(0x9800, 0xFF)

	p.RunFrameForTesting()

	if got := pixelAt(p, 0, 0); got != ShadeDarkGray {
		t.Errorf("Pixel (0,0): expected dark gray, got 0x%08X", got)
	}
}

func TestRenderSprite(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(BGP, 0xE4)
	p.Write(OBP0, 0xE4)
	p.Write(OBP1, 0x00)
	p.Write(LCDC, 0x93) // sprites on

	writeTile(p, 0x8000, 2, 1)
	p.SetSprite(0, Sprite{Y: 16 + 10, X: 8 + 20, Tile: 2})
	p.SetSprite(1, Sprite{Y: 16 + 30, X: 8 + 40, Tile: 2, Palette: 1})

	p.RunFrameForTesting()

	if got := pixelAt(p, 20, 10); got != ShadeLightGray {
		t.Errorf("Sprite pixel (20,10): expected light gray, got 0x%08X", got)
	}
	if got := pixelAt(p, 27, 17); got != ShadeLightGray {
		t.Errorf("Sprite pixel (27,17): expected light gray, got 0x%08X", got)
	}
	if got := pixelAt(p, 28, 10); got != ShadeWhite {
		t.Errorf("Pixel (28,10) outside sprite: expected white, got 0x%08X", got)
	}
	if got := pixelAt(p, 40, 30); got != ShadeWhite {
		t.Errorf("OBP1 sprite pixel (40,30): expected white, got 0x%08X", got)
	}
}

func TestSpriteBehindBackground(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(BGP, 0xE4)
	p.Write(OBP0, 0xE4)
	p.Write(LCDC, 0x93)

	writeTile(p, 0x8000, 1, 2)
	writeTile(p, 0x8000, 2, 3)
	p.WriteVRAM(0x9800, 1) // tile column 0 is colour 2, the rest colour 0

	p.SetSprite(0, Sprite{Y: 16, X: 8 + 4, Tile: 2, Priority: true})

	p.RunFrameForTesting()

	if got := pixelAt(p, 4, 0); got != ShadeDarkGray {
		t.Errorf("Background colour 2 should cover the sprite, got 0x%08X", got)
	}
	if got := pixelAt(p, 8, 0); got != ShadeBlack {
		t.Errorf("Sprite should show over background colour 0, got 0x%08X", got)
	}
}

func TestRenderWindow(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(BGP, 0xE4)
	p.Write(LCDC, 0xF1) // window on, window map 0x9C00

	writeTile(p, 0x8000, 1, 3)
	for i := uint16(0); i < 32*32; i++ {
		p.WriteVRAM(0x9C00+i, 1)
	}
	p.Write(WY, 100)
	p.Write(WX, 7+80)

	p.RunFrameForTesting()

	if got := pixelAt(p, 79, 100); got != ShadeWhite {
		t.Errorf("Pixel left of window: expected white, got 0x%08X", got)
	}
	if got := pixelAt(p, 80, 100); got != ShadeBlack {
		t.Errorf("Pixel inside window: expected black, got 0x%08X", got)
	}
	if got := pixelAt(p, 80, 99); got != ShadeWhite {
		t.Errorf("Pixel above window: expected white, got 0x%08X", got)
	}
}

func TestFIFO(t *testing.T) {
	var f fifo[bgPixel]

	for i := 0; i < fifoCapacity; i++ {
		if !f.Push(bgPixel{color: uint8(i % 4)}) {
			t.Fatalf("Push %d failed", i)
		}
	}
	if f.Push(bgPixel{}) {
		t.Error("Push into a full FIFO should fail")
	}

	for i := 0; i < fifoCapacity; i++ {
		v, ok := f.Pop()
		if !ok || v.color != uint8(i%4) {
			t.Fatalf("Pop %d: got %v %t", i, v, ok)
		}
	}
	if _, ok := f.Pop(); ok {
		t.Error("Pop from an empty FIFO should fail")
	}
}

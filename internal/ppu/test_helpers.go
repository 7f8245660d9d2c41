package ppu

// Test helper methods for PPU testing

// SetFrameBufferForTesting replaces the presented frame
func (p *PPU) SetFrameBufferForTesting(frameBuffer [Width * Height]uint32) {
	p.frontMu.Lock()
	p.front = frameBuffer
	p.frontMu.Unlock()
}

// RunFrameForTesting ticks until the next v-blank entry
func (p *PPU) RunFrameForTesting() {
	start := p.frameCnt
	for i := 0; i < 2*DotsPerFrame && p.frameCnt == start; i++ {
		p.Tick()
	}
}

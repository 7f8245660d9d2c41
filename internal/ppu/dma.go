package ppu

// DMA register
const DMAAddress = 0xFF46

const (
	dmaStartDelay = 2
	dmaLength     = OAMSize
)

// BusReader is the address space OAM DMA copies from
type BusReader interface {
	Read(address uint16) uint8
}

// dma tracks an OAM transfer in progress
type dma struct {
	active bool
	delay  int
	page   uint8
	offset int
}

// SetBusReader sets the source for OAM DMA
func (p *PPU) SetBusReader(bus BusReader) {
	p.bus = bus
}

// StartDMA arms a transfer from page*0x100 into OAM. A new write restarts
// the transfer from the beginning.
func (p *PPU) StartDMA(page uint8) {
	p.dma = dma{active: true, delay: dmaStartDelay, page: page}
}

// stepDMA advances an active transfer by one controller tick. It runs even
// while the display is off.
func (p *PPU) stepDMA() {
	if !p.dma.active {
		return
	}
	if p.dma.delay > 0 {
		p.dma.delay--
		return
	}

	value := uint8(0xFF)
	if p.bus != nil {
		value = p.bus.Read(uint16(p.dma.page)<<8 | uint16(p.dma.offset))
	}
	p.oam[p.dma.offset] = value
	p.dma.offset++

	if p.dma.offset == dmaLength {
		p.dma.active = false
	}
}

// DMAActive reports whether an OAM transfer is in progress
func (p *PPU) DMAActive() bool {
	return p.dma.active
}

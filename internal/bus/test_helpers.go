package bus

import (
	"gogb/internal/cartridge"
	"gogb/internal/ppu"
)

// Test helper methods for bus testing

// SetFrameBufferForTesting sets a frame buffer for testing purposes
func (b *Bus) SetFrameBufferForTesting(frameBuffer [ppu.Width * ppu.Height]uint32) {
	b.PPU.SetFrameBufferForTesting(frameBuffer)
}

// NewWithProgramForTesting builds a ROM-only cartridge with program at the
// entry point and returns a system running it
func NewWithProgramForTesting(program []uint8) (*Bus, error) {
	cart, err := cartridge.NewTestROMBuilder().
		WithTitle("BUS TEST").
		WithInstructions(program).
		BuildCartridge()
	if err != nil {
		return nil, err
	}
	return New(cart), nil
}

// StepUntilHalted steps until the CPU halts or the cycle budget runs out
func (b *Bus) StepUntilHalted(maxCycles uint64) error {
	target := b.cpuCycles + maxCycles
	for !b.CPU.IsHalted() && b.cpuCycles < target {
		if _, err := b.Step(); err != nil {
			return err
		}
	}
	return nil
}

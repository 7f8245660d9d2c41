// Package bus implements the system driver that connects and clocks all components.
package bus

import (
	"log"

	"gogb/internal/cartridge"
	"gogb/internal/cpu"
	"gogb/internal/input"
	"gogb/internal/interrupts"
	"gogb/internal/memory"
	"gogb/internal/ppu"
	"gogb/internal/timer"
)

// Timing constants
const (
	DotsPerCycle   = 4
	CyclesPerFrame = ppu.DotsPerFrame / DotsPerCycle // 17556 machine cycles
	ClockRate      = 4194304                         // dots per second
)

// Bus connects all components together
type Bus struct {
	// Core components
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	Timer      *timer.Timer
	Interrupts *interrupts.Controller
	Joypad     *input.Joypad
	IO         *memory.IO
	Memory     *memory.Memory
	Cartridge  cartridge.Cartridge

	// System state
	cpuCycles  uint64
	dots       uint64
	frameCount uint64
	frameDone  bool

	frameCompleteCallback func()

	// Execution logging for testing
	executionLog   []BusExecutionEvent
	loggingEnabled bool

	// Memory monitoring for debugging
	memoryWatchpoints map[uint16]uint8 // Address -> previous value
	watchpointLogging bool
	logger            *log.Logger
}

// New creates a new system with cart inserted. cart may be nil, in which
// case the cartridge window reads 0xFF.
func New(cart cartridge.Cartridge) *Bus {
	b := &Bus{
		Interrupts:        interrupts.NewController(),
		Joypad:            input.New(),
		Cartridge:         cart,
		memoryWatchpoints: make(map[uint16]uint8),
		logger:            log.Default(),
	}

	b.Timer = timer.New(b.Interrupts)
	b.PPU = ppu.New(b.Interrupts)
	b.IO = memory.NewIO(b.Joypad, b.Timer, b.PPU, b.Interrupts)
	b.Memory = memory.New(cart, b.PPU, b.IO)
	b.CPU = cpu.New(b.Memory, b.Interrupts)

	// DMA reads through the full address map
	b.PPU.SetBusReader(b.Memory)
	b.PPU.SetFrameCompleteCallback(b.handleFrameComplete)

	b.Reset()
	return b
}

// Reset resets all components to their post-boot state
func (b *Bus) Reset() {
	b.Interrupts.Reset()
	b.Timer.Reset()
	b.PPU.Reset()
	b.Joypad.Reset()
	b.IO.Reset()
	b.Memory.Reset()
	b.CPU.Reset()

	b.cpuCycles = 0
	b.dots = 0
	b.frameCount = 0
	b.frameDone = false

	b.executionLog = make([]BusExecutionEvent, 0)
}

// LoadCartridge swaps the cartridge and resets the system
func (b *Bus) LoadCartridge(cart cartridge.Cartridge) {
	b.Cartridge = cart
	b.Memory.SetCartridge(cart)
	b.Reset()
}

// SetLogger replaces the logger used by the bus and the address map
func (b *Bus) SetLogger(logger *log.Logger) {
	b.logger = logger
	b.Memory.SetLogger(logger)
	b.IO.SetLogger(logger)
}

// SetFrameCompleteCallback sets the function called when the PPU finishes a frame
func (b *Bus) SetFrameCompleteCallback(callback func()) {
	b.frameCompleteCallback = callback
}

// handleFrameComplete is called by the PPU on v-blank entry
func (b *Bus) handleFrameComplete() {
	b.frameCount++
	b.frameDone = true

	if b.watchpointLogging {
		b.CheckMemoryWatchpoints()
	}
	if b.frameCompleteCallback != nil {
		b.frameCompleteCallback()
	}
}

// Step executes one CPU step and then advances the rest of the system by the
// machine cycles it consumed, four timer and PPU dots per cycle.
func (b *Bus) Step() (int, error) {
	prePC := b.CPU.PC
	preFrame := b.frameCount

	cycles, err := b.CPU.Step()

	for i := 0; i < cycles; i++ {
		for d := 0; d < DotsPerCycle; d++ {
			b.Timer.Tick()
			b.PPU.Tick()
		}
	}

	b.cpuCycles += uint64(cycles)
	b.dots += uint64(cycles * DotsPerCycle)

	if b.loggingEnabled {
		b.executionLog = append(b.executionLog, BusExecutionEvent{
			StepNumber:    len(b.executionLog) + 1,
			CPUCycles:     b.cpuCycles,
			Dots:          b.dots,
			FrameCount:    b.frameCount,
			DMAActive:     b.PPU.DMAActive(),
			FrameComplete: b.frameCount > preFrame,
			PCValue:       prePC,
			Err:           err,
		})
	}

	return cycles, err
}

// StepFrame runs until the PPU completes a frame. With the display off no
// frame ever completes, so one frame's worth of machine cycles is run instead.
func (b *Bus) StepFrame() error {
	b.frameDone = false
	var elapsed uint64

	for !b.frameDone {
		cycles, err := b.Step()
		if err != nil {
			return err
		}
		elapsed += uint64(cycles)

		if !b.PPU.IsDisplayEnabled() && elapsed >= CyclesPerFrame {
			b.frameCount++
			if b.frameCompleteCallback != nil {
				b.frameCompleteCallback()
			}
			break
		}
	}
	return nil
}

// Run runs the system for a number of frames
func (b *Bus) Run(frames int) error {
	for i := 0; i < frames; i++ {
		if err := b.StepFrame(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles runs the system for at least the given number of machine cycles
func (b *Bus) RunCycles(cycles uint64) error {
	target := b.cpuCycles + cycles
	for b.cpuCycles < target {
		if _, err := b.Step(); err != nil {
			return err
		}
	}
	return nil
}

// GetFrameRate returns the native frame rate
func (b *Bus) GetFrameRate() float64 {
	return float64(ClockRate) / float64(ppu.DotsPerFrame)
}

// GetFrameBuffer returns the last completed frame
func (b *Bus) GetFrameBuffer() []uint32 {
	frameBuffer := b.PPU.GetFrameBuffer()
	return frameBuffer[:]
}

// GetCycleCount returns the machine cycles executed since reset
func (b *Bus) GetCycleCount() uint64 {
	return b.cpuCycles
}

// GetDotCount returns the dots clocked since reset
func (b *Bus) GetDotCount() uint64 {
	return b.dots
}

// GetFrameCount returns the number of frames completed since reset
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// IsDMAInProgress returns whether an OAM DMA transfer is running
func (b *Bus) IsDMAInProgress() bool {
	return b.PPU.DMAActive()
}

// SerialOutput returns every byte the program has sent over the serial port
func (b *Bus) SerialOutput() []byte {
	return b.IO.SerialOutput()
}

// SetControllerButton sets the state of one joypad button
func (b *Bus) SetControllerButton(button input.Button, pressed bool) {
	b.Joypad.SetButton(button, pressed)
}

// SetControllerButtons sets all button states at once
func (b *Bus) SetControllerButtons(buttons [8]bool) {
	b.Joypad.SetButtons(buttons)
}

// EnableInputDebug enables debug logging for the joypad
func (b *Bus) EnableInputDebug(enable bool) {
	b.Joypad.EnableDebug(enable)
}

// SetTracer installs an instruction tracer on the CPU
func (b *Bus) SetTracer(tracer cpu.Tracer) {
	b.CPU.SetTracer(tracer)
}

// GetExecutionLog returns execution log for integration testing
func (b *Bus) GetExecutionLog() []BusExecutionEvent {
	return b.executionLog
}

// EnableExecutionLogging enables execution logging for testing
func (b *Bus) EnableExecutionLogging() {
	b.loggingEnabled = true
}

// BusExecutionEvent represents a single execution step for testing
type BusExecutionEvent struct {
	StepNumber    int
	CPUCycles     uint64
	Dots          uint64
	FrameCount    uint64
	DMAActive     bool
	FrameComplete bool
	PCValue       uint16
	Err           error
}

// GetCPUState returns the current CPU state
func (b *Bus) GetCPUState() cpu.State {
	return b.CPU.GetState()
}

// GetPPUState returns the current PPU state
func (b *Bus) GetPPUState() PPUState {
	return PPUState{
		Scanline:       b.PPU.GetScanline(),
		Dot:            b.PPU.GetDot(),
		Mode:           b.PPU.Mode(),
		FrameCount:     b.frameCount,
		DisplayEnabled: b.PPU.IsDisplayEnabled(),
		DMAActive:      b.PPU.DMAActive(),
	}
}

// PPUState represents a PPU state snapshot
type PPUState struct {
	Scanline       int
	Dot            int
	Mode           ppu.Mode
	FrameCount     uint64
	DisplayEnabled bool
	DMAActive      bool
}

// AddMemoryWatchpoint adds a memory address to monitor for changes
func (b *Bus) AddMemoryWatchpoint(address uint16) {
	b.memoryWatchpoints[address] = b.Memory.Read(address)
}

// EnableWatchpointLogging enables/disables memory watchpoint logging
func (b *Bus) EnableWatchpointLogging(enabled bool) {
	b.watchpointLogging = enabled
}

// CheckMemoryWatchpoints checks all watchpoints for changes and logs them
func (b *Bus) CheckMemoryWatchpoints() {
	for address, previousValue := range b.memoryWatchpoints {
		currentValue := b.Memory.Read(address)
		if currentValue != previousValue {
			b.logger.Printf("[MEMORY_WATCH] Frame %d: $%04X changed from $%02X to $%02X (%s)",
				b.frameCount, address, previousValue, currentValue, describeAddress(address))
			b.memoryWatchpoints[address] = currentValue
		}
	}
}

// describeAddress names the region an address belongs to
func describeAddress(address uint16) string {
	switch {
	case address < 0x4000:
		return "ROM bank 0"
	case address < 0x8000:
		return "ROM bank N"
	case address < 0xA000:
		return "VRAM"
	case address < 0xC000:
		return "cartridge RAM"
	case address < 0xE000:
		return "WRAM"
	case address < 0xFE00:
		return "echo RAM"
	case address < 0xFEA0:
		return "OAM"
	case address < 0xFF00:
		return "unused"
	case address < 0xFF80:
		return "I/O"
	case address < 0xFFFF:
		return "HRAM"
	}
	return "IE"
}

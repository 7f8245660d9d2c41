package cpu

import (
	"errors"
	"testing"

	"gogb/internal/interrupts"
)

// MockMemory implements MemoryInterface for testing
type MockMemory struct {
	data       [0x10000]uint8 // 64KB address space
	readCount  map[uint16]int
	writeCount map[uint16]int
}

// NewMockMemory creates a new mock memory instance
func NewMockMemory() *MockMemory {
	return &MockMemory{
		readCount:  make(map[uint16]int),
		writeCount: make(map[uint16]int),
	}
}

// Read implements the MemoryInterface Read method
func (m *MockMemory) Read(address uint16) uint8 {
	m.readCount[address]++
	return m.data[address]
}

// Write implements the MemoryInterface Write method
func (m *MockMemory) Write(address uint16, value uint8) {
	m.writeCount[address]++
	m.data[address] = value
}

// SetByte sets a byte at the given address
func (m *MockMemory) SetByte(address uint16, value uint8) {
	m.data[address] = value
}

// SetBytes sets multiple bytes starting at the given address
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// GetReadCount returns the number of times an address was read
func (m *MockMemory) GetReadCount(address uint16) int {
	return m.readCount[address]
}

// GetWriteCount returns the number of times an address was written
func (m *MockMemory) GetWriteCount(address uint16) int {
	return m.writeCount[address]
}

// ClearCounts resets all read/write counts
func (m *MockMemory) ClearCounts() {
	m.readCount = make(map[uint16]int)
	m.writeCount = make(map[uint16]int)
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU        *CPU
	Memory     *MockMemory
	Interrupts *interrupts.Controller
}

// NewCPUTestHelper creates a new test helper with the CPU in the post-boot state
func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	irq := interrupts.NewController()
	return &CPUTestHelper{
		CPU:        New(memory, irq),
		Memory:     memory,
		Interrupts: irq,
	}
}

// LoadProgram loads a program starting at the given address and points PC at it
func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
	h.CPU.PC = address
}

// Run executes n instructions and returns the machine cycles consumed
func (h *CPUTestHelper) Run(t *testing.T, n int) int {
	t.Helper()

	total := 0
	for i := 0; i < n; i++ {
		cycles, err := h.CPU.Step()
		if err != nil {
			t.Fatalf("Step %d at PC=0x%04X: %v", i, h.CPU.PC, err)
		}
		total += cycles
	}
	return total
}

// AssertRegisters checks the 8-bit registers against expected values
func (h *CPUTestHelper) AssertRegisters(t *testing.T, testName string, a, b, c, d, e, hi, l uint8) {
	t.Helper()

	regs := []struct {
		name     string
		actual   uint8
		expected uint8
	}{
		{"A", h.CPU.A, a},
		{"B", h.CPU.B, b},
		{"C", h.CPU.C, c},
		{"D", h.CPU.D, d},
		{"E", h.CPU.E, e},
		{"H", h.CPU.H, hi},
		{"L", h.CPU.L, l},
	}

	for _, r := range regs {
		if r.actual != r.expected {
			t.Errorf("%s: Expected %s=0x%02X, got 0x%02X", testName, r.name, r.expected, r.actual)
		}
	}
}

// AssertFlags checks the four flags
func (h *CPUTestHelper) AssertFlags(t *testing.T, testName string, z, n, hc, c bool) {
	t.Helper()

	flags := []struct {
		name     string
		actual   bool
		expected bool
	}{
		{"Z", h.CPU.flag(flagZ), z},
		{"N", h.CPU.flag(flagN), n},
		{"H", h.CPU.flag(flagH), hc},
		{"C", h.CPU.flag(flagC), c},
	}

	for _, f := range flags {
		if f.actual != f.expected {
			t.Errorf("%s: Expected %s flag=%v, got %v (F=0x%02X)", testName, f.name, f.expected, f.actual, h.CPU.F)
		}
	}
}

// AssertMemory checks a memory location
func (h *CPUTestHelper) AssertMemory(t *testing.T, testName string, address uint16, expected uint8) {
	t.Helper()

	if actual := h.Memory.data[address]; actual != expected {
		t.Errorf("%s: Expected memory[0x%04X]=0x%02X, got 0x%02X", testName, address, expected, actual)
	}
}

func TestCPUCreation(t *testing.T) {
	helper := NewCPUTestHelper()
	cpu := helper.CPU

	helper.AssertRegisters(t, "Post-boot", 0x01, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D)
	if cpu.F != 0xB0 {
		t.Errorf("Expected F=0xB0, got 0x%02X", cpu.F)
	}
	if cpu.SP != 0xFFFE {
		t.Errorf("Expected SP=0xFFFE, got 0x%04X", cpu.SP)
	}
	if cpu.PC != 0x0100 {
		t.Errorf("Expected PC=0x0100, got 0x%04X", cpu.PC)
	}
	if cpu.InterruptsEnabled() || cpu.IsHalted() {
		t.Error("Expected IME clear and not halted after reset")
	}
	if cpu.GetCycles() != 0 {
		t.Errorf("Expected 0 cycles after reset, got %d", cpu.GetCycles())
	}
}

func TestReset(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.A = 0x55
	helper.CPU.PC = 0x1234
	helper.CPU.ime = true
	helper.CPU.halted = true

	helper.CPU.Reset()

	state := helper.CPU.GetState()
	if state.A != 0x01 || state.PC != 0x0100 || state.IME || state.Halted {
		t.Errorf("Reset did not restore the post-boot state: %+v", state)
	}
}

func TestEndToEndProgram(t *testing.T) {
	helper := NewCPUTestHelper()
	// LD BC,$1234; INC B; HALT
	helper.LoadProgram(0x0100, 0x01, 0x34, 0x12, 0x04, 0x76)

	cycles := helper.Run(t, 3)

	if cycles != 5 {
		t.Errorf("Expected 5 machine cycles, got %d", cycles)
	}
	if helper.CPU.B != 0x13 || helper.CPU.C != 0x34 {
		t.Errorf("Expected BC=0x1334, got 0x%02X%02X", helper.CPU.B, helper.CPU.C)
	}
	if !helper.CPU.IsHalted() {
		t.Error("Expected CPU halted")
	}
	if helper.CPU.PC != 0x0105 {
		t.Errorf("Expected PC=0x0105, got 0x%04X", helper.CPU.PC)
	}
	if helper.CPU.GetCycles() != 5 {
		t.Errorf("Expected total cycles 5, got %d", helper.CPU.GetCycles())
	}
}

func TestUndefinedOpcode(t *testing.T) {
	undefined := []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

	for _, opcode := range undefined {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x0200, opcode)

		_, err := helper.CPU.Step()
		if !errors.Is(err, ErrUndefinedOpcode) {
			t.Fatalf("Opcode 0x%02X: expected ErrUndefinedOpcode, got %v", opcode, err)
		}

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("Opcode 0x%02X: expected *DecodeError, got %T", opcode, err)
		}
		if decodeErr.Opcode != opcode || decodeErr.PC != 0x0200 {
			t.Errorf("DecodeError = %+v, want opcode 0x%02X at 0x0200", decodeErr, opcode)
		}
	}
}

func TestStop(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x0100, 0x10, 0x00)

	_, err := helper.CPU.Step()
	if !errors.Is(err, ErrStop) {
		t.Fatalf("Expected ErrStop, got %v", err)
	}
	if helper.CPU.PC != 0x0102 {
		t.Errorf("Expected STOP to consume its padding byte, PC=0x%04X", helper.CPU.PC)
	}
}

func TestHandlersComplete(t *testing.T) {
	for kind := Kind(0); kind < kindCount; kind++ {
		if handlers[kind] == nil {
			t.Errorf("No handler for %s", kind)
		}
	}
}

type recordingTracer struct {
	states []State
}

func (r *recordingTracer) Trace(state State) {
	r.states = append(r.states, state)
}

func TestTracer(t *testing.T) {
	helper := NewCPUTestHelper()
	tracer := &recordingTracer{}
	helper.CPU.SetTracer(tracer)
	helper.LoadProgram(0x0100, 0x00, 0x3C) // NOP; INC A

	helper.Run(t, 2)

	if len(tracer.states) != 2 {
		t.Fatalf("Expected 2 traced states, got %d", len(tracer.states))
	}
	if tracer.states[0].PC != 0x0100 || tracer.states[1].PC != 0x0101 {
		t.Errorf("Traced PCs %04X, %04X", tracer.states[0].PC, tracer.states[1].PC)
	}
	if tracer.states[1].Cycles != 1 {
		t.Errorf("Expected cycle count 1 before the second instruction, got %d", tracer.states[1].Cycles)
	}

	helper.CPU.SetTracer(nil)
	helper.LoadProgram(0x0100, 0x00)
	helper.Run(t, 1)
	if len(tracer.states) != 2 {
		t.Error("Tracer should not be called after removal")
	}
}

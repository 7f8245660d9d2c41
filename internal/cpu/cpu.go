// Package cpu implements the processor: register file, table-driven decode,
// instruction handlers, interrupt servicing and a disassembler.
package cpu

import (
	"gogb/internal/interrupts"
)

// Flag bits in F
const (
	flagZ = 0x80
	flagN = 0x40
	flagH = 0x20
	flagC = 0x10
)

// Reader is anything the disassembler can read instruction bytes from
type Reader interface {
	Read(address uint16) uint8
}

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Reader
	Write(address uint16, value uint8)
}

// InterruptController is the view of IF/IE the processor needs
type InterruptController interface {
	Requested() bool
	Highest() (interrupts.Kind, bool)
	Acknowledge(kind interrupts.Kind)
}

// Tracer receives the processor state before each instruction is fetched
type Tracer interface {
	Trace(state State)
}

// State is a snapshot of the register file
type State struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME                    bool
	Halted                 bool
	Cycles                 uint64
}

// CPU represents the processor
type CPU struct {
	// Registers
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16

	ime        bool // interrupt master enable
	imePending bool // set by EI, applied after the next instruction
	halted     bool

	memory MemoryInterface
	irq    InterruptController
	tracer Tracer

	// Machine cycles consumed by the current Step
	stepCycles int
	// Total machine cycles since reset
	cycles uint64
}

// context is the per-instruction decode result
type context struct {
	pc     uint16 // address of the opcode
	opcode uint8
	inst   Instruction
	value  uint16 // resolved source operand
}

// New creates a new CPU instance in the post-boot state
func New(memory MemoryInterface, irq InterruptController) *CPU {
	cpu := &CPU{
		memory: memory,
		irq:    irq,
	}
	cpu.Reset()
	return cpu
}

// Reset loads the register values left behind by the boot ROM
func (cpu *CPU) Reset() {
	cpu.A, cpu.F = 0x01, 0xB0
	cpu.B, cpu.C = 0x00, 0x13
	cpu.D, cpu.E = 0x00, 0xD8
	cpu.H, cpu.L = 0x01, 0x4D
	cpu.SP = 0xFFFE
	cpu.PC = 0x0100

	cpu.ime = false
	cpu.imePending = false
	cpu.halted = false
	cpu.cycles = 0
}

// SetTracer installs a tracer; nil disables tracing
func (cpu *CPU) SetTracer(tracer Tracer) {
	cpu.tracer = tracer
}

// Step executes one instruction (or one halted cycle), services a pending
// interrupt when enabled and returns the machine cycles consumed.
func (cpu *CPU) Step() (int, error) {
	cpu.stepCycles = 0

	if cpu.halted {
		cpu.tick()
		if cpu.irq.Requested() {
			cpu.halted = false
		}
	} else {
		if cpu.tracer != nil {
			cpu.tracer.Trace(cpu.GetState())
		}

		ctx, err := cpu.decode()
		if err == nil {
			err = handlers[ctx.inst.Kind](cpu, &ctx)
		}
		if err != nil {
			cpu.cycles += uint64(cpu.stepCycles)
			return cpu.stepCycles, err
		}
	}

	if cpu.ime {
		cpu.serviceInterrupt()
	}
	if cpu.imePending {
		cpu.ime = true
		cpu.imePending = false
	}

	cpu.cycles += uint64(cpu.stepCycles)
	return cpu.stepCycles, nil
}

// decode fetches the opcode and resolves the source operand
func (cpu *CPU) decode() (context, error) {
	ctx := context{pc: cpu.PC}
	ctx.opcode = cpu.fetch8()
	ctx.inst = Primary[ctx.opcode]

	if ctx.inst.Kind == None {
		return ctx, &DecodeError{Opcode: ctx.opcode, PC: ctx.pc}
	}

	ctx.value = cpu.resolveSource(ctx.inst.Src)
	return ctx, nil
}

// resolveSource reads the value of a source operand. Immediates and memory
// reads cost one cycle per byte.
func (cpu *CPU) resolveSource(src Operand) uint16 {
	switch src {
	case OperandNone:
		return 0
	case Imm8, SignedImm8, SPPlusImm8:
		return uint16(cpu.fetch8())
	case Imm16:
		return cpu.fetch16()
	case RegAF, RegBC, RegDE, RegHL, RegSP:
		return cpu.reg16(src)
	default:
		return uint16(cpu.readOperand(src))
	}
}

// serviceInterrupt dispatches the highest priority pending interrupt
func (cpu *CPU) serviceInterrupt() {
	kind, ok := cpu.irq.Highest()
	if !ok {
		return
	}

	cpu.tick()
	cpu.tick()
	cpu.push(cpu.PC)
	cpu.tick()

	cpu.irq.Acknowledge(kind)
	cpu.PC = kind.Vector()
	cpu.ime = false
	cpu.imePending = false
	cpu.halted = false
}

// tick accounts one internal machine cycle
func (cpu *CPU) tick() {
	cpu.stepCycles++
}

func (cpu *CPU) read(address uint16) uint8 {
	cpu.tick()
	return cpu.memory.Read(address)
}

func (cpu *CPU) write(address uint16, value uint8) {
	cpu.tick()
	cpu.memory.Write(address, value)
}

func (cpu *CPU) fetch8() uint8 {
	value := cpu.read(cpu.PC)
	cpu.PC++
	return value
}

func (cpu *CPU) fetch16() uint16 {
	low := uint16(cpu.fetch8())
	high := uint16(cpu.fetch8())
	return high<<8 | low
}

func (cpu *CPU) push(value uint16) {
	cpu.SP--
	cpu.write(cpu.SP, uint8(value>>8))
	cpu.SP--
	cpu.write(cpu.SP, uint8(value))
}

func (cpu *CPU) pop() uint16 {
	low := uint16(cpu.read(cpu.SP))
	cpu.SP++
	high := uint16(cpu.read(cpu.SP))
	cpu.SP++
	return high<<8 | low
}

// address resolves a memory operand, consuming any immediate bytes
func (cpu *CPU) address(op Operand) uint16 {
	switch op {
	case MemBC:
		return cpu.reg16(RegBC)
	case MemDE:
		return cpu.reg16(RegDE)
	case MemHL:
		return cpu.reg16(RegHL)
	case MemHLInc:
		hl := cpu.reg16(RegHL)
		cpu.setReg16(RegHL, hl+1)
		return hl
	case MemHLDec:
		hl := cpu.reg16(RegHL)
		cpu.setReg16(RegHL, hl-1)
		return hl
	case HighC:
		return 0xFF00 | uint16(cpu.C)
	case HighImm8:
		return 0xFF00 | uint16(cpu.fetch8())
	case AbsImm16:
		return cpu.fetch16()
	}
	panic("cpu: operand " + op.String() + " is not a memory operand")
}

// readOperand reads an 8-bit register or memory operand
func (cpu *CPU) readOperand(op Operand) uint8 {
	switch op {
	case RegA:
		return cpu.A
	case RegB:
		return cpu.B
	case RegC:
		return cpu.C
	case RegD:
		return cpu.D
	case RegE:
		return cpu.E
	case RegH:
		return cpu.H
	case RegL:
		return cpu.L
	}
	return cpu.read(cpu.address(op))
}

// writeOperand writes an 8-bit register or memory operand
func (cpu *CPU) writeOperand(op Operand, value uint8) {
	switch op {
	case RegA:
		cpu.A = value
	case RegB:
		cpu.B = value
	case RegC:
		cpu.C = value
	case RegD:
		cpu.D = value
	case RegE:
		cpu.E = value
	case RegH:
		cpu.H = value
	case RegL:
		cpu.L = value
	default:
		cpu.write(cpu.address(op), value)
	}
}

func (cpu *CPU) reg16(op Operand) uint16 {
	switch op {
	case RegAF:
		return uint16(cpu.A)<<8 | uint16(cpu.F)
	case RegBC:
		return uint16(cpu.B)<<8 | uint16(cpu.C)
	case RegDE:
		return uint16(cpu.D)<<8 | uint16(cpu.E)
	case RegHL:
		return uint16(cpu.H)<<8 | uint16(cpu.L)
	case RegSP:
		return cpu.SP
	}
	panic("cpu: operand " + op.String() + " is not a register pair")
}

func (cpu *CPU) setReg16(op Operand, value uint16) {
	high, low := uint8(value>>8), uint8(value)
	switch op {
	case RegAF:
		cpu.A, cpu.F = high, low&0xF0
	case RegBC:
		cpu.B, cpu.C = high, low
	case RegDE:
		cpu.D, cpu.E = high, low
	case RegHL:
		cpu.H, cpu.L = high, low
	case RegSP:
		cpu.SP = value
	}
}

// setFlags replaces all four flags
func (cpu *CPU) setFlags(z, n, h, c bool) {
	var f uint8
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if c {
		f |= flagC
	}
	cpu.F = f
}

func (cpu *CPU) flag(mask uint8) bool {
	return cpu.F&mask != 0
}

// condition evaluates a branch condition against the flags
func (cpu *CPU) condition(cond Condition) bool {
	switch cond {
	case CondNZ:
		return !cpu.flag(flagZ)
	case CondZ:
		return cpu.flag(flagZ)
	case CondNC:
		return !cpu.flag(flagC)
	case CondC:
		return cpu.flag(flagC)
	}
	return true
}

// GetState returns a snapshot of the register file
func (cpu *CPU) GetState() State {
	return State{
		A: cpu.A, F: cpu.F, B: cpu.B, C: cpu.C,
		D: cpu.D, E: cpu.E, H: cpu.H, L: cpu.L,
		SP: cpu.SP, PC: cpu.PC,
		IME:    cpu.ime,
		Halted: cpu.halted,
		Cycles: cpu.cycles,
	}
}

// GetCycles returns the total machine cycles executed since reset
func (cpu *CPU) GetCycles() uint64 {
	return cpu.cycles
}

// IsHalted reports whether the processor is waiting for an interrupt
func (cpu *CPU) IsHalted() bool {
	return cpu.halted
}

// InterruptsEnabled reports the interrupt master enable flag
func (cpu *CPU) InterruptsEnabled() bool {
	return cpu.ime
}

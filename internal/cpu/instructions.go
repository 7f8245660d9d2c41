package cpu

import "fmt"

// Kind is the architectural operation an opcode performs
type Kind uint8

const (
	None Kind = iota // undefined opcode
	NOP
	LD
	INC
	DEC
	RLCA
	RRCA
	RLA
	RRA
	DAA
	CPL
	SCF
	CCF
	ADD
	ADC
	SUB
	SBC
	AND
	XOR
	OR
	CP
	JP
	JR
	CALL
	RET
	RETI
	RST
	PUSH
	POP
	HALT
	STOP
	DI
	EI
	CB
	RLC
	RRC
	RL
	RR
	SLA
	SRA
	SWAP
	SRL
	BIT
	RES
	SET

	kindCount
)

var kindNames = [kindCount]string{
	None: "-", NOP: "NOP", LD: "LD", INC: "INC", DEC: "DEC",
	RLCA: "RLCA", RRCA: "RRCA", RLA: "RLA", RRA: "RRA", DAA: "DAA", CPL: "CPL", SCF: "SCF", CCF: "CCF",
	ADD: "ADD", ADC: "ADC", SUB: "SUB", SBC: "SBC", AND: "AND", XOR: "XOR", OR: "OR", CP: "CP",
	JP: "JP", JR: "JR", CALL: "CALL", RET: "RET", RETI: "RETI", RST: "RST", PUSH: "PUSH", POP: "POP",
	HALT: "HALT", STOP: "STOP", DI: "DI", EI: "EI", CB: "PREFIX CB",
	RLC: "RLC", RRC: "RRC", RL: "RL", RR: "RR", SLA: "SLA", SRA: "SRA", SWAP: "SWAP", SRL: "SRL",
	BIT: "BIT", RES: "RES", SET: "SET",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Operand is where an instruction reads or writes its value
type Operand uint8

const (
	OperandNone Operand = iota
	RegA
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegAF
	RegBC
	RegDE
	RegHL
	RegSP
	Imm8       // d8
	Imm16      // d16 or a16 jump target
	SignedImm8 // r8
	HighImm8   // memory at 0xFF00+a8
	AbsImm16   // memory at a16
	MemBC
	MemDE
	MemHL
	MemHLInc
	MemHLDec
	HighC      // memory at 0xFF00+C
	SPPlusImm8 // SP+r8

	operandCount
)

var operandNames = [operandCount]string{
	OperandNone: "", RegA: "A", RegB: "B", RegC: "C", RegD: "D", RegE: "E", RegH: "H", RegL: "L",
	RegAF: "AF", RegBC: "BC", RegDE: "DE", RegHL: "HL", RegSP: "SP",
	Imm8: "d8", Imm16: "d16", SignedImm8: "r8", HighImm8: "(a8)", AbsImm16: "(a16)",
	MemBC: "(BC)", MemDE: "(DE)", MemHL: "(HL)", MemHLInc: "(HL+)", MemHLDec: "(HL-)",
	HighC: "(C)", SPPlusImm8: "SP+r8",
}

func (o Operand) String() string {
	if o < operandCount {
		return operandNames[o]
	}
	return fmt.Sprintf("Operand(%d)", uint8(o))
}

// is16 reports whether the operand is a register pair
func (o Operand) is16() bool {
	return o >= RegAF && o <= RegSP
}

// immediateBytes is the number of operand bytes following the opcode
func (o Operand) immediateBytes() int {
	switch o {
	case Imm8, SignedImm8, HighImm8, SPPlusImm8:
		return 1
	case Imm16, AbsImm16:
		return 2
	}
	return 0
}

// Condition gates conditional jumps, calls and returns
type Condition uint8

const (
	Always Condition = iota
	CondNZ
	CondZ
	CondNC
	CondC
)

func (c Condition) String() string {
	switch c {
	case CondNZ:
		return "NZ"
	case CondZ:
		return "Z"
	case CondNC:
		return "NC"
	case CondC:
		return "C"
	}
	return ""
}

// Instruction is one decode table entry
type Instruction struct {
	Kind  Kind
	Dest  Operand
	Src   Operand
	Cond  Condition
	Param uint8 // RST vector or bit index
}

// Length is the encoded size of the instruction in bytes
func (i Instruction) Length() int {
	if i.Kind == CB || i.Kind == STOP {
		return 2
	}
	return 1 + i.Dest.immediateBytes() + i.Src.immediateBytes()
}

// String renders the instruction in the conventional opcode-map notation,
// e.g. "LD BC,d16", "JR NZ,r8", "LDH (a8),A", "BIT 7,(HL)".
func (i Instruction) String() string {
	name := i.Kind.String()
	var args []string

	switch i.Kind {
	case None, NOP, RLCA, RRCA, RLA, RRA, DAA, CPL, SCF, CCF, RETI, HALT, STOP, DI, EI, CB:
		return name
	case RST:
		return fmt.Sprintf("RST $%02X", i.Param)
	case BIT, RES, SET:
		return fmt.Sprintf("%s %d,%s", name, i.Param, i.Dest)
	case SUB, AND, XOR, OR, CP:
		args = append(args, i.Src.String())
	case JP, JR, CALL:
		src := i.Src.String()
		if i.Kind != JR && i.Src == Imm16 {
			src = "a16"
		}
		if i.Cond != Always {
			args = append(args, i.Cond.String())
		}
		args = append(args, src)
	case RET:
		if i.Cond != Always {
			args = append(args, i.Cond.String())
		}
	case PUSH:
		args = append(args, i.Src.String())
	case LD:
		if i.Dest == HighImm8 || i.Src == HighImm8 {
			name = "LDH"
		}
		args = append(args, i.Dest.String(), i.Src.String())
	case ADD, ADC, SBC:
		args = append(args, i.Dest.String(), i.Src.String())
	default:
		args = append(args, i.Dest.String())
	}

	out := name
	for n, arg := range args {
		if n == 0 {
			out += " " + arg
		} else {
			out += "," + arg
		}
	}
	return out
}

// Extended is the decode table for opcodes following the 0xCB prefix
var Extended = buildExtended()

// extendedTargets maps the low three opcode bits to the operand
var extendedTargets = [8]Operand{RegB, RegC, RegD, RegE, RegH, RegL, MemHL, RegA}

// buildExtended derives the extended table from the opcode fields:
// bits 7-6 select the class, bits 5-3 the operation or bit index and
// bits 2-0 the target.
func buildExtended() [256]Instruction {
	shifts := [8]Kind{RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL}
	bitOps := [4]Kind{None, BIT, RES, SET}

	var table [256]Instruction
	for op := 0; op < 256; op++ {
		class := op >> 6
		y := uint8(op>>3) & 0x07
		target := extendedTargets[op&0x07]

		if class == 0 {
			table[op] = Instruction{Kind: shifts[y], Dest: target}
		} else {
			table[op] = Instruction{Kind: bitOps[class], Dest: target, Param: y}
		}
	}
	return table
}

// Lookup returns the primary table entry for opcode
func Lookup(opcode uint8) Instruction {
	return Primary[opcode]
}

// LookupExtended returns the extended table entry for a 0xCB-prefixed opcode
func LookupExtended(opcode uint8) Instruction {
	return Extended[opcode]
}

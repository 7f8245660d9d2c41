package cpu

// handler executes one decoded instruction. The opcode and source operand
// have already been fetched; handlers account any further cycles.
type handler func(cpu *CPU, ctx *context) error

var handlers [kindCount]handler

// The table refers to execCB, which dispatches back through the table, so it
// is filled at init time.
func init() {
	handlers = [kindCount]handler{
		None: execUndefined,
		NOP:  execNOP,
		LD:   execLD,
		INC:  execINC,
		DEC:  execDEC,
		RLCA: execRLCA,
		RRCA: execRRCA,
		RLA:  execRLA,
		RRA:  execRRA,
		DAA:  execDAA,
		CPL:  execCPL,
		SCF:  execSCF,
		CCF:  execCCF,
		ADD:  execADD,
		ADC:  execADC,
		SUB:  execSUB,
		SBC:  execSBC,
		AND:  execAND,
		XOR:  execXOR,
		OR:   execOR,
		CP:   execCP,
		JP:   execJP,
		JR:   execJR,
		CALL: execCALL,
		RET:  execRET,
		RETI: execRETI,
		RST:  execRST,
		PUSH: execPUSH,
		POP:  execPOP,
		HALT: execHALT,
		STOP: execSTOP,
		DI:   execDI,
		EI:   execEI,
		CB:   execCB,
		RLC:  shiftHandler((*CPU).rlc),
		RRC:  shiftHandler((*CPU).rrc),
		RL:   shiftHandler((*CPU).rl),
		RR:   shiftHandler((*CPU).rr),
		SLA:  shiftHandler((*CPU).sla),
		SRA:  shiftHandler((*CPU).sra),
		SWAP: shiftHandler((*CPU).swap),
		SRL:  shiftHandler((*CPU).srl),
		BIT:  execBIT,
		RES:  execRES,
		SET:  execSET,
	}
}

func isRegister8(op Operand) bool {
	return op >= RegA && op <= RegL
}

// modify applies fn to an 8-bit operand, resolving a memory address once
func (cpu *CPU) modify(op Operand, fn func(uint8) uint8) {
	if isRegister8(op) {
		cpu.writeOperand(op, fn(cpu.readOperand(op)))
		return
	}
	address := cpu.address(op)
	cpu.write(address, fn(cpu.read(address)))
}

func execUndefined(cpu *CPU, ctx *context) error {
	return &DecodeError{Opcode: ctx.opcode, PC: ctx.pc}
}

func execNOP(cpu *CPU, ctx *context) error {
	return nil
}

func execLD(cpu *CPU, ctx *context) error {
	inst := ctx.inst
	switch {
	case inst.Src == SPPlusImm8:
		cpu.setReg16(RegHL, cpu.addSPSigned(uint8(ctx.value)))
		cpu.tick()
	case inst.Dest == AbsImm16 && inst.Src == RegSP:
		address := cpu.fetch16()
		cpu.write(address, uint8(cpu.SP))
		cpu.write(address+1, uint8(cpu.SP>>8))
	case inst.Dest.is16():
		if inst.Src == RegHL {
			cpu.tick()
		}
		cpu.setReg16(inst.Dest, ctx.value)
	default:
		cpu.writeOperand(inst.Dest, uint8(ctx.value))
	}
	return nil
}

func execINC(cpu *CPU, ctx *context) error {
	if ctx.inst.Dest.is16() {
		cpu.tick()
		cpu.setReg16(ctx.inst.Dest, cpu.reg16(ctx.inst.Dest)+1)
		return nil
	}
	cpu.modify(ctx.inst.Dest, cpu.inc8)
	return nil
}

func execDEC(cpu *CPU, ctx *context) error {
	if ctx.inst.Dest.is16() {
		cpu.tick()
		cpu.setReg16(ctx.inst.Dest, cpu.reg16(ctx.inst.Dest)-1)
		return nil
	}
	cpu.modify(ctx.inst.Dest, cpu.dec8)
	return nil
}

func execRLCA(cpu *CPU, ctx *context) error {
	cpu.A = cpu.rlc(cpu.A)
	cpu.F &^= flagZ
	return nil
}

func execRRCA(cpu *CPU, ctx *context) error {
	cpu.A = cpu.rrc(cpu.A)
	cpu.F &^= flagZ
	return nil
}

func execRLA(cpu *CPU, ctx *context) error {
	cpu.A = cpu.rl(cpu.A)
	cpu.F &^= flagZ
	return nil
}

func execRRA(cpu *CPU, ctx *context) error {
	cpu.A = cpu.rr(cpu.A)
	cpu.F &^= flagZ
	return nil
}

func execDAA(cpu *CPU, ctx *context) error {
	cpu.daa()
	return nil
}

func execCPL(cpu *CPU, ctx *context) error {
	cpu.A = ^cpu.A
	cpu.F |= flagN | flagH
	return nil
}

func execSCF(cpu *CPU, ctx *context) error {
	cpu.setFlags(cpu.flag(flagZ), false, false, true)
	return nil
}

func execCCF(cpu *CPU, ctx *context) error {
	cpu.setFlags(cpu.flag(flagZ), false, false, !cpu.flag(flagC))
	return nil
}

func execADD(cpu *CPU, ctx *context) error {
	switch ctx.inst.Dest {
	case RegHL:
		cpu.tick()
		cpu.setReg16(RegHL, cpu.add16(cpu.reg16(RegHL), ctx.value))
	case RegSP:
		cpu.SP = cpu.addSPSigned(uint8(ctx.value))
		cpu.tick()
		cpu.tick()
	default:
		cpu.A = cpu.add8(cpu.A, uint8(ctx.value), false)
	}
	return nil
}

func execADC(cpu *CPU, ctx *context) error {
	cpu.A = cpu.add8(cpu.A, uint8(ctx.value), cpu.flag(flagC))
	return nil
}

func execSUB(cpu *CPU, ctx *context) error {
	cpu.A = cpu.sub8(cpu.A, uint8(ctx.value), false)
	return nil
}

func execSBC(cpu *CPU, ctx *context) error {
	cpu.A = cpu.sub8(cpu.A, uint8(ctx.value), cpu.flag(flagC))
	return nil
}

func execAND(cpu *CPU, ctx *context) error {
	cpu.A = cpu.and8(cpu.A, uint8(ctx.value))
	return nil
}

func execXOR(cpu *CPU, ctx *context) error {
	cpu.A = cpu.xor8(cpu.A, uint8(ctx.value))
	return nil
}

func execOR(cpu *CPU, ctx *context) error {
	cpu.A = cpu.or8(cpu.A, uint8(ctx.value))
	return nil
}

func execCP(cpu *CPU, ctx *context) error {
	cpu.sub8(cpu.A, uint8(ctx.value), false)
	return nil
}

func execJP(cpu *CPU, ctx *context) error {
	if ctx.inst.Src == RegHL {
		cpu.PC = ctx.value
		return nil
	}
	if cpu.condition(ctx.inst.Cond) {
		cpu.tick()
		cpu.PC = ctx.value
	}
	return nil
}

func execJR(cpu *CPU, ctx *context) error {
	if cpu.condition(ctx.inst.Cond) {
		cpu.tick()
		cpu.PC = uint16(int32(cpu.PC) + int32(int8(ctx.value)))
	}
	return nil
}

func execCALL(cpu *CPU, ctx *context) error {
	if cpu.condition(ctx.inst.Cond) {
		cpu.tick()
		cpu.push(cpu.PC)
		cpu.PC = ctx.value
	}
	return nil
}

func execRET(cpu *CPU, ctx *context) error {
	if ctx.inst.Cond != Always {
		cpu.tick()
		if !cpu.condition(ctx.inst.Cond) {
			return nil
		}
	}
	cpu.PC = cpu.pop()
	cpu.tick()
	return nil
}

func execRETI(cpu *CPU, ctx *context) error {
	cpu.PC = cpu.pop()
	cpu.tick()
	cpu.ime = true
	return nil
}

func execRST(cpu *CPU, ctx *context) error {
	cpu.tick()
	cpu.push(cpu.PC)
	cpu.PC = uint16(ctx.inst.Param)
	return nil
}

func execPUSH(cpu *CPU, ctx *context) error {
	cpu.tick()
	cpu.push(ctx.value)
	return nil
}

func execPOP(cpu *CPU, ctx *context) error {
	cpu.setReg16(ctx.inst.Dest, cpu.pop())
	return nil
}

func execHALT(cpu *CPU, ctx *context) error {
	cpu.halted = true
	return nil
}

// execSTOP consumes the padding byte and reports the stop to the caller
func execSTOP(cpu *CPU, ctx *context) error {
	cpu.fetch8()
	return ErrStop
}

func execDI(cpu *CPU, ctx *context) error {
	cpu.ime = false
	cpu.imePending = false
	return nil
}

func execEI(cpu *CPU, ctx *context) error {
	cpu.imePending = true
	return nil
}

// execCB fetches the second opcode byte and runs the extended instruction
func execCB(cpu *CPU, ctx *context) error {
	opcode := cpu.fetch8()
	ext := context{
		pc:     ctx.pc,
		opcode: opcode,
		inst:   Extended[opcode],
	}
	return handlers[ext.inst.Kind](cpu, &ext)
}

// shiftHandler adapts an 8-bit rotate or shift to the extended targets
func shiftHandler(op func(*CPU, uint8) uint8) handler {
	return func(cpu *CPU, ctx *context) error {
		cpu.modify(ctx.inst.Dest, func(v uint8) uint8 {
			return op(cpu, v)
		})
		return nil
	}
}

func execBIT(cpu *CPU, ctx *context) error {
	v := cpu.readOperand(ctx.inst.Dest)
	cpu.setFlags(v&(1<<ctx.inst.Param) == 0, false, true, cpu.flag(flagC))
	return nil
}

func execRES(cpu *CPU, ctx *context) error {
	mask := uint8(1) << ctx.inst.Param
	cpu.modify(ctx.inst.Dest, func(v uint8) uint8 {
		return v &^ mask
	})
	return nil
}

func execSET(cpu *CPU, ctx *context) error {
	mask := uint8(1) << ctx.inst.Param
	cpu.modify(ctx.inst.Dest, func(v uint8) uint8 {
		return v | mask
	})
	return nil
}

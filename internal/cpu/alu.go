package cpu

// 8-bit arithmetic. Each helper updates F and returns the result.

func (cpu *CPU) add8(a, b uint8, carryIn bool) uint8 {
	var c uint16
	if carryIn {
		c = 1
	}
	sum := uint16(a) + uint16(b) + c
	result := uint8(sum)
	cpu.setFlags(result == 0, false, (a&0x0F)+(b&0x0F)+uint8(c) > 0x0F, sum > 0xFF)
	return result
}

func (cpu *CPU) sub8(a, b uint8, carryIn bool) uint8 {
	var c int
	if carryIn {
		c = 1
	}
	diff := int(a) - int(b) - c
	result := uint8(diff)
	cpu.setFlags(result == 0, true, int(a&0x0F)-int(b&0x0F)-c < 0, diff < 0)
	return result
}

func (cpu *CPU) and8(a, b uint8) uint8 {
	result := a & b
	cpu.setFlags(result == 0, false, true, false)
	return result
}

func (cpu *CPU) xor8(a, b uint8) uint8 {
	result := a ^ b
	cpu.setFlags(result == 0, false, false, false)
	return result
}

func (cpu *CPU) or8(a, b uint8) uint8 {
	result := a | b
	cpu.setFlags(result == 0, false, false, false)
	return result
}

// inc8 and dec8 leave the carry flag alone
func (cpu *CPU) inc8(v uint8) uint8 {
	result := v + 1
	cpu.setFlags(result == 0, false, v&0x0F == 0x0F, cpu.flag(flagC))
	return result
}

func (cpu *CPU) dec8(v uint8) uint8 {
	result := v - 1
	cpu.setFlags(result == 0, true, v&0x0F == 0x00, cpu.flag(flagC))
	return result
}

// add16 is ADD HL,rr: Z is preserved, H and C come from bits 11 and 15
func (cpu *CPU) add16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	cpu.setFlags(cpu.flag(flagZ), false, (a&0x0FFF)+(b&0x0FFF) > 0x0FFF, sum > 0xFFFF)
	return uint16(sum)
}

// addSPSigned is SP plus a signed byte. H and C come from the unsigned
// addition of the low byte; Z and N are cleared.
func (cpu *CPU) addSPSigned(raw uint8) uint16 {
	sp := cpu.SP
	result := uint16(int32(sp) + int32(int8(raw)))
	cpu.setFlags(false, false, (sp&0x0F)+uint16(raw&0x0F) > 0x0F, (sp&0xFF)+uint16(raw) > 0xFF)
	return result
}

// daa adjusts A to packed BCD after an addition or subtraction
func (cpu *CPU) daa() {
	a := cpu.A
	carry := cpu.flag(flagC)

	if !cpu.flag(flagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if cpu.flag(flagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if cpu.flag(flagH) {
			a -= 0x06
		}
	}

	cpu.A = a
	cpu.setFlags(a == 0, cpu.flag(flagN), false, carry)
}

// Rotates and shifts. Z reflects the result; the accumulator forms
// (RLCA, RRCA, RLA, RRA) clear it afterwards.

func (cpu *CPU) rlc(v uint8) uint8 {
	carry := v >> 7
	result := v<<1 | carry
	cpu.setFlags(result == 0, false, false, carry == 1)
	return result
}

func (cpu *CPU) rrc(v uint8) uint8 {
	carry := v & 1
	result := v>>1 | carry<<7
	cpu.setFlags(result == 0, false, false, carry == 1)
	return result
}

func (cpu *CPU) rl(v uint8) uint8 {
	var in uint8
	if cpu.flag(flagC) {
		in = 1
	}
	result := v<<1 | in
	cpu.setFlags(result == 0, false, false, v&0x80 != 0)
	return result
}

func (cpu *CPU) rr(v uint8) uint8 {
	var in uint8
	if cpu.flag(flagC) {
		in = 0x80
	}
	result := v>>1 | in
	cpu.setFlags(result == 0, false, false, v&1 != 0)
	return result
}

func (cpu *CPU) sla(v uint8) uint8 {
	result := v << 1
	cpu.setFlags(result == 0, false, false, v&0x80 != 0)
	return result
}

func (cpu *CPU) sra(v uint8) uint8 {
	result := v>>1 | v&0x80
	cpu.setFlags(result == 0, false, false, v&1 != 0)
	return result
}

func (cpu *CPU) swap(v uint8) uint8 {
	result := v<<4 | v>>4
	cpu.setFlags(result == 0, false, false, false)
	return result
}

func (cpu *CPU) srl(v uint8) uint8 {
	result := v >> 1
	cpu.setFlags(result == 0, false, false, v&1 != 0)
	return result
}

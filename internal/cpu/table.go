package cpu

// Primary is the decode table for single-byte opcodes. Entries with Kind None
// are undefined on this processor.
var Primary = [256]Instruction{
	0x00: {Kind: NOP},
	0x01: {Kind: LD, Dest: RegBC, Src: Imm16},
	0x02: {Kind: LD, Dest: MemBC, Src: RegA},
	0x03: {Kind: INC, Dest: RegBC},
	0x04: {Kind: INC, Dest: RegB},
	0x05: {Kind: DEC, Dest: RegB},
	0x06: {Kind: LD, Dest: RegB, Src: Imm8},
	0x07: {Kind: RLCA},
	0x08: {Kind: LD, Dest: AbsImm16, Src: RegSP},
	0x09: {Kind: ADD, Dest: RegHL, Src: RegBC},
	0x0A: {Kind: LD, Dest: RegA, Src: MemBC},
	0x0B: {Kind: DEC, Dest: RegBC},
	0x0C: {Kind: INC, Dest: RegC},
	0x0D: {Kind: DEC, Dest: RegC},
	0x0E: {Kind: LD, Dest: RegC, Src: Imm8},
	0x0F: {Kind: RRCA},
	0x10: {Kind: STOP},
	0x11: {Kind: LD, Dest: RegDE, Src: Imm16},
	0x12: {Kind: LD, Dest: MemDE, Src: RegA},
	0x13: {Kind: INC, Dest: RegDE},
	0x14: {Kind: INC, Dest: RegD},
	0x15: {Kind: DEC, Dest: RegD},
	0x16: {Kind: LD, Dest: RegD, Src: Imm8},
	0x17: {Kind: RLA},
	0x18: {Kind: JR, Src: SignedImm8},
	0x19: {Kind: ADD, Dest: RegHL, Src: RegDE},
	0x1A: {Kind: LD, Dest: RegA, Src: MemDE},
	0x1B: {Kind: DEC, Dest: RegDE},
	0x1C: {Kind: INC, Dest: RegE},
	0x1D: {Kind: DEC, Dest: RegE},
	0x1E: {Kind: LD, Dest: RegE, Src: Imm8},
	0x1F: {Kind: RRA},
	0x20: {Kind: JR, Src: SignedImm8, Cond: CondNZ},
	0x21: {Kind: LD, Dest: RegHL, Src: Imm16},
	0x22: {Kind: LD, Dest: MemHLInc, Src: RegA},
	0x23: {Kind: INC, Dest: RegHL},
	0x24: {Kind: INC, Dest: RegH},
	0x25: {Kind: DEC, Dest: RegH},
	0x26: {Kind: LD, Dest: RegH, Src: Imm8},
	0x27: {Kind: DAA},
	0x28: {Kind: JR, Src: SignedImm8, Cond: CondZ},
	0x29: {Kind: ADD, Dest: RegHL, Src: RegHL},
	0x2A: {Kind: LD, Dest: RegA, Src: MemHLInc},
	0x2B: {Kind: DEC, Dest: RegHL},
	0x2C: {Kind: INC, Dest: RegL},
	0x2D: {Kind: DEC, Dest: RegL},
	0x2E: {Kind: LD, Dest: RegL, Src: Imm8},
	0x2F: {Kind: CPL},
	0x30: {Kind: JR, Src: SignedImm8, Cond: CondNC},
	0x31: {Kind: LD, Dest: RegSP, Src: Imm16},
	0x32: {Kind: LD, Dest: MemHLDec, Src: RegA},
	0x33: {Kind: INC, Dest: RegSP},
	0x34: {Kind: INC, Dest: MemHL},
	0x35: {Kind: DEC, Dest: MemHL},
	0x36: {Kind: LD, Dest: MemHL, Src: Imm8},
	0x37: {Kind: SCF},
	0x38: {Kind: JR, Src: SignedImm8, Cond: CondC},
	0x39: {Kind: ADD, Dest: RegHL, Src: RegSP},
	0x3A: {Kind: LD, Dest: RegA, Src: MemHLDec},
	0x3B: {Kind: DEC, Dest: RegSP},
	0x3C: {Kind: INC, Dest: RegA},
	0x3D: {Kind: DEC, Dest: RegA},
	0x3E: {Kind: LD, Dest: RegA, Src: Imm8},
	0x3F: {Kind: CCF},
	0x40: {Kind: LD, Dest: RegB, Src: RegB},
	0x41: {Kind: LD, Dest: RegB, Src: RegC},
	0x42: {Kind: LD, Dest: RegB, Src: RegD},
	0x43: {Kind: LD, Dest: RegB, Src: RegE},
	0x44: {Kind: LD, Dest: RegB, Src: RegH},
	0x45: {Kind: LD, Dest: RegB, Src: RegL},
	0x46: {Kind: LD, Dest: RegB, Src: MemHL},
	0x47: {Kind: LD, Dest: RegB, Src: RegA},
	0x48: {Kind: LD, Dest: RegC, Src: RegB},
	0x49: {Kind: LD, Dest: RegC, Src: RegC},
	0x4A: {Kind: LD, Dest: RegC, Src: RegD},
	0x4B: {Kind: LD, Dest: RegC, Src: RegE},
	0x4C: {Kind: LD, Dest: RegC, Src: RegH},
	0x4D: {Kind: LD, Dest: RegC, Src: RegL},
	0x4E: {Kind: LD, Dest: RegC, Src: MemHL},
	0x4F: {Kind: LD, Dest: RegC, Src: RegA},
	0x50: {Kind: LD, Dest: RegD, Src: RegB},
	0x51: {Kind: LD, Dest: RegD, Src: RegC},
	0x52: {Kind: LD, Dest: RegD, Src: RegD},
	0x53: {Kind: LD, Dest: RegD, Src: RegE},
	0x54: {Kind: LD, Dest: RegD, Src: RegH},
	0x55: {Kind: LD, Dest: RegD, Src: RegL},
	0x56: {Kind: LD, Dest: RegD, Src: MemHL},
	0x57: {Kind: LD, Dest: RegD, Src: RegA},
	0x58: {Kind: LD, Dest: RegE, Src: RegB},
	0x59: {Kind: LD, Dest: RegE, Src: RegC},
	0x5A: {Kind: LD, Dest: RegE, Src: RegD},
	0x5B: {Kind: LD, Dest: RegE, Src: RegE},
	0x5C: {Kind: LD, Dest: RegE, Src: RegH},
	0x5D: {Kind: LD, Dest: RegE, Src: RegL},
	0x5E: {Kind: LD, Dest: RegE, Src: MemHL},
	0x5F: {Kind: LD, Dest: RegE, Src: RegA},
	0x60: {Kind: LD, Dest: RegH, Src: RegB},
	0x61: {Kind: LD, Dest: RegH, Src: RegC},
	0x62: {Kind: LD, Dest: RegH, Src: RegD},
	0x63: {Kind: LD, Dest: RegH, Src: RegE},
	0x64: {Kind: LD, Dest: RegH, Src: RegH},
	0x65: {Kind: LD, Dest: RegH, Src: RegL},
	0x66: {Kind: LD, Dest: RegH, Src: MemHL},
	0x67: {Kind: LD, Dest: RegH, Src: RegA},
	0x68: {Kind: LD, Dest: RegL, Src: RegB},
	0x69: {Kind: LD, Dest: RegL, Src: RegC},
	0x6A: {Kind: LD, Dest: RegL, Src: RegD},
	0x6B: {Kind: LD, Dest: RegL, Src: RegE},
	0x6C: {Kind: LD, Dest: RegL, Src: RegH},
	0x6D: {Kind: LD, Dest: RegL, Src: RegL},
	0x6E: {Kind: LD, Dest: RegL, Src: MemHL},
	0x6F: {Kind: LD, Dest: RegL, Src: RegA},
	0x70: {Kind: LD, Dest: MemHL, Src: RegB},
	0x71: {Kind: LD, Dest: MemHL, Src: RegC},
	0x72: {Kind: LD, Dest: MemHL, Src: RegD},
	0x73: {Kind: LD, Dest: MemHL, Src: RegE},
	0x74: {Kind: LD, Dest: MemHL, Src: RegH},
	0x75: {Kind: LD, Dest: MemHL, Src: RegL},
	0x76: {Kind: HALT},
	0x77: {Kind: LD, Dest: MemHL, Src: RegA},
	0x78: {Kind: LD, Dest: RegA, Src: RegB},
	0x79: {Kind: LD, Dest: RegA, Src: RegC},
	0x7A: {Kind: LD, Dest: RegA, Src: RegD},
	0x7B: {Kind: LD, Dest: RegA, Src: RegE},
	0x7C: {Kind: LD, Dest: RegA, Src: RegH},
	0x7D: {Kind: LD, Dest: RegA, Src: RegL},
	0x7E: {Kind: LD, Dest: RegA, Src: MemHL},
	0x7F: {Kind: LD, Dest: RegA, Src: RegA},
	0x80: {Kind: ADD, Dest: RegA, Src: RegB},
	0x81: {Kind: ADD, Dest: RegA, Src: RegC},
	0x82: {Kind: ADD, Dest: RegA, Src: RegD},
	0x83: {Kind: ADD, Dest: RegA, Src: RegE},
	0x84: {Kind: ADD, Dest: RegA, Src: RegH},
	0x85: {Kind: ADD, Dest: RegA, Src: RegL},
	0x86: {Kind: ADD, Dest: RegA, Src: MemHL},
	0x87: {Kind: ADD, Dest: RegA, Src: RegA},
	0x88: {Kind: ADC, Dest: RegA, Src: RegB},
	0x89: {Kind: ADC, Dest: RegA, Src: RegC},
	0x8A: {Kind: ADC, Dest: RegA, Src: RegD},
	0x8B: {Kind: ADC, Dest: RegA, Src: RegE},
	0x8C: {Kind: ADC, Dest: RegA, Src: RegH},
	0x8D: {Kind: ADC, Dest: RegA, Src: RegL},
	0x8E: {Kind: ADC, Dest: RegA, Src: MemHL},
	0x8F: {Kind: ADC, Dest: RegA, Src: RegA},
	0x90: {Kind: SUB, Dest: RegA, Src: RegB},
	0x91: {Kind: SUB, Dest: RegA, Src: RegC},
	0x92: {Kind: SUB, Dest: RegA, Src: RegD},
	0x93: {Kind: SUB, Dest: RegA, Src: RegE},
	0x94: {Kind: SUB, Dest: RegA, Src: RegH},
	0x95: {Kind: SUB, Dest: RegA, Src: RegL},
	0x96: {Kind: SUB, Dest: RegA, Src: MemHL},
	0x97: {Kind: SUB, Dest: RegA, Src: RegA},
	0x98: {Kind: SBC, Dest: RegA, Src: RegB},
	0x99: {Kind: SBC, Dest: RegA, Src: RegC},
	0x9A: {Kind: SBC, Dest: RegA, Src: RegD},
	0x9B: {Kind: SBC, Dest: RegA, Src: RegE},
	0x9C: {Kind: SBC, Dest: RegA, Src: RegH},
	0x9D: {Kind: SBC, Dest: RegA, Src: RegL},
	0x9E: {Kind: SBC, Dest: RegA, Src: MemHL},
	0x9F: {Kind: SBC, Dest: RegA, Src: RegA},
	0xA0: {Kind: AND, Dest: RegA, Src: RegB},
	0xA1: {Kind: AND, Dest: RegA, Src: RegC},
	0xA2: {Kind: AND, Dest: RegA, Src: RegD},
	0xA3: {Kind: AND, Dest: RegA, Src: RegE},
	0xA4: {Kind: AND, Dest: RegA, Src: RegH},
	0xA5: {Kind: AND, Dest: RegA, Src: RegL},
	0xA6: {Kind: AND, Dest: RegA, Src: MemHL},
	0xA7: {Kind: AND, Dest: RegA, Src: RegA},
	0xA8: {Kind: XOR, Dest: RegA, Src: RegB},
	0xA9: {Kind: XOR, Dest: RegA, Src: RegC},
	0xAA: {Kind: XOR, Dest: RegA, Src: RegD},
	0xAB: {Kind: XOR, Dest: RegA, Src: RegE},
	0xAC: {Kind: XOR, Dest: RegA, Src: RegH},
	0xAD: {Kind: XOR, Dest: RegA, Src: RegL},
	0xAE: {Kind: XOR, Dest: RegA, Src: MemHL},
	0xAF: {Kind: XOR, Dest: RegA, Src: RegA},
	0xB0: {Kind: OR, Dest: RegA, Src: RegB},
	0xB1: {Kind: OR, Dest: RegA, Src: RegC},
	0xB2: {Kind: OR, Dest: RegA, Src: RegD},
	0xB3: {Kind: OR, Dest: RegA, Src: RegE},
	0xB4: {Kind: OR, Dest: RegA, Src: RegH},
	0xB5: {Kind: OR, Dest: RegA, Src: RegL},
	0xB6: {Kind: OR, Dest: RegA, Src: MemHL},
	0xB7: {Kind: OR, Dest: RegA, Src: RegA},
	0xB8: {Kind: CP, Dest: RegA, Src: RegB},
	0xB9: {Kind: CP, Dest: RegA, Src: RegC},
	0xBA: {Kind: CP, Dest: RegA, Src: RegD},
	0xBB: {Kind: CP, Dest: RegA, Src: RegE},
	0xBC: {Kind: CP, Dest: RegA, Src: RegH},
	0xBD: {Kind: CP, Dest: RegA, Src: RegL},
	0xBE: {Kind: CP, Dest: RegA, Src: MemHL},
	0xBF: {Kind: CP, Dest: RegA, Src: RegA},
	0xC0: {Kind: RET, Cond: CondNZ},
	0xC1: {Kind: POP, Dest: RegBC},
	0xC2: {Kind: JP, Src: Imm16, Cond: CondNZ},
	0xC3: {Kind: JP, Src: Imm16},
	0xC4: {Kind: CALL, Src: Imm16, Cond: CondNZ},
	0xC5: {Kind: PUSH, Src: RegBC},
	0xC6: {Kind: ADD, Dest: RegA, Src: Imm8},
	0xC7: {Kind: RST, Param: 0x00},
	0xC8: {Kind: RET, Cond: CondZ},
	0xC9: {Kind: RET},
	0xCA: {Kind: JP, Src: Imm16, Cond: CondZ},
	0xCB: {Kind: CB},
	0xCC: {Kind: CALL, Src: Imm16, Cond: CondZ},
	0xCD: {Kind: CALL, Src: Imm16},
	0xCE: {Kind: ADC, Dest: RegA, Src: Imm8},
	0xCF: {Kind: RST, Param: 0x08},
	0xD0: {Kind: RET, Cond: CondNC},
	0xD1: {Kind: POP, Dest: RegDE},
	0xD2: {Kind: JP, Src: Imm16, Cond: CondNC},
	0xD3: {},
	0xD4: {Kind: CALL, Src: Imm16, Cond: CondNC},
	0xD5: {Kind: PUSH, Src: RegDE},
	0xD6: {Kind: SUB, Dest: RegA, Src: Imm8},
	0xD7: {Kind: RST, Param: 0x10},
	0xD8: {Kind: RET, Cond: CondC},
	0xD9: {Kind: RETI},
	0xDA: {Kind: JP, Src: Imm16, Cond: CondC},
	0xDB: {},
	0xDC: {Kind: CALL, Src: Imm16, Cond: CondC},
	0xDD: {},
	0xDE: {Kind: SBC, Dest: RegA, Src: Imm8},
	0xDF: {Kind: RST, Param: 0x18},
	0xE0: {Kind: LD, Dest: HighImm8, Src: RegA},
	0xE1: {Kind: POP, Dest: RegHL},
	0xE2: {Kind: LD, Dest: HighC, Src: RegA},
	0xE3: {},
	0xE4: {},
	0xE5: {Kind: PUSH, Src: RegHL},
	0xE6: {Kind: AND, Dest: RegA, Src: Imm8},
	0xE7: {Kind: RST, Param: 0x20},
	0xE8: {Kind: ADD, Dest: RegSP, Src: SignedImm8},
	0xE9: {Kind: JP, Src: RegHL},
	0xEA: {Kind: LD, Dest: AbsImm16, Src: RegA},
	0xEB: {},
	0xEC: {},
	0xED: {},
	0xEE: {Kind: XOR, Dest: RegA, Src: Imm8},
	0xEF: {Kind: RST, Param: 0x28},
	0xF0: {Kind: LD, Dest: RegA, Src: HighImm8},
	0xF1: {Kind: POP, Dest: RegAF},
	0xF2: {Kind: LD, Dest: RegA, Src: HighC},
	0xF3: {Kind: DI},
	0xF4: {},
	0xF5: {Kind: PUSH, Src: RegAF},
	0xF6: {Kind: OR, Dest: RegA, Src: Imm8},
	0xF7: {Kind: RST, Param: 0x30},
	0xF8: {Kind: LD, Dest: RegHL, Src: SPPlusImm8},
	0xF9: {Kind: LD, Dest: RegSP, Src: RegHL},
	0xFA: {Kind: LD, Dest: RegA, Src: AbsImm16},
	0xFB: {Kind: EI},
	0xFC: {},
	0xFD: {},
	0xFE: {Kind: CP, Dest: RegA, Src: Imm8},
	0xFF: {Kind: RST, Param: 0x38},
}

package cpu

import (
	"fmt"
	"strings"
)

// Disassemble renders the instruction at pc with its actual operands and
// returns the text and the instruction length in bytes. Relative jumps show
// their target address. Undefined opcodes render as a data byte.
func Disassemble(r Reader, pc uint16) (string, int) {
	opcode := r.Read(pc)
	inst := Primary[opcode]

	switch inst.Kind {
	case None:
		return fmt.Sprintf("DB $%02X", opcode), 1
	case CB:
		return Extended[r.Read(pc+1)].String(), 2
	}

	length := inst.Length()
	text := inst.String()

	var d8 uint8
	var d16 uint16
	switch length {
	case 2:
		d8 = r.Read(pc + 1)
	case 3:
		d16 = uint16(r.Read(pc+2))<<8 | uint16(r.Read(pc+1))
	}

	offset := int8(d8)
	sign := "+"
	magnitude := int(offset)
	if offset < 0 {
		sign = "-"
		magnitude = -magnitude
	}

	target := pc + uint16(length) + uint16(int16(offset))
	replacer := strings.NewReplacer(
		"SP+r8", fmt.Sprintf("SP%s$%02X", sign, magnitude),
		"(a16)", fmt.Sprintf("($%04X)", d16),
		"(a8)", fmt.Sprintf("($FF%02X)", d8),
		"a16", fmt.Sprintf("$%04X", d16),
		"d16", fmt.Sprintf("$%04X", d16),
		"d8", fmt.Sprintf("$%02X", d8),
	)
	text = replacer.Replace(text)

	if strings.Contains(text, "r8") {
		if inst.Kind == JR {
			text = strings.Replace(text, "r8", fmt.Sprintf("$%04X", target), 1)
		} else {
			text = strings.Replace(text, "r8", fmt.Sprintf("%s$%02X", sign, magnitude), 1)
		}
	}

	return text, length
}

package cpu

import (
	"errors"
	"fmt"
)

// ErrUndefinedOpcode is wrapped by every DecodeError
var ErrUndefinedOpcode = errors.New("undefined opcode")

// ErrStop is returned by Step when the program executes STOP. It ends the
// session; it does not indicate a fault.
var ErrStop = errors.New("STOP executed")

// DecodeError reports an opcode with no defined operation
type DecodeError struct {
	Opcode   uint8
	PC       uint16
	Extended bool
}

func (e *DecodeError) Error() string {
	prefix := ""
	if e.Extended {
		prefix = "CB "
	}
	return fmt.Sprintf("undefined opcode %s0x%02X at 0x%04X", prefix, e.Opcode, e.PC)
}

// Unwrap lets errors.Is match ErrUndefinedOpcode
func (e *DecodeError) Unwrap() error {
	return ErrUndefinedOpcode
}

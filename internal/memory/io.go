package memory

import (
	"bytes"
	"log"
)

// I/O register addresses
const (
	JOYP      = 0xFF00
	SB        = 0xFF01
	SC        = 0xFF02
	timerLow  = 0xFF04
	timerHigh = 0xFF07
	IF        = 0xFF0F
	audioLow  = 0xFF10
	audioHigh = 0xFF3F
	lcdLow    = 0xFF40
	lcdHigh   = 0xFF4B
	BootOff   = 0xFF50
	IE        = 0xFFFF
)

// Serial control bits
const (
	scTransferStart = 0x80
	scInternalClock = 0x01
)

// JoypadInterface defines the P1 register
type JoypadInterface interface {
	Read() uint8
	Write(value uint8)
}

// RegisterInterface is a component answering a block of I/O addresses
type RegisterInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptInterface defines the IF and IE registers
type InterruptInterface interface {
	ReadFlag() uint8
	WriteFlag(value uint8)
	ReadEnable() uint8
	WriteEnable(value uint8)
}

// IO aggregates the memory-mapped registers at 0xFF00-0xFF7F plus IE
type IO struct {
	joypad     JoypadInterface
	timer      RegisterInterface
	lcd        RegisterInterface
	interrupts InterruptInterface

	sb uint8
	sc uint8

	// Audio register file; stored so programs read back what they wrote
	audio [audioHigh - audioLow + 1]uint8

	bootOff uint8

	serial  bytes.Buffer
	logger  *log.Logger
	unknown map[uint16]bool
}

// NewIO creates the I/O aggregator. lcd receives 0xFF40-0xFF4B including DMA.
func NewIO(joypad JoypadInterface, timer, lcd RegisterInterface, irq InterruptInterface) *IO {
	return &IO{
		joypad:     joypad,
		timer:      timer,
		lcd:        lcd,
		interrupts: irq,
		logger:     log.Default(),
		unknown:    make(map[uint16]bool),
	}
}

// SetLogger replaces the logger used for unknown registers
func (io *IO) SetLogger(logger *log.Logger) {
	io.logger = logger
}

// Reset clears serial, audio and the boot latch
func (io *IO) Reset() {
	io.sb, io.sc = 0, 0
	io.audio = [audioHigh - audioLow + 1]uint8{}
	io.bootOff = 0
	io.serial.Reset()
}

// Read returns an I/O register
func (io *IO) Read(address uint16) uint8 {
	switch {
	case address == JOYP:
		return io.joypad.Read()
	case address == SB:
		return io.sb
	case address == SC:
		return io.sc | 0x7E
	case address >= timerLow && address <= timerHigh:
		return io.timer.Read(address)
	case address == IF:
		return io.interrupts.ReadFlag()
	case address >= audioLow && address <= audioHigh:
		return io.audio[address-audioLow]
	case address >= lcdLow && address <= lcdHigh:
		return io.lcd.Read(address)
	case address == BootOff:
		return io.bootOff | 0xFE
	case address == IE:
		return io.interrupts.ReadEnable()
	}

	io.logUnknown("read", address, 0)
	return 0xFF
}

// Write sets an I/O register
func (io *IO) Write(address uint16, value uint8) {
	switch {
	case address == JOYP:
		io.joypad.Write(value)
	case address == SB:
		io.sb = value
	case address == SC:
		io.writeSerialControl(value)
	case address >= timerLow && address <= timerHigh:
		io.timer.Write(address, value)
	case address == IF:
		io.interrupts.WriteFlag(value)
	case address >= audioLow && address <= audioHigh:
		io.audio[address-audioLow] = value
	case address >= lcdLow && address <= lcdHigh:
		io.lcd.Write(address, value)
	case address == BootOff:
		// Latches until reset; the boot ROM can only be unmapped once
		io.bootOff |= value & 0x01
	case address == IE:
		io.interrupts.WriteEnable(value)
	default:
		io.logUnknown("write", address, value)
	}
}

// writeSerialControl completes a transfer on the internal clock immediately.
// With no link partner the received byte is 0xFF.
func (io *IO) writeSerialControl(value uint8) {
	io.sc = value & (scTransferStart | scInternalClock)
	if io.sc == scTransferStart|scInternalClock {
		io.serial.WriteByte(io.sb)
		io.sb = 0xFF
		io.sc &^= scTransferStart
	}
}

// SerialOutput returns every byte sent over the serial port so far
func (io *IO) SerialOutput() []byte {
	return bytes.Clone(io.serial.Bytes())
}

func (io *IO) logUnknown(kind string, address uint16, value uint8) {
	if io.unknown[address] {
		return
	}
	io.unknown[address] = true
	if kind == "write" {
		io.logger.Printf("[IO] Write to unknown register $%04X = $%02X dropped", address, value)
		return
	}
	io.logger.Printf("[IO] Read from unknown register $%04X returns $FF", address)
}

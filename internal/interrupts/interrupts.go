// Package interrupts implements the interrupt request/enable registers shared by the CPU,
// the timer and the graphics controller.
package interrupts

import "fmt"

// Kind identifies one of the five interrupt classes. The numeric value is the bit
// position in the IF and IE registers, which is also the service priority
// (lower value wins).
type Kind uint8

const (
	VBlank Kind = iota
	LCDStat
	Timer
	Serial
	Joypad

	count
)

// Register addresses
const (
	FlagAddress   = 0xFF0F // IF
	EnableAddress = 0xFFFF // IE
)

// requestMask covers the five implemented request bits
const requestMask = 0x1F

// Kinds lists every interrupt class in priority order
var Kinds = [count]Kind{VBlank, LCDStat, Timer, Serial, Joypad}

// Mask returns the IF/IE bit for the interrupt class
func (k Kind) Mask() uint8 {
	return 1 << k
}

// Vector returns the fixed handler address for the interrupt class
func (k Kind) Vector() uint16 {
	return 0x40 + uint16(k)*8
}

func (k Kind) String() string {
	switch k {
	case VBlank:
		return "VBLANK"
	case LCDStat:
		return "LCD_STAT"
	case Timer:
		return "TIMER"
	case Serial:
		return "SERIAL"
	case Joypad:
		return "JOYPAD"
	default:
		return fmt.Sprintf("INTERRUPT(%d)", uint8(k))
	}
}

// Sink receives interrupt requests. Implementations must never block.
type Sink interface {
	Request(kind Kind)
}

// Controller holds the IF (request) and IE (enable) registers
type Controller struct {
	flag   uint8
	enable uint8
}

// NewController creates a controller with no pending or enabled interrupts
func NewController() *Controller {
	return &Controller{}
}

// Reset clears both registers
func (c *Controller) Reset() {
	c.flag = 0
	c.enable = 0
}

// Request sets the request bit for kind
func (c *Controller) Request(kind Kind) {
	c.flag |= kind.Mask()
}

// Acknowledge clears the request bit for kind
func (c *Controller) Acknowledge(kind Kind) {
	c.flag &^= kind.Mask()
}

// Requested reports whether any request bit is set, regardless of IE.
// A halted CPU wakes on this condition.
func (c *Controller) Requested() bool {
	return c.flag&requestMask != 0
}

// Pending returns the request bits that are also enabled
func (c *Controller) Pending() uint8 {
	return c.flag & c.enable & requestMask
}

// Highest returns the highest-priority interrupt that is both requested and enabled
func (c *Controller) Highest() (Kind, bool) {
	pending := c.Pending()
	if pending == 0 {
		return 0, false
	}
	for _, kind := range Kinds {
		if pending&kind.Mask() != 0 {
			return kind, true
		}
	}
	return 0, false
}

// ReadFlag returns IF. The unused upper three bits read as 1.
func (c *Controller) ReadFlag() uint8 {
	return c.flag | 0xE0
}

// WriteFlag sets IF
func (c *Controller) WriteFlag(value uint8) {
	c.flag = value & requestMask
}

// ReadEnable returns IE
func (c *Controller) ReadEnable() uint8 {
	return c.enable
}

// WriteEnable sets IE. All eight bits are stored, only the low five take effect.
func (c *Controller) WriteEnable(value uint8) {
	c.enable = value
}

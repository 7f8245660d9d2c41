// Package timer implements the divider and programmable timer.
package timer

import "gogb/internal/interrupts"

// Register addresses
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

const (
	tacEnable = 0x04
	tacClock  = 0x03
)

// clockBits maps TAC bits 0-1 to the divider bit whose falling edge clocks TIMA
var clockBits = [4]uint{9, 3, 5, 7}

// Timer represents the divider (DIV) and the programmable counter (TIMA)
type Timer struct {
	div  uint16 // internal 16-bit divider, DIV is the upper byte
	tima uint8
	tma  uint8
	tac  uint8

	irq interrupts.Sink
}

// New creates a timer that raises interrupts through sink
func New(sink interrupts.Sink) *Timer {
	t := &Timer{irq: sink}
	t.Reset()
	return t
}

// Reset restores the post-boot state
func (t *Timer) Reset() {
	t.div = 0xAC00
	t.tima = 0
	t.tma = 0
	t.tac = 0
}

// Tick advances the divider by one. It is called four times per machine cycle.
func (t *Timer) Tick() {
	prev := t.div
	t.div++

	if t.tac&tacEnable == 0 {
		return
	}

	bit := clockBits[t.tac&tacClock]
	if prev&(1<<bit) != 0 && t.div&(1<<bit) == 0 {
		t.increment()
	}
}

// increment advances TIMA, reloading from TMA on wrap past 0xFF
func (t *Timer) increment() {
	t.tima++
	if t.tima == 0 {
		t.tima = t.tma
		if t.irq != nil {
			t.irq.Request(interrupts.Timer)
		}
	}
}

// Read returns a timer register
func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case DIV:
		return uint8(t.div >> 8)
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

// Write sets a timer register. Any write to DIV clears the whole divider.
func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case DIV:
		t.div = 0
	case TIMA:
		t.tima = value
	case TMA:
		t.tma = value
	case TAC:
		t.tac = value & 0x07
	}
}

// Divider returns the full 16-bit internal divider
func (t *Timer) Divider() uint16 {
	return t.div
}

// Enabled reports whether TIMA is counting
func (t *Timer) Enabled() bool {
	return t.tac&tacEnable != 0
}

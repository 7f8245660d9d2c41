// Package input implements the joypad register.
package input

import (
	"log"
	"sync/atomic"
)

// Button represents a joypad button line
type Button uint8

const (
	ButtonRight Button = 1 << iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Convenience constants for shorter names used by the frontends
const (
	Right  = ButtonRight
	Left   = ButtonLeft
	Up     = ButtonUp
	Down   = ButtonDown
	A      = ButtonA
	B      = ButtonB
	Select = ButtonSelect
	Start  = ButtonStart
)

// Address of the P1/JOYP register
const Address = 0xFF00

// Select lines in P1 (0 = group selected)
const (
	selectDirections = 0x10
	selectButtons    = 0x20
	selectMask       = selectDirections | selectButtons
)

// Joypad represents the eight button lines and the P1 select lines.
// Button state may be written from an input goroutine while the emulation
// goroutine reads the register, so it is held atomically.
type Joypad struct {
	buttons atomic.Uint32
	selects uint8

	debugEnabled bool
}

// New creates a joypad with no buttons pressed and no group selected
func New() *Joypad {
	j := &Joypad{}
	j.Reset()
	return j
}

// Reset releases every button and deselects both groups
func (j *Joypad) Reset() {
	j.buttons.Store(0)
	j.selects = selectMask
}

// SetButton sets the state of one button line
func (j *Joypad) SetButton(button Button, pressed bool) {
	for {
		old := j.buttons.Load()
		next := old &^ uint32(button)
		if pressed {
			next = old | uint32(button)
		}
		if j.buttons.CompareAndSwap(old, next) {
			if j.debugEnabled {
				log.Printf("[BUTTON_DEBUG] SetButton: button=0x%02X, pressed=%t, buttons=0x%02X", uint8(button), pressed, next)
			}
			return
		}
	}
}

// SetButtons sets all button states at once.
// Order: Right, Left, Up, Down, A, B, Select, Start.
func (j *Joypad) SetButtons(buttons [8]bool) {
	var state uint32
	for i, pressed := range buttons {
		if pressed {
			state |= 1 << i
		}
	}
	j.buttons.Store(state)
}

// IsPressed returns true if the button is currently pressed
func (j *Joypad) IsPressed(button Button) bool {
	return j.buttons.Load()&uint32(button) != 0
}

// Read derives the P1 register from the select lines and the button lines.
// Pressed buttons read as 0 in the low nibble of every selected group.
func (j *Joypad) Read() uint8 {
	state := uint8(j.buttons.Load())
	lines := uint8(0x0F)

	if j.selects&selectDirections == 0 {
		lines &^= state & 0x0F
	}
	if j.selects&selectButtons == 0 {
		lines &^= state >> 4
	}

	return 0xC0 | j.selects | lines
}

// Write stores the select lines; the button nibble is read-only
func (j *Joypad) Write(value uint8) {
	j.selects = value & selectMask
}

// EnableDebug enables debug logging of button changes
func (j *Joypad) EnableDebug(enable bool) {
	j.debugEnabled = enable
}

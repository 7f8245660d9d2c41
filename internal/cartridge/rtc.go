package cartridge

import "time"

// RTC register selectors, written to 0x4000-0x5FFF
const (
	rtcSeconds  = 0x08
	rtcMinutes  = 0x09
	rtcHours    = 0x0A
	rtcDaysLow  = 0x0B
	rtcDaysHigh = 0x0C
)

const (
	rtcDayHighBit = 0x01
	rtcHaltBit    = 0x40
	rtcCarryBit   = 0x80
	rtcMaxDays    = 512
)

// rtcRegisters is one snapshot of the clock counters
type rtcRegisters struct {
	seconds uint8
	minutes uint8
	hours   uint8
	days    uint16 // 9 bits
	halt    bool
	carry   bool
}

// read returns the register selected by reg
func (r *rtcRegisters) read(reg uint8) uint8 {
	switch reg {
	case rtcSeconds:
		return r.seconds
	case rtcMinutes:
		return r.minutes
	case rtcHours:
		return r.hours
	case rtcDaysLow:
		return uint8(r.days)
	case rtcDaysHigh:
		v := uint8(r.days>>8) & rtcDayHighBit
		if r.halt {
			v |= rtcHaltBit
		}
		if r.carry {
			v |= rtcCarryBit
		}
		return v
	}
	return 0xFF
}

// add advances the counters by n seconds, setting the carry when days pass 511
func (r *rtcRegisters) add(n uint64) {
	total := uint64(r.seconds) + n
	r.seconds = uint8(total % 60)
	total = total/60 + uint64(r.minutes)
	r.minutes = uint8(total % 60)
	total = total/60 + uint64(r.hours)
	r.hours = uint8(total % 24)
	total = total/24 + uint64(r.days)
	if total >= rtcMaxDays {
		r.carry = true
	}
	r.days = uint16(total % rtcMaxDays)
}

// RTC is the MBC3 real time clock. Time comes from an injectable clock so
// tests can drive it deterministically.
type RTC struct {
	live    rtcRegisters
	latched rtcRegisters

	now  func() time.Time
	last time.Time

	latchArmed bool
}

// NewRTC creates a clock that reads wall time from now (time.Now when nil)
func NewRTC(now func() time.Time) *RTC {
	if now == nil {
		now = time.Now
	}
	return &RTC{now: now, last: now()}
}

// update folds whole elapsed seconds into the live counters
func (r *RTC) update() {
	current := r.now()
	if r.live.halt {
		r.last = current
		return
	}
	elapsed := current.Sub(r.last)
	if elapsed <= 0 {
		return
	}
	seconds := uint64(elapsed / time.Second)
	r.live.add(seconds)
	r.last = r.last.Add(time.Duration(seconds) * time.Second)
}

// WriteLatch handles writes to 0x6000-0x7FFF; a 0 followed by 1 latches the clock
func (r *RTC) WriteLatch(value uint8) {
	if value == 0x00 {
		r.latchArmed = true
		return
	}
	if value == 0x01 && r.latchArmed {
		r.update()
		r.latched = r.live
	}
	r.latchArmed = false
}

// Read returns a latched register
func (r *RTC) Read(reg uint8) uint8 {
	return r.latched.read(reg)
}

// Write sets a live register
func (r *RTC) Write(reg uint8, value uint8) {
	r.update()
	switch reg {
	case rtcSeconds:
		r.live.seconds = value & 0x3F
		r.last = r.now()
	case rtcMinutes:
		r.live.minutes = value & 0x3F
	case rtcHours:
		r.live.hours = value & 0x1F
	case rtcDaysLow:
		r.live.days = r.live.days&0x100 | uint16(value)
	case rtcDaysHigh:
		r.live.days = r.live.days&0xFF | uint16(value&rtcDayHighBit)<<8
		r.live.halt = value&rtcHaltBit != 0
		r.live.carry = value&rtcCarryBit != 0
	}
	r.latched = r.live
}

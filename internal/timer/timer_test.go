package timer

import (
	"testing"

	"gogb/internal/interrupts"
)

// MockSink records interrupt requests
type MockSink struct {
	requests []interrupts.Kind
}

// Request implements interrupts.Sink
func (m *MockSink) Request(kind interrupts.Kind) {
	m.requests = append(m.requests, kind)
}

// newTestTimer returns a timer with a cleared divider
func newTestTimer() (*Timer, *MockSink) {
	sink := &MockSink{}
	timer := New(sink)
	timer.Write(DIV, 0)
	return timer, sink
}

func tickN(timer *Timer, n int) {
	for i := 0; i < n; i++ {
		timer.Tick()
	}
}

func TestTimerDisabledLeavesCounter(t *testing.T) {
	timer, sink := newTestTimer()
	timer.Write(TIMA, 0x37)
	timer.Write(TAC, 0x01) // fastest clock, enable bit clear

	startDiv := timer.Divider()
	tickN(timer, 10000)

	if got := timer.Read(TIMA); got != 0x37 {
		t.Errorf("Expected TIMA unchanged at 0x37, got 0x%02X", got)
	}
	if timer.Divider() != startDiv+10000 {
		t.Errorf("Expected divider to advance by 10000, got %d", timer.Divider()-startDiv)
	}
	if len(sink.requests) != 0 {
		t.Errorf("Expected no interrupts, got %v", sink.requests)
	}
}

func TestTimerClockSelect(t *testing.T) {
	tests := []struct {
		name  string
		tac   uint8
		ticks int
	}{
		{"bit 9 (4096 Hz)", 0x04, 1024},
		{"bit 3 (262144 Hz)", 0x05, 16},
		{"bit 5 (65536 Hz)", 0x06, 64},
		{"bit 7 (16384 Hz)", 0x07, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer, _ := newTestTimer()
			timer.Write(TAC, tt.tac)

			tickN(timer, tt.ticks-1)
			if got := timer.Read(TIMA); got != 0 {
				t.Fatalf("TIMA incremented early: 0x%02X", got)
			}

			timer.Tick()
			if got := timer.Read(TIMA); got != 1 {
				t.Errorf("Expected TIMA=1 after %d ticks, got %d", tt.ticks, got)
			}
		})
	}
}

func TestTimerOverflowReloads(t *testing.T) {
	timer, sink := newTestTimer()
	timer.Write(TMA, 0x42)
	timer.Write(TIMA, 0xFE)
	timer.Write(TAC, 0x05)

	tickN(timer, 16)
	if got := timer.Read(TIMA); got != 0xFF {
		t.Fatalf("Expected TIMA=0xFF before overflow, got 0x%02X", got)
	}
	if len(sink.requests) != 0 {
		t.Fatalf("Reaching 0xFF must not raise an interrupt, got %v", sink.requests)
	}

	tickN(timer, 16)
	if got := timer.Read(TIMA); got != 0x42 {
		t.Errorf("Expected TIMA reloaded to 0x42, got 0x%02X", got)
	}
	if len(sink.requests) != 1 || sink.requests[0] != interrupts.Timer {
		t.Errorf("Expected one TIMER request, got %v", sink.requests)
	}
}

func TestDividerRegister(t *testing.T) {
	timer, _ := newTestTimer()

	tickN(timer, 255)
	if got := timer.Read(DIV); got != 0 {
		t.Errorf("Expected DIV=0 after 255 ticks, got %d", got)
	}
	timer.Tick()
	if got := timer.Read(DIV); got != 1 {
		t.Errorf("Expected DIV=1 after 256 ticks, got %d", got)
	}

	timer.Write(DIV, 0x99)
	if timer.Divider() != 0 {
		t.Errorf("Writing DIV should clear the divider, got 0x%04X", timer.Divider())
	}
}

func TestTACReadsUpperBitsSet(t *testing.T) {
	timer, _ := newTestTimer()
	timer.Write(TAC, 0xFD)

	if got := timer.Read(TAC); got != 0xFD {
		t.Errorf("Expected TAC=0xFD, got 0x%02X", got)
	}
	if !timer.Enabled() {
		t.Error("Timer should be enabled")
	}
}

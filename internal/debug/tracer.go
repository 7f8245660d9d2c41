// Package debug provides instruction tracing and frame buffer dumping utilities
package debug

import (
	"fmt"
	"log"

	"gogb/internal/cpu"
)

// defaultHistory is the number of trace lines kept for Recent
const defaultHistory = 64

// InstructionTracer logs every instruction before it executes. It implements
// cpu.Tracer.
type InstructionTracer struct {
	memory  cpu.Reader
	logger  *log.Logger
	enabled bool

	// Stop logging after this many lines; 0 means unlimited
	limit  uint64
	traced uint64

	// Ring of the most recent lines, kept even when logging is off
	history []string
	next    int
	filled  bool
}

// NewInstructionTracer creates a tracer that disassembles from memory
func NewInstructionTracer(memory cpu.Reader) *InstructionTracer {
	return &InstructionTracer{
		memory:  memory,
		logger:  log.Default(),
		enabled: true,
		history: make([]string, defaultHistory),
	}
}

// SetLogger replaces the trace output
func (t *InstructionTracer) SetLogger(logger *log.Logger) {
	t.logger = logger
}

// SetLimit caps the number of logged lines
func (t *InstructionTracer) SetLimit(limit uint64) {
	t.limit = limit
}

// Enable turns logging on or off. History is recorded either way.
func (t *InstructionTracer) Enable(enabled bool) {
	t.enabled = enabled
}

// Trace records one instruction
func (t *InstructionTracer) Trace(state cpu.State) {
	text, _ := cpu.Disassemble(t.memory, state.PC)
	line := FormatState(state, text)

	t.history[t.next] = line
	t.next = (t.next + 1) % len(t.history)
	if t.next == 0 {
		t.filled = true
	}

	if !t.enabled || (t.limit > 0 && t.traced >= t.limit) {
		return
	}
	t.traced++
	t.logger.Printf("[CPU_TRACE] %s", line)
}

// Traced returns the number of lines logged so far
func (t *InstructionTracer) Traced() uint64 {
	return t.traced
}

// Recent returns the most recent trace lines, oldest first
func (t *InstructionTracer) Recent() []string {
	if !t.filled {
		return append([]string(nil), t.history[:t.next]...)
	}
	out := make([]string, 0, len(t.history))
	out = append(out, t.history[t.next:]...)
	return append(out, t.history[:t.next]...)
}

// FormatState renders registers and the disassembled instruction on one line
func FormatState(state cpu.State, instruction string) string {
	ime := 0
	if state.IME {
		ime = 1
	}
	return fmt.Sprintf("PC:%04X SP:%04X A:%02X F:%02X BC:%02X%02X DE:%02X%02X HL:%02X%02X IME:%d CYC:%d  %s",
		state.PC, state.SP, state.A, state.F, state.B, state.C, state.D, state.E, state.H, state.L,
		ime, state.Cycles, instruction)
}

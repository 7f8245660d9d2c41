package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gogb/internal/bus"
	"gogb/internal/cpu"
	"gogb/internal/ppu"
)

// ErrFrameLimit is returned by Update once the configured frame limit is reached
var ErrFrameLimit = errors.New("frame limit reached")

// Emulator manages the emulation loop and timing
type Emulator struct {
	bus    *bus.Bus
	config *Config

	targetFrameTime time.Duration
	speed           float64
	pendingFrames   float64
	frameLimit      uint64

	frameBuffer [ppu.Width * ppu.Height]uint32

	// Performance monitoring
	actualFrameTime  time.Duration
	emulationTime    time.Duration
	cycleCount       uint64
	frameCount       uint64
	averageFrameTime time.Duration
	frameTimes       *CircularTimingBuffer

	// State tracking
	isRunning     bool
	lastResetTime time.Time
}

// NewEmulator creates a new emulator instance driving b
func NewEmulator(b *bus.Bus, config *Config) *Emulator {
	emulator := &Emulator{
		bus:        b,
		config:     config,
		speed:      1.0,
		frameTimes: NewCircularTimingBuffer(180), // 3 seconds of history
	}
	emulator.targetFrameTime = time.Duration(float64(time.Second) / b.GetFrameRate())

	if config != nil {
		if config.Emulation.Speed > 0 {
			emulator.speed = config.Emulation.Speed
		}
		emulator.frameLimit = uint64(config.Emulation.FrameLimit)
	}

	emulator.Reset()
	return emulator
}

// Reset clears timing and frame counters
func (e *Emulator) Reset() {
	e.pendingFrames = 0
	e.actualFrameTime = 0
	e.emulationTime = 0
	e.cycleCount = 0
	e.frameCount = 0
	e.averageFrameTime = 0
	e.lastResetTime = time.Now()
	e.frameBuffer = [ppu.Width * ppu.Height]uint32{}
	e.frameTimes.Reset()
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// Update runs the frames owed for one host tick. At speed 1.0 that is one
// frame; other speeds accumulate fractional frames across ticks.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	frameStartTime := time.Now()

	e.pendingFrames += e.speed
	for e.pendingFrames >= 1 {
		e.pendingFrames--
		if err := e.StepFrame(); err != nil {
			return err
		}
	}

	e.actualFrameTime = time.Since(frameStartTime)
	e.updatePerformanceMetrics()
	return nil
}

// StepFrame executes exactly one frame of emulation
func (e *Emulator) StepFrame() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}
	if e.frameLimit > 0 && e.frameCount >= e.frameLimit {
		return ErrFrameLimit
	}

	emulationStart := time.Now()

	if err := e.bus.StepFrame(); err != nil {
		return fmt.Errorf("frame execution error: %w", err)
	}

	e.frameCount++
	e.frameBuffer = e.bus.PPU.GetFrameBuffer()
	e.emulationTime = time.Since(emulationStart)
	e.cycleCount = e.bus.GetCycleCount()

	return nil
}

// StepInstruction executes one CPU instruction
func (e *Emulator) StepInstruction() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}

	if _, err := e.bus.Step(); err != nil {
		return err
	}
	e.cycleCount = e.bus.GetCycleCount()

	return nil
}

// updatePerformanceMetrics maintains a weighted average of frame times
func (e *Emulator) updatePerformanceMetrics() {
	e.frameTimes.Add(e.actualFrameTime)

	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.actualFrameTime
	} else {
		e.averageFrameTime = time.Duration(
			float64(e.averageFrameTime)*0.95 + float64(e.actualFrameTime)*0.05,
		)
	}
}

// GetFrameBuffer returns the last frame produced by StepFrame
func (e *Emulator) GetFrameBuffer() [ppu.Width * ppu.Height]uint32 {
	return e.frameBuffer
}

// GetFrameCount returns the number of frames run since reset
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetCycleCount returns the machine cycle count after the last step
func (e *Emulator) GetCycleCount() uint64 {
	return e.cycleCount
}

// GetTargetFrameTime returns the duration of one frame on hardware
func (e *Emulator) GetTargetFrameTime() time.Duration {
	return e.targetFrameTime
}

// GetEmulationSpeed returns the emulation speed as a percentage of real-time
func (e *Emulator) GetEmulationSpeed() float64 {
	if e.actualFrameTime == 0 {
		return 0.0
	}

	return float64(e.targetFrameTime) / float64(e.actualFrameTime) * 100.0
}

// SetSpeed changes the number of frames run per host tick
func (e *Emulator) SetSpeed(speed float64) {
	if speed > 0 {
		e.speed = speed
	}
}

// SetFrameLimit stops emulation after frames frames; 0 removes the limit
func (e *Emulator) SetFrameLimit(frames uint64) {
	e.frameLimit = frames
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// GetUptime returns the emulator uptime since last reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}

// GetCPUState returns the current CPU state for debugging
func (e *Emulator) GetCPUState() cpu.State {
	if e.bus == nil {
		return cpu.State{}
	}
	return e.bus.GetCPUState()
}

// GetPPUState returns the current PPU state for debugging
func (e *Emulator) GetPPUState() bus.PPUState {
	if e.bus == nil {
		return bus.PPUState{}
	}
	return e.bus.GetPPUState()
}

// EmulatorStats contains emulator performance statistics
type EmulatorStats struct {
	FrameCount       uint64
	CycleCount       uint64
	EmulationTime    time.Duration
	AverageFrameTime time.Duration
	TargetFrameTime  time.Duration
	FrameJitter      time.Duration
	EmulationSpeed   float64
	Uptime           time.Duration
	IsRunning        bool
}

// GetPerformanceStats returns a snapshot of the performance counters
func (e *Emulator) GetPerformanceStats() EmulatorStats {
	return EmulatorStats{
		FrameCount:       e.frameCount,
		CycleCount:       e.cycleCount,
		EmulationTime:    e.emulationTime,
		AverageFrameTime: e.averageFrameTime,
		TargetFrameTime:  e.targetFrameTime,
		FrameJitter:      e.frameTimes.GetDeviation(),
		EmulationSpeed:   e.GetEmulationSpeed(),
		Uptime:           e.GetUptime(),
		IsRunning:        e.isRunning,
	}
}

// Cleanup stops the emulator
func (e *Emulator) Cleanup() error {
	e.Stop()
	return nil
}

// CircularTimingBuffer stores the most recent timing measurements
type CircularTimingBuffer struct {
	buffer   []time.Duration
	index    int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularTimingBuffer creates a new circular timing buffer
func NewCircularTimingBuffer(capacity int) *CircularTimingBuffer {
	return &CircularTimingBuffer{
		buffer:   make([]time.Duration, capacity),
		capacity: capacity,
	}
}

// Add adds a timing measurement to the buffer
func (ctb *CircularTimingBuffer) Add(duration time.Duration) {
	ctb.mu.Lock()
	defer ctb.mu.Unlock()

	ctb.buffer[ctb.index] = duration
	ctb.index = (ctb.index + 1) % ctb.capacity

	if ctb.size < ctb.capacity {
		ctb.size++
	}
}

// GetAverage calculates the average of stored durations
func (ctb *CircularTimingBuffer) GetAverage() time.Duration {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()
	return ctb.average()
}

func (ctb *CircularTimingBuffer) average() time.Duration {
	if ctb.size == 0 {
		return 0
	}

	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		total += ctb.buffer[i]
	}
	return total / time.Duration(ctb.size)
}

// GetDeviation returns the mean absolute deviation of stored durations
func (ctb *CircularTimingBuffer) GetDeviation() time.Duration {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()

	if ctb.size < 2 {
		return 0
	}

	avg := ctb.average()
	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		diff := ctb.buffer[i] - avg
		if diff < 0 {
			diff = -diff
		}
		total += diff
	}
	return total / time.Duration(ctb.size)
}

// Len returns the number of stored measurements
func (ctb *CircularTimingBuffer) Len() int {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()
	return ctb.size
}

// Reset clears the buffer
func (ctb *CircularTimingBuffer) Reset() {
	ctb.mu.Lock()
	defer ctb.mu.Unlock()
	ctb.index = 0
	ctb.size = 0
}

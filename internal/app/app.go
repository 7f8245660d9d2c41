// Package app implements the emulator application: configuration, the frame
// loop, battery saves and the debugging hooks.
package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gogb/internal/bus"
	"gogb/internal/cartridge"
	"gogb/internal/cpu"
	"gogb/internal/debug"
	"gogb/internal/graphics"
)

// errQuit ends the frame loop after the user asked to quit
var errQuit = errors.New("quit requested")

// Application represents the main emulator application
type Application struct {
	// Core emulation components
	bus *bus.Bus

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	// Application state
	config   *Config
	emulator *Emulator
	saves    *SaveManager
	logger   *log.Logger

	// Debugging
	stats       *StatsServer
	tracer      *debug.InstructionTracer
	frameDumper *debug.FrameDumper

	// Control flags; running is cleared from signal handlers too
	running     atomic.Bool
	paused      bool
	initialized bool
	headless    bool

	// Performance tracking
	frameCount          uint64
	startTime           time.Time
	lastFPSTime         time.Time
	lastFPSLog          time.Time
	frameCountAtLastFPS uint64
	currentFPS          float64
	averageFPS          float64
	emulatorTime        time.Duration
	renderTime          time.Duration

	// Last emulated frame handed to the window
	renderedFrame uint64
	screenshots   int

	// ROM management
	romPath   string
	cartridge cartridge.Cartridge
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates a new emulator application
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a new emulator application with optional headless mode
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	config := NewConfig()

	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			var configErr *ConfigError
			if errors.As(err, &configErr) {
				return nil, &ApplicationError{Component: "config", Operation: "load", Err: err}
			}
			log.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v", configPath, err)
		}
	}

	return NewApplicationWithConfig(config, headless)
}

// NewApplicationWithConfig creates an application from an already prepared configuration
func NewApplicationWithConfig(config *Config, headless bool) (*Application, error) {
	app := &Application{
		config:      config,
		headless:    headless,
		logger:      log.Default(),
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	if err := app.initializeComponents(); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.bus = bus.New(nil)
	if strings.EqualFold(app.config.Debug.LogLevel, "ERROR") {
		app.bus.SetLogger(log.New(io.Discard, "", 0))
	}

	if err := app.initializeGraphicsBackend(); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.emulator = NewEmulator(app.bus, app.config)
	app.saves = NewSaveManager(app.config.Paths.SaveData)
	app.saves.SetLogger(app.logger)
	app.stats = NewStatsServer(app.logger)

	app.initialized = true
	return nil
}

// backendType picks the graphics backend from the mode and configuration
func (app *Application) backendType() graphics.BackendType {
	if app.headless {
		return graphics.BackendHeadless
	}

	switch app.config.Video.Backend {
	case "headless":
		return graphics.BackendHeadless
	case "terminal":
		return graphics.BackendTerminal
	default:
		return graphics.BackendEbitengine
	}
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend() error {
	backendType := app.backendType()

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	keyMap, err := app.config.KeyMap()
	if err != nil {
		return err
	}

	width, height := app.config.GetWindowResolution()
	graphicsConfig := graphics.Config{
		WindowTitle:      "gogb",
		WindowWidth:      width,
		WindowHeight:     height,
		Fullscreen:       app.config.Window.Fullscreen,
		VSync:            app.config.Video.VSync,
		Filter:           app.config.Video.Filter,
		KeyMap:           keyMap,
		OutputDir:        app.config.Paths.Screenshots,
		ScreenshotFrames: app.config.Emulation.Screenshot,
		ScreenshotScale:  app.config.Window.Scale,
		Headless:         backendType == graphics.BackendHeadless,
		Debug:            app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		// Without a display Ebitengine cannot start; run headless instead
		if backendType != graphics.BackendEbitengine {
			return fmt.Errorf("failed to initialize graphics backend: %w", err)
		}
		app.logger.Printf("[APP_WARNING] Ebitengine backend failed (%v), falling back to headless mode", err)
		app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
		if err != nil {
			return fmt.Errorf("failed to create fallback headless backend: %w", err)
		}
		graphicsConfig.Headless = true
		if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
			return fmt.Errorf("failed to initialize fallback headless backend: %w", err)
		}
		app.headless = true
	}

	app.window, err = app.graphicsBackend.CreateWindow(
		graphicsConfig.WindowTitle,
		graphicsConfig.WindowWidth,
		graphicsConfig.WindowHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	return nil
}

// LoadROM loads a program image into the emulator and restores its battery save
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{
			Component: "cartridge",
			Operation: "load ROM",
			Err:       err,
		}
	}

	return app.loadCartridge(cart, romPath)
}

// loadCartridge installs cart as the running program
func (app *Application) loadCartridge(cart cartridge.Cartridge, romPath string) error {
	app.cartridge = cart
	app.romPath = romPath

	// Swapping the cartridge resets the system
	app.bus.LoadCartridge(cart)
	app.emulator.Reset()
	app.renderedFrame = 0

	if _, err := app.saves.Load(cart, romPath); err != nil {
		app.logger.Printf("[APP_WARNING] Battery save not restored: %v", err)
	}

	app.logger.Printf("[APP] Loaded %s", cart.Describe())

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("gogb - %s", cart.Header().Title))
	}

	app.emulator.Start()
	return nil
}

// Run starts the main application loop. It returns nil when the user quits,
// the frame limit is reached or the program executes STOP.
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running.Store(true)
	app.startTime = time.Now()
	app.lastFPSTime = time.Now()

	if app.config.Debug.EnableLogging {
		app.logger.Printf("[APP_DEBUG] Starting emulator with %s backend", app.graphicsBackend.GetName())
	}
	if app.headless && app.emulator.frameLimit == 0 {
		app.logger.Printf("[APP_WARNING] Headless run without a frame limit only ends on STOP")
	}

	// Ebitengine owns the loop and calls back once per tick
	if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
		ebitengineWindow.SetEmulatorUpdateFunc(app.tick)
		return app.finish(ebitengineWindow.Run())
	}

	targetFrameTime := app.emulator.GetTargetFrameTime()
	for app.running.Load() {
		frameStartTime := time.Now()

		if err := app.tick(); err != nil {
			return app.finish(err)
		}

		if !app.headless {
			if elapsed := time.Since(frameStartTime); elapsed < targetFrameTime {
				time.Sleep(targetFrameTime - elapsed)
			}
		}
	}

	if app.config.Debug.EnableLogging {
		app.logger.Println("[APP_DEBUG] Emulator main loop ended")
	}
	return nil
}

// tick runs one host frame: input, emulation, presentation
func (app *Application) tick() error {
	frameStartTime := time.Now()

	app.processInput()
	if !app.running.Load() {
		return errQuit
	}

	emulatorStart := time.Now()
	if err := app.updateEmulator(); err != nil {
		return err
	}
	app.emulatorTime = time.Since(emulatorStart)

	renderStart := time.Now()
	if err := app.render(); err != nil {
		return err
	}
	app.renderTime = time.Since(renderStart)

	app.updatePerformanceMetrics(frameStartTime)

	if app.window != nil && app.window.ShouldClose() {
		app.Stop()
		return errQuit
	}
	return nil
}

// finish maps the error that ended the loop to Run's result
func (app *Application) finish(err error) error {
	app.running.Store(false)

	switch {
	case err == nil, errors.Is(err, errQuit):
		return nil
	case errors.Is(err, ErrFrameLimit):
		app.logger.Printf("[APP] Frame limit reached after %d frames", app.emulator.GetFrameCount())
		return nil
	case errors.Is(err, cpu.ErrStop):
		app.logger.Printf("[APP] Program executed STOP at frame %d", app.emulator.GetFrameCount())
		return nil
	}

	state := app.emulator.GetCPUState()
	app.logger.Printf("[APP_ERROR] Emulation stopped at PC=$%04X: %v", state.PC, err)
	if app.tracer != nil {
		for _, line := range app.tracer.Recent() {
			app.logger.Printf("[CPU_TRACE] %s", line)
		}
	}
	return &ApplicationError{Component: "emulator", Operation: "run", Err: err}
}

// updateEmulator updates the emulator state
func (app *Application) updateEmulator() error {
	if app.paused || app.cartridge == nil {
		return nil
	}
	return app.emulator.Update()
}

// processInput processes input events from the graphics backend
func (app *Application) processInput() {
	if app.window == nil {
		return
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return

		case graphics.InputEventTypeButton:
			if app.cartridge == nil {
				continue
			}
			if button, ok := event.Button.Joypad(); ok {
				app.bus.SetControllerButton(button, event.Pressed)
			}

		case graphics.InputEventTypeKey:
			app.handleKeyInput(event)
		}
	}
}

// handleKeyInput handles keys that are not mapped to the joypad
func (app *Application) handleKeyInput(event graphics.InputEvent) bool {
	if !event.Pressed {
		return false
	}

	switch event.Key {
	case graphics.KeyP:
		app.TogglePause()
		app.logger.Printf("[APP] Paused: %v", app.paused)
		return true

	case graphics.KeyF5:
		app.Reset()
		app.logger.Println("[APP] System reset")
		return true

	case graphics.KeyF12:
		path, err := app.SaveScreenshot()
		if err != nil {
			app.logger.Printf("[APP_ERROR] Screenshot failed: %v", err)
		} else {
			app.logger.Printf("[APP] Screenshot saved to %s", path)
		}
		return true
	}

	return false
}

// render presents the latest emulated frame
func (app *Application) render() error {
	if app.window == nil || app.cartridge == nil {
		return nil
	}

	frame := app.emulator.GetFrameCount()
	if frame == app.renderedFrame {
		return nil
	}
	app.renderedFrame = frame

	frameBuffer := app.emulator.GetFrameBuffer()
	if app.videoProcessor != nil && !app.videoProcessor.IsIdentity() {
		app.videoProcessor.ProcessFrame(frameBuffer[:])
	}

	if err := app.window.RenderFrame(frameBuffer); err != nil {
		return fmt.Errorf("failed to render frame: %w", err)
	}

	app.window.SwapBuffers()
	return nil
}

// SaveScreenshot writes the current frame as a PNG into the screenshot directory
func (app *Application) SaveScreenshot() (string, error) {
	if app.cartridge == nil {
		return "", errors.New("no ROM loaded")
	}

	romName := strings.TrimSuffix(filepath.Base(app.romPath), filepath.Ext(app.romPath))
	app.screenshots++
	path := filepath.Join(app.config.Paths.Screenshots, fmt.Sprintf("%s_%03d.png", romName, app.screenshots))

	frameBuffer := app.emulator.GetFrameBuffer()
	if err := graphics.SaveScreenshot(&frameBuffer, path, app.config.Window.Scale); err != nil {
		return "", err
	}
	return path, nil
}

// updatePerformanceMetrics provides basic performance tracking with minimal overhead
func (app *Application) updatePerformanceMetrics(frameStartTime time.Time) {
	now := time.Now()
	app.frameCount++

	if app.lastFPSLog.IsZero() {
		app.lastFPSLog = now
	}

	// Update FPS calculation every second
	if now.Sub(app.lastFPSTime) >= time.Second {
		elapsed := now.Sub(app.lastFPSTime).Seconds()
		app.currentFPS = float64(app.frameCount-app.frameCountAtLastFPS) / elapsed

		if totalElapsed := now.Sub(app.startTime).Seconds(); totalElapsed > 0 {
			app.averageFPS = float64(app.frameCount) / totalElapsed
		}

		app.lastFPSTime = now
		app.frameCountAtLastFPS = app.frameCount

		if app.config.Debug.EnableLogging && now.Sub(app.lastFPSLog) >= 10*time.Second {
			stats := app.emulator.GetPerformanceStats()
			app.logger.Printf("[FPS] Current: %.1f FPS | Average: %.1f FPS | Frame: %d | Emulator: %.2fms | Render: %.2fms | Jitter: %.2fms",
				app.currentFPS, app.averageFPS, stats.FrameCount,
				float64(app.emulatorTime.Nanoseconds())/1e6,
				float64(app.renderTime.Nanoseconds())/1e6,
				float64(stats.FrameJitter.Nanoseconds())/1e6)
			app.lastFPSLog = now
		}
	}

	// Frames well over budget are worth a note when debugging
	if app.config.Debug.EnableLogging && time.Since(frameStartTime) > 2*app.emulator.GetTargetFrameTime() && app.frameCount%300 == 0 {
		app.logger.Printf("[FPS_WARNING] Slow frame detected: %.2fms", float64(time.Since(frameStartTime).Nanoseconds())/1e6)
	}
}

// Stop stops the application
func (app *Application) Stop() {
	app.running.Store(false)
}

// Pause pauses the emulator
func (app *Application) Pause() {
	app.paused = true
}

// Resume resumes the emulator
func (app *Application) Resume() {
	app.paused = false
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// Reset resets the emulated system; cartridge RAM survives
func (app *Application) Reset() {
	if app.bus != nil {
		app.bus.Reset()
	}
	if app.emulator != nil {
		app.emulator.Reset()
		app.renderedFrame = 0
	}
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// GetFPS returns the current FPS
func (app *Application) GetFPS() float64 {
	return app.currentFPS
}

// GetFrameCount returns the number of emulated frames since the program was loaded
func (app *Application) GetFrameCount() uint64 {
	return app.emulator.GetFrameCount()
}

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetBus returns the emulated system
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetWindow returns the presentation window
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// SetLogger replaces the application logger
func (app *Application) SetLogger(logger *log.Logger) {
	app.logger = logger
	if app.saves != nil {
		app.saves.SetLogger(logger)
	}
}

// ApplyDebugSettings applies the debug section of the configuration
func (app *Application) ApplyDebugSettings() error {
	if app.config == nil || app.bus == nil {
		return nil
	}
	settings := app.config.Debug

	app.bus.EnableInputDebug(settings.EnableLogging)

	// GOGB_DEBUG_CPU=1 forces tracing without touching the config file
	if settings.CPUTracing || os.Getenv("GOGB_DEBUG_CPU") == "1" {
		app.tracer = debug.NewInstructionTracer(app.bus.Memory)
		app.tracer.SetLogger(app.logger)
		app.tracer.SetLimit(settings.TraceLimit)
		app.bus.SetTracer(app.tracer)
		app.logger.Println("[DEBUG] CPU tracing enabled; expect a large slowdown")
	}

	addresses, err := app.config.WatchpointAddresses()
	if err != nil {
		return err
	}
	for _, address := range addresses {
		app.bus.AddMemoryWatchpoint(address)
	}
	if len(addresses) > 0 {
		app.bus.EnableWatchpointLogging(true)
		app.logger.Printf("[DEBUG] Watching %d memory addresses", len(addresses))
	}

	if settings.FrameDump {
		app.frameDumper = debug.NewFrameDumper(app.config.Paths.FrameDumps)
		if err := app.frameDumper.Enable(); err != nil {
			return err
		}
		app.bus.SetFrameCompleteCallback(func() {
			if err := app.frameDumper.DumpFrameBuffer(app.bus.PPU.GetFrameBuffer(), app.bus.GetFrameCount()); err != nil {
				app.logger.Printf("[DEBUG] Frame dump failed: %v", err)
			}
		})
		app.logger.Printf("[DEBUG] Dumping frames to %s", app.config.Paths.FrameDumps)
	}

	if settings.StatsView {
		app.stats.Start(settings.StatsAddress)
	}

	return nil
}

// SerialOutput returns what the program has written to the serial port
func (app *Application) SerialOutput() string {
	return string(app.bus.SerialOutput())
}

// Cleanup writes battery saves and releases all resources
func (app *Application) Cleanup() error {
	if app.config != nil && app.config.Debug.EnableLogging {
		app.logger.Println("[APP_DEBUG] Cleaning up application resources...")
	}

	var lastErr error

	if app.cartridge != nil && app.config.Emulation.AutoSave {
		if _, err := app.saves.Save(app.cartridge, app.romPath); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Battery save failed: %v", err)
		}
	}

	if app.cartridge != nil && app.config.Debug.SerialEcho {
		if output := app.SerialOutput(); output != "" {
			fmt.Printf("Serial output:\n%s\n", output)
		}
	}

	if app.stats != nil {
		app.stats.Stop()
	}

	if app.saves != nil {
		if err := app.saves.Cleanup(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Save manager cleanup error: %v", err)
		}
	}

	if app.emulator != nil {
		if err := app.emulator.Cleanup(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Emulator cleanup error: %v", err)
		}
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Window cleanup error: %v", err)
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Graphics backend cleanup error: %v", err)
		}
	}

	app.initialized = false
	if app.config != nil && app.config.Debug.EnableLogging {
		app.logger.Println("[APP_DEBUG] Application cleanup complete")
	}

	return lastErr
}

// Package main implements the gogb emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gogb/internal/app"
	"gogb/internal/version"
)

// defaultHeadlessFrames bounds a headless run when neither the flag nor the config sets a limit
const defaultHeadlessFrames = 600

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to program image (.gb); may also be given as the first argument")
		configFile  = flag.String("config", "", "Path to configuration file")
		backend     = flag.String("backend", "", "Video backend: ebitengine, terminal or headless")
		headless    = flag.Bool("headless", false, "Run without a window")
		frames      = flag.Int("frames", 0, "Stop after this many frames (0 uses the config)")
		screenshots = flag.String("screenshots", "", "Comma separated frame numbers to save as PNG in headless mode")
		scale       = flag.Int("scale", 0, "Window and screenshot scale (0 uses the config)")
		speed       = flag.Float64("speed", 0, "Emulation speed multiplier (0 uses the config)")
		trace       = flag.Bool("trace", false, "Log every executed instruction")
		traceLimit  = flag.Uint64("trace-limit", 0, "Stop tracing after this many instructions")
		statsView   = flag.Bool("statsview", false, "Serve runtime statistics at "+app.NewConfig().Debug.StatsAddress)
		serial      = flag.Bool("serial", false, "Print serial port output on exit")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	if *romFile == "" && flag.NArg() > 0 {
		*romFile = flag.Arg(0)
	}
	if *romFile == "" {
		printUsage()
		os.Exit(2)
	}

	fmt.Println("gogb starting...")

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the file for this session only
	if *backend != "" {
		config.Video.Backend = *backend
	}
	if *headless {
		config.Video.Backend = "headless"
	}
	if *frames > 0 {
		config.Emulation.FrameLimit = *frames
	}
	if *screenshots != "" {
		list, err := parseFrameList(*screenshots)
		if err != nil {
			log.Fatalf("Invalid -screenshots: %v", err)
		}
		config.Emulation.Screenshot = list
	}
	if *scale > 0 {
		config.Window.Scale = *scale
	}
	if *speed > 0 {
		config.Emulation.Speed = *speed
	}
	if *trace {
		config.Debug.CPUTracing = true
	}
	if *traceLimit > 0 {
		config.Debug.TraceLimit = *traceLimit
	}
	if *statsView {
		config.Debug.StatsView = true
	}
	if *serial {
		config.Debug.SerialEcho = true
	}
	if *debug {
		config.Debug.EnableLogging = true
		config.Debug.LogLevel = "DEBUG"
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	runHeadless := config.Video.Backend == "headless"
	if runHeadless && config.Emulation.FrameLimit == 0 {
		config.Emulation.FrameLimit = defaultHeadlessFrames
		fmt.Printf("Headless run limited to %d frames (use -frames to change)\n", defaultHeadlessFrames)
	}

	application, err := app.NewApplicationWithConfig(config, runHeadless)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	setupGracefulShutdown(application)

	fmt.Printf("Loading ROM: %s\n", *romFile)
	if err := application.LoadROM(*romFile); err != nil {
		application.Cleanup()
		log.Fatalf("Failed to load ROM: %v", err)
	}

	if err := application.ApplyDebugSettings(); err != nil {
		application.Cleanup()
		log.Fatalf("Failed to apply debug settings: %v", err)
	}

	runErr := application.Run()

	fmt.Printf("Session statistics:\n")
	fmt.Printf("   Frames emulated: %d\n", application.GetFrameCount())
	fmt.Printf("   Session time: %v\n", application.GetUptime())
	fmt.Printf("   FPS: %.1f\n", application.GetFPS())

	if err := application.Cleanup(); err != nil {
		log.Printf("Application cleanup error: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Emulation failed: %v", runErr)
	}
	fmt.Println("gogb shutting down")
}

// parseFrameList parses "60,120,300" into frame numbers
func parseFrameList(text string) ([]int, error) {
	var list []int
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		frame, err := strconv.Atoi(field)
		if err != nil || frame < 1 {
			return nil, fmt.Errorf("bad frame number %q", field)
		}
		list = append(list, frame)
	}
	return list, nil
}

// setupGracefulShutdown ends the frame loop on SIGINT or SIGTERM so battery
// saves are still written
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nInterrupt received, shutting down gracefully...")
		application.Stop()
	}()
}

func printUsage() {
	fmt.Println("gogb - handheld console emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gogb [options] <rom.gb>")
	fmt.Println("  gogb -headless -frames 300 -screenshots 300 <rom.gb>")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("    Arrow Keys / WASD - D-Pad")
	fmt.Println("    X / J             - A Button")
	fmt.Println("    Z / K             - B Button")
	fmt.Println("    Enter             - Start")
	fmt.Println("    Space / Backspace - Select")
	fmt.Println()
	fmt.Println("  Special Keys:")
	fmt.Println("    Escape            - Quit (Q also quits in the terminal backend)")
	fmt.Println("    P                 - Pause")
	fmt.Println("    F5                - Reset")
	fmt.Println("    F12               - Screenshot")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Printf("  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Println("  Saves:       ./saves/")
	fmt.Println("  Screenshots: ./screenshots/")
	fmt.Println()
	fmt.Println("SUPPORTED CARTRIDGES:")
	fmt.Println("  - ROM only")
	fmt.Println("  - MBC1 (+RAM, +battery)")
	fmt.Println("  - MBC3 (+RAM, +battery, +RTC)")
}

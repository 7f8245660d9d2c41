// Package app provides configuration management for the emulator.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gogb/internal/graphics"
	"gogb/internal/ppu"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // LCD resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend    string  `json:"backend"` // "ebitengine", "headless", "terminal"
	VSync      bool    `json:"vsync"`
	Filter     string  `json:"filter"` // "nearest", "linear"
	Brightness float32 `json:"brightness"`
	Contrast   float32 `json:"contrast"`
	Saturation float32 `json:"saturation"`
}

// InputConfig maps keyboard key names to joypad button names
type InputConfig struct {
	Keys map[string]string `json:"keys"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	Speed      float64 `json:"speed"`       // Frames per host tick multiplier, 1.0 = real time
	FrameLimit int     `json:"frame_limit"` // Stop after this many frames; 0 = unlimited
	Screenshot []int   `json:"screenshot_frames"`
	AutoSave   bool    `json:"auto_save"` // Write battery RAM on exit
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging bool     `json:"enable_logging"`
	LogLevel      string   `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
	CPUTracing    bool     `json:"cpu_tracing"`
	TraceLimit    uint64   `json:"trace_limit"`
	StatsView     bool     `json:"stats_view"`
	StatsAddress  string   `json:"stats_address"`
	Watchpoints   []string `json:"watchpoints"` // hex addresses such as "C100"
	FrameDump     bool     `json:"frame_dump"`
	SerialEcho    bool     `json:"serial_echo"` // Print serial output on exit
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs        string `json:"roms"`
	SaveData    string `json:"save_data"`
	Screenshots string `json:"screenshots"`
	FrameDumps  string `json:"frame_dumps"`
	Config      string `json:"config"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	keys := make(map[string]string)
	for key, button := range graphics.DefaultKeyMap() {
		keys[key.String()] = buttonName(button)
	}

	return &Config{
		Window: WindowConfig{
			Fullscreen: false,
			Scale:      4, // 640x576
		},
		Video: VideoConfig{
			Backend:    "ebitengine",
			VSync:      true,
			Filter:     "nearest",
			Brightness: 1.0,
			Contrast:   1.0,
			Saturation: 1.0,
		},
		Input: InputConfig{
			Keys: keys,
		},
		Emulation: EmulationConfig{
			Speed:    1.0,
			AutoSave: true,
		},
		Debug: DebugConfig{
			LogLevel:     "INFO",
			StatsAddress: "localhost:12600",
		},
		Paths: PathsConfig{
			ROMs:        "./roms",
			SaveData:    "./saves",
			Screenshots: "./screenshots",
			FrameDumps:  "./frames",
			Config:      "./config",
		},
	}
}

func buttonName(button graphics.Button) string {
	switch button {
	case graphics.ButtonA:
		return "a"
	case graphics.ButtonB:
		return "b"
	case graphics.ButtonSelect:
		return "select"
	case graphics.ButtonStart:
		return "start"
	case graphics.ButtonUp:
		return "up"
	case graphics.ButtonDown:
		return "down"
	case graphics.ButtonLeft:
		return "left"
	case graphics.ButtonRight:
		return "right"
	}
	return "unknown"
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Maps merge on unmarshal; the file's bindings replace the defaults
	c.Input.Keys = nil
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// Validate checks the configuration after it has been changed in code
func (c *Config) Validate() error {
	return c.validate()
}

// validate rejects values that cannot work and resets out-of-range
// tuning values to their defaults
func (c *Config) validate() error {
	switch c.Video.Backend {
	case "", "ebitengine", "headless", "terminal":
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: fmt.Errorf("unknown backend")}
	}

	if _, err := c.KeyMap(); err != nil {
		return &ConfigError{Field: "input.keys", Value: c.Input.Keys, Err: err}
	}

	if _, err := c.WatchpointAddresses(); err != nil {
		return &ConfigError{Field: "debug.watchpoints", Value: c.Debug.Watchpoints, Err: err}
	}

	if c.Emulation.FrameLimit < 0 {
		return &ConfigError{Field: "emulation.frame_limit", Value: c.Emulation.FrameLimit, Err: fmt.Errorf("must not be negative")}
	}

	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}

	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}

	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}

	if c.Emulation.Speed <= 0 || c.Emulation.Speed > 8 {
		c.Emulation.Speed = 1.0
	}

	return nil
}

// createDirectories creates required directories
func (c *Config) createDirectories() error {
	dirs := []string{
		c.Paths.SaveData,
		c.Paths.Config,
	}

	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// KeyMap resolves the configured key names to a graphics key mapping
func (c *Config) KeyMap() (map[graphics.Key]graphics.Button, error) {
	if len(c.Input.Keys) == 0 {
		return graphics.DefaultKeyMap(), nil
	}
	return graphics.ParseKeyMap(c.Input.Keys)
}

// WatchpointAddresses parses the configured watchpoint addresses
func (c *Config) WatchpointAddresses() ([]uint16, error) {
	addresses := make([]uint16, 0, len(c.Debug.Watchpoints))
	for _, text := range c.Debug.Watchpoints {
		var address uint16
		trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(text), "$"), "0x")
		if _, err := fmt.Sscanf(trimmed, "%x", &address); err != nil {
			return nil, fmt.Errorf("bad address %q: %w", text, err)
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// GetLCDResolution returns the native LCD resolution
func (c *Config) GetLCDResolution() (int, int) {
	return ppu.Width, ppu.Height
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	width, height := c.GetLCDResolution()
	return width * c.Window.Scale, height * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/gogb.json"
}

// GetDefaultConfigDir returns the default configuration directory
func GetDefaultConfigDir() string {
	return "./config"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

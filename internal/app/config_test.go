package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gogb/internal/graphics"
)

func TestNewConfig_Defaults(t *testing.T) {
	config := NewConfig()

	if config.Video.Backend != "ebitengine" || config.Window.Scale != 4 {
		t.Errorf("Unexpected defaults: backend=%q scale=%d", config.Video.Backend, config.Window.Scale)
	}
	if width, height := config.GetWindowResolution(); width != 640 || height != 576 {
		t.Errorf("Expected 640x576, got %dx%d", width, height)
	}

	keyMap, err := config.KeyMap()
	if err != nil {
		t.Fatalf("KeyMap: %v", err)
	}
	if keyMap[graphics.KeyEnter] != graphics.ButtonStart || keyMap[graphics.KeyX] != graphics.ButtonA {
		t.Error("Default key names should round-trip to the default key map")
	}
	if len(keyMap) != len(graphics.DefaultKeyMap()) {
		t.Errorf("Expected %d key bindings, got %d", len(graphics.DefaultKeyMap()), len(keyMap))
	}
}

func TestConfig_LoadCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config", "gogb.json")

	config := NewConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected the config file to be created: %v", err)
	}
	if config.GetConfigPath() != path {
		t.Errorf("Expected config path %s, got %s", path, config.GetConfigPath())
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gogb.json")

	config := NewConfig()
	config.Video.Backend = "terminal"
	config.Emulation.FrameLimit = 120
	config.Debug.Watchpoints = []string{"C100", "$FF40"}
	config.Paths.SaveData = filepath.Join(dir, "saves")
	config.Paths.Config = dir
	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded := NewConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !loaded.IsLoaded() {
		t.Error("Config should report loaded")
	}
	if loaded.Video.Backend != "terminal" || loaded.Emulation.FrameLimit != 120 {
		t.Errorf("Values not restored: %+v %+v", loaded.Video, loaded.Emulation)
	}
	if _, err := os.Stat(config.Paths.SaveData); err != nil {
		t.Errorf("Save directory should be created: %v", err)
	}
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"backend", func(c *Config) { c.Video.Backend = "opengl" }, "video.backend"},
		{"key", func(c *Config) { c.Input.Keys = map[string]string{"hyper": "a"} }, "input.keys"},
		{"button", func(c *Config) { c.Input.Keys = map[string]string{"x": "turbo"} }, "input.keys"},
		{"watchpoint", func(c *Config) { c.Debug.Watchpoints = []string{"zz"} }, "debug.watchpoints"},
		{"frame limit", func(c *Config) { c.Emulation.FrameLimit = -1 }, "emulation.frame_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			config := NewConfig()
			config.Paths.SaveData = filepath.Join(dir, "saves")
			config.Paths.Config = dir
			tt.mutate(config)

			path := filepath.Join(dir, "bad.json")
			writeConfigJSON(t, path, config)

			err := NewConfig().LoadFromFile(path)
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("Expected a ConfigError, got %v", err)
			}
			if configErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, configErr.Field)
			}
		})
	}
}

func TestConfig_ClampsTuningValues(t *testing.T) {
	dir := t.TempDir()
	config := NewConfig()
	config.Paths.SaveData = filepath.Join(dir, "saves")
	config.Paths.Config = dir
	config.Window.Scale = 0
	config.Video.Brightness = 9
	config.Emulation.Speed = -1

	path := filepath.Join(dir, "clamp.json")
	writeConfigJSON(t, path, config)

	loaded := NewConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Window.Scale != 1 || loaded.Video.Brightness != 1.0 || loaded.Emulation.Speed != 1.0 {
		t.Errorf("Expected clamped values, got scale=%d brightness=%v speed=%v",
			loaded.Window.Scale, loaded.Video.Brightness, loaded.Emulation.Speed)
	}
}

func TestConfig_WatchpointAddresses(t *testing.T) {
	config := NewConfig()
	config.Debug.Watchpoints = []string{"C100", "$ff40", "0xDFFF", " 8000 "}

	addresses, err := config.WatchpointAddresses()
	if err != nil {
		t.Fatalf("WatchpointAddresses: %v", err)
	}

	want := []uint16{0xC100, 0xFF40, 0xDFFF, 0x8000}
	if len(addresses) != len(want) {
		t.Fatalf("Expected %d addresses, got %d", len(want), len(addresses))
	}
	for i := range want {
		if addresses[i] != want[i] {
			t.Errorf("Address %d: expected 0x%04X, got 0x%04X", i, want[i], addresses[i])
		}
	}
}

func TestConfig_Clone(t *testing.T) {
	config := NewConfig()
	config.Debug.Watchpoints = []string{"C000"}

	clone := config.Clone()
	clone.Debug.Watchpoints[0] = "D000"
	clone.Input.Keys["enter"] = "a"

	if config.Debug.Watchpoints[0] != "C000" || config.Input.Keys["enter"] != "start" {
		t.Error("Clone should not share slices or maps with the original")
	}
}

func writeConfigJSON(t *testing.T, path string, config *Config) {
	t.Helper()

	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

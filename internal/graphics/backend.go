// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"fmt"
	"sort"
	"strings"

	"gogb/internal/input"
	"gogb/internal/ppu"
)

// Backend represents a graphics rendering backend (Ebitengine, terminal, headless)
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// SwapBuffers presents the rendered frame
	SwapBuffers()

	// PollEvents processes input events
	PollEvents() []InputEvent

	// RenderFrame renders a completed LCD frame to the window
	RenderFrame(frameBuffer [ppu.Width * ppu.Height]uint32) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// Rendering configuration
	Filter string // "nearest", "linear"

	// Keyboard to joypad mapping; nil selects DefaultKeyMap
	KeyMap map[Key]Button

	// Headless screenshot options
	OutputDir        string
	ScreenshotFrames []int
	ScreenshotScale  int

	// Backend-specific options
	Headless bool
	Debug    bool
}

// keyMap returns the configured mapping or the default one
func (c Config) keyMap() map[Key]Button {
	if c.KeyMap == nil {
		return DefaultKeyMap()
	}
	return c.KeyMap
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type      InputEventType
	Key       Key
	Button    Button
	Pressed   bool
	Modifiers ModifierKey
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents keyboard keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
	KeyX
	KeyZ
	KeyQ
	KeyP
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// keyNames is used by the configuration file
var keyNames = map[string]Key{
	"escape":    KeyEscape,
	"enter":     KeyEnter,
	"space":     KeySpace,
	"backspace": KeyBackspace,
	"tab":       KeyTab,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"w":         KeyW,
	"a":         KeyA,
	"s":         KeyS,
	"d":         KeyD,
	"j":         KeyJ,
	"k":         KeyK,
	"x":         KeyX,
	"z":         KeyZ,
	"q":         KeyQ,
	"p":         KeyP,
	"f1":        KeyF1,
	"f2":        KeyF2,
	"f3":        KeyF3,
	"f4":        KeyF4,
	"f5":        KeyF5,
	"f6":        KeyF6,
	"f7":        KeyF7,
	"f8":        KeyF8,
	"f9":        KeyF9,
	"f10":       KeyF10,
	"f11":       KeyF11,
	"f12":       KeyF12,
}

// ParseKey resolves a key name such as "enter" or "f5"
func ParseKey(name string) (Key, error) {
	key, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return KeyUnknown, fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}

// String returns the configuration name of the key
func (k Key) String() string {
	for name, key := range keyNames {
		if key == k {
			return name
		}
	}
	return "unknown"
}

// Button represents joypad buttons
type Button int

const (
	ButtonUnknown Button = iota
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = map[string]Button{
	"a":      ButtonA,
	"b":      ButtonB,
	"select": ButtonSelect,
	"start":  ButtonStart,
	"up":     ButtonUp,
	"down":   ButtonDown,
	"left":   ButtonLeft,
	"right":  ButtonRight,
}

// ParseButton resolves a joypad button name such as "start"
func ParseButton(name string) (Button, error) {
	button, ok := buttonNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ButtonUnknown, fmt.Errorf("unknown button %q", name)
	}
	return button, nil
}

// Joypad returns the joypad line driven by this button
func (b Button) Joypad() (input.Button, bool) {
	switch b {
	case ButtonA:
		return input.A, true
	case ButtonB:
		return input.B, true
	case ButtonSelect:
		return input.Select, true
	case ButtonStart:
		return input.Start, true
	case ButtonUp:
		return input.Up, true
	case ButtonDown:
		return input.Down, true
	case ButtonLeft:
		return input.Left, true
	case ButtonRight:
		return input.Right, true
	}
	return 0, false
}

// DefaultKeyMap returns the stock keyboard layout
func DefaultKeyMap() map[Key]Button {
	return map[Key]Button{
		KeyUp:        ButtonUp,
		KeyDown:      ButtonDown,
		KeyLeft:      ButtonLeft,
		KeyRight:     ButtonRight,
		KeyW:         ButtonUp,
		KeyS:         ButtonDown,
		KeyA:         ButtonLeft,
		KeyD:         ButtonRight,
		KeyX:         ButtonA,
		KeyZ:         ButtonB,
		KeyJ:         ButtonA,
		KeyK:         ButtonB,
		KeyEnter:     ButtonStart,
		KeySpace:     ButtonSelect,
		KeyBackspace: ButtonSelect,
	}
}

// ParseKeyMap builds a mapping from key name to button name pairs
func ParseKeyMap(names map[string]string) (map[Key]Button, error) {
	keyMap := make(map[Key]Button, len(names))

	// Sorted so the first bad entry reported is stable
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	for _, keyName := range keys {
		key, err := ParseKey(keyName)
		if err != nil {
			return nil, err
		}
		button, err := ParseButton(names[keyName])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyName, err)
		}
		keyMap[key] = button
	}
	return keyMap, nil
}

// MapKeyEvents converts key events to button events where the key is mapped.
// Unmapped events pass through unchanged.
func MapKeyEvents(events []InputEvent, keyMap map[Key]Button) []InputEvent {
	if len(events) == 0 {
		return nil
	}

	mapped := make([]InputEvent, 0, len(events))
	for _, event := range events {
		if event.Type == InputEventTypeKey {
			if button, exists := keyMap[event.Key]; exists {
				mapped = append(mapped, InputEvent{
					Type:    InputEventTypeButton,
					Button:  button,
					Pressed: event.Pressed,
				})
				continue
			}
		}
		mapped = append(mapped, event)
	}
	return mapped
}

// ModifierKey represents modifier keys
type ModifierKey int

const (
	ModifierNone  ModifierKey = 0
	ModifierShift ModifierKey = 1 << iota
	ModifierCtrl
	ModifierAlt
	ModifierSuper
)

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	case "":
		// Default to Ebitengine for GUI mode
		return NewEbitengineBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}

// Helper type assertion functions

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	if ebitengineWindow, ok := window.(*EbitengineWindow); ok {
		return ebitengineWindow, true
	}
	return nil, false
}

// AsHeadlessWindow tries to cast a Window to HeadlessWindow
func AsHeadlessWindow(window Window) (*HeadlessWindow, bool) {
	headlessWindow, ok := window.(*HeadlessWindow)
	return headlessWindow, ok
}

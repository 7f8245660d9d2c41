//go:build headless

package graphics

import (
	"errors"

	"gogb/internal/ppu"
)

// errNoWindowSystem is returned by every windowed operation in builds tagged
// headless, which leave out Ebitengine and its cgo dependencies
var errNoWindowSystem = errors.New("ebitengine backend excluded by the headless build tag")

// EbitengineBackend keeps CreateBackend compiling without Ebitengine;
// Initialize always fails, so callers fall back to the headless backend
type EbitengineBackend struct{}

// EbitengineWindow never exists in headless builds
type EbitengineWindow struct{}

// NewEbitengineBackend returns the placeholder backend
func NewEbitengineBackend() Backend { return &EbitengineBackend{} }

func (b *EbitengineBackend) Initialize(Config) error { return errNoWindowSystem }
func (b *EbitengineBackend) Cleanup() error          { return nil }
func (b *EbitengineBackend) IsHeadless() bool        { return true }
func (b *EbitengineBackend) GetName() string         { return "Ebitengine (unavailable)" }

func (b *EbitengineBackend) CreateWindow(string, int, int) (Window, error) {
	return nil, errNoWindowSystem
}

func (w *EbitengineWindow) SetTitle(string)                    {}
func (w *EbitengineWindow) GetSize() (width, height int)       { return ppu.Width, ppu.Height }
func (w *EbitengineWindow) ShouldClose() bool                  { return true }
func (w *EbitengineWindow) SwapBuffers()                       {}
func (w *EbitengineWindow) PollEvents() []InputEvent           { return nil }
func (w *EbitengineWindow) Cleanup() error                     { return nil }
func (w *EbitengineWindow) Run() error                         { return errNoWindowSystem }
func (w *EbitengineWindow) SetEmulatorUpdateFunc(func() error) {}

func (w *EbitengineWindow) RenderFrame([ppu.Width * ppu.Height]uint32) error {
	return errNoWindowSystem
}

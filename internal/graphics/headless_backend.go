package graphics

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"gogb/internal/ppu"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// Selected frames are written as PNG screenshots.
type HeadlessWindow struct {
	title       string
	width       int
	height      int
	running     bool
	frameCount  int
	outputPath  string
	scale       int
	screenshots map[int]bool
	saved       []string
	lastFrame   [ppu.Width * ppu.Height]uint32
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	outputPath := b.config.OutputDir
	if outputPath == "" {
		outputPath = "screenshots"
	}
	scale := b.config.ScreenshotScale
	if scale < 1 {
		scale = 1
	}

	screenshots := make(map[int]bool, len(b.config.ScreenshotFrames))
	for _, frame := range b.config.ScreenshotFrames {
		screenshots[frame] = true
	}

	return &HeadlessWindow{
		title:       title,
		width:       width,
		height:      height,
		running:     true,
		outputPath:  outputPath,
		scale:       scale,
		screenshots: screenshots,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing in headless mode
func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame counts the frame and saves it when it was requested
func (w *HeadlessWindow) RenderFrame(frameBuffer [ppu.Width * ppu.Height]uint32) error {
	w.frameCount++
	w.lastFrame = frameBuffer

	if !w.screenshots[w.frameCount] {
		return nil
	}

	path := filepath.Join(w.outputPath, fmt.Sprintf("frame_%04d.png", w.frameCount))
	if err := SaveScreenshot(&frameBuffer, path, w.scale); err != nil {
		return err
	}
	w.saved = append(w.saved, path)
	log.Printf("[HEADLESS] Saved frame %d to %s", w.frameCount, path)
	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// SavedScreenshots returns the paths written so far
func (w *HeadlessWindow) SavedScreenshots() []string {
	return append([]string(nil), w.saved...)
}

// LastFrame returns the most recently rendered frame
func (w *HeadlessWindow) LastFrame() [ppu.Width * ppu.Height]uint32 {
	return w.lastFrame
}

// SaveScreenshot writes a frame as a PNG, scaled up by an integer factor
// with nearest-neighbour sampling so the pixels stay sharp
func SaveScreenshot(frameBuffer *[ppu.Width * ppu.Height]uint32, path string, scale int) error {
	if scale < 1 {
		scale = 1
	}

	src := NewFrameImage()
	FillImage(src, frameBuffer)

	var out image.Image = src
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, ppu.Width*scale, ppu.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		out = dst
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, out); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

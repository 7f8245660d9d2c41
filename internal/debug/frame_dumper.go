package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gogb/internal/ppu"
)

// shadeGlyphs renders the four shades from lightest to darkest
var shadeGlyphs = map[uint32]byte{
	ppu.ShadeWhite:     '.',
	ppu.ShadeLightGray: '+',
	ppu.ShadeDarkGray:  '*',
	ppu.ShadeBlack:     '#',
}

// FrameDumper provides utilities for dumping frame buffer contents
type FrameDumper struct {
	outputDir    string
	dumpEnabled  bool
	dumped       int
	maxDumps     int
	dumpInterval int // Dump every N frames
	pixelFilter  func(x, y int, rgba uint32) bool
}

// NewFrameDumper creates a new frame dumper
func NewFrameDumper(outputDir string) *FrameDumper {
	return &FrameDumper{
		outputDir:    outputDir,
		maxDumps:     10,
		dumpInterval: 1,
	}
}

// Enable activates frame dumping
func (fd *FrameDumper) Enable() error {
	if err := os.MkdirAll(fd.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create frame dump directory: %w", err)
	}
	fd.dumpEnabled = true
	return nil
}

// Disable deactivates frame dumping
func (fd *FrameDumper) Disable() {
	fd.dumpEnabled = false
}

// SetMaxDumps sets the maximum number of frames to dump
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// SetDumpInterval sets the interval between frame dumps
func (fd *FrameDumper) SetDumpInterval(interval int) {
	if interval < 1 {
		interval = 1
	}
	fd.dumpInterval = interval
}

// SetPixelFilter sets a filter function for which pixels to include in dumps
func (fd *FrameDumper) SetPixelFilter(filter func(x, y int, rgba uint32) bool) {
	fd.pixelFilter = filter
}

// Dumped returns the number of frames written so far
func (fd *FrameDumper) Dumped() int {
	return fd.dumped
}

// DumpFrameBuffer writes a frame as one glyph per pixel followed by a shade
// histogram. Filtered-out pixels are written as spaces.
func (fd *FrameDumper) DumpFrameBuffer(frameBuffer [ppu.Width * ppu.Height]uint32, frameNum uint64) error {
	if !fd.dumpEnabled {
		return nil
	}
	if frameNum%uint64(fd.dumpInterval) != 0 {
		return nil
	}
	if fd.dumped >= fd.maxDumps {
		return nil
	}

	filePath := filepath.Join(fd.outputDir, fmt.Sprintf("frame_%06d.txt", frameNum))
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create frame dump file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Frame Buffer Dump\n")
	fmt.Fprintf(file, "Frame Number: %d\n", frameNum)
	fmt.Fprintf(file, "Dimensions: %dx%d\n", ppu.Width, ppu.Height)
	fmt.Fprintf(file, "===================\n\n")

	colorFreq := make(map[uint32]int)
	line := make([]byte, ppu.Width)

	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			pixel := frameBuffer[y*ppu.Width+x]
			colorFreq[pixel]++

			if fd.pixelFilter != nil && !fd.pixelFilter(x, y, pixel) {
				line[x] = ' '
				continue
			}
			glyph, ok := shadeGlyphs[pixel]
			if !ok {
				glyph = '?'
			}
			line[x] = glyph
		}
		fmt.Fprintf(file, "%03d %s\n", y, line)
	}

	fmt.Fprintf(file, "\nColor Frequency Analysis:\n")
	colors := make([]uint32, 0, len(colorFreq))
	for color := range colorFreq {
		colors = append(colors, color)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] > colors[j] })

	total := float64(ppu.Width * ppu.Height)
	for _, color := range colors {
		count := colorFreq[color]
		fmt.Fprintf(file, "#%08X | %5d | %6.2f%%\n", color, count, float64(count)/total*100)
	}

	fd.dumped++
	return nil
}

// CreateRegionFilter creates a filter for a specific rectangular region
func CreateRegionFilter(x1, y1, x2, y2 int) func(x, y int, rgba uint32) bool {
	return func(x, y int, rgba uint32) bool {
		return x >= x1 && x <= x2 && y >= y1 && y <= y2
	}
}

// CreateShadeFilter creates a filter that keeps only one shade
func CreateShadeFilter(shade uint32) func(x, y int, rgba uint32) bool {
	return func(x, y int, rgba uint32) bool {
		return rgba == shade
	}
}

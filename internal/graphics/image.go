package graphics

import (
	"image"

	"gogb/internal/ppu"
)

// NewFrameImage allocates an image sized for one LCD frame
func NewFrameImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height))
}

// FillImage copies a packed 0xRRGGBBAA frame into img, which must be
// ppu.Width x ppu.Height. Returns the number of non-white pixels.
func FillImage(img *image.RGBA, frameBuffer *[ppu.Width * ppu.Height]uint32) int {
	inked := 0
	for i, pixel := range frameBuffer {
		r, g, b, a := ppu.RGBA(pixel)
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = r, g, b, a
		if pixel != ppu.ShadeWhite {
			inked++
		}
	}
	return inked
}

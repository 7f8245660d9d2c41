package graphics

// VideoProcessor adjusts brightness, contrast and saturation of packed
// 0xRRGGBBAA pixels. Alpha is carried through untouched.
//
// Brightness and contrast act on each channel independently, so they are
// folded into one 256-entry table rebuilt whenever a setting changes.
type VideoProcessor struct {
	brightness float32
	contrast   float32
	saturation float32

	table [256]uint8
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(brightness, contrast, saturation float32) *VideoProcessor {
	vp := &VideoProcessor{
		brightness: brightness,
		contrast:   contrast,
		saturation: saturation,
	}
	vp.rebuild()
	return vp
}

// IsIdentity reports whether processing would leave frames unchanged
func (vp *VideoProcessor) IsIdentity() bool {
	return vp.brightness == 1.0 && vp.contrast == 1.0 && vp.saturation == 1.0
}

func (vp *VideoProcessor) rebuild() {
	for i := range vp.table {
		v := float32(i) * vp.brightness
		if vp.contrast != 1.0 {
			v = ((v/255.0-0.5)*vp.contrast + 0.5) * 255.0
		}
		vp.table[i] = uint8(clamp(v, 0, 255))
	}
}

// ProcessFrame applies video effects to a frame buffer in place
func (vp *VideoProcessor) ProcessFrame(frameBuffer []uint32) []uint32 {
	if vp.IsIdentity() {
		return frameBuffer
	}

	for i, pixel := range frameBuffer {
		r := vp.table[uint8(pixel>>24)]
		g := vp.table[uint8(pixel>>16)]
		b := vp.table[uint8(pixel>>8)]

		if vp.saturation != 1.0 {
			r, g, b = vp.saturate(r, g, b)
		}

		frameBuffer[i] = uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | pixel&0xFF
	}

	return frameBuffer
}

// saturate moves each channel toward or away from the pixel's luma
// (ITU-R BT.601 weights)
func (vp *VideoProcessor) saturate(r, g, b uint8) (uint8, uint8, uint8) {
	luma := 0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)
	mix := func(c uint8) uint8 {
		return uint8(clamp(luma+(float32(c)-luma)*vp.saturation, 0, 255))
	}
	return mix(r), mix(g), mix(b)
}

func clamp(value, lo, hi float32) float32 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// SetBrightness updates the brightness value
func (vp *VideoProcessor) SetBrightness(brightness float32) {
	vp.brightness = brightness
	vp.rebuild()
}

// SetContrast updates the contrast value
func (vp *VideoProcessor) SetContrast(contrast float32) {
	vp.contrast = contrast
	vp.rebuild()
}

// SetSaturation updates the saturation value
func (vp *VideoProcessor) SetSaturation(saturation float32) {
	vp.saturation = saturation
}

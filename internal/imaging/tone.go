package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
)

// AdjustTone applies the linear mapping out = clamp(round(gain*in + offset), 0, 255)
// to every sample of every channel.
//
// Parameters:
//   - src: Source buffer (not modified).
//   - gain: Contrast multiplier. 1.0 leaves contrast unchanged.
//   - offset: Brightness offset added after scaling.
//
// Returns a new buffer with the same shape as src. AdjustTone(src, 1, 0) is
// bit-identical to src.
//
// # Implementation
//
// Because the mapping depends only on the input sample, a 256-entry lookup table
// is built once and rows are remapped in parallel.
func AdjustTone(src *Buffer, gain float64, offset int) *Buffer {
	var lut [256]uint8
	for i := range lut {
		lut[i] = clampByte(gain*float64(i) + float64(offset))
	}

	dst := newLike(src)
	stride := src.width * src.channels
	parallel.Line(src.height, func(start, end int) {
		for i := start * stride; i < end*stride; i++ {
			dst.pix[i] = lut[src.pix[i]]
		}
	})
	return dst
}

// AdjustContrast scales every sample by gain with no offset.
func AdjustContrast(src *Buffer, gain float64) *Buffer {
	return AdjustTone(src, gain, 0)
}

// AdjustBrightness shifts every sample by offset with unit gain.
func AdjustBrightness(src *Buffer, offset int) *Buffer {
	return AdjustTone(src, 1, offset)
}

package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
)

// SharpenKernel returns the 3x3 sharpening kernel for the given strength:
//
//	 0   -1    0
//	-1  5+s   -1
//	 0   -1    0
//
// Strength 0 is the standard sharpen kernel. Negative strengths are treated as 0.
func SharpenKernel(strength int) [3][3]int {
	if strength < 0 {
		strength = 0
	}
	return [3][3]int{
		{0, -1, 0},
		{-1, 5 + strength, -1},
		{0, -1, 0},
	}
}

// Sharpen convolves every channel independently with SharpenKernel(strength).
//
// Pixels outside the frame take the value of the nearest edge pixel (replicate
// border), which keeps uniform borders from darkening. Each output sample is the
// integer convolution sum saturated to [0, 255]. The output has the same shape
// as src.
func Sharpen(src *Buffer, strength int) *Buffer {
	kernel := SharpenKernel(strength)

	w, h, c := src.width, src.height, src.channels
	dst := newLike(src)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				for ch := 0; ch < c; ch++ {
					var sum int
					for ky := -1; ky <= 1; ky++ {
						py := clamp(y+ky, 0, h-1)
						for kx := -1; kx <= 1; kx++ {
							k := kernel[ky+1][kx+1]
							if k == 0 {
								continue
							}
							px := clamp(x+kx, 0, w-1)
							sum += k * int(src.pix[(py*w+px)*c+ch])
						}
					}
					dst.pix[(y*w+x)*c+ch] = clampInt(sum)
				}
			}
		}
	})
	return dst
}

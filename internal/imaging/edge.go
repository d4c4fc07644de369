package imaging

import (
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// DefaultHighlight is the colour painted over edge pixels in an overlay.
var DefaultHighlight = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Mask is a binary per-pixel edge map.
type Mask struct {
	Width  int
	Height int
	edges  []bool
}

// At reports whether (x, y) is an edge pixel. Out-of-frame coordinates are never edges.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.edges[y*m.Width+x]
}

// Count returns the number of edge pixels.
func (m *Mask) Count() int {
	n := 0
	for _, e := range m.edges {
		if e {
			n++
		}
	}
	return n
}

// Luma converts an RGB triple to gray with ITU-R BT.601 weights,
// round(0.299*R + 0.587*G + 0.114*B).
func Luma(r, g, b uint8) uint8 {
	return clampByte(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

// Grayscale converts a buffer to a single-channel buffer using Luma.
// Single-channel input is returned as a copy.
func Grayscale(src *Buffer) *Buffer {
	if src.channels == 1 {
		return src.Clone()
	}
	w, h := src.width, src.height
	dst := newBuffer(w, h, 1)
	parallel.Line(h, func(start, end int) {
		for i := start * w; i < end*w; i++ {
			j := i * 3
			dst.pix[i] = Luma(src.pix[j], src.pix[j+1], src.pix[j+2])
		}
	})
	return dst
}

// EdgeMask performs Canny-style edge detection and returns the binary edge map.
//
// Parameters:
//   - src: Source buffer (color or grayscale).
//   - lower: Low hysteresis threshold (0-255). Gradient magnitudes below this
//     are never edges.
//   - upper: High hysteresis threshold (0-255). Magnitudes at or above this are
//     strong edges and always kept.
//
// # Algorithm
//
//  1. Grayscale conversion with BT.601 weights (see Luma)
//
//  2. Gaussian blur: 5x5 kernel to reduce noise
//
//  3. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²), in intensity levels
//     direction = atan2(Gy, Gx)
//
//  4. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction. Border pixels are suppressed.
//
//  5. Hysteresis thresholding:
//     - Pixels at or above upper are strong edges
//     - Pixels in [lower, upper) are weak edges, kept only when 8-connected
//     (directly or through other weak edges) to a strong edge
//     - Pixels below lower are discarded
//
// Linking starts only once the complete suppressed magnitude map exists.
//
// # Threshold Ordering
//
// When lower > upper there is no weak band: lower is raised to upper and only
// strong edges survive. A uniform image produces an empty mask.
func EdgeMask(src *Buffer, lower, upper int) *Mask {
	if lower > upper {
		lower = upper
	}

	w, h := src.width, src.height
	gray := Grayscale(src)

	plane := make([][]float64, h)
	for y := 0; y < h; y++ {
		plane[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			plane[y][x] = float64(gray.pix[y*w+x])
		}
	}

	blurred := gaussianBlur(plane, w, h)
	magnitude, direction := sobel(blurred, w, h)
	suppressed := suppressNonMaxima(magnitude, direction, w, h)

	return hysteresis(suppressed, w, h, float64(lower), float64(upper))
}

// EdgeOverlay copies src and paints every pixel flagged in mask with highlight.
// Grayscale sources are expanded to RGB so the highlight is visible. Non-edge
// pixels keep the source values.
//
// Panics if the mask and buffer dimensions differ.
func EdgeOverlay(src *Buffer, mask *Mask, highlight color.RGBA) *Buffer {
	if mask.Width != src.width || mask.Height != src.height {
		panic("imaging: edge mask does not match buffer dimensions")
	}

	w, h := src.width, src.height
	dst := newBuffer(w, h, 3)
	for i := 0; i < w*h; i++ {
		j := i * 3
		switch {
		case mask.edges[i]:
			dst.pix[j], dst.pix[j+1], dst.pix[j+2] = highlight.R, highlight.G, highlight.B
		case src.channels == 1:
			v := src.pix[i]
			dst.pix[j], dst.pix[j+1], dst.pix[j+2] = v, v, v
		default:
			copy(dst.pix[j:j+3], src.pix[j:j+3])
		}
	}
	return dst
}

// DetectEdges runs EdgeMask on src and composites the result with EdgeOverlay.
func DetectEdges(src *Buffer, lower, upper int, highlight color.RGBA) (*Buffer, *Mask) {
	mask := EdgeMask(src, lower, upper)
	return EdgeOverlay(src, mask, highlight), mask
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img [][]float64, width, height int) [][]float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	const kernelSum = 273.0

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
	}
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var sum float64
				for ky := -2; ky <= 2; ky++ {
					py := clamp(y+ky, 0, height-1)
					for kx := -2; kx <= 2; kx++ {
						px := clamp(x+kx, 0, width-1)
						sum += img[py][px] * kernel[ky+2][kx+2]
					}
				}
				result[y][x] = sum / kernelSum
			}
		}
	})
	return result
}

// sobel returns the gradient magnitude and direction of img.
func sobel(img [][]float64, width, height int) (magnitude, direction [][]float64) {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude = make([][]float64, height)
	direction = make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
	}

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var gx, gy float64
				for ky := -1; ky <= 1; ky++ {
					py := clamp(y+ky, 0, height-1)
					for kx := -1; kx <= 1; kx++ {
						px := clamp(x+kx, 0, width-1)
						gx += img[py][px] * sobelX[ky+1][kx+1]
						gy += img[py][px] * sobelY[ky+1][kx+1]
					}
				}
				magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
				direction[y][x] = math.Atan2(gy, gx)
			}
		}
	})
	return magnitude, direction
}

// suppressNonMaxima keeps a magnitude only where it is a local maximum along
// its gradient direction, quantised to four sectors.
func suppressNonMaxima(magnitude, direction [][]float64, width, height int) [][]float64 {
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]
			if mag == 0 {
				continue
			}

			// Determine neighbors to compare based on gradient direction
			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			// Strict on the leading side so a plateau of equal magnitudes
			// keeps a single pixel.
			if mag > n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}
	return suppressed
}

// hysteresis classifies suppressed magnitudes into strong and weak edges and
// keeps the weak ones reachable from a strong edge through 8-connected
// candidates.
func hysteresis(suppressed [][]float64, width, height int, lower, upper float64) *Mask {
	mask := &Mask{Width: width, Height: height, edges: make([]bool, width*height)}

	stack := make([]int, 0, 64)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] >= upper && suppressed[y][x] > 0 && !mask.edges[y*width+x] {
				mask.edges[y*width+x] = true
				stack = append(stack, y*width+x)
			}
		}
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := idx%width, idx/width

		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				px, py := cx+kx, cy+ky
				if (kx == 0 && ky == 0) || px < 0 || px >= width || py < 0 || py >= height {
					continue
				}
				n := py*width + px
				if mask.edges[n] {
					continue
				}
				if v := suppressed[py][px]; v >= lower && v > 0 {
					mask.edges[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return mask
}

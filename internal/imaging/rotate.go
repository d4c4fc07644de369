package imaging

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/parallel"
)

// ValidationError reports user-supplied input that could not be interpreted.
// It is the only error class produced by the transform pipeline.
type ValidationError struct {
	Field string // parameter name, e.g. "angle"
	Input string // the text as received
	Err   error  // underlying parse failure, may be nil
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Input)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ParseAngle interprets free-form text as a rotation angle in degrees.
//
// Surrounding whitespace is ignored. Empty text, non-numeric text, NaN and
// infinities are rejected with a *ValidationError; they are never treated as 0.
func ParseAngle(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, &ValidationError{Field: "angle", Input: text, Err: fmt.Errorf("empty value")}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: "angle", Input: text, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: "angle", Input: text, Err: fmt.Errorf("not a finite number")}
	}
	return v, nil
}

// NormalizeAngle maps any angle in degrees into [0, 360).
func NormalizeAngle(degrees float64) float64 {
	a := math.Mod(degrees, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// Rotate rotates src by degrees about its center (w/2, h/2) with unit scale.
//
// Positive angles turn the content counter-clockwise as displayed. The output keeps
// the width, height and channel count of src: content rotated out of the frame is
// cropped and regions not covered by the source are black.
//
// # Sampling
//
// Each destination pixel is mapped back through the inverse rotation and sampled
// bilinearly from its four nearest source pixels. Neighbours outside the source
// contribute black, so frame edges fade instead of smearing.
func Rotate(src *Buffer, degrees float64) *Buffer {
	angle := NormalizeAngle(degrees)
	if angle == 0 {
		return src.Clone()
	}

	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	w, h, c := src.width, src.height, src.channels
	cx, cy := float64(w/2), float64(h/2)

	dst := newLike(src)
	parallel.Line(h, func(start, end int) {
		acc := make([]float64, c)
		for y := start; y < end; y++ {
			dy := float64(y) - cy
			for x := 0; x < w; x++ {
				dx := float64(x) - cx
				sx := cos*dx - sin*dy + cx
				sy := sin*dx + cos*dy + cy
				if sx <= -1 || sy <= -1 || sx >= float64(w) || sy >= float64(h) {
					continue
				}
				src.bilinear(sx, sy, acc)
				off := (y*w + x) * c
				for ch := 0; ch < c; ch++ {
					dst.pix[off+ch] = clampByte(acc[ch])
				}
			}
		}
	})
	return dst
}

// bilinear interpolates all channels at (fx, fy) into out, treating samples
// outside the frame as 0.
func (b *Buffer) bilinear(fx, fy float64, out []float64) {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	for ch := range out {
		out[ch] = 0
	}
	weights := [4]float64{(1 - tx) * (1 - ty), tx * (1 - ty), (1 - tx) * ty, tx * ty}
	coords := [4][2]int{{x0, y0}, {x0 + 1, y0}, {x0, y0 + 1}, {x0 + 1, y0 + 1}}
	for i, p := range coords {
		px, py := p[0], p[1]
		if weights[i] == 0 || px < 0 || px >= b.width || py < 0 || py >= b.height {
			continue
		}
		off := (py*b.width + px) * b.channels
		for ch := range out {
			out[ch] += weights[i] * float64(b.pix[off+ch])
		}
	}
}

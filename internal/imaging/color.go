package imaging

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a pixel value in several representations.
type ColorResult struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Hex  string   `json:"hex"`  // Hex format "#RRGGBB"
	RGB  RGBColor `json:"rgb"`  // RGB components
	Gray uint8    `json:"gray"` // Luma of the pixel
	HSL  HSLColor `json:"hsl"`  // HSL representation
}

// SampleColor reads the pixel at (x, y).
//
// Coordinates are 0-based with origin at top-left. Grayscale buffers report the
// same value for R, G and B.
//
// Returns an error if the coordinates are outside the buffer.
func SampleColor(b *Buffer, x, y int) (*ColorResult, error) {
	if x < 0 || x >= b.Width() || y < 0 || y >= b.Height() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	var r, g, bl uint8
	if b.Channels() == 1 {
		r = b.At(x, y, 0)
		g, bl = r, r
	} else {
		r, g, bl = b.At(x, y, 0), b.At(x, y, 1), b.At(x, y, 2)
	}

	h, s, l := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(bl) / 255,
	}.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	return &ColorResult{
		X:    x,
		Y:    y,
		Hex:  fmt.Sprintf("#%02X%02X%02X", r, g, bl),
		RGB:  RGBColor{R: r, G: g, B: bl},
		Gray: Luma(r, g, bl),
		HSL:  HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}, nil
}

// ParseHighlight parses a "#RRGGBB" or "#RGB" colour for edge overlays.
// The leading '#' is optional.
func ParseHighlight(hex string) (color.RGBA, error) {
	s := strings.TrimSpace(hex)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if s[0] != '#' {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return color.RGBA{}, fmt.Errorf("invalid highlight color %q: want #RGB or #RRGGBB", hex)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid highlight color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

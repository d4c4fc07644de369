package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Buffer is a width x height grid of 8-bit samples with 1 (grayscale) or 3 (RGB)
// interleaved channels, stored row-major.
//
// A Buffer is immutable once constructed. Every operation in this package returns
// a new Buffer and leaves its inputs untouched, so buffers may be shared freely
// between goroutines.
type Buffer struct {
	width    int
	height   int
	channels int
	pix      []uint8
}

// NewBuffer allocates a zero-filled (black) buffer.
//
// Returns an error if either dimension is not positive or channels is not 1 or 3.
func NewBuffer(width, height, channels int) (*Buffer, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	return newBuffer(width, height, channels), nil
}

// FromSamples builds a buffer from a flat, row-major, channel-interleaved sample
// slice. The slice is copied.
//
// Returns an error if the shape is invalid or len(pix) != width*height*channels.
func FromSamples(width, height, channels int, pix []uint8) (*Buffer, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	if want := width * height * channels; len(pix) != want {
		return nil, fmt.Errorf("sample count %d does not match %dx%dx%d (%d)",
			len(pix), width, height, channels, want)
	}
	b := newBuffer(width, height, channels)
	copy(b.pix, pix)
	return b, nil
}

// FromImage converts a decoded image into the working format.
//
// Grayscale images (*image.Gray, *image.Gray16) become single-channel buffers;
// everything else becomes 3-channel RGB. Transparent pixels are composited onto
// black since the working format carries no alpha.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		b := newBuffer(w, h, 1)
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
		return b
	case *image.Gray16:
		b := newBuffer(w, h, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				b.pix[y*w+x] = uint8(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y >> 8)
			}
		}
		return b
	}

	// Drawing onto an opaque black RGBA premultiplies and flattens alpha.
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Over)

	b := newBuffer(w, h, 3)
	for i, j := 0, 0; i < len(rgba.Pix); i, j = i+4, j+3 {
		b.pix[j] = rgba.Pix[i]
		b.pix[j+1] = rgba.Pix[i+1]
		b.pix[j+2] = rgba.Pix[i+2]
	}
	return b
}

// Image returns the buffer as a standard library image for encoding or display:
// *image.Gray for single-channel buffers and an opaque *image.NRGBA otherwise.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.width, b.height)
	if b.channels == 1 {
		g := image.NewGray(rect)
		copy(g.Pix, b.pix)
		return g
	}
	img := image.NewNRGBA(rect)
	for i, j := 0, 0; j < len(b.pix); i, j = i+4, j+3 {
		img.Pix[i] = b.pix[j]
		img.Pix[i+1] = b.pix[j+1]
		img.Pix[i+2] = b.pix[j+2]
		img.Pix[i+3] = 0xff
	}
	return img
}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.height }

// Channels returns 1 for grayscale or 3 for RGB.
func (b *Buffer) Channels() int { return b.channels }

// Len returns the number of samples (width*height*channels).
func (b *Buffer) Len() int { return len(b.pix) }

// Pixels returns width*height.
func (b *Buffer) Pixels() int { return b.width * b.height }

// At returns the sample of channel ch at (x, y). It panics if any index is out of range.
func (b *Buffer) At(x, y, ch int) uint8 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height || ch < 0 || ch >= b.channels {
		panic(fmt.Sprintf("imaging: sample (%d,%d,%d) out of range for %dx%dx%d buffer",
			x, y, ch, b.width, b.height, b.channels))
	}
	return b.pix[(y*b.width+x)*b.channels+ch]
}

// Samples returns a copy of the flat sample slice.
func (b *Buffer) Samples() []uint8 {
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := newBuffer(b.width, b.height, b.channels)
	copy(c.pix, b.pix)
	return c
}

// SameShape reports whether both buffers have identical width, height and channels.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.width == o.width && b.height == o.height && b.channels == o.channels
}

// Equal reports whether both buffers have the same shape and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if !b.SameShape(o) {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	return fmt.Sprintf("%dx%dx%d", b.width, b.height, b.channels)
}

func newBuffer(width, height, channels int) *Buffer {
	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}
}

// newLike allocates an empty buffer with the same shape as b.
func newLike(b *Buffer) *Buffer {
	return newBuffer(b.width, b.height, b.channels)
}

func checkShape(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	if channels != 1 && channels != 3 {
		return fmt.Errorf("unsupported channel count %d (want 1 or 3)", channels)
	}
	return nil
}

// clampByte rounds v half away from zero and saturates it to [0, 255].
func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// clampInt saturates an integer sample to [0, 255].
func clampInt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clamp constrains an integer value to the range [min, max].
// Used for replicate-border handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

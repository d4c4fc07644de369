package imaging

import (
	"fmt"
	"math"
)

// Region represents a rectangular region within a buffer.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// CompareResult contains before/after difference statistics.
type CompareResult struct {
	SimilarityScore  float64 `json:"similarity_score"`
	PixelsDifferent  int     `json:"pixels_different"`
	TotalPixels      int     `json:"total_pixels"`
	MeanAbsoluteDiff float64 `json:"mean_absolute_diff"`
	MaxAbsoluteDiff  int     `json:"max_absolute_diff"`
}

// diffThreshold is the mean per-channel difference above which a pixel counts
// as changed.
const diffThreshold = 10

// CompareBuffers measures how much b differs from a inside region.
//
// Parameters:
//   - a, b: Buffers of identical shape.
//   - region: Area to compare. If nil, the whole frame is compared.
//
// Returns:
//   - *CompareResult: MeanAbsoluteDiff is averaged over every sample in the
//     region; a pixel is counted in PixelsDifferent when its mean channel
//     difference exceeds 10 levels.
//   - error: Non-nil if the shapes differ or the region is empty or out of bounds.
func CompareBuffers(a, b *Buffer, region *Region) (*CompareResult, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("cannot compare %s buffer with %s buffer", a, b)
	}

	r := Region{X1: 0, Y1: 0, X2: a.Width(), Y2: a.Height()}
	if region != nil {
		r = *region
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > a.Width() || r.Y2 > a.Height() {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %s",
			r.X1, r.Y1, r.X2, r.Y2, a)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}

	c := a.Channels()
	totalPixels := (r.X2 - r.X1) * (r.Y2 - r.Y1)
	pixelsDifferent := 0
	maxDiff := 0
	var totalDiff int

	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			off := (y*a.Width() + x) * c
			pixelDiff := 0
			for ch := 0; ch < c; ch++ {
				d := absDiff(a.pix[off+ch], b.pix[off+ch])
				pixelDiff += d
				if d > maxDiff {
					maxDiff = d
				}
			}
			totalDiff += pixelDiff
			if float64(pixelDiff)/float64(c) > diffThreshold {
				pixelsDifferent++
			}
		}
	}

	similarity := 1.0 - float64(pixelsDifferent)/float64(totalPixels)
	meanDiff := float64(totalDiff) / float64(totalPixels*c)

	return &CompareResult{
		SimilarityScore:  math.Round(similarity*1000) / 1000,
		PixelsDifferent:  pixelsDifferent,
		TotalPixels:      totalPixels,
		MeanAbsoluteDiff: math.Round(meanDiff*100) / 100,
		MaxAbsoluteDiff:  maxDiff,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

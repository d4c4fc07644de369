package imaging

import (
	"fmt"

	"github.com/sourcegraph/conc"
)

// Histogram holds 256-bin intensity counts for one buffer.
//
// Gray is computed from Luma. For single-channel buffers R, G and B are copies
// of Gray so callers can always plot three colour channels.
type Histogram struct {
	Gray [256]int `json:"gray"`
	R    [256]int `json:"r"`
	G    [256]int `json:"g"`
	B    [256]int `json:"b"`
}

// HistogramPair is the before/after view shown alongside an edit.
type HistogramPair struct {
	Original Histogram `json:"original"`
	Current  Histogram `json:"current"`
}

// Total returns the number of pixels counted in the gray histogram.
func (h *Histogram) Total() int {
	n := 0
	for _, c := range h.Gray {
		n += c
	}
	return n
}

// Mean returns the mean gray intensity, or 0 for an empty histogram.
func (h *Histogram) Mean() float64 {
	var sum, n int
	for v, c := range h.Gray {
		sum += v * c
		n += c
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// ComputeHistogram counts gray and per-channel intensities in a single pass.
func ComputeHistogram(b *Buffer) Histogram {
	var h Histogram
	if b.channels == 1 {
		for _, v := range b.pix {
			h.Gray[v]++
		}
		h.R, h.G, h.B = h.Gray, h.Gray, h.Gray
		return h
	}
	for i := 0; i < len(b.pix); i += 3 {
		r, g, bl := b.pix[i], b.pix[i+1], b.pix[i+2]
		h.R[r]++
		h.G[g]++
		h.B[bl]++
		h.Gray[Luma(r, g, bl)]++
	}
	return h
}

// CompareHistograms computes the histograms of original and current concurrently.
//
// Both buffers must contain the same number of pixels; a mismatch is a
// programming error and panics.
func CompareHistograms(original, current *Buffer) HistogramPair {
	if original.Pixels() != current.Pixels() {
		panic(fmt.Sprintf("imaging: histogram sources differ in size (%s vs %s)", original, current))
	}

	var pair HistogramPair
	var wg conc.WaitGroup
	wg.Go(func() { pair.Original = ComputeHistogram(original) })
	wg.Go(func() { pair.Current = ComputeHistogram(current) })
	wg.Wait()
	return pair
}

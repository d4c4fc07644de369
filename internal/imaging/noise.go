package imaging

import (
	"math/rand/v2"
)

// NoiseSigmaScale is the standard deviation, in intensity levels, of the noise
// added at level 1.0.
const NoiseSigmaScale = 25.0

// AddNoise adds independent zero-mean Gaussian noise to every sample.
//
// Parameters:
//   - src: Source buffer (not modified).
//   - level: Noise level in [0, 1]; the standard deviation is NoiseSigmaScale*level.
//   - rng: Random source. Must not be nil. Samples are drawn in buffer order, so a
//     source with a fixed seed always produces the same output.
//
// Each noise value is added as a signed quantity and the sum is rounded and
// saturated to [0, 255]; negative noise darkens instead of wrapping around.
// A non-positive level returns an exact copy without consuming any randomness.
func AddNoise(src *Buffer, level float64, rng *rand.Rand) *Buffer {
	if rng == nil {
		panic("imaging: AddNoise requires a random source")
	}
	if level <= 0 {
		return src.Clone()
	}

	sigma := NoiseSigmaScale * level
	dst := newLike(src)
	for i, v := range src.pix {
		dst.pix[i] = clampByte(float64(v) + rng.NormFloat64()*sigma)
	}
	return dst
}

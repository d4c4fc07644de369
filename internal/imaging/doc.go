// Package imaging implements the pixel-level transform pipeline of the image
// adjuster.
//
// Every operation is a pure function from an input Buffer (plus scalar or kernel
// parameters) to a new Buffer or a derived statistic:
//   - AdjustTone / AdjustContrast / AdjustBrightness: linear gain and offset
//   - AddNoise: additive zero-mean Gaussian noise from an injected random source
//   - Sharpen: 3x3 convolution with a strength-dependent center weight
//   - EdgeMask / EdgeOverlay / DetectEdges: Canny edges painted over the image
//   - Rotate: rotation about the image center with bilinear sampling
//   - ComputeHistogram / CompareHistograms: 256-bin gray and RGB counts
//
// File I/O (Load, Save), display previews (Preview), pixel sampling
// (SampleColor) and difference statistics (CompareBuffers) support the
// collaborators that drive the pipeline.
//
// # Working Format
//
// A Buffer holds 8-bit samples with 1 (grayscale) or 3 (RGB) interleaved
// channels in row-major order. Coordinates are 0-based with (0,0) at the
// top-left corner, X increasing rightward and Y increasing downward.
//
// # Numeric Policy
//
// All pixel operations are total: intermediate results are computed in wider
// types and saturated to [0, 255], so no input can overflow or wrap around.
// Only ParseAngle, which interprets user-typed text, returns an error
// (*ValidationError). Shape mismatches between buffers that must agree are
// programming errors and panic.
//
// # Border Handling
//
// Convolutions (Sharpen, the Gaussian and Sobel stages of edge detection)
// replicate the nearest edge pixel. Rotation fills uncovered regions with black.
//
// # Thread Safety
//
// Buffers are immutable and every function is stateless, so operations may be
// called concurrently. Row loops are internally parallelised.
package imaging

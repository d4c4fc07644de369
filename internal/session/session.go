package session

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-adjust/internal/imaging"
)

// Buffer source names reported in Result.Source.
const (
	SourceOriginal = "original"
	SourceCurrent  = "current"
)

// Result describes the outcome of one applied command.
type Result struct {
	Command string `json:"command"`

	// Skipped is set when no image was loaded and nothing happened.
	Skipped bool `json:"skipped"`

	// Source is the buffer the command read from.
	Source string `json:"source,omitempty"`

	// EdgePixels is the number of edge pixels in the overlay after an edges command.
	EdgePixels int `json:"edge_pixels,omitempty"`

	// Rotation is the accumulated rotation after a rotate command.
	Rotation float64 `json:"rotation,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// State is a summary of the session suitable for reporting.
type State struct {
	Loaded     bool   `json:"loaded"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	Chaining   bool   `json:"chaining"`
	Highlight  string `json:"highlight"`
	EdgePixels int    `json:"edge_pixels"`

	// Applied lists the edits reflected in current, oldest first. It is empty
	// after Load or Reset.
	Applied []string `json:"applied"`

	// Controls holds the control positions. They start at DefaultParams and
	// need not have been applied; see Applied.
	Controls Params `json:"controls"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for per-command diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRand sets the noise source. A nil source is ignored.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed seeds the noise source so noise edits are reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Session) { s.rng = newRand(seed) }
}

// WithChaining makes every command read from the current buffer.
func WithChaining(on bool) Option {
	return func(s *Session) { s.chaining = on }
}

// WithHighlight sets the colour painted over edge pixels in the overlay.
func WithHighlight(c color.RGBA) Option {
	return func(s *Session) { s.highlight = c }
}

// WithThresholds sets the initial edge thresholds used when an image is loaded.
func WithThresholds(lower, upper int) Option {
	return func(s *Session) {
		s.params.EdgeLower = lower
		s.params.EdgeUpper = upper
	}
}

// Session holds the buffers of one editing session.
type Session struct {
	log       zerolog.Logger
	rng       *rand.Rand
	chaining  bool
	highlight color.RGBA

	original   *imaging.Buffer
	current    *imaging.Buffer
	overlay    *imaging.Buffer
	edgeCount  int
	histograms imaging.HistogramPair
	params     Params
	applied    []string
}

// New creates an empty session. Until Load is called every command is skipped.
func New(opts ...Option) *Session {
	s := &Session{
		log:       zerolog.Nop(),
		highlight: imaging.DefaultHighlight,
		params:    DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = newRand(uint64(time.Now().UnixNano()))
	}
	return s
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Load replaces the session contents with buf.
//
// original and current both become copies of buf, the controls return to their
// defaults (edge thresholds are kept) and both derived views are recomputed.
// Load panics if buf is nil.
func (s *Session) Load(buf *imaging.Buffer) {
	if buf == nil {
		panic("session: Load called with nil buffer")
	}

	lower, upper := s.params.EdgeLower, s.params.EdgeUpper
	s.params = DefaultParams()
	s.params.EdgeLower, s.params.EdgeUpper = lower, upper

	s.applied = nil
	s.original = buf.Clone()
	s.current = buf.Clone()
	s.refreshOverlay()
	s.refreshHistograms()

	s.log.Debug().
		Str("buffer", s.original.String()).
		Int("edge_pixels", s.edgeCount).
		Msg("image loaded")
}

// Reset discards all edits: current becomes a copy of original again and both
// derived views are recomputed. Edge thresholds are kept.
func (s *Session) Reset() Result {
	res := Result{Command: "reset"}
	if !s.Loaded() {
		res.Skipped = true
		return res
	}
	start := time.Now()
	s.Load(s.original)
	res.Source = SourceOriginal
	res.Elapsed = time.Since(start)
	return res
}

// Apply runs one command against the session.
//
// The only error returned is a *imaging.ValidationError for an unusable rotation
// angle (or an error for an unknown command type); in that case the session is
// left untouched.
func (s *Session) Apply(cmd Command) (Result, error) {
	res := Result{Command: cmd.Name()}
	if !s.Loaded() {
		s.log.Debug().Str("command", res.Command).Msg("no image loaded, skipping")
		res.Skipped = true
		return res, nil
	}

	start := time.Now()
	switch c := cmd.(type) {
	case Contrast:
		src := s.editSource(&res)
		s.setCurrent(imaging.AdjustContrast(src, c.Gain))
		s.params.ContrastGain = c.Gain

	case Brightness:
		src := s.editSource(&res)
		s.setCurrent(imaging.AdjustBrightness(src, c.Offset))
		s.params.BrightnessOffset = c.Offset

	case Noise:
		src := s.editSource(&res)
		s.setCurrent(imaging.AddNoise(src, c.Level, s.rng))
		s.params.NoiseLevel = c.Level

	case Sharpen:
		src := s.editSource(&res)
		s.setCurrent(imaging.Sharpen(src, c.Strength))
		s.params.SharpenStrength = c.Strength

	case Edges:
		res.Source = SourceCurrent
		s.params.EdgeLower, s.params.EdgeUpper = c.Lower, c.Upper
		s.refreshOverlay()
		res.EdgePixels = s.edgeCount

	case Rotate:
		deg, err := imaging.ParseAngle(c.Angle)
		if err != nil {
			s.log.Warn().Err(err).Str("command", res.Command).Msg("rejected")
			return res, err
		}
		s.rotate(deg, &res)

	case RotateDegrees:
		if math.IsNaN(c.Degrees) || math.IsInf(c.Degrees, 0) {
			err := &imaging.ValidationError{
				Field: "angle",
				Input: strconv.FormatFloat(c.Degrees, 'g', -1, 64),
				Err:   fmt.Errorf("not a finite number"),
			}
			s.log.Warn().Err(err).Str("command", res.Command).Msg("rejected")
			return res, err
		}
		s.rotate(c.Degrees, &res)

	default:
		return res, fmt.Errorf("unknown command %T", cmd)
	}
	if _, overlayOnly := cmd.(Edges); !overlayOnly {
		s.applied = append(s.applied, res.Command)
	}
	res.Elapsed = time.Since(start)

	s.log.Debug().
		Str("command", res.Command).
		Interface("params", cmd).
		Str("source", res.Source).
		Dur("elapsed", res.Elapsed).
		Msg("applied")
	return res, nil
}

// AdjustContrast applies a Contrast command.
func (s *Session) AdjustContrast(gain float64) (Result, error) {
	return s.Apply(Contrast{Gain: gain})
}

// AdjustBrightness applies a Brightness command.
func (s *Session) AdjustBrightness(offset int) (Result, error) {
	return s.Apply(Brightness{Offset: offset})
}

// AddNoise applies a Noise command.
func (s *Session) AddNoise(level float64) (Result, error) {
	return s.Apply(Noise{Level: level})
}

// Sharpen applies a Sharpen command.
func (s *Session) Sharpen(strength int) (Result, error) {
	return s.Apply(Sharpen{Strength: strength})
}

// DetectEdges applies an Edges command.
func (s *Session) DetectEdges(lower, upper int) (Result, error) {
	return s.Apply(Edges{Lower: lower, Upper: upper})
}

// Rotate applies a Rotate command.
func (s *Session) Rotate(angle string) (Result, error) {
	return s.Apply(Rotate{Angle: angle})
}

// RotateDegrees applies a RotateDegrees command.
func (s *Session) RotateDegrees(degrees float64) (Result, error) {
	return s.Apply(RotateDegrees{Degrees: degrees})
}

// Loaded reports whether an image has been loaded.
func (s *Session) Loaded() bool { return s.original != nil }

// Chaining reports whether every edit reads from the current buffer.
func (s *Session) Chaining() bool { return s.chaining }

// Params returns the most recent control values.
func (s *Session) Params() Params { return s.params }

// Original returns a copy of the loaded buffer, or nil before Load.
func (s *Session) Original() *imaging.Buffer { return cloneOrNil(s.original) }

// Current returns a copy of the edited buffer, or nil before Load.
func (s *Session) Current() *imaging.Buffer { return cloneOrNil(s.current) }

// Overlay returns a copy of the edge overlay, or nil before Load.
func (s *Session) Overlay() *imaging.Buffer { return cloneOrNil(s.overlay) }

// Histogram returns the original and current histograms. ok is false before Load.
func (s *Session) Histogram() (pair imaging.HistogramPair, ok bool) {
	return s.histograms, s.Loaded()
}

// State summarises the session.
func (s *Session) State() State {
	st := State{
		Loaded:     s.Loaded(),
		Chaining:   s.chaining,
		Highlight:  fmt.Sprintf("#%02X%02X%02X", s.highlight.R, s.highlight.G, s.highlight.B),
		EdgePixels: s.edgeCount,
		Applied:    append([]string{}, s.applied...),
		Controls:   s.params,
	}
	if s.current != nil {
		st.Width = s.current.Width()
		st.Height = s.current.Height()
		st.Channels = s.current.Channels()
	}
	return st
}

// editSource returns the buffer a tone, noise or sharpen edit reads from.
func (s *Session) editSource(res *Result) *imaging.Buffer {
	if s.chaining {
		res.Source = SourceCurrent
		return s.current
	}
	res.Source = SourceOriginal
	s.params.Rotation = 0
	s.applied = s.applied[:0]
	return s.original
}

func (s *Session) rotate(degrees float64, res *Result) {
	res.Source = SourceCurrent
	s.setCurrent(imaging.Rotate(s.current, degrees))
	s.params.Rotation = imaging.NormalizeAngle(s.params.Rotation + degrees)
	res.Rotation = s.params.Rotation
}

// setCurrent installs a new current buffer and recomputes the histograms.
// The overlay is only recomputed by an explicit edges command.
func (s *Session) setCurrent(b *imaging.Buffer) {
	if !b.SameShape(s.original) {
		panic(fmt.Sprintf("session: edit changed buffer shape from %s to %s", s.original, b))
	}
	s.current = b
	s.refreshHistograms()
}

func (s *Session) refreshOverlay() {
	overlay, mask := imaging.DetectEdges(s.current, s.params.EdgeLower, s.params.EdgeUpper, s.highlight)
	s.overlay = overlay
	s.edgeCount = mask.Count()
}

func (s *Session) refreshHistograms() {
	s.histograms = imaging.CompareHistograms(s.original, s.current)
}

func cloneOrNil(b *imaging.Buffer) *imaging.Buffer {
	if b == nil {
		return nil
	}
	return b.Clone()
}

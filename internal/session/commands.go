package session

// Command is one edit request. The concrete types below are the full set
// understood by Session.Apply.
type Command interface {
	Name() string
}

// Contrast scales every sample by Gain.
type Contrast struct {
	Gain float64 `json:"gain"`
}

// Brightness adds Offset to every sample.
type Brightness struct {
	Offset int `json:"offset"`
}

// Noise adds Gaussian noise with standard deviation 25*Level.
type Noise struct {
	Level float64 `json:"level"`
}

// Sharpen convolves with the 3x3 sharpening kernel of the given strength.
type Sharpen struct {
	Strength int `json:"strength"`
}

// Edges recomputes the edge overlay with new hysteresis thresholds.
type Edges struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// Rotate rotates the current buffer by an angle given as text.
type Rotate struct {
	Angle string `json:"angle"`
}

// RotateDegrees rotates the current buffer by an already parsed angle.
type RotateDegrees struct {
	Degrees float64 `json:"degrees"`
}

func (Contrast) Name() string      { return "contrast" }
func (Brightness) Name() string    { return "brightness" }
func (Noise) Name() string         { return "noise" }
func (Sharpen) Name() string       { return "sharpen" }
func (Edges) Name() string         { return "edges" }
func (Rotate) Name() string        { return "rotate" }
func (RotateDegrees) Name() string { return "rotate" }

// Range is an inclusive interval of accepted parameter values.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Parameter ranges of the interactive controls. Session itself accepts any
// value; callers taking user input check against these.
var (
	ContrastRange   = Range{Min: 0, Max: 5}
	BrightnessRange = Range{Min: -100, Max: 100}
	NoiseRange      = Range{Min: 0, Max: 1}
	SharpenRange    = Range{Min: 0, Max: 10}
	ThresholdRange  = Range{Min: 0, Max: 255}
)

// Params records the most recent value of every control.
type Params struct {
	ContrastGain     float64 `json:"contrast_gain"`
	BrightnessOffset int     `json:"brightness_offset"`
	NoiseLevel       float64 `json:"noise_level"`
	SharpenStrength  int     `json:"sharpen_strength"`
	EdgeLower        int     `json:"edge_lower"`
	EdgeUpper        int     `json:"edge_upper"`

	// Rotation is the accumulated rotation of current in [0, 360). An edit that
	// recomputes from the original clears it.
	Rotation float64 `json:"rotation"`
}

// DefaultParams returns the control positions of a fresh session.
func DefaultParams() Params {
	return Params{
		ContrastGain:    2.0,
		SharpenStrength: 1,
		EdgeLower:       50,
		EdgeUpper:       150,
	}
}

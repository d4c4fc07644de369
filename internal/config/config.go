// Package config holds the runtime configuration of image-adjust.
//
// Values come from command-line flags, each of which can also be set through an
// IMAGE_ADJUST_* environment variable (see cmd/image-adjust).
package config

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-adjust/internal/imaging"
	"github.com/ironsheep/image-adjust/internal/logger"
)

// Config is the complete set of tunables.
type Config struct {
	// LogLevel is a zerolog level name. Default "info".
	LogLevel string

	// LogFormat is "console" or "json". Default "console".
	LogFormat string

	// ChainEdits makes every edit read from the current buffer instead of the
	// original. Off by default: only rotation composes.
	ChainEdits bool

	// EdgeColor is the "#RRGGBB" highlight painted over detected edges.
	EdgeColor string

	// EdgeLower and EdgeUpper are the initial hysteresis thresholds.
	EdgeLower int
	EdgeUpper int

	// NoiseSeed seeds the noise generator. 0 seeds from the clock.
	NoiseSeed uint64

	// JPEGQuality is used when saving to .jpg/.jpeg (1-100).
	JPEGQuality int

	// PreviewWidth and PreviewHeight bound display previews.
	PreviewWidth  int
	PreviewHeight int
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     logger.FormatConsole,
		EdgeColor:     "#FF0000",
		EdgeLower:     50,
		EdgeUpper:     150,
		JPEGQuality:   95,
		PreviewWidth:  400,
		PreviewHeight: 300,
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != logger.FormatConsole && c.LogFormat != logger.FormatJSON {
		errs = append(errs, fmt.Errorf("log format must be %q or %q, got %q",
			logger.FormatConsole, logger.FormatJSON, c.LogFormat))
	}
	if _, err := imaging.ParseHighlight(c.EdgeColor); err != nil {
		errs = append(errs, err)
	}
	if c.EdgeLower < 0 || c.EdgeLower > 255 {
		errs = append(errs, fmt.Errorf("edge lower threshold %d outside 0-255", c.EdgeLower))
	}
	if c.EdgeUpper < 0 || c.EdgeUpper > 255 {
		errs = append(errs, fmt.Errorf("edge upper threshold %d outside 0-255", c.EdgeUpper))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg quality %d outside 1-100", c.JPEGQuality))
	}
	if c.PreviewWidth <= 0 || c.PreviewHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid preview size %dx%d", c.PreviewWidth, c.PreviewHeight))
	}

	return errors.Join(errs...)
}

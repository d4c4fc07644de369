package main

import (
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/image-adjust/internal/config"
	"github.com/ironsheep/image-adjust/internal/imaging"
	"github.com/ironsheep/image-adjust/internal/logger"
	"github.com/ironsheep/image-adjust/internal/server"
	"github.com/ironsheep/image-adjust/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err.Error())
	}
}

func newApp() *cli.App {
	defaults := config.Default()

	return &cli.App{
		Name:    "image-adjust",
		Usage:   "interactive image adjustment over MCP, or batch edits from the command line",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   defaults.LogLevel,
				EnvVars: []string{"IMAGE_ADJUST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log format (console or json)",
				Value:   defaults.LogFormat,
				EnvVars: []string{"IMAGE_ADJUST_LOG_FORMAT"},
			},
			&cli.BoolFlag{
				Name:    "chain-edits",
				Usage:   "apply every edit to the current image instead of the original",
				EnvVars: []string{"IMAGE_ADJUST_CHAIN_EDITS"},
			},
			&cli.StringFlag{
				Name:    "edge-color",
				Usage:   "edge overlay highlight `COLOR` (#RRGGBB)",
				Value:   defaults.EdgeColor,
				EnvVars: []string{"IMAGE_ADJUST_EDGE_COLOR"},
			},
			&cli.IntFlag{
				Name:    "edge-lower",
				Usage:   "default lower edge threshold",
				Value:   defaults.EdgeLower,
				EnvVars: []string{"IMAGE_ADJUST_EDGE_LOWER"},
			},
			&cli.IntFlag{
				Name:    "edge-upper",
				Usage:   "default upper edge threshold",
				Value:   defaults.EdgeUpper,
				EnvVars: []string{"IMAGE_ADJUST_EDGE_UPPER"},
			},
			&cli.Uint64Flag{
				Name:    "noise-seed",
				Usage:   "noise generator seed; 0 seeds from the clock",
				EnvVars: []string{"IMAGE_ADJUST_NOISE_SEED"},
			},
			&cli.IntFlag{
				Name:    "jpeg-quality",
				Usage:   "JPEG quality used when saving .jpg files",
				Value:   defaults.JPEGQuality,
				EnvVars: []string{"IMAGE_ADJUST_JPEG_QUALITY"},
			},
			&cli.IntFlag{
				Name:    "preview-width",
				Usage:   "default maximum preview width",
				Value:   defaults.PreviewWidth,
				EnvVars: []string{"IMAGE_ADJUST_PREVIEW_WIDTH"},
			},
			&cli.IntFlag{
				Name:    "preview-height",
				Usage:   "default maximum preview height",
				Value:   defaults.PreviewHeight,
				EnvVars: []string{"IMAGE_ADJUST_PREVIEW_HEIGHT"},
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the MCP server on stdin/stdout (default)",
				Action: runServe,
			},
			applyCommand(),
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					w := c.App.Writer
					fmt.Fprintf(w, "image-adjust %s\n", Version)
					fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
					return nil
				},
			},
		},
	}
}

// loadConfig collects the global flags into a validated Config.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Config{
		LogLevel:      c.String("log-level"),
		LogFormat:     c.String("log-format"),
		ChainEdits:    c.Bool("chain-edits"),
		EdgeColor:     c.String("edge-color"),
		EdgeLower:     c.Int("edge-lower"),
		EdgeUpper:     c.Int("edge-upper"),
		NoiseSeed:     c.Uint64("noise-seed"),
		JPEGQuality:   c.Int("jpeg-quality"),
		PreviewWidth:  c.Int("preview-width"),
		PreviewHeight: c.Int("preview-height"),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup builds the configuration and the stderr logger.
func setup(c *cli.Context) (config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	l, err := logger.New(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, l, nil
}

// newSession creates an edit session configured from cfg.
func newSession(cfg config.Config, l zerolog.Logger) (*session.Session, error) {
	highlight, err := imaging.ParseHighlight(cfg.EdgeColor)
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithLogger(logger.Component(l, "session")),
		session.WithChaining(cfg.ChainEdits),
		session.WithHighlight(highlight),
		session.WithThresholds(cfg.EdgeLower, cfg.EdgeUpper),
	}
	if cfg.NoiseSeed != 0 {
		opts = append(opts, session.WithSeed(cfg.NoiseSeed))
	}
	return session.New(opts...), nil
}

func runServe(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, l)
	if err != nil {
		return err
	}

	server.Version = Version
	l.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Bool("chain_edits", cfg.ChainEdits).
		Msg("starting")

	srv := server.New(sess, cfg, l)
	if err := srv.Run(c.App.Reader, c.App.Writer); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ironsheep/image-adjust/internal/imaging"
	"github.com/ironsheep/image-adjust/internal/session"
)

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "load an image, apply edits and save the result",
		Description: "Edits run in the order contrast, brightness, noise, sharpen, rotate. " +
			"Without --chain each of the first four starts again from the loaded image, " +
			"so only the last one given is kept; rotations always compose.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input image `FILE`", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output image `FILE`", Required: true},
			&cli.Float64Flag{Name: "contrast", Usage: "contrast gain (0-5)"},
			&cli.IntFlag{Name: "brightness", Usage: "brightness offset (-100-100)"},
			&cli.Float64Flag{Name: "noise", Usage: "noise level (0-1)"},
			&cli.IntFlag{Name: "sharpen", Usage: "sharpen strength (0-10)"},
			&cli.StringSliceFlag{Name: "rotate", Usage: "rotate by `DEGREES`; repeatable"},
			&cli.StringFlag{Name: "edges-out", Usage: "also save the edge overlay to `FILE`"},
			&cli.IntFlag{Name: "lower", Usage: "lower edge threshold (default --edge-lower)"},
			&cli.IntFlag{Name: "upper", Usage: "upper edge threshold (default --edge-upper)"},
			&cli.Uint64Flag{Name: "seed", Usage: "noise seed (default --noise-seed)"},
			&cli.BoolFlag{Name: "chain", Usage: "compose edits instead of restarting from the original"},
		},
		Action: runApply,
	}
}

func runApply(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	if c.IsSet("seed") {
		cfg.NoiseSeed = c.Uint64("seed")
	}
	if c.IsSet("chain") {
		cfg.ChainEdits = c.Bool("chain")
	}
	if c.IsSet("lower") {
		cfg.EdgeLower = c.Int("lower")
	}
	if c.IsSet("upper") {
		cfg.EdgeUpper = c.Int("upper")
	}

	commands, err := applyCommands(c)
	if err != nil {
		return err
	}

	sess, err := newSession(cfg, l)
	if err != nil {
		return err
	}

	buf, info, err := imaging.Load(c.String("in"))
	if err != nil {
		return err
	}
	sess.Load(buf)
	l.Info().Str("path", c.String("in")).Str("format", info.Format).Str("buffer", buf.String()).Msg("loaded")

	for _, cmd := range commands {
		if _, err := sess.Apply(cmd); err != nil {
			return fmt.Errorf("failed to apply %s: %w", cmd.Name(), err)
		}
	}

	out := c.String("out")
	if err := imaging.Save(sess.Current(), out, cfg.JPEGQuality); err != nil {
		return err
	}
	l.Info().Str("path", out).Msg("saved")

	w := c.App.Writer
	if edgesOut := c.String("edges-out"); edgesOut != "" {
		res, err := sess.DetectEdges(cfg.EdgeLower, cfg.EdgeUpper)
		if err != nil {
			return err
		}
		if err := imaging.Save(sess.Overlay(), edgesOut, cfg.JPEGQuality); err != nil {
			return err
		}
		fmt.Fprintf(w, "edges: %d pixels -> %s\n", res.EdgePixels, edgesOut)
	}

	pair, _ := sess.Histogram()
	st := sess.State()
	fmt.Fprintf(w, "saved %dx%d image -> %s\n", st.Width, st.Height, out)
	fmt.Fprintf(w, "mean gray: original %.1f, current %.1f\n", pair.Original.Mean(), pair.Current.Mean())
	return nil
}

// applyCommands converts the edit flags into session commands, rejecting
// values outside the control ranges.
func applyCommands(c *cli.Context) ([]session.Command, error) {
	var commands []session.Command

	check := func(name string, v float64, r session.Range) error {
		if !r.Contains(v) {
			return fmt.Errorf("--%s %v outside %v..%v", name, v, r.Min, r.Max)
		}
		return nil
	}

	if c.IsSet("contrast") {
		v := c.Float64("contrast")
		if err := check("contrast", v, session.ContrastRange); err != nil {
			return nil, err
		}
		commands = append(commands, session.Contrast{Gain: v})
	}
	if c.IsSet("brightness") {
		v := c.Int("brightness")
		if err := check("brightness", float64(v), session.BrightnessRange); err != nil {
			return nil, err
		}
		commands = append(commands, session.Brightness{Offset: v})
	}
	if c.IsSet("noise") {
		v := c.Float64("noise")
		if err := check("noise", v, session.NoiseRange); err != nil {
			return nil, err
		}
		commands = append(commands, session.Noise{Level: v})
	}
	if c.IsSet("sharpen") {
		v := c.Int("sharpen")
		if err := check("sharpen", float64(v), session.SharpenRange); err != nil {
			return nil, err
		}
		commands = append(commands, session.Sharpen{Strength: v})
	}
	for _, angle := range c.StringSlice("rotate") {
		if _, err := imaging.ParseAngle(angle); err != nil {
			return nil, err
		}
		commands = append(commands, session.Rotate{Angle: angle})
	}
	for _, name := range []string{"lower", "upper"} {
		if c.IsSet(name) {
			if err := check(name, float64(c.Int(name)), session.ThresholdRange); err != nil {
				return nil, err
			}
		}
	}
	return commands, nil
}

package session

import (
	"bytes"
	"errors"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-adjust/internal/imaging"
)

// testImage creates a 32x24 RGB buffer with a gradient on the left and a hard
// vertical step on the right, so every operation has a visible effect.
func testImage(t *testing.T) *imaging.Buffer {
	t.Helper()
	const w, h = 32, 24
	pix := make([]uint8, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case x < w/2:
				v := uint8(40 + x*8 + y*2)
				pix = append(pix, v, v/2, 255-v)
			case x < 3*w/4:
				pix = append(pix, 20, 20, 20)
			default:
				pix = append(pix, 230, 230, 230)
			}
		}
	}
	b, err := imaging.FromSamples(w, h, 3, pix)
	if err != nil {
		t.Fatalf("FromSamples failed: %v", err)
	}
	return b
}

func loadedSession(t *testing.T, opts ...Option) (*Session, *imaging.Buffer) {
	t.Helper()
	img := testImage(t)
	s := New(append([]Option{WithSeed(42)}, opts...)...)
	s.Load(img)
	return s, img
}

func mustApply(t *testing.T, s *Session, cmd Command) Result {
	t.Helper()
	res, err := s.Apply(cmd)
	if err != nil {
		t.Fatalf("Apply(%#v) failed: %v", cmd, err)
	}
	if res.Skipped {
		t.Fatalf("Apply(%#v) was skipped on a loaded session", cmd)
	}
	return res
}

func TestApply_SkippedBeforeLoad(t *testing.T) {
	s := New()

	commands := []Command{
		Contrast{Gain: 2},
		Brightness{Offset: 10},
		Noise{Level: 0.5},
		Sharpen{Strength: 3},
		Edges{Lower: 10, Upper: 20},
		Rotate{Angle: "not a number"},
		RotateDegrees{Degrees: 45},
	}
	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			res, err := s.Apply(cmd)
			if err != nil {
				t.Errorf("skipped command should not fail: %v", err)
			}
			if !res.Skipped {
				t.Error("command before load should be skipped")
			}
		})
	}

	if s.Loaded() {
		t.Error("session should not report loaded")
	}
	if s.Current() != nil || s.Original() != nil || s.Overlay() != nil {
		t.Error("buffers should be nil before load")
	}
	if _, ok := s.Histogram(); ok {
		t.Error("histogram should be unavailable before load")
	}
	if s.Params() != DefaultParams() {
		t.Errorf("skipped commands changed params: %+v", s.Params())
	}
	if res := s.Reset(); !res.Skipped {
		t.Error("reset before load should be skipped")
	}
}

func TestLoad_InitialisesViews(t *testing.T) {
	s, img := loadedSession(t)

	if !s.Loaded() {
		t.Fatal("session should be loaded")
	}
	if !s.Original().Equal(img) || !s.Current().Equal(img) {
		t.Error("original and current should both equal the loaded image")
	}

	pair, ok := s.Histogram()
	if !ok {
		t.Fatal("histogram should be available after load")
	}
	if pair.Original != pair.Current {
		t.Error("histograms of an unedited session should match")
	}
	if pair.Current.Total() != img.Pixels() {
		t.Errorf("histogram total: got %d, want %d", pair.Current.Total(), img.Pixels())
	}

	wantOverlay, mask := imaging.DetectEdges(img, 50, 150, imaging.DefaultHighlight)
	if !s.Overlay().Equal(wantOverlay) {
		t.Error("overlay should be computed on load with the default thresholds")
	}
	if s.State().EdgePixels != mask.Count() {
		t.Errorf("edge pixels: got %d, want %d", s.State().EdgePixels, mask.Count())
	}
}

func TestLoad_TakesCopy(t *testing.T) {
	img := testImage(t)
	s := New()
	s.Load(img)

	if s.Current() == s.Current() {
		t.Error("Current should return a fresh copy each call")
	}

	// Rotating the session must not affect the caller's buffer.
	mustApply(t, s, RotateDegrees{Degrees: 30})
	if !img.Equal(testImage(t)) {
		t.Error("caller buffer was modified")
	}
}

func TestLoad_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Load(nil) should panic")
		}
	}()
	New().Load(nil)
}

// Noise after contrast must start again from the original.
func TestContrastThenNoise_ReadsOriginal(t *testing.T) {
	const seed, level = 7, 0.4

	s := New(WithSeed(seed))
	img := testImage(t)
	s.Load(img)

	mustApply(t, s, Contrast{Gain: 2.5})
	if s.Current().Equal(img) {
		t.Fatal("contrast should change current")
	}

	res := mustApply(t, s, Noise{Level: level})
	if res.Source != SourceOriginal {
		t.Errorf("noise source: got %q, want %q", res.Source, SourceOriginal)
	}

	want := imaging.AddNoise(img, level, newRand(seed))
	if !s.Current().Equal(want) {
		t.Error("current should equal noise applied to the original")
	}

	chained := imaging.AddNoise(imaging.AdjustContrast(img, 2.5), level, newRand(seed))
	if s.Current().Equal(chained) {
		t.Error("current should not carry the earlier contrast edit")
	}
}

func TestEdits_ReadOriginal(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want func(*imaging.Buffer) *imaging.Buffer
	}{
		{"contrast", Contrast{Gain: 1.7}, func(b *imaging.Buffer) *imaging.Buffer { return imaging.AdjustContrast(b, 1.7) }},
		{"brightness", Brightness{Offset: -35}, func(b *imaging.Buffer) *imaging.Buffer { return imaging.AdjustBrightness(b, -35) }},
		{"sharpen", Sharpen{Strength: 4}, func(b *imaging.Buffer) *imaging.Buffer { return imaging.Sharpen(b, 4) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, img := loadedSession(t)

			// An unrelated earlier edit must be discarded.
			mustApply(t, s, Brightness{Offset: 60})

			mustApply(t, s, tt.cmd)
			if !s.Current().Equal(tt.want(img)) {
				t.Errorf("%s should be computed from the original", tt.name)
			}
		})
	}
}

func TestEdits_ClearRotation(t *testing.T) {
	s, img := loadedSession(t)

	mustApply(t, s, RotateDegrees{Degrees: 90})
	mustApply(t, s, Contrast{Gain: 1.2})

	if s.Params().Rotation != 0 {
		t.Errorf("rotation should be cleared, got %v", s.Params().Rotation)
	}
	if !s.Current().Equal(imaging.AdjustContrast(img, 1.2)) {
		t.Error("contrast should discard the rotation")
	}
}

func TestRotate_Chains(t *testing.T) {
	s, img := loadedSession(t)

	mustApply(t, s, Contrast{Gain: 1.5})
	mustApply(t, s, Rotate{Angle: "90"})
	res := mustApply(t, s, Rotate{Angle: " 45.5 "})

	if res.Source != SourceCurrent {
		t.Errorf("rotate source: got %q, want %q", res.Source, SourceCurrent)
	}
	want := imaging.Rotate(imaging.Rotate(imaging.AdjustContrast(img, 1.5), 90), 45.5)
	if !s.Current().Equal(want) {
		t.Error("rotations should compose onto the current buffer")
	}
	if res.Rotation != 135.5 || s.Params().Rotation != 135.5 {
		t.Errorf("accumulated rotation: got %v/%v, want 135.5", res.Rotation, s.Params().Rotation)
	}

	mustApply(t, s, RotateDegrees{Degrees: 250})
	if got := s.Params().Rotation; got != 25.5 {
		t.Errorf("rotation should wrap: got %v, want 25.5", got)
	}
}

func TestRotate_UpdatesHistogramNotOverlay(t *testing.T) {
	s, _ := loadedSession(t)
	overlay := s.Overlay()

	mustApply(t, s, RotateDegrees{Degrees: 33})

	if !s.Overlay().Equal(overlay) {
		t.Error("rotate should not recompute the overlay")
	}
	pair, _ := s.Histogram()
	if pair.Current != imaging.ComputeHistogram(s.Current()) {
		t.Error("rotate should recompute the current histogram")
	}
}

func TestRotate_InvalidAngleLeavesState(t *testing.T) {
	for _, angle := range []string{"", "abc", "12deg", "NaN", "inf"} {
		t.Run(angle, func(t *testing.T) {
			s, _ := loadedSession(t)
			mustApply(t, s, Contrast{Gain: 3})

			current, overlay := s.Current(), s.Overlay()
			pair, _ := s.Histogram()
			params := s.Params()

			_, err := s.Apply(Rotate{Angle: angle})
			var verr *imaging.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *imaging.ValidationError, got %v", err)
			}

			if !s.Current().Equal(current) || !s.Overlay().Equal(overlay) {
				t.Error("rejected rotation modified buffers")
			}
			if got, _ := s.Histogram(); got != pair {
				t.Error("rejected rotation modified histograms")
			}
			if s.Params() != params {
				t.Error("rejected rotation modified params")
			}
		})
	}
}

func TestRotateDegrees_NonFinite(t *testing.T) {
	s, img := loadedSession(t)

	_, err := s.RotateDegrees(math.Inf(1))
	var verr *imaging.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *imaging.ValidationError, got %v", err)
	}
	if !s.Current().Equal(img) {
		t.Error("rejected rotation modified current")
	}
}

func TestEdges_WritesOverlayOnly(t *testing.T) {
	s, _ := loadedSession(t)
	mustApply(t, s, Brightness{Offset: 15})

	current := s.Current()
	pair, _ := s.Histogram()

	res := mustApply(t, s, Edges{Lower: 20, Upper: 60})
	if res.Source != SourceCurrent {
		t.Errorf("edges source: got %q, want %q", res.Source, SourceCurrent)
	}
	if !s.Current().Equal(current) {
		t.Error("edges should not modify current")
	}
	if got, _ := s.Histogram(); got != pair {
		t.Error("edges should not recompute histograms")
	}

	want, mask := imaging.DetectEdges(current, 20, 60, imaging.DefaultHighlight)
	if !s.Overlay().Equal(want) {
		t.Error("overlay should be computed from current")
	}
	if res.EdgePixels != mask.Count() || res.EdgePixels == 0 {
		t.Errorf("edge pixels: got %d, want %d (non-zero)", res.EdgePixels, mask.Count())
	}
	p := s.Params()
	if p.EdgeLower != 20 || p.EdgeUpper != 60 {
		t.Errorf("thresholds not recorded: %+v", p)
	}
}

func TestEdges_FollowCurrent(t *testing.T) {
	s, _ := loadedSession(t)

	// Zero gain blacks out the image, leaving nothing to detect.
	mustApply(t, s, Contrast{Gain: 0})
	res := mustApply(t, s, Edges{Lower: 10, Upper: 30})
	if res.EdgePixels != 0 {
		t.Errorf("black image should have no edges, got %d", res.EdgePixels)
	}
}

func TestWithChaining(t *testing.T) {
	s, img := loadedSession(t, WithChaining(true))

	mustApply(t, s, Contrast{Gain: 2})
	mustApply(t, s, RotateDegrees{Degrees: 10})
	res := mustApply(t, s, Brightness{Offset: 10})

	if res.Source != SourceCurrent {
		t.Errorf("chained source: got %q, want %q", res.Source, SourceCurrent)
	}
	want := imaging.AdjustBrightness(imaging.Rotate(imaging.AdjustContrast(img, 2), 10), 10)
	if !s.Current().Equal(want) {
		t.Error("chained edits should compose in order")
	}
	if s.Params().Rotation != 10 {
		t.Errorf("chaining should keep rotation, got %v", s.Params().Rotation)
	}
	if !s.State().Chaining {
		t.Error("state should report chaining")
	}
}

func TestHistogram_Recomputed(t *testing.T) {
	s, img := loadedSession(t)

	mustApply(t, s, Sharpen{Strength: 6})

	pair, _ := s.Histogram()
	if pair.Original != imaging.ComputeHistogram(img) {
		t.Error("original histogram should be unchanged")
	}
	if pair.Current != imaging.ComputeHistogram(s.Current()) {
		t.Error("current histogram should match the edited buffer")
	}
	if pair.Current == pair.Original {
		t.Error("sharpening should change the histogram")
	}
}

func TestLoad_ResetsParamsKeepsThresholds(t *testing.T) {
	s, _ := loadedSession(t, WithThresholds(10, 90))

	mustApply(t, s, Contrast{Gain: 4})
	mustApply(t, s, Edges{Lower: 15, Upper: 40})
	mustApply(t, s, RotateDegrees{Degrees: 12})

	next, err := imaging.NewBuffer(8, 6, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Load(next)

	p := s.Params()
	want := DefaultParams()
	want.EdgeLower, want.EdgeUpper = 15, 40
	if p != want {
		t.Errorf("params after load: got %+v, want %+v", p, want)
	}
	if !s.Current().Equal(next) {
		t.Error("current should be the new image")
	}
	if ov := s.Overlay(); ov.Width() != 8 || ov.Height() != 6 || ov.Channels() != 3 {
		t.Errorf("overlay should be rebuilt for the new image, got %s", ov)
	}
	pair, _ := s.Histogram()
	if pair.Current.Total() != 48 {
		t.Errorf("histogram should describe the new image, total %d", pair.Current.Total())
	}
}

func TestState_Applied(t *testing.T) {
	tests := []struct {
		name     string
		chaining bool
		cmds     []Command
		want     []string
	}{
		{"fresh load", false, nil, []string{}},
		{"edges only", false, []Command{Edges{Lower: 10, Upper: 20}}, []string{}},
		{"restart from original", false, []Command{Contrast{Gain: 3}, RotateDegrees{Degrees: 90}, Sharpen{Strength: 2}}, []string{"sharpen"}},
		{"rotations compose", false, []Command{Brightness{Offset: 5}, Rotate{Angle: "10"}, RotateDegrees{Degrees: 20}}, []string{"brightness", "rotate", "rotate"}},
		{"chaining", true, []Command{Contrast{Gain: 3}, Noise{Level: 0.2}}, []string{"contrast", "noise"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := loadedSession(t, WithChaining(tt.chaining))
			for _, cmd := range tt.cmds {
				mustApply(t, s, cmd)
			}
			got := s.State().Applied
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || got == nil {
				t.Errorf("applied: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_ControlsAreNotApplied(t *testing.T) {
	s, img := loadedSession(t)

	st := s.State()
	if st.Controls != DefaultParams() {
		t.Errorf("controls after load: got %+v", st.Controls)
	}
	if len(st.Applied) != 0 || !s.Current().Equal(img) {
		t.Error("a fresh load should report no applied edits")
	}

	mustApply(t, s, Contrast{Gain: 1.5})
	s.Reset()
	if n := len(s.State().Applied); n != 0 {
		t.Errorf("reset should clear applied edits, got %d", n)
	}
}

func TestReset(t *testing.T) {
	s, img := loadedSession(t)

	mustApply(t, s, Noise{Level: 1})
	mustApply(t, s, RotateDegrees{Degrees: 180})

	res := s.Reset()
	if res.Skipped {
		t.Fatal("reset should not be skipped")
	}
	if !s.Current().Equal(img) {
		t.Error("reset should restore the original")
	}
	if s.Params().Rotation != 0 {
		t.Error("reset should clear rotation")
	}
	pair, _ := s.Histogram()
	if pair.Original != pair.Current {
		t.Error("histograms should match after reset")
	}
}

func TestWithHighlight(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	s, _ := loadedSession(t, WithHighlight(green))

	res := mustApply(t, s, Edges{Lower: 20, Upper: 60})
	if res.EdgePixels == 0 {
		t.Fatal("expected edges in the test image")
	}

	ov := s.Overlay()
	found := false
	for y := 0; y < ov.Height() && !found; y++ {
		for x := 0; x < ov.Width(); x++ {
			if ov.At(x, y, 0) == 0 && ov.At(x, y, 1) == 255 && ov.At(x, y, 2) == 0 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("overlay should use the configured highlight")
	}
	if s.State().Highlight != "#00FF00" {
		t.Errorf("state highlight: got %q", s.State().Highlight)
	}
}

type bogus struct{}

func (bogus) Name() string { return "bogus" }

func TestApply_UnknownCommand(t *testing.T) {
	s, img := loadedSession(t)
	if _, err := s.Apply(bogus{}); err == nil {
		t.Error("unknown command should fail")
	}
	if !s.Current().Equal(img) {
		t.Error("unknown command modified current")
	}
}

func TestConvenienceMethods(t *testing.T) {
	s, img := loadedSession(t)

	calls := []func() (Result, error){
		func() (Result, error) { return s.AdjustContrast(1.1) },
		func() (Result, error) { return s.AdjustBrightness(5) },
		func() (Result, error) { return s.AddNoise(0.1) },
		func() (Result, error) { return s.Sharpen(2) },
		func() (Result, error) { return s.DetectEdges(30, 90) },
		func() (Result, error) { return s.Rotate("15") },
		func() (Result, error) { return s.RotateDegrees(-15) },
	}
	names := []string{"contrast", "brightness", "noise", "sharpen", "edges", "rotate", "rotate"}

	for i, call := range calls {
		res, err := call()
		if err != nil {
			t.Fatalf("%s failed: %v", names[i], err)
		}
		if res.Command != names[i] {
			t.Errorf("command name: got %q, want %q", res.Command, names[i])
		}
	}

	want := imaging.Rotate(imaging.Rotate(imaging.Sharpen(img, 2), 15), -15)
	if !s.Current().Equal(want) {
		t.Error("unexpected final buffer")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	s := New(WithLogger(log), WithSeed(1))
	if _, err := s.AdjustContrast(2); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "skipping") {
		t.Errorf("skip should be logged: %q", buf.String())
	}

	s.Load(testImage(t))
	buf.Reset()
	if _, err := s.AdjustBrightness(12); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"command":"brightness"`) || !strings.Contains(out, `"offset":12`) {
		t.Errorf("applied command should be logged with its parameters: %q", out)
	}

	buf.Reset()
	if _, err := s.Rotate("x"); err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("rejected rotation should log a warning: %q", buf.String())
	}
}

func TestRange_Contains(t *testing.T) {
	tests := []struct {
		r    Range
		v    float64
		want bool
	}{
		{ContrastRange, 0, true},
		{ContrastRange, 5, true},
		{ContrastRange, 5.01, false},
		{BrightnessRange, -100, true},
		{BrightnessRange, -101, false},
		{NoiseRange, 0.5, true},
		{SharpenRange, 11, false},
		{ThresholdRange, 255, true},
	}
	for _, tt := range tests {
		if got := tt.r.Contains(tt.v); got != tt.want {
			t.Errorf("%+v.Contains(%v): got %v, want %v", tt.r, tt.v, got, tt.want)
		}
	}
}

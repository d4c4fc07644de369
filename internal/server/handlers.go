package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-adjust/internal/imaging"
	"github.com/ironsheep/image-adjust/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_rotate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argError marks a tool failure caused by the caller's arguments. It is
// reported with the JSON-RPC invalid-params code.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func invalidArgs(format string, a ...interface{}) error {
	return &argError{msg: fmt.Sprintf(format, a...)}
}

var errNotLoaded = errors.New("no image loaded")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument problems (missing or out-of-range values, unusable angle text)
// return code -32602. Other tool errors return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		var aerr *argError
		var verr *imaging.ValidationError
		if errors.As(err, &aerr) || errors.As(err, &verr) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
// Calls are serialised because the session is not safe for concurrent use.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	// File operations
	case "image_load":
		return s.handleImageLoad(args)
	case "image_save":
		return s.handleImageSave(args)

	// Edits
	case "image_adjust_contrast":
		return s.handleAdjustContrast(args)
	case "image_adjust_brightness":
		return s.handleAdjustBrightness(args)
	case "image_add_noise":
		return s.handleAddNoise(args)
	case "image_sharpen":
		return s.handleSharpen(args)
	case "image_detect_edges":
		return s.handleDetectEdges(args)
	case "image_rotate":
		return s.handleRotate(args)
	case "image_reset":
		return s.handleReset()

	// Inspection
	case "image_histogram":
		return s.handleHistogram(args)
	case "image_preview":
		return s.handlePreview(args)
	case "image_sample_color":
		return s.handleSampleColor(args)
	case "image_compare":
		return s.handleCompare(args)
	case "image_state":
		return s.session.State(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return invalidArgs("invalid arguments: %v", err)
	}
	return nil
}

func checkRange(name string, v float64, r session.Range) error {
	if !r.Contains(v) {
		return invalidArgs("%s %v outside %v..%v", name, v, r.Min, r.Max)
	}
	return nil
}

// histogramSummary condenses a HistogramPair for edit responses.
type histogramSummary struct {
	OriginalMeanGray float64 `json:"original_mean_gray"`
	CurrentMeanGray  float64 `json:"current_mean_gray"`
}

func (s *Server) summary() *histogramSummary {
	pair, ok := s.session.Histogram()
	if !ok {
		return nil
	}
	return &histogramSummary{
		OriginalMeanGray: pair.Original.Mean(),
		CurrentMeanGray:  pair.Current.Mean(),
	}
}

// editResponse is returned by every tool that applies a session command.
type editResponse struct {
	session.Result
	Params    session.Params    `json:"params"`
	Histogram *histogramSummary `json:"histogram,omitempty"`
}

func (s *Server) apply(cmd session.Command) (interface{}, error) {
	res, err := s.session.Apply(cmd)
	if err != nil {
		return nil, err
	}
	return &editResponse{Result: res, Params: s.session.Params(), Histogram: s.summary()}, nil
}

// buffer returns a snapshot of the named session buffer.
func (s *Server) buffer(name string) (*imaging.Buffer, error) {
	var b *imaging.Buffer
	switch strings.ToLower(name) {
	case "", session.SourceCurrent:
		b = s.session.Current()
	case session.SourceOriginal:
		b = s.session.Original()
	case "overlay":
		b = s.session.Overlay()
	default:
		return nil, invalidArgs("unknown buffer %q: use original, current or overlay", name)
	}
	if b == nil {
		return nil, errNotLoaded
	}
	return b, nil
}

// === File Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

type imageLoadResult struct {
	*imaging.ImageInfo
	EdgePixels int               `json:"edge_pixels"`
	Histogram  *histogramSummary `json:"histogram"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}

	buf, info, err := imaging.Load(a.Path)
	if err != nil {
		return nil, err
	}
	s.session.Load(buf)
	s.log.Info().Str("path", a.Path).Str("buffer", buf.String()).Msg("image loaded")

	return &imageLoadResult{
		ImageInfo:  info,
		EdgePixels: s.session.State().EdgePixels,
		Histogram:  s.summary(),
	}, nil
}

type imageSaveArgs struct {
	Path   string `json:"path"`
	Buffer string `json:"buffer"`
}

type imageSaveResult struct {
	Path   string `json:"path"`
	Buffer string `json:"buffer"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImageSave(args json.RawMessage) (interface{}, error) {
	var a imageSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}
	if a.Buffer == "" {
		a.Buffer = session.SourceCurrent
	}

	b, err := s.buffer(a.Buffer)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(b, a.Path, s.cfg.JPEGQuality); err != nil {
		return nil, err
	}
	s.log.Info().Str("path", a.Path).Str("buffer", a.Buffer).Msg("image saved")

	return &imageSaveResult{Path: a.Path, Buffer: a.Buffer, Width: b.Width(), Height: b.Height()}, nil
}

// === Edit Handlers ===

type contrastArgs struct {
	Gain *float64 `json:"gain"`
}

func (s *Server) handleAdjustContrast(args json.RawMessage) (interface{}, error) {
	var a contrastArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Gain == nil {
		return nil, invalidArgs("gain is required")
	}
	if err := checkRange("gain", *a.Gain, session.ContrastRange); err != nil {
		return nil, err
	}
	return s.apply(session.Contrast{Gain: *a.Gain})
}

type brightnessArgs struct {
	Offset *int `json:"offset"`
}

func (s *Server) handleAdjustBrightness(args json.RawMessage) (interface{}, error) {
	var a brightnessArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Offset == nil {
		return nil, invalidArgs("offset is required")
	}
	if err := checkRange("offset", float64(*a.Offset), session.BrightnessRange); err != nil {
		return nil, err
	}
	return s.apply(session.Brightness{Offset: *a.Offset})
}

type noiseArgs struct {
	Level *float64 `json:"level"`
}

func (s *Server) handleAddNoise(args json.RawMessage) (interface{}, error) {
	var a noiseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Level == nil {
		return nil, invalidArgs("level is required")
	}
	if err := checkRange("level", *a.Level, session.NoiseRange); err != nil {
		return nil, err
	}
	return s.apply(session.Noise{Level: *a.Level})
}

type sharpenArgs struct {
	Strength *int `json:"strength"`
}

func (s *Server) handleSharpen(args json.RawMessage) (interface{}, error) {
	var a sharpenArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Strength == nil {
		return nil, invalidArgs("strength is required")
	}
	if err := checkRange("strength", float64(*a.Strength), session.SharpenRange); err != nil {
		return nil, err
	}
	return s.apply(session.Sharpen{Strength: *a.Strength})
}

type edgesArgs struct {
	Lower *int `json:"lower"`
	Upper *int `json:"upper"`
}

func (s *Server) handleDetectEdges(args json.RawMessage) (interface{}, error) {
	var a edgesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	lower, upper := s.cfg.EdgeLower, s.cfg.EdgeUpper
	if a.Lower != nil {
		lower = *a.Lower
	}
	if a.Upper != nil {
		upper = *a.Upper
	}
	if err := checkRange("lower", float64(lower), session.ThresholdRange); err != nil {
		return nil, err
	}
	if err := checkRange("upper", float64(upper), session.ThresholdRange); err != nil {
		return nil, err
	}
	return s.apply(session.Edges{Lower: lower, Upper: upper})
}

type rotateArgs struct {
	Angle json.RawMessage `json:"angle"`
}

// handleRotate accepts the angle as a JSON string or a bare JSON number; both
// are parsed as text so that invalid input is reported the same way.
func (s *Server) handleRotate(args json.RawMessage) (interface{}, error) {
	var a rotateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var text string
	raw := bytes.TrimSpace(a.Angle)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, invalidArgs("invalid angle: %v", err)
		}
	} else if !bytes.Equal(raw, []byte("null")) {
		text = string(raw)
	}
	return s.apply(session.Rotate{Angle: text})
}

func (s *Server) handleReset() (interface{}, error) {
	res := s.session.Reset()
	return &editResponse{Result: res, Params: s.session.Params(), Histogram: s.summary()}, nil
}

// === Inspection Handlers ===

type histogramArgs struct {
	Channel string `json:"channel"`
}

type histogramResult struct {
	Channel  string                 `json:"channel"`
	Original []int                  `json:"original,omitempty"`
	Current  []int                  `json:"current,omitempty"`
	Full     *imaging.HistogramPair `json:"full,omitempty"`
	Summary  *histogramSummary      `json:"summary"`
}

// handleHistogram returns both histograms. With no channel the full pair is
// returned; "gray", "r", "g" or "b" selects a single channel.
func (s *Server) handleHistogram(args json.RawMessage) (interface{}, error) {
	var a histogramArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	pair, ok := s.session.Histogram()
	if !ok {
		return nil, errNotLoaded
	}

	res := &histogramResult{Channel: strings.ToLower(a.Channel), Summary: s.summary()}
	pick := func(h *imaging.Histogram) []int {
		switch res.Channel {
		case "gray":
			return h.Gray[:]
		case "r":
			return h.R[:]
		case "g":
			return h.G[:]
		case "b":
			return h.B[:]
		}
		return nil
	}

	switch res.Channel {
	case "":
		res.Channel = "all"
		res.Full = &pair
	case "gray", "r", "g", "b":
		res.Original = pick(&pair.Original)
		res.Current = pick(&pair.Current)
	default:
		return nil, invalidArgs("unknown channel %q: use gray, r, g or b", a.Channel)
	}
	return res, nil
}

type previewArgs struct {
	Buffer    string `json:"buffer"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaxWidth == 0 {
		a.MaxWidth = s.cfg.PreviewWidth
	}
	if a.MaxHeight == 0 {
		a.MaxHeight = s.cfg.PreviewHeight
	}
	if a.MaxWidth < 0 || a.MaxHeight < 0 {
		return nil, invalidArgs("invalid preview size %dx%d", a.MaxWidth, a.MaxHeight)
	}

	b, err := s.buffer(a.Buffer)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(b, a.MaxWidth, a.MaxHeight)
}

type sampleColorArgs struct {
	Buffer string `json:"buffer"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	b, err := s.buffer(a.Buffer)
	if err != nil {
		return nil, err
	}
	res, err := imaging.SampleColor(b, a.X, a.Y)
	if err != nil {
		return nil, &argError{msg: err.Error()}
	}
	return res, nil
}

type compareArgs struct {
	Region *imaging.Region `json:"region"`
}

func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	original, current := s.session.Original(), s.session.Current()
	if original == nil {
		return nil, errNotLoaded
	}
	return imaging.CompareBuffers(original, current, a.Region)
}

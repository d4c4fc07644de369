package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func bufferProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        []string{"original", "current", "overlay"},
		"default":     "current",
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// File operations
		{
			Name:        "image_load",
			Description: "Load an image file into the edit session. Replaces any previous image, discards all edits and recomputes the edge overlay and histograms.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the image file (PNG, JPEG, BMP, GIF, TIFF or WebP)",
				},
			}, "path"),
		},
		{
			Name:        "image_save",
			Description: "Save a session buffer to a file. The format is chosen from the file extension.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Destination path (.png, .jpg, .jpeg, .bmp, .gif or .tiff)",
				},
				"buffer": bufferProperty("Buffer to save. Default current"),
			}, "path"),
		},

		// Edits
		{
			Name:        "image_adjust_contrast",
			Description: "Scale every pixel of the original image by a gain factor. Replaces any previous edit except when chaining is enabled.",
			InputSchema: objectSchema(map[string]interface{}{
				"gain": map[string]interface{}{
					"type":        "number",
					"description": "Contrast gain. 1.0 leaves the image unchanged",
					"minimum":     0,
					"maximum":     5,
				},
			}, "gain"),
		},
		{
			Name:        "image_adjust_brightness",
			Description: "Add a brightness offset to every pixel of the original image. Results saturate at 0 and 255.",
			InputSchema: objectSchema(map[string]interface{}{
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Brightness offset in intensity levels",
					"minimum":     -100,
					"maximum":     100,
				},
			}, "offset"),
		},
		{
			Name:        "image_add_noise",
			Description: "Add Gaussian noise to the original image. The standard deviation is 25 intensity levels at level 1.0.",
			InputSchema: objectSchema(map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "number",
					"description": "Noise level; 0 adds nothing",
					"minimum":     0,
					"maximum":     1,
				},
			}, "level"),
		},
		{
			Name:        "image_sharpen",
			Description: "Sharpen the original image with a 3x3 kernel whose center weight is 5 + strength.",
			InputSchema: objectSchema(map[string]interface{}{
				"strength": map[string]interface{}{
					"type":        "integer",
					"description": "Sharpening strength",
					"minimum":     0,
					"maximum":     10,
				},
			}, "strength"),
		},
		{
			Name:        "image_detect_edges",
			Description: "Run Canny edge detection on the current image and rebuild the edge overlay. Does not modify the current image.",
			InputSchema: objectSchema(map[string]interface{}{
				"lower": map[string]interface{}{
					"type":        "integer",
					"description": "Lower hysteresis threshold. Default 50",
					"minimum":     0,
					"maximum":     255,
				},
				"upper": map[string]interface{}{
					"type":        "integer",
					"description": "Upper hysteresis threshold. Default 150",
					"minimum":     0,
					"maximum":     255,
				},
			}),
		},
		{
			Name:        "image_rotate",
			Description: "Rotate the current image about its center. Rotations accumulate. Positive angles rotate counter-clockwise; uncovered corners are black.",
			InputSchema: objectSchema(map[string]interface{}{
				"angle": map[string]interface{}{
					"type":        "string",
					"description": "Angle in degrees as text, e.g. \"90\" or \"-12.5\"",
				},
			}, "angle"),
		},
		{
			Name:        "image_reset",
			Description: "Discard all edits and restore the current image to the loaded original.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Inspection
		{
			Name:        "image_histogram",
			Description: "Return 256-bin histograms of the original and current images (gray and R, G, B).",
			InputSchema: objectSchema(map[string]interface{}{
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "Single channel to return. Omit for all channels",
					"enum":        []string{"gray", "r", "g", "b"},
				},
			}),
		},
		{
			Name:        "image_preview",
			Description: "Render a session buffer as a base64-encoded PNG scaled to fit a bounding box.",
			InputSchema: objectSchema(map[string]interface{}{
				"buffer": bufferProperty("Buffer to render. Default current"),
				"max_width": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum preview width. Default 400",
				},
				"max_height": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum preview height. Default 300",
				},
			}),
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color of a pixel in a session buffer as hex, RGB, gray and HSL.",
			InputSchema: objectSchema(map[string]interface{}{
				"buffer": bufferProperty("Buffer to sample. Default current"),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (0-based)",
				},
			}, "x", "y"),
		},
		{
			Name:        "image_compare",
			Description: "Compare the current image against the original and report difference statistics.",
			InputSchema: objectSchema(map[string]interface{}{
				"region": map[string]interface{}{
					"type":        "object",
					"description": "Optional region {x1, y1, x2, y2} to compare. Default whole image",
				},
			}),
		},
		{
			Name:        "image_state",
			Description: "Report whether an image is loaded, its dimensions and the last value of every control.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

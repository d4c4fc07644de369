// Package server implements the MCP (Model Context Protocol) server for the
// image-adjust edit session.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// File operations:
//   - image_load: Load an image into the session
//   - image_save: Save the current image (or another buffer)
//
// Edits:
//   - image_adjust_contrast, image_adjust_brightness: Linear tone mapping
//   - image_add_noise: Gaussian noise
//   - image_sharpen: 3x3 sharpening convolution
//   - image_detect_edges: Canny edges painted into the overlay
//   - image_rotate: Rotation about the image center
//   - image_reset: Discard all edits
//
// Inspection:
//   - image_histogram: Before/after histograms
//   - image_preview: Scaled PNG of a buffer
//   - image_sample_color: Pixel color
//   - image_compare: Original versus current difference
//   - image_state: Session summary
//
// Edits other than rotation are computed from the original image; see package
// session for the full policy. An edit issued before any image is loaded
// succeeds with "skipped": true.
//
// # Errors
//
//   - -32601: Unknown method
//   - -32602: Invalid or out-of-range arguments, unusable angle text
//   - -32000: Other tool failures (file not found, decode errors, no image loaded)
//
// # Logging
//
// Diagnostics go to the zerolog logger passed to New, never to stdout.
package server

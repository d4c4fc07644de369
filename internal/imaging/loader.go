package imaging

import (
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageInfo contains metadata about a loaded image file.
//
// This struct provides essential information about an image without requiring
// the caller to analyze the buffer directly.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format implied by the file extension: "png", "jpeg", "bmp",
	// "gif", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// Channels is the channel count of the working buffer: 1 or 3.
	Channels int `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Load decodes an image file into a working buffer.
//
// Parameters:
//   - path: Path to the image file. Supported formats are PNG, JPEG, BMP, GIF,
//     TIFF and WebP. EXIF orientation in JPEG files is applied.
//
// Returns:
//   - *Buffer: The decoded pixels in the working format (see FromImage).
//   - *ImageInfo: Metadata about the file and buffer.
//   - error: Non-nil if the file cannot be opened, stat'd or decoded.
func Load(path string) (*Buffer, *ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf := FromImage(img)
	return buf, &ImageInfo{
		Width:         buf.Width(),
		Height:        buf.Height(),
		Format:        formatName(path),
		Channels:      buf.Channels(),
		FileSizeBytes: stat.Size(),
	}, nil
}

// Save encodes a buffer to path. The format is chosen from the file extension.
//
// Parameters:
//   - b: Buffer to encode.
//   - path: Destination file. Existing files are overwritten.
//   - jpegQuality: Quality (1-100) used when the extension selects JPEG.
//
// Returns an error if the extension is not a supported output format or the
// file cannot be written.
func Save(b *Buffer, path string, jpegQuality int) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	if err := imaging.Save(b.Image(), path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// formatName returns the lower-case format name implied by the extension of path.
func formatName(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		return "webp"
	}
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "unknown"
	}
	return strings.ToLower(f.String())
}

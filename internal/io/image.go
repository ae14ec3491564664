package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService provides image processing operations for map preview
// pictures.
//
// ImageService is used to scale cached preview images down to the
// small dimensions a terminal detail pane can display.
//
// Example usage:
//
//	svc := NewImageService()
//
//	data, _ := os.ReadFile(result.ImagePath)
//	thumb, _ := svc.Thumbnail(ctx, data, 40, 24)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Thumbnail decodes image data and scales it to fit within the given
// maximum dimensions, preserving the aspect ratio.
//
// The registered decoders cover PNG, JPEG, GIF and WebP, which are
// the formats the catalog serves previews in.
//
// The Catmull-Rom algorithm is used for the scale; it holds up well
// at the very small target sizes used for terminal rendering.
//
// Example:
//
//	// Scale to fit within 40x24, maintaining aspect ratio
//	thumb, err := svc.Thumbnail(ctx, imageData, 40, 24)
//	// An 800x600 image becomes 32x24
func (s *ImageService) Thumbnail(ctx context.Context, data []byte, maxWidth, maxHeight int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Calculate new dimensions maintaining aspect ratio
	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			// Width is the limiting factor
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst, nil
}

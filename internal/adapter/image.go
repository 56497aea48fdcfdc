package adapter

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"

	"golang.org/x/image/draw"
)

// ImageProcessor defines an interface for image decode/scale operations to enable mocking
//
//go:generate mockgen -source=image.go -destination=../mocks/image.go -package=mocks -mock_names=ImageProcessor=MockImageProcessor
type ImageProcessor interface {
	// ScalePNG decodes an image, scales it to the given dimensions with a
	// centered cover crop, and re-encodes it as PNG
	ScalePNG(data []byte, width, height int) ([]byte, error)
}

// RealImageProcessor implements ImageProcessor using the standard image
// packages and x/image scaling
type RealImageProcessor struct{}

// NewImageProcessor creates a new real image processor
func NewImageProcessor() ImageProcessor {
	return &RealImageProcessor{}
}

// ScalePNG decodes an image, scales it to the given dimensions with a
// centered cover crop, and re-encodes it as PNG
func (p *RealImageProcessor) ScalePNG(data []byte, width, height int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Centered cover crop so the scaled output keeps the target aspect ratio
	bounds := src.Bounds()
	srcRatio := float64(bounds.Dx()) / float64(bounds.Dy())
	dstRatio := float64(width) / float64(height)

	crop := bounds
	if srcRatio > dstRatio {
		w := int(float64(bounds.Dy()) * dstRatio)
		x0 := bounds.Min.X + (bounds.Dx()-w)/2
		crop = image.Rect(x0, bounds.Min.Y, x0+w, bounds.Max.Y)
	} else if srcRatio < dstRatio {
		h := int(float64(bounds.Dx()) / dstRatio)
		y0 := bounds.Min.Y + (bounds.Dy()-h)/2
		crop = image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

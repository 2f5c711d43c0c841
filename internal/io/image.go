package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// ImageService provides image processing operations for combination images.
//
// The rendering API occasionally answers with an image whose dimensions differ
// from the requested size. ImageService rescales those so every file in the
// cache matches the size encoded in its name.
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Dimensions returns the width and height of an encoded image without
// decoding its pixels.
func (s *ImageService) Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Normalize returns data as a size×size PNG.
//
// If the image already has the requested dimensions the input is returned
// unchanged, without re-encoding. Otherwise it is scaled with Catmull-Rom
// into a transparent square canvas, preserving aspect ratio and centering it.
//
// Example:
//
//	// A 534x534 answer for a 512 request becomes 512x512
//	out, err := svc.Normalize(ctx, data, 512)
func (s *ImageService) Normalize(ctx context.Context, data []byte, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == size && height == size {
		return data, nil
	}

	// Fit the longer side to size
	dstW, dstH := size, size
	if width > height {
		dstH = int(float64(size) * float64(height) / float64(width))
	} else if height > width {
		dstW = int(float64(size) * float64(width) / float64(height))
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	offX := (size - dstW) / 2
	offY := (size - dstH) / 2
	draw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+dstW, offY+dstH), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

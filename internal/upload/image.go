// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/colorpro/colorpro/internal/platform/apperr"
)

// ResizeSpec describes the bounding box and encode quality for image
// post-processing. Images already inside the box are left untouched.
type ResizeSpec struct {
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int
}

// DefaultResizeSpec is the standard transform applied to analysis photos.
var DefaultResizeSpec = ResizeSpec{
	MaxWidth:    2048,
	MaxHeight:   2048,
	JPEGQuality: 85,
}

// inspectImage decodes the image header and returns its metadata without
// decoding pixel data.
func inspectImage(content []byte) (*ImageMetadata, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, apperr.BadRequest("File is not a valid image")
	}
	return &ImageMetadata{
		Width:  config.Width,
		Height: config.Height,
		Format: format,
	}, nil
}

// resizeToBoundingBox scales the image down to fit within the configured
// bounding box, preserving aspect ratio and never upscaling, then re-encodes
// as JPEG.
//
// Returns:
//   - []byte: The transformed bytes, or nil if the image already fits
//   - *ImageMetadata: Metadata of the transformed image
//   - error: Classified *apperr.Error on decode failure
func resizeToBoundingBox(content []byte, spec ResizeSpec) ([]byte, *ImageMetadata, error) {
	source, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, nil, apperr.BadRequest("File is not a valid image")
	}

	bounds := source.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= spec.MaxWidth && height <= spec.MaxHeight {
		return nil, nil, nil
	}

	scaleW := float64(spec.MaxWidth) / float64(width)
	scaleH := float64(spec.MaxHeight) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	targetW := int(float64(width) * scale)
	targetH := int(float64(height) * scale)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	target := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(target, target.Bounds(), source, bounds, xdraw.Over, nil)

	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, target, &jpeg.Options{Quality: spec.JPEGQuality}); err != nil {
		return nil, nil, apperr.Internal(fmt.Errorf("encode resized image: %w", err))
	}

	metadata := &ImageMetadata{Width: targetW, Height: targetH, Format: "jpeg"}
	return encoded.Bytes(), metadata, nil
}

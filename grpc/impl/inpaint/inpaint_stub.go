//go:build !opencv

// Package inpaint removes masked text from page rasters with OpenCV.
//
// This is the stub used when the "opencv" build tag is not set. To enable
// OpenCV inpainting, install OpenCV 4 and rebuild with:
//
//	go build -tags opencv
package inpaint

import (
	"errors"
	"image"
)

// ErrNotEnabled is returned when OpenCV support was not compiled in.
var ErrNotEnabled = errors.New("opencv support not enabled; rebuild with -tags opencv")

type Telea struct{}

func New() (Telea, error) {
	return Telea{}, ErrNotEnabled
}

func (Telea) Inpaint(img image.Image, mask *image.Gray, radius int) (image.Image, error) {
	return nil, ErrNotEnabled
}

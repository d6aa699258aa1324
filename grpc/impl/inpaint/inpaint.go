//go:build opencv

// Package inpaint removes masked text from page rasters with OpenCV.
package inpaint

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// Telea inpaints with OpenCV's implementation of Telea's fast marching method.
type Telea struct{}

func New() (Telea, error) {
	return Telea{}, nil
}

func (Telea) Inpaint(img image.Image, mask *image.Gray, radius int) (image.Image, error) {
	bounds := img.Bounds()
	if mask.Bounds().Size() != bounds.Size() {
		return nil, fmt.Errorf("mask size %v does not match image size %v", mask.Bounds().Size(), bounds.Size())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	mat, err := gocv.NewMatFromBytes(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create image mat: %w", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)

	gray := image.NewGray(rgba.Bounds())
	draw.Draw(gray, gray.Bounds(), mask, mask.Bounds().Min, draw.Src)
	maskMat, err := gocv.NewMatFromBytes(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC1, gray.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create mask mat: %w", err)
	}
	defer maskMat.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Inpaint(bgr, maskMat, &dst, float32(max(radius, 1)), gocv.Telea)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert inpainted mat: %w", err)
	}
	return out, nil
}

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

// Upscale enlarges img by factor with a Catmull-Rom kernel.
func Upscale(img image.Image, factor float64) image.Image {
	bounds := img.Bounds()
	scaled := image.NewRGBA(image.Rect(0, 0, int(float64(bounds.Dx())*factor), int(float64(bounds.Dy())*factor)))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
	return scaled
}

// DrawBlockOverlay outlines every block of page on img and numbers it in reading order.
func DrawBlockOverlay(img *image.RGBA, page layout.Page) {
	scaleX, scaleY := pageScale(img.Bounds(), page)
	for i, block := range page.Blocks {
		rect := toPixels(block.BBox, scaleX, scaleY, img.Bounds())
		if rect.Empty() {
			continue
		}
		drawRectangle(img, rect, color.RGBA{0, 0, 255, 255} /* =blue */, 3)
		drawNumber(img, rect, color.RGBA{255, 0, 0, 255} /* =red */, i+1)
	}
}

func drawRectangle(img *image.RGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	// Top and bottom edges.
	for x := rect.Min.X - thickness; x <= rect.Max.X+thickness; x++ {
		for t := 0; t < thickness; t++ {
			img.Set(x, rect.Min.Y-t, c)
			img.Set(x, rect.Max.Y+t, c)
		}
	}

	// Left and right edges.
	for y := rect.Min.Y - thickness; y <= rect.Max.Y+thickness; y++ {
		for t := 0; t < thickness; t++ {
			img.Set(rect.Min.X-t, y, c)
			img.Set(rect.Max.X+t, y, c)
		}
	}
}

func drawNumber(img *image.RGBA, rect image.Rectangle, c color.RGBA, number int) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size: 20,
		DPI:  72,
	})

	// 1 pixel above the top of the rectangle.
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(rect.Min.X, rect.Min.Y-1),
	}
	drawer.DrawString(fmt.Sprintf("%d", number))
}

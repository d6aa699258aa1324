package render

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Sobel magnitude thresholds for edge hysteresis, on 0-255 luminance.
const (
	EDGE_HIGH_THRESHOLD = 100.0
	EDGE_LOW_THRESHOLD  = 50.0
	// Minimum Lab lightness difference from the background for an edge pixel to count as ink.
	INK_LIGHTNESS_DELTA = 0.1
	// Mean ink lightness above which text is drawn white.
	LIGHT_TEXT_THRESHOLD = 0.5
)

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// detectTextColor decides between black and white text for a region of the original raster.
// Edge pixels are found with a Sobel operator and hysteresis; the ones on the ink side of the
// background are averaged in Lab lightness.
func detectTextColor(img image.Image, rect image.Rectangle) colorful.Color {
	rect = rect.Intersect(img.Bounds())
	width, height := rect.Dx(), rect.Dy()
	if width < 3 || height < 3 {
		return black
	}

	gray := make([]float64, width*height)
	lightness := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.At(rect.Min.X+x, rect.Min.Y+y)
			gray[y*width+x] = luminance(c)
			lightness[y*width+x] = labLightness(c)
		}
	}
	background := medianOf(lightness)

	edges := hysteresis(sobel(gray, width, height), width, height, EDGE_HIGH_THRESHOLD, EDGE_LOW_THRESHOLD)
	var inkSum, edgeSum float64
	var inkCount, edgeCount int
	for i, edge := range edges {
		if !edge {
			continue
		}
		edgeSum += lightness[i]
		edgeCount++
		if math.Abs(lightness[i]-background) > INK_LIGHTNESS_DELTA {
			inkSum += lightness[i]
			inkCount++
		}
	}

	var mean float64
	switch {
	case inkCount > 0:
		mean = inkSum / float64(inkCount)
	case edgeCount > 0:
		mean = edgeSum / float64(edgeCount)
	default:
		// No visible glyphs: contrast with the background.
		mean = 1 - background
	}
	if mean > LIGHT_TEXT_THRESHOLD {
		return white
	}
	return black
}

func labLightness(c color.Color) float64 {
	converted, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	l, _, _ := converted.Lab()
	return l
}

func sobel(gray []float64, width, height int) []float64 {
	magnitude := make([]float64, width*height)
	at := func(x, y int) float64 { return gray[y*width+x] }
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) + at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) + at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			magnitude[y*width+x] = math.Hypot(gx, gy)
		}
	}
	return magnitude
}

// hysteresis keeps strong edges and weak edges connected to them.
func hysteresis(magnitude []float64, width, height int, high, low float64) []bool {
	edges := make([]bool, len(magnitude))
	stack := []int{}
	for i, value := range magnitude {
		if value >= high {
			edges[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := index%width, index/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				neighbour := ny*width + nx
				if !edges[neighbour] && magnitude[neighbour] >= low {
					edges[neighbour] = true
					stack = append(stack, neighbour)
				}
			}
		}
	}
	return edges
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

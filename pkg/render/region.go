package render

import (
	"image"
	"image/color"
	"math"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

// Region classification thresholds on 0-255 luminance of the background ring.
const (
	IMAGE_VARIANCE          = 150.0
	IMAGE_RANGE             = 80.0
	DARK_MEAN               = 120.0
	DARK_VARIANCE           = 50.0
	IMAGE_RANGE_SECONDARY   = 60.0
	DEFAULT_RING_WIDTH      = 6
	DEFAULT_MASK_PADDING    = 3
	DEFAULT_INPAINT_RADIUS  = 3
	DEFAULT_RENDER_DPI      = 300.0
	DEFAULT_BOTTOM_MARGIN   = 0.95
	DEFAULT_COLUMN_LEFT     = 0.1
	DEFAULT_COLUMN_RIGHT    = 0.9
	DEFAULT_LINE_SPACING    = 1.2
	DEFAULT_BLOCK_SPACING   = 4.0
	DEFAULT_MIN_FONT_SCALE  = 0.4
	DEFAULT_FIT_ITERATIONS  = 8
	DEFAULT_BLOCK_FONT_SIZE = 12.0
)

// Glyphs overshoot the estimated block box by up to this share of the font size
// (accents above the ascent, descenders below it).
const GLYPH_OVERSHOOT_RATIO = 0.25

// Share of ring pixels dropped from each end of the luminance distribution.
const RING_TRIM_FRACTION = 0.05

// region is a block mapped into pixel space.
type region struct {
	index     int
	block     layout.Block
	rect      image.Rectangle
	overshoot int
	isImage   bool
}

type regionStats struct {
	mean     float64
	variance float64
	min, max float64
	count    int
}

func (s regionStats) intensityRange() float64 {
	return s.max - s.min
}

// isImageRegion applies the image heuristics to background statistics.
func (s regionStats) isImageRegion() bool {
	if s.count == 0 {
		return false
	}
	r := s.intensityRange()
	return s.variance > IMAGE_VARIANCE ||
		r > IMAGE_RANGE ||
		(s.mean < DARK_MEAN && s.variance > DARK_VARIANCE) ||
		r > IMAGE_RANGE_SECONDARY
}

// toPixels maps a block's point box into the image with the given scale, clipped to bounds.
func toPixels(bbox layout.BBox, scaleX float64, scaleY float64, bounds image.Rectangle) image.Rectangle {
	scaled := bbox.Scale(scaleX, scaleY)
	rect := image.Rect(
		bounds.Min.X+int(scaled.X0),
		bounds.Min.Y+int(scaled.Y0),
		bounds.Min.X+int(scaled.X1+0.5),
		bounds.Min.Y+int(scaled.Y1+0.5),
	)
	return rect.Intersect(bounds)
}

// luminance returns the Rec. 601 luma of a pixel in 0-255.
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257
}

// ringStats computes luminance statistics of the band of the given width that starts
// gap pixels outside rect, skipping pixels covered by any text rectangle. The darkest
// and lightest RING_TRIM_FRACTION of the band are dropped so stray ink does not count.
func ringStats(img image.Image, rect image.Rectangle, gap int, width int, text []image.Rectangle) regionStats {
	inner := rect.Inset(-gap)
	outer := inner.Inset(-width).Intersect(img.Bounds())
	strips := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	}
	var histogram [256]int
	count := 0
	for _, strip := range strips {
		strip = strip.Intersect(outer)
		for y := strip.Min.Y; y < strip.Max.Y; y++ {
			for x := strip.Min.X; x < strip.Max.X; x++ {
				if inAny(image.Pt(x, y), text) {
					continue
				}
				histogram[int(luminance(img.At(x, y))+0.5)]++
				count++
			}
		}
	}
	if count == 0 {
		return regionStats{}
	}

	trim := int(float64(count) * RING_TRIM_FRACTION)
	for low, v := trim, 0; low > 0 && v < len(histogram); v++ {
		n := min(histogram[v], low)
		histogram[v] -= n
		low -= n
	}
	for high, v := trim, len(histogram)-1; high > 0 && v >= 0; v-- {
		n := min(histogram[v], high)
		histogram[v] -= n
		high -= n
	}

	stats := regionStats{min: 255}
	var sum, sumSquares float64
	for v, n := range histogram {
		if n == 0 {
			continue
		}
		value := float64(v)
		sum += value * float64(n)
		sumSquares += value * value * float64(n)
		stats.min = min(stats.min, value)
		stats.max = max(stats.max, value)
		stats.count += n
	}
	if stats.count == 0 {
		return regionStats{}
	}
	stats.mean = sum / float64(stats.count)
	stats.variance = max(0, sumSquares/float64(stats.count)-stats.mean*stats.mean)
	return stats
}

func inAny(point image.Point, rects []image.Rectangle) bool {
	for _, rect := range rects {
		if point.In(rect) {
			return true
		}
	}
	return false
}

// classifyRegions maps every block with a non-empty box into pixel space and flags image regions.
// The background ring is sampled outside the mask padding and the block's glyph overshoot.
func classifyRegions(img image.Image, page layout.Page, options Options) []region {
	bounds := img.Bounds()
	scaleX, scaleY := pageScale(bounds, page)
	regions := []region{}
	for i, block := range page.Blocks {
		rect := toPixels(block.BBox, scaleX, scaleY, bounds)
		if rect.Empty() {
			continue
		}
		size := block.FontSize
		if size <= 0 {
			size = options.DefaultFontSize
		}
		if size <= 0 {
			size = DEFAULT_BLOCK_FONT_SIZE
		}
		overshoot := int(math.Ceil(GLYPH_OVERSHOOT_RATIO * size * scaleY))
		regions = append(regions, region{index: i, block: block, rect: rect, overshoot: overshoot})
	}
	rects := make([]image.Rectangle, len(regions))
	for i, r := range regions {
		rects[i] = r.rect.Inset(-r.overshoot)
	}
	for i, r := range regions {
		gap := options.MaskPadding + r.overshoot
		regions[i].isImage = ringStats(img, r.rect, gap, options.RingWidth, rects).isImageRegion()
	}
	return regions
}

func pageScale(bounds image.Rectangle, page layout.Page) (float64, float64) {
	width, height := page.Width, page.Height
	if width <= 0 {
		width = layout.DEFAULT_PAGE_WIDTH
	}
	if height <= 0 {
		height = layout.DEFAULT_PAGE_HEIGHT
	}
	return float64(bounds.Dx()) / width, float64(bounds.Dy()) / height
}

// buildMask marks every region, padded and grown by its glyph overshoot, as pixels to inpaint.
func buildMask(bounds image.Rectangle, regions []region, padding int) *image.Gray {
	mask := image.NewGray(bounds)
	for _, r := range regions {
		padded := r.rect.Inset(-(padding + r.overshoot)).Intersect(bounds)
		for y := padded.Min.Y; y < padded.Max.Y; y++ {
			for x := padded.Min.X; x < padded.Max.X; x++ {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sort"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"

	"github.com/visionex-project/pdftrans/pkg/font"
	"github.com/visionex-project/pdftrans/pkg/layout"
)

// Rasterizer renders one page of a PDF file to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, pageIndex int, dpi float64) (image.Image, error)
}

type Options struct {
	DPI float64
	// Extra scale applied to the raster before rendering. 1 disables upscaling.
	Upscale float64
	// Common text column as fractions of the page width.
	ColumnLeft  float64
	ColumnRight float64
	// Wrap each block within its own box instead of the common column.
	AnchorToBlock bool
	// Fraction of the page height below which nothing is drawn.
	BottomMargin float64
	RingWidth    int
	MaskPadding  int
	// Inpainting radius in pixels.
	InpaintRadius int
	// Line height as a multiple of the font size.
	LineSpacing float64
	// Minimum vertical pixel distance between rendered blocks.
	BlockSpacing float64
	MinFontScale float64
	// Font size in points for blocks without one.
	DefaultFontSize float64
	FitIterations   int
	DebugOverlay    bool
}

func DefaultOptions() Options {
	return Options{
		DPI:             DEFAULT_RENDER_DPI,
		Upscale:         1,
		ColumnLeft:      DEFAULT_COLUMN_LEFT,
		ColumnRight:     DEFAULT_COLUMN_RIGHT,
		BottomMargin:    DEFAULT_BOTTOM_MARGIN,
		RingWidth:       DEFAULT_RING_WIDTH,
		MaskPadding:     DEFAULT_MASK_PADDING,
		InpaintRadius:   DEFAULT_INPAINT_RADIUS,
		LineSpacing:     DEFAULT_LINE_SPACING,
		BlockSpacing:    DEFAULT_BLOCK_SPACING,
		MinFontScale:    DEFAULT_MIN_FONT_SCALE,
		DefaultFontSize: DEFAULT_BLOCK_FONT_SIZE,
		FitIterations:   DEFAULT_FIT_ITERATIONS,
	}
}

// ClippedBlock records a block whose text did not fit above the bottom margin.
type ClippedBlock struct {
	Block int `json:"block"`
	Lines int `json:"lines"`
}

// PageReport describes what happened to each block of a rendered page.
type PageReport struct {
	Page         int            `json:"page"`
	Blocks       int            `json:"blocks"`
	Rendered     int            `json:"rendered"`
	ImageRegions int            `json:"image_regions"`
	Untranslated int            `json:"untranslated"`
	Skipped      int            `json:"skipped"`
	ClippedLines int            `json:"clipped_lines"`
	Clipped      []ClippedBlock `json:"clipped,omitempty"`
	// The page is the raw raster because inpainting failed.
	Fallback bool `json:"fallback"`
	// The page could not be rendered at all and has no image.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// renderedArea is the pixel extent of text drawn for one block.
type renderedArea struct {
	left, top, right, bottom float64
}

func (a renderedArea) horizontallyOverlaps(left, right float64) bool {
	return a.left < right && left < a.right
}

type Renderer struct {
	rasterizer Rasterizer
	inpainter  Inpainter
	fonts      font.FontProvider
	options    Options
}

func New(rasterizer Rasterizer, inpainter Inpainter, fonts font.FontProvider, options Options) *Renderer {
	if inpainter == nil {
		inpainter = FastMarching{}
	}
	return &Renderer{rasterizer: rasterizer, inpainter: inpainter, fonts: fonts, options: options}
}

func (r *Renderer) Options() Options {
	return r.options
}

// RenderPage rasterizes a page and replaces its text with the blocks' translations.
// Only rasterization failures are returned; block and inpainting failures are reported.
func (r *Renderer) RenderPage(ctx context.Context, pdfPath string, pageIndex int, page layout.Page, language font.Language) (image.Image, PageReport, error) {
	if r.rasterizer == nil {
		return nil, PageReport{Page: pageIndex}, errors.New("no rasterizer configured")
	}
	raster, err := r.rasterizer.Rasterize(ctx, pdfPath, pageIndex, r.options.DPI)
	if err != nil {
		return nil, PageReport{Page: pageIndex}, fmt.Errorf("failed to rasterize page %d: %w", pageIndex, err)
	}
	if r.options.Upscale > 1 {
		raster = Upscale(raster, r.options.Upscale)
	}
	img, report := r.Compose(pageIndex, raster, page, language)
	return img, report, nil
}

// Compose removes the original text from raster and draws the translated blocks.
func (r *Renderer) Compose(pageIndex int, raster image.Image, page layout.Page, language font.Language) (image.Image, PageReport) {
	report := PageReport{Page: pageIndex, Blocks: len(page.Blocks)}
	logger := log.WithField("page", pageIndex)

	regions := classifyRegions(raster, page, r.options)
	mask := buildMask(raster.Bounds(), regions, r.options.MaskPadding)
	inpainted, err := r.inpainter.Inpaint(raster, mask, r.options.InpaintRadius)
	if err != nil {
		logger.Printf("Failed to inpaint page, using the raw raster: %v", err)
		report.Fallback = true
		return toRGBA(raster), report
	}

	drawingContext := gg.NewContextForImage(inpainted)
	var fontFace *truetype.Font
	if r.fonts != nil {
		if fonts := r.fonts.GetFontByLanguage(language); fonts != nil {
			fontFace = fonts.SansSerif.Regular
		}
	}

	textRegions := []region{}
	for _, reg := range regions {
		if reg.isImage {
			report.ImageRegions++
			continue
		}
		textRegions = append(textRegions, reg)
	}
	sort.SliceStable(textRegions, func(i, j int) bool {
		if textRegions[i].rect.Min.Y != textRegions[j].rect.Min.Y {
			return textRegions[i].rect.Min.Y < textRegions[j].rect.Min.Y
		}
		return textRegions[i].rect.Min.X < textRegions[j].rect.Min.X
	})

	scaleX, scaleY := pageScale(raster.Bounds(), page)
	areas := []renderedArea{}
	for _, reg := range textRegions {
		blockLogger := logger.WithField("block", reg.index)
		text := strings.TrimSpace(reg.block.DisplayText())
		if text == "" {
			report.Untranslated++
			continue
		}
		if fontFace == nil {
			blockLogger.Printf("Failed to render block: no font for %s", language)
			report.Skipped++
			continue
		}

		placed, err := r.place(drawingContext, fontFace, reg, text, scaleX, scaleY, areas, raster.Bounds())
		if err != nil {
			blockLogger.Printf("Failed to render block: %v", err)
			report.Skipped++
			continue
		}
		drawn := r.draw(drawingContext, fontFace, placed, detectTextColor(raster, reg.rect))
		if clipped := len(placed.lines) - drawn; clipped > 0 {
			blockLogger.Printf("Clipped %d of %d lines at the bottom margin", clipped, len(placed.lines))
			report.ClippedLines += clipped
			report.Clipped = append(report.Clipped, ClippedBlock{Block: reg.index, Lines: clipped})
		}
		if drawn > 0 {
			areas = append(areas, placed.area(drawn))
			report.Rendered++
		}
	}

	result := toRGBA(drawingContext.Image())
	if r.options.DebugOverlay {
		DrawBlockOverlay(result, page)
	}
	return result, report
}

type placement struct {
	lines      []string
	fontSize   float64
	lineHeight float64
	left       float64
	top        float64
	bottom     float64
	lineWidths []float64
}

func (p placement) area(drawn int) renderedArea {
	width := 0.0
	for _, w := range p.lineWidths[:drawn] {
		width = math.Max(width, w)
	}
	return renderedArea{left: p.left, top: p.top, right: p.left + width, bottom: p.top + float64(drawn)*p.lineHeight}
}

// place wraps and sizes a block's text and resolves its position against rendered areas.
func (r *Renderer) place(dc *gg.Context, f *truetype.Font, reg region, text string, scaleX, scaleY float64, areas []renderedArea, bounds image.Rectangle) (placement, error) {
	left, right := r.column(reg, scaleX, bounds)
	width := right - left
	if width <= 0 {
		return placement{}, errors.New("non-positive column width")
	}

	top := float64(reg.rect.Min.Y)
	for _, area := range areas {
		if area.horizontallyOverlaps(left, right) && top < area.bottom+r.options.BlockSpacing {
			top = area.bottom + r.options.BlockSpacing
		}
	}
	bottom := float64(bounds.Min.Y) + r.options.BottomMargin*float64(bounds.Dy())
	available := bottom - top
	if available <= 0 {
		return placement{}, fmt.Errorf("no vertical space left below %.0f", top)
	}

	fontSize := reg.block.FontSize
	if fontSize <= 0 {
		fontSize = r.options.DefaultFontSize
	}
	fontSize *= scaleY
	lines, size := fitText(dc, f, text, fontSize, width, available, r.options)
	if len(lines) == 0 {
		return placement{}, errors.New("no wrapped lines")
	}

	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
	widths := make([]float64, len(lines))
	for i, line := range lines {
		widths[i], _ = dc.MeasureString(line)
	}
	return placement{
		lines:      lines,
		fontSize:   size,
		lineHeight: size * r.options.LineSpacing,
		left:       left,
		top:        top,
		bottom:     bottom,
		lineWidths: widths,
	}, nil
}

// column returns the horizontal pixel range text is wrapped into.
func (r *Renderer) column(reg region, scaleX float64, bounds image.Rectangle) (float64, float64) {
	if r.options.AnchorToBlock {
		left := float64(reg.rect.Min.X)
		if reg.block.TextStartX > 0 {
			left = math.Max(left, float64(bounds.Min.X)+reg.block.TextStartX*scaleX)
		}
		return left, float64(reg.rect.Max.X)
	}
	width := float64(bounds.Dx())
	return float64(bounds.Min.X) + r.options.ColumnLeft*width, float64(bounds.Min.X) + r.options.ColumnRight*width
}

// draw writes lines left-aligned until the bottom margin and returns how many were drawn.
func (r *Renderer) draw(dc *gg.Context, f *truetype.Font, p placement, textColor colorful.Color) int {
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: p.fontSize}))
	dc.SetColor(textColor)
	drawn := 0
	for i, line := range p.lines {
		lineTop := p.top + float64(i)*p.lineHeight
		if lineTop+p.lineHeight > p.bottom {
			break
		}
		dc.DrawStringAnchored(
			line,
			p.left,  /* =x */
			lineTop, /* =y */
			0,       /* =ax (align left in x) */
			1,       /* =ay (y is the top of the text) */
		)
		drawn++
	}
	return drawn
}

// fitText shrinks the font until the wrapped text fits the available height, for at most
// the configured number of iterations and not below the minimum scale. Text that still does
// not fit is wrapped at the minimum size and left to be clipped.
func fitText(dc *gg.Context, f *truetype.Font, text string, fontSize, width, available float64, options Options) ([]string, float64) {
	minSize := fontSize * options.MinFontScale
	wrap := func(size float64) ([]string, float64) {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
		lines := wrapText(text, width, func(s string) float64 {
			w, _ := dc.MeasureString(s)
			return w
		})
		return lines, float64(len(lines)) * size * options.LineSpacing
	}

	size := fontSize
	for i := 0; ; i++ {
		lines, height := wrap(size)
		if height <= available {
			return lines, size
		}
		if size <= minSize || i >= options.FitIterations {
			break
		}
		ratio := math.Sqrt(available / height)
		size = math.Max(minSize, size*math.Min(0.95, math.Max(0.75, ratio)))
	}
	lines, _ := wrap(minSize)
	return lines, minSize
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

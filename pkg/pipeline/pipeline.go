package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/visionex-project/pdftrans/pkg/extract"
	"github.com/visionex-project/pdftrans/pkg/font"
	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/mapping"
	"github.com/visionex-project/pdftrans/pkg/render"
)

const (
	DEFAULT_PAGE_CONCURRENCY = 4
	DEFAULT_OCR_DPI          = 300.0
)

// Source reads the structure and the text layer of a PDF file.
type Source interface {
	Inspect(path string) ([]extract.PageSize, error)
	Read(path string) (*extract.NativeDocument, error)
}

type pdfSource struct{}

func (pdfSource) Inspect(path string) ([]extract.PageSize, error) {
	return extract.Inspect(path)
}

func (pdfSource) Read(path string) (*extract.NativeDocument, error) {
	return extract.ReadNative(path)
}

type Config struct {
	PageConcurrency int
	// Resolution pages are rasterized at for OCR.
	OCRDPI           float64
	MinOCRConfidence float64
	// Build a PDF from the rendered pages.
	AssemblePDF bool
	Layout      layout.Config
}

func DefaultConfig() Config {
	return Config{
		PageConcurrency:  DEFAULT_PAGE_CONCURRENCY,
		OCRDPI:           DEFAULT_OCR_DPI,
		MinOCRConfidence: extract.DEFAULT_MIN_CONFIDENCE,
		AssemblePDF:      true,
		Layout:           layout.DefaultConfig(),
	}
}

type Request struct {
	PDFPath        string
	TargetLanguage string
	Mode           mapping.Mode
}

type Result struct {
	Layout *layout.Layout
	// PNG encoded pages, in page order. Pages that failed to render are nil.
	Pages [][]byte
	// Empty unless the pipeline is configured to assemble one.
	PDF    []byte
	Report Report
}

type Pipeline struct {
	source     Source
	recognizer extract.Recognizer
	rasterizer render.Rasterizer
	mapper     *mapping.Mapper
	renderer   *render.Renderer
	config     Config
}

// New wires the pipeline stages. A nil source reads files with pdfcpu and ledongthuc/pdf;
// a nil recognizer or rasterizer disables the OCR fallback.
func New(
	source Source,
	recognizer extract.Recognizer,
	rasterizer render.Rasterizer,
	mapper *mapping.Mapper,
	renderer *render.Renderer,
	config Config,
) *Pipeline {
	if source == nil {
		source = pdfSource{}
	}
	if config.PageConcurrency <= 0 {
		config.PageConcurrency = DEFAULT_PAGE_CONCURRENCY
	}
	if config.OCRDPI <= 0 {
		config.OCRDPI = DEFAULT_OCR_DPI
	}
	return &Pipeline{
		source:     source,
		recognizer: recognizer,
		rasterizer: rasterizer,
		mapper:     mapper,
		renderer:   renderer,
		config:     config,
	}
}

// Run extracts, translates and renders a document.
func (p *Pipeline) Run(ctx context.Context, request Request) (*Result, error) {
	logger := log.WithField("pdf", request.PDFPath)

	l, err := p.Extract(ctx, request.PDFPath)
	if err != nil {
		return nil, err
	}
	logger.Printf("Extracted %d blocks from %d pages", l.BlockCount(), len(l.Pages))

	stats, err := p.mapper.Map(ctx, l, request.TargetLanguage, request.Mode)
	if err != nil {
		return nil, NewError(KindTranslation, err)
	}

	indexes := make([]int, len(l.Pages))
	for i := range indexes {
		indexes[i] = i
	}
	pages, reports, err := p.renderPages(ctx, request.PDFPath, l, font.ParseLanguage(request.TargetLanguage), indexes)
	if err != nil {
		return nil, err
	}

	result := &Result{Layout: l, Pages: pages, Report: newReport(stats, reports)}
	result.Report.DroppedParagraphs = l.DroppedParagraphs()
	if p.config.AssemblePDF {
		document, err := AssemblePDF(pages)
		if err != nil {
			return nil, NewError(KindRender, fmt.Errorf("failed to assemble pdf: %w", err))
		}
		result.PDF = document
	}
	return result, nil
}

// Rerender draws the given pages of an already translated layout again, returning PNG
// pages and reports aligned with pages.
func (p *Pipeline) Rerender(ctx context.Context, pdfPath string, l *layout.Layout, targetLanguage string, pages []int) ([][]byte, []render.PageReport, error) {
	for _, index := range pages {
		if index < 0 || index >= len(l.Pages) {
			return nil, nil, NotFound("page %d of %d", index, len(l.Pages))
		}
	}
	return p.renderPages(ctx, pdfPath, l, font.ParseLanguage(targetLanguage), pages)
}

// Extract builds the layout of a document from its text layer, then from OCR when the text
// layer is empty, then from its plain text as a synthetic layout.
func (p *Pipeline) Extract(ctx context.Context, path string) (*layout.Layout, error) {
	sizes, err := p.source.Inspect(path)
	if err != nil {
		return nil, NewError(KindExtraction, err)
	}
	if len(sizes) == 0 {
		sizes = []extract.PageSize{{Width: layout.DEFAULT_PAGE_WIDTH, Height: layout.DEFAULT_PAGE_HEIGHT}}
	}

	native, err := p.source.Read(path)
	if err != nil {
		log.Printf("Failed to read text layer, continuing without it: %v", err)
		native = &extract.NativeDocument{}
	}

	builder := layout.NewBuilderWithConfig(p.config.Layout)
	l := &layout.Layout{Pages: make([]layout.Page, len(sizes))}
	for i, size := range sizes {
		var nativePage extract.NativePage
		if i < len(native.Pages) {
			nativePage = native.Pages[i]
		}
		width, height := pageSize(size, nativePage)
		l.Pages[i] = builder.BuildPage(nativePage.Atoms, nativePage.Rows, width, height)
	}
	if l.BlockCount() > 0 {
		return l, nil
	}

	plainText := native.PlainText
	if p.recognizer != nil && p.rasterizer != nil {
		ocrText, err := p.recognize(ctx, path, l)
		if err != nil {
			return nil, err
		}
		if l.BlockCount() > 0 {
			return l, nil
		}
		if strings.TrimSpace(plainText) == "" {
			plainText = ocrText
		}
	}

	paragraphs := layout.SplitParagraphs(plainText)
	if len(paragraphs) == 0 {
		return nil, NewError(KindExtraction, errors.New("no text in text layer or OCR"))
	}
	log.Warn(NewError(KindLayoutDegenerate, fmt.Errorf("no blocks recovered, laying out %d paragraphs", len(paragraphs))))
	l.Pages = layout.SyntheticPages(l.Pages, paragraphs, nil)
	if dropped := l.DroppedParagraphs(); dropped > 0 {
		log.Warnf("Dropped %d of %d paragraphs past the bottom margin", dropped, len(paragraphs))
	}
	return l, nil
}

func pageSize(size extract.PageSize, nativePage extract.NativePage) (float64, float64) {
	width, height := size.Width, size.Height
	if width <= 0 || height <= 0 {
		width, height = nativePage.Width, nativePage.Height
	}
	if width <= 0 || height <= 0 {
		width, height = layout.DEFAULT_PAGE_WIDTH, layout.DEFAULT_PAGE_HEIGHT
	}
	return width, height
}

// recognize replaces the pages of l with layouts built from OCR words and returns the
// recognized plain text. A page that fails OCR keeps its empty layout.
func (p *Pipeline) recognize(ctx context.Context, path string, l *layout.Layout) (string, error) {
	config := p.config.Layout
	config.Line = layout.DefaultOCRLineConfig(p.config.OCRDPI / 72)
	builder := layout.NewBuilderWithConfig(config)

	texts := make([]string, len(l.Pages))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.PageConcurrency)
	for i := range l.Pages {
		group.Go(func() error {
			words, err := p.recognizePage(groupCtx, path, i)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				log.WithField("page", i).Printf("Failed to recognize page: %v", err)
				return nil
			}
			atoms := extract.WordsToAtoms(words, p.config.OCRDPI/72, p.config.MinOCRConfidence)
			l.Pages[i] = builder.BuildPage(atoms, nil, l.Pages[i].Width, l.Pages[i].Height)
			texts[i] = extract.PlainText(words)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return "", NewError(KindExtraction, err)
	}
	return strings.Join(texts, mapping.PARAGRAPH_SEPARATOR), nil
}

func (p *Pipeline) recognizePage(ctx context.Context, path string, index int) ([]extract.Word, error) {
	img, err := p.rasterizer.Rasterize(ctx, path, index, p.config.OCRDPI)
	if err != nil {
		return nil, err
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return p.recognizer.Recognize(ctx, buffer.Bytes())
}

// renderPages renders the given pages in parallel. A page that fails to render is left nil
// and marked failed in its report; the run only fails when every page does.
func (p *Pipeline) renderPages(ctx context.Context, pdfPath string, l *layout.Layout, language font.Language, indexes []int) ([][]byte, []render.PageReport, error) {
	pages := make([][]byte, len(indexes))
	reports := make([]render.PageReport, len(indexes))
	failures := make([]error, len(indexes))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.PageConcurrency)
	for i, index := range indexes {
		group.Go(func() error {
			page, report, err := p.renderPage(groupCtx, pdfPath, l, language, index)
			if err != nil {
				if groupCtx.Err() != nil {
					return PageError(KindRender, index, groupCtx.Err())
				}
				failures[i] = err
				log.WithField("page", index).Warn(err)
				reports[i] = render.PageReport{
					Page:   index,
					Blocks: len(l.Pages[index].Blocks),
					Failed: true,
					Error:  err.Error(),
				}
				return nil
			}
			pages[i] = page
			reports[i] = report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed > 0 && failed == len(indexes) {
		return nil, nil, failures[0]
	}
	return pages, reports, nil
}

func (p *Pipeline) renderPage(ctx context.Context, pdfPath string, l *layout.Layout, language font.Language, index int) ([]byte, render.PageReport, error) {
	img, report, err := p.renderer.RenderPage(ctx, pdfPath, index, l.Pages[index], language)
	if err != nil {
		return nil, report, PageError(KindRender, index, err)
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return nil, report, PageError(KindRender, index, fmt.Errorf("failed to encode page: %w", err))
	}
	return buffer.Bytes(), report, nil
}

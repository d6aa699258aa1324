package extract

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	log "github.com/sirupsen/logrus"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

// Approximate share of the font size above and below the baseline.
// The PDF text layer only reports the baseline origin of a glyph.
const (
	ASCENT_RATIO  = 0.8
	DESCENT_RATIO = 0.2
	// Glyphs further apart than this share of the font size start a new run.
	RUN_GAP_RATIO = 0.3
)

// Estimated glyph advance as a share of the font size, for text without widths.
const AVERAGE_ADVANCE_RATIO = 0.5

// Guards against Parent cycles in malformed page trees.
const MAX_PAGE_TREE_DEPTH = 64

// NativePage is the text layer of one page.
type NativePage struct {
	Width  float64
	Height float64
	// Glyph runs in points with a top-left origin.
	Atoms []layout.TextAtom
	// Row-level blocks from the whole-page pass, used to catch text the paragraph pass missed.
	Rows []layout.Block
}

// NativeDocument is the text layer of a whole PDF.
type NativeDocument struct {
	Pages     []NativePage
	PlainText string
}

// ReadNative extracts glyph runs and row blocks for every page of the PDF.
// A page whose content stream cannot be decoded yields no atoms rather than an error.
func ReadNative(path string) (*NativeDocument, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	document := &NativeDocument{}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			document.Pages = append(document.Pages, NativePage{})
			continue
		}
		nativePage, err := readPage(page)
		if err != nil {
			log.WithField("page", i).Printf("Failed to read text layer: %v", err)
		}
		document.Pages = append(document.Pages, nativePage)
	}

	plainText, err := readPlainText(reader)
	if err != nil {
		log.Printf("Failed to read plain text: %v", err)
	}
	document.PlainText = plainText
	return document, nil
}

func readPage(page pdf.Page) (nativePage NativePage, err error) {
	// The decoder panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()

	box := mediaBox(page)
	nativePage.Width, nativePage.Height = box.Width(), box.Height()
	content := page.Content().Text
	nativePage.Atoms = GlyphRuns(content, box)

	rows, err := page.GetTextByRow()
	if err != nil {
		return nativePage, fmt.Errorf("failed to group rows: %w", err)
	}
	for _, row := range rows {
		lines := layout.BuildLines(GlyphRuns(rowGlyphs(row, content), box), layout.DefaultNativeLineConfig())
		for _, line := range lines {
			nativePage.Rows = append(nativePage.Rows, layout.Block{
				BBox:       line.BBox,
				Text:       line.Text,
				FontSize:   line.FontSize,
				TextStartX: line.StartX,
			})
		}
	}
	return nativePage, nil
}

// rowGlyphs gives a row of the whole-page pass the metrics it lacks. The row pass only
// reports text origins, so glyphs of the content stream on the same baseline are used
// when there are any, and sizes are estimated from the page otherwise.
func rowGlyphs(row *pdf.Row, content []pdf.Text) []pdf.Text {
	matching := []pdf.Text{}
	for _, glyph := range content {
		if int64(glyph.Y) == row.Position {
			matching = append(matching, glyph)
		}
	}
	if len(matching) > 0 {
		sort.SliceStable(matching, func(i, j int) bool { return matching[i].X < matching[j].X })
		return matching
	}

	size := medianFontSize(content)
	estimated := make([]pdf.Text, 0, len(row.Content))
	for _, text := range row.Content {
		text.FontSize = size
		text.W = float64(utf8.RuneCountInString(text.S)) * size * AVERAGE_ADVANCE_RATIO
		estimated = append(estimated, text)
	}
	return estimated
}

func medianFontSize(content []pdf.Text) float64 {
	sizes := []float64{}
	for _, glyph := range content {
		if glyph.FontSize > 0 {
			sizes = append(sizes, glyph.FontSize)
		}
	}
	if len(sizes) == 0 {
		return layout.SYNTHETIC_FONT_SIZE
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}

func readPlainText(reader *pdf.Reader) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(plainText)
	if err != nil {
		return "", err
	}
	return layout.StripSoftHyphens(string(data)), nil
}

// Box is a page rectangle in PDF user space, lower-left origin.
type Box struct {
	X0, Y0, X1, Y1 float64
}

func (b Box) Width() float64 {
	return b.X1 - b.X0
}

func (b Box) Height() float64 {
	return b.Y1 - b.Y0
}

// mediaBox reads the MediaBox of page, inherited from the closest /Pages ancestor when
// the page does not set one.
func mediaBox(page pdf.Page) Box {
	value := inherited(page.V, "MediaBox")
	if value.Len() < 4 {
		return Box{X1: layout.DEFAULT_PAGE_WIDTH, Y1: layout.DEFAULT_PAGE_HEIGHT}
	}
	x0, y0 := value.Index(0).Float64(), value.Index(1).Float64()
	x1, y1 := value.Index(2).Float64(), value.Index(3).Float64()
	box := Box{X0: math.Min(x0, x1), Y0: math.Min(y0, y1), X1: math.Max(x0, x1), Y1: math.Max(y0, y1)}
	if box.Width() <= 0 || box.Height() <= 0 {
		return Box{X1: layout.DEFAULT_PAGE_WIDTH, Y1: layout.DEFAULT_PAGE_HEIGHT}
	}
	return box
}

func inherited(node pdf.Value, key string) pdf.Value {
	for depth := 0; !node.IsNull() && depth < MAX_PAGE_TREE_DEPTH; depth++ {
		if value := node.Key(key); !value.IsNull() {
			return value
		}
		node = node.Key("Parent")
	}
	return pdf.Value{}
}

// GlyphRuns merges consecutive glyphs that share a font, size and baseline into atoms.
// Coordinates are made relative to the top-left corner of box, with y growing downwards.
func GlyphRuns(glyphs []pdf.Text, box Box) []layout.TextAtom {
	atoms := []layout.TextAtom{}
	var run *pdf.Text
	var builder strings.Builder
	runX1 := 0.0

	flush := func() {
		if run == nil {
			return
		}
		text := layout.StripSoftHyphens(builder.String())
		if strings.TrimSpace(text) != "" {
			atoms = append(atoms, layout.TextAtom{
				Text: text,
				BBox: layout.BBox{
					X0: run.X - box.X0,
					Y0: box.Y1 - (run.Y + ASCENT_RATIO*run.FontSize),
					X1: runX1 - box.X0,
					Y1: box.Y1 - (run.Y - DESCENT_RATIO*run.FontSize),
				},
				FontSize: run.FontSize,
			})
		}
		run = nil
		builder.Reset()
	}

	for i := range glyphs {
		glyph := glyphs[i]
		if glyph.S == "" {
			continue
		}
		if run != nil && continuesRun(*run, runX1, glyph) {
			builder.WriteString(glyph.S)
			runX1 = math.Max(runX1, glyph.X+glyph.W)
			continue
		}
		flush()
		run = &glyph
		builder.WriteString(glyph.S)
		runX1 = glyph.X + glyph.W
	}
	flush()
	return atoms
}

func continuesRun(run pdf.Text, runX1 float64, glyph pdf.Text) bool {
	if glyph.Font != run.Font || math.Abs(glyph.FontSize-run.FontSize) > 0.01 {
		return false
	}
	if math.Abs(glyph.Y-run.Y) > DESCENT_RATIO*run.FontSize {
		return false
	}
	gap := glyph.X - runX1
	return gap >= -RUN_GAP_RATIO*run.FontSize && gap <= RUN_GAP_RATIO*run.FontSize
}

package layout

import (
	"encoding/json"
	"fmt"
	"math"
)

// BBox is an axis-aligned box in page points with a top-left origin.
// It is serialized as [x0, y0, x1, y1].
type BBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

func (b BBox) Width() float64 {
	return math.Max(0, b.X1-b.X0)
}

func (b BBox) Height() float64 {
	return math.Max(0, b.Y1-b.Y0)
}

func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

func (b BBox) IsEmpty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0
}

// Union returns the smallest box containing both boxes.
// An empty receiver is treated as the identity.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

func (b BBox) Intersect(other BBox) BBox {
	result := BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
	if result.IsEmpty() {
		return BBox{}
	}
	return result
}

// IoU is the intersection-over-union ratio of two boxes.
func (b BBox) IoU(other BBox) float64 {
	intersection := b.Intersect(other).Area()
	if intersection == 0 {
		return 0
	}
	union := b.Area() + other.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// Coverage is the intersection area divided by the smaller of the two areas.
// It detects a box sitting inside a larger one.
func (b BBox) Coverage(other BBox) float64 {
	intersection := b.Intersect(other).Area()
	if intersection == 0 {
		return 0
	}
	smaller := math.Min(b.Area(), other.Area())
	if smaller <= 0 {
		return 0
	}
	return intersection / smaller
}

// VerticalOverlap returns the length of the shared y range.
func (b BBox) VerticalOverlap(other BBox) float64 {
	return math.Max(0, math.Min(b.Y1, other.Y1)-math.Max(b.Y0, other.Y0))
}

func (b BBox) HorizontallyOverlaps(other BBox) bool {
	return b.X0 <= other.X1 && other.X0 <= b.X1
}

// Scale multiplies every coordinate, used to map points into pixels and back.
func (b BBox) Scale(sx, sy float64) BBox {
	return BBox{X0: b.X0 * sx, Y0: b.Y0 * sy, X1: b.X1 * sx, Y1: b.Y1 * sy}
}

func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X0, b.Y0, b.X1, b.Y1})
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) != 4 {
		return fmt.Errorf("bbox must have 4 coordinates, got %d", len(values))
	}
	*b = BBox{X0: values[0], Y0: values[1], X1: values[2], Y1: values[3]}
	return nil
}

// TextAtom is a single positioned run of characters, either a native glyph run or an OCR word.
type TextAtom struct {
	Text string
	BBox BBox
	// Zero when unknown.
	FontSize float64
	// OCR only, 0-100.
	Confidence float64
}

type Line struct {
	BBox     BBox
	Text     string
	FontSize float64
	// Leftmost atom x0, used for indentation and alignment.
	StartX float64
	Atoms  []TextAtom
}

type Paragraph struct {
	BBox     BBox
	Lines    []Line
	FontSize float64
	IsBullet bool
}

// Block is the layout unit exposed to translation and rendering.
type Block struct {
	BBox           BBox    `json:"bbox"`
	Text           string  `json:"text"`
	TranslatedText string  `json:"translated_text"`
	FontSize       float64 `json:"font_size"`
	TextStartX     float64 `json:"text_start_x"`
	// User-supplied override of the translation. Takes precedence when rendering.
	EditedText string `json:"edited_text,omitempty"`
}

// DisplayText returns the text a renderer should draw for the block.
func (b Block) DisplayText() string {
	if b.EditedText != "" {
		return b.EditedText
	}
	return b.TranslatedText
}

type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
	// Paragraphs of a synthetic layout that did not fit above the bottom margin.
	Dropped int `json:"dropped,omitempty"`
}

type Layout struct {
	Pages []Page `json:"pages"`
}

// BlockCount returns the number of blocks across all pages.
func (l *Layout) BlockCount() int {
	count := 0
	for _, page := range l.Pages {
		count += len(page.Blocks)
	}
	return count
}

// DroppedParagraphs returns the number of synthetic paragraphs left off every page.
func (l *Layout) DroppedParagraphs() int {
	count := 0
	for _, page := range l.Pages {
		count += page.Dropped
	}
	return count
}

// Clone returns a deep copy so callers can mutate blocks without sharing state.
func (l *Layout) Clone() *Layout {
	clone := &Layout{Pages: make([]Page, len(l.Pages))}
	for i, page := range l.Pages {
		clone.Pages[i] = Page{
			Width:   page.Width,
			Height:  page.Height,
			Blocks:  append([]Block(nil), page.Blocks...),
			Dropped: page.Dropped,
		}
	}
	return clone
}

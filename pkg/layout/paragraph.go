package layout

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ParagraphConfig holds the thresholds that start a new paragraph.
type ParagraphConfig struct {
	// A vertical gap above this share of the mean line height breaks the paragraph.
	MaxGapRatio float64
	// An indentation change above this many layout units breaks the paragraph.
	MaxIndentDelta float64
	// A font size change above this many points breaks the paragraph.
	MaxFontSizeDelta float64
}

func DefaultParagraphConfig() ParagraphConfig {
	return ParagraphConfig{
		MaxGapRatio:      0.6,
		MaxIndentDelta:   15,
		MaxFontSizeDelta: 1.5,
	}
}

var bulletPattern = regexp.MustCompile(`^(?:[•◦▪▫–—●○■□‣⁃*·]|\d{1,3}[.)]\s|[a-zA-Z][.)]\s|[ivxIVX]{1,5}[.)]\s)`)

// IsBullet reports whether the line opens with a bullet, number, letter or Roman numeral marker.
func IsBullet(text string) bool {
	return bulletPattern.MatchString(strings.TrimSpace(text) + " ")
}

// GroupParagraphs merges ordered lines into paragraphs.
//
// Each line extends the most recent paragraph whose last line overlaps it horizontally
// and does not trip any break rule. On a single-column page that is always the current paragraph.
func GroupParagraphs(lines []Line, config ParagraphConfig) []Paragraph {
	paragraphs := []Paragraph{}
	for _, line := range lines {
		bullet := IsBullet(line.Text)
		target := -1
		if !bullet {
			for i := len(paragraphs) - 1; i >= 0; i-- {
				last := paragraphs[i].Lines[len(paragraphs[i].Lines)-1]
				if !last.BBox.HorizontallyOverlaps(line.BBox) {
					continue
				}
				if !startsNewParagraph(last, line, config) {
					target = i
				}
				break
			}
		}

		if target < 0 {
			paragraphs = append(paragraphs, Paragraph{
				BBox:     line.BBox,
				Lines:    []Line{line},
				FontSize: line.FontSize,
				IsBullet: bullet,
			})
			continue
		}
		paragraph := paragraphs[target]
		paragraph.Lines = append(paragraph.Lines, line)
		paragraph.BBox = paragraph.BBox.Union(line.BBox)
		paragraph.FontSize = median(lineSizes(paragraph.Lines))
		paragraphs[target] = paragraph
	}
	return paragraphs
}

func startsNewParagraph(previous Line, current Line, config ParagraphConfig) bool {
	averageHeight := (previous.BBox.Height() + current.BBox.Height()) / 2
	if current.BBox.Y0-previous.BBox.Y1 > config.MaxGapRatio*averageHeight {
		return true
	}
	if math.Abs(current.StartX-previous.StartX) > config.MaxIndentDelta {
		return true
	}
	if math.Abs(current.FontSize-previous.FontSize) > config.MaxFontSizeDelta {
		return true
	}
	return false
}

// Text merges the paragraph lines, resolving end-of-line hyphenation.
func (p Paragraph) Text() string {
	var builder strings.Builder
	for i, line := range p.Lines {
		text := strings.TrimSpace(StripSoftHyphens(line.Text))
		if text == "" {
			continue
		}
		if i == len(p.Lines)-1 {
			builder.WriteString(text)
			break
		}
		last, _ := utf8.DecodeLastRuneInString(text)
		switch {
		case last == '-':
			builder.WriteString(strings.TrimSuffix(text, "-"))
		case strings.ContainsRune(".!?:;", last):
			builder.WriteString(text)
			builder.WriteString("\n")
		default:
			builder.WriteString(text)
			builder.WriteString(" ")
		}
	}
	return strings.TrimSpace(builder.String())
}

// ToBlock converts the paragraph into a layout block.
func (p Paragraph) ToBlock() Block {
	startX := p.BBox.X0
	for _, line := range p.Lines {
		startX = math.Min(startX, line.StartX)
	}
	return Block{
		BBox:       p.BBox,
		Text:       p.Text(),
		FontSize:   p.FontSize,
		TextStartX: startX,
	}
}

func lineSizes(lines []Line) []float64 {
	sizes := []float64{}
	for _, line := range lines {
		if line.FontSize > 0 {
			sizes = append(sizes, line.FontSize)
		}
	}
	return sizes
}

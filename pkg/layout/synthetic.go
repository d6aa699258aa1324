package layout

import "strings"

// Synthetic layout used when no structure can be recovered from a document.
const (
	DEFAULT_PAGE_WIDTH     = 595.0
	DEFAULT_PAGE_HEIGHT    = 842.0
	SYNTHETIC_MARGIN       = 40.0
	SYNTHETIC_BLOCK_HEIGHT = 60.0
	SYNTHETIC_SPACING      = 10.0
	SYNTHETIC_FONT_SIZE    = 12.0
)

// SplitParagraphs splits text on blank lines, dropping empty paragraphs.
func SplitParagraphs(text string) []string {
	paragraphs := []string{}
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if trimmed := strings.TrimSpace(paragraph); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// SyntheticPages distributes paragraphs evenly across pages as full-width single-column blocks.
// Each page gets max(1, n/pages) paragraphs and the last page takes the remainder.
// Paragraphs that would run past the bottom margin of their page are dropped and counted
// in the page's Dropped.
// Original and translated paragraphs are zipped by index; translated may be nil.
func SyntheticPages(pages []Page, original []string, translated []string) []Page {
	if len(pages) == 0 {
		return pages
	}
	count := max(len(original), len(translated))
	perPage := max(1, count/len(pages))

	result := make([]Page, len(pages))
	for i, page := range pages {
		width, height := page.Width, page.Height
		if width <= 0 {
			width = DEFAULT_PAGE_WIDTH
		}
		if height <= 0 {
			height = DEFAULT_PAGE_HEIGHT
		}
		start := min(i*perPage, count)
		end := min(start+perPage, count)
		if i == len(pages)-1 {
			end = count
		}

		blocks := []Block{}
		dropped := 0
		y := SYNTHETIC_MARGIN
		for index := start; index < end; index++ {
			if y+SYNTHETIC_BLOCK_HEIGHT > height-SYNTHETIC_MARGIN {
				dropped = end - index
				break
			}
			blocks = append(blocks, Block{
				BBox:           BBox{X0: SYNTHETIC_MARGIN, Y0: y, X1: width - SYNTHETIC_MARGIN, Y1: y + SYNTHETIC_BLOCK_HEIGHT},
				Text:           at(original, index),
				TranslatedText: at(translated, index),
				FontSize:       SYNTHETIC_FONT_SIZE,
				TextStartX:     SYNTHETIC_MARGIN,
			})
			y += SYNTHETIC_BLOCK_HEIGHT + SYNTHETIC_SPACING
		}
		result[i] = Page{Width: width, Height: height, Blocks: blocks, Dropped: dropped}
	}
	return result
}

func at(values []string, index int) string {
	if index < len(values) {
		return values[index]
	}
	return ""
}

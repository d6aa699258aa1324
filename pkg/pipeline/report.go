package pipeline

import (
	"github.com/visionex-project/pdftrans/pkg/mapping"
	"github.com/visionex-project/pdftrans/pkg/render"
)

// Report summarizes the non-fatal problems of a run.
type Report struct {
	Pages []render.PageReport `json:"pages"`
	// Blocks without original text.
	EmptyBlocks int `json:"empty_blocks"`
	// Blocks left untranslated after every strategy failed.
	TranslationFailed int `json:"translation_failed"`
	SkippedBlocks     int `json:"skipped_blocks"`
	ClippedLines      int `json:"clipped_lines"`
	// Pages rendered as the raw raster because inpainting failed.
	FallbackPages []int `json:"fallback_pages"`
	// Synthetic layout paragraphs that did not fit on their page.
	DroppedParagraphs int `json:"dropped_paragraphs"`
	// Pages without an image because rendering failed.
	FailedPages []int         `json:"failed_pages"`
	Translation mapping.Stats `json:"translation"`
}

func newReport(stats mapping.Stats, pages []render.PageReport) Report {
	report := Report{
		Pages:             pages,
		EmptyBlocks:       stats.Empty,
		TranslationFailed: stats.Failed,
		FallbackPages:     []int{},
		FailedPages:       []int{},
		Translation:       stats,
	}
	for _, page := range pages {
		report.AddPage(page)
	}
	return report
}

// AddPage folds a page report into the totals without appending it to Pages.
func (r *Report) AddPage(page render.PageReport) {
	r.SkippedBlocks += page.Skipped
	r.ClippedLines += page.ClippedLines
	if page.Fallback {
		r.FallbackPages = append(r.FallbackPages, page.Page)
	}
	if page.Failed {
		r.FailedPages = append(r.FailedPages, page.Page)
	}
}

// ReplacePages swaps in reports of re-rendered pages and recomputes the totals.
func (r *Report) ReplacePages(pages []render.PageReport) {
	for _, replacement := range pages {
		for i, existing := range r.Pages {
			if existing.Page == replacement.Page {
				r.Pages[i] = replacement
			}
		}
	}
	r.SkippedBlocks, r.ClippedLines, r.FallbackPages, r.FailedPages = 0, 0, []int{}, []int{}
	for _, page := range r.Pages {
		r.AddPage(page)
	}
}

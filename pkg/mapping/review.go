package mapping

import (
	"math"
	"strings"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

type ReviewStatus string

const (
	REVIEW_OK      ReviewStatus = "ok"
	REVIEW_WARNING ReviewStatus = "warning"
	REVIEW_MISSING ReviewStatus = "missing"
	REVIEW_EXTRA   ReviewStatus = "extra"
)

// Similarity bounds for review statuses.
const (
	REVIEW_OK_SIMILARITY      = 0.8
	REVIEW_WARNING_SIMILARITY = 0.5
)

type ReviewItem struct {
	Original   string       `json:"original,omitempty"`
	Translated string       `json:"translated,omitempty"`
	Status     ReviewStatus `json:"status"`
	Similarity float64      `json:"similarity"`
}

type ReviewSummary struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Warning int `json:"warning"`
	Missing int `json:"missing"`
	Extra   int `json:"extra"`
	// Percentage of items with status ok, rounded to two decimals.
	Accuracy float64 `json:"accuracy"`
}

type Review struct {
	Items   []ReviewItem  `json:"items"`
	Summary ReviewSummary `json:"summary"`
}

// ReviewTranslation pairs each original paragraph with its most similar unused translated paragraph.
// Translated paragraphs left over are reported as extra.
func ReviewTranslation(original string, translated string) Review {
	originals := reviewParagraphs(original)
	translations := reviewParagraphs(translated)
	used := make([]bool, len(translations))
	review := Review{Items: []ReviewItem{}}

	for _, paragraph := range originals {
		best, bestSimilarity := -1, 0.0
		for i, candidate := range translations {
			if used[i] {
				continue
			}
			if similarity := reviewSimilarity(paragraph, candidate); similarity > bestSimilarity {
				best, bestSimilarity = i, similarity
			}
		}
		item := ReviewItem{Original: paragraph, Status: REVIEW_MISSING}
		if best >= 0 && bestSimilarity >= REVIEW_WARNING_SIMILARITY {
			used[best] = true
			item.Translated = translations[best]
			item.Similarity = math.Round(bestSimilarity*1000) / 1000
			item.Status = REVIEW_WARNING
			if bestSimilarity >= REVIEW_OK_SIMILARITY {
				item.Status = REVIEW_OK
			}
		}
		review.Items = append(review.Items, item)
	}
	for i, candidate := range translations {
		if !used[i] {
			review.Items = append(review.Items, ReviewItem{Translated: candidate, Status: REVIEW_EXTRA})
		}
	}

	summary := ReviewSummary{Total: len(review.Items)}
	for _, item := range review.Items {
		switch item.Status {
		case REVIEW_OK:
			summary.OK++
		case REVIEW_WARNING:
			summary.Warning++
		case REVIEW_MISSING:
			summary.Missing++
		case REVIEW_EXTRA:
			summary.Extra++
		}
	}
	if summary.Total > 0 {
		summary.Accuracy = math.Round(float64(summary.OK)/float64(summary.Total)*10000) / 100
	}
	review.Summary = summary
	return review
}

// reviewParagraphs splits on blank lines, or on single lines when there are none.
func reviewParagraphs(text string) []string {
	paragraphs := layout.SplitParagraphs(text)
	if len(paragraphs) > 1 {
		return paragraphs
	}
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func reviewSimilarity(a string, b string) float64 {
	a, b = layout.NormalizeText(a), layout.NormalizeText(b)
	if a == "" || b == "" {
		return 0
	}
	return layout.Ratio(a, b)
}

package extract

import (
	"context"
	"strings"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

// OCR words below this confidence are dropped.
const DEFAULT_MIN_CONFIDENCE = 40.0

// Word is a recognized word in pixel coordinates of the page image.
type Word struct {
	Text string
	// Pixel box with a top-left origin.
	Left, Top, Right, Bottom float64
	// 0-100.
	Confidence float64
	// Pixel font size when the recognizer reports one, otherwise 0.
	FontSize float64
}

// Recognizer runs OCR over an encoded page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]Word, error)
}

// WordsToAtoms converts recognized words into atoms in page points.
// Words below minConfidence or without text are discarded.
func WordsToAtoms(words []Word, pixelsPerPoint float64, minConfidence float64) []layout.TextAtom {
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	atoms := []layout.TextAtom{}
	for _, word := range words {
		text := strings.TrimSpace(layout.StripSoftHyphens(word.Text))
		if text == "" || word.Confidence < minConfidence {
			continue
		}
		atoms = append(atoms, layout.TextAtom{
			Text: text,
			BBox: layout.BBox{
				X0: word.Left / pixelsPerPoint,
				Y0: word.Top / pixelsPerPoint,
				X1: word.Right / pixelsPerPoint,
				Y1: word.Bottom / pixelsPerPoint,
			},
			FontSize:   word.FontSize / pixelsPerPoint,
			Confidence: word.Confidence,
		})
	}
	return atoms
}

// PlainText joins every recognized word regardless of confidence, in recognition order.
func PlainText(words []Word) string {
	texts := make([]string, 0, len(words))
	for _, word := range words {
		if text := strings.TrimSpace(word.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, " ")
}

//go:build ocr

// Package tesseract recognizes page images locally with Tesseract via gosseract.
//
// It requires Tesseract to be installed. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-kor
package tesseract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/visionex-project/pdftrans/pkg/extract"
)

// Recognizer wraps a Tesseract client. Tesseract is not safe for concurrent
// use, so calls are serialized.
type Recognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a recognizer for the given "+" separated languages, e.g. "eng+kor".
// The recognizer should be closed when no longer needed to release resources.
func New(languages string) (*Recognizer, error) {
	client := gosseract.NewClient()
	if languages != "" {
		if err := client.SetLanguage(languages); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Recognizer{client: client}, nil
}

func (r *Recognizer) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *Recognizer) Recognize(ctx context.Context, image []byte) ([]extract.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]extract.Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, extract.Word{
			Text:       box.Word,
			Left:       float64(box.Box.Min.X),
			Top:        float64(box.Box.Min.Y),
			Right:      float64(box.Box.Max.X),
			Bottom:     float64(box.Box.Max.Y),
			Confidence: box.Confidence,
		})
	}
	return words, nil
}

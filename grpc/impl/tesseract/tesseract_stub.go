//go:build !ocr

// Package tesseract recognizes page images locally with Tesseract via gosseract.
//
// This is the stub used when the "ocr" build tag is not set. To enable
// Tesseract, rebuild with:
//
//	go build -tags ocr
package tesseract

import (
	"context"
	"errors"

	"github.com/visionex-project/pdftrans/pkg/extract"
)

// ErrNotEnabled is returned when Tesseract support was not compiled in.
var ErrNotEnabled = errors.New("tesseract support not enabled; rebuild with -tags ocr")

type Recognizer struct{}

func New(languages string) (*Recognizer, error) {
	return nil, ErrNotEnabled
}

// Close is safe to call on a nil recognizer.
func (r *Recognizer) Close() error {
	return nil
}

func (r *Recognizer) Recognize(ctx context.Context, image []byte) ([]extract.Word, error) {
	return nil, ErrNotEnabled
}

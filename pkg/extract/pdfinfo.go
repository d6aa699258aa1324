package extract

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageSize is the size of one page in points.
type PageSize struct {
	Width  float64
	Height float64
}

// Inspect validates the PDF structure and returns the size of every page.
func Inspect(path string) ([]PageSize, error) {
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("invalid pdf: %w", err)
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dimensions: %w", err)
	}
	sizes := make([]PageSize, len(dims))
	for i, dim := range dims {
		sizes[i] = PageSize{Width: dim.Width, Height: dim.Height}
	}
	return sizes, nil
}

package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// AssemblePDF builds a PDF with one page per PNG image, each page sized to its image.
// Empty entries stand for pages that failed to render and are left out.
func AssemblePDF(pages [][]byte) ([]byte, error) {
	rendered := [][]byte{}
	for _, page := range pages {
		if len(page) > 0 {
			rendered = append(rendered, page)
		}
	}
	if len(rendered) == 0 {
		return nil, errors.New("no pages to assemble")
	}
	pages = rendered

	dir, err := os.MkdirTemp("", "pdftrans-assemble-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	images := make([]string, len(pages))
	for i, page := range pages {
		images[i] = filepath.Join(dir, fmt.Sprintf("page-%04d.png", i))
		if err := os.WriteFile(images[i], page, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write page %d: %w", i, err)
		}
	}

	output := filepath.Join(dir, "translated.pdf")
	if err := api.ImportImagesFile(images, output, pdfcpu.DefaultImportConfig(), model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to import page images: %w", err)
	}
	return os.ReadFile(output)
}

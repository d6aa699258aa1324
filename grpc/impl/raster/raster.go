package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

const DEFAULT_BINARY = "pdftoppm"

// Poppler rasterizes PDF pages by running pdftoppm.
type Poppler struct {
	binary string
}

func New(binary string) *Poppler {
	if binary == "" {
		binary = DEFAULT_BINARY
	}
	return &Poppler{binary: binary}
}

// Available reports whether the pdftoppm binary can be found.
func (p *Poppler) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

// Rasterize renders the zero-based page of the PDF at dpi.
func (p *Poppler) Rasterize(ctx context.Context, pdfPath string, pageIndex int, dpi float64) (image.Image, error) {
	dir, err := os.MkdirTemp("", "pdftrans-raster-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	page := strconv.Itoa(pageIndex + 1)
	outputPrefix := filepath.Join(dir, "page")
	args := []string{
		"-f", page,
		"-l", page,
		"-png",
		"-r", strconv.Itoa(int(math.Round(dpi))),
		"-singlefile",
		pdfPath,
		outputPrefix,
	}
	cmd := exec.CommandContext(ctx, p.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w, output: %s", err, bytes.TrimSpace(output))
	}

	file, err := os.Open(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("failed to open page image: %w", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}
	return img, nil
}

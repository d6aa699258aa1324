package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPDF struct {
	// MediaBox set on the /Pages node. Empty to leave it out.
	pagesBox string
	// MediaBox set on the page itself. Empty to leave it out.
	pageBox string
	content string
}

// writePDF writes a single page PDF using Helvetica with a fixed 500 unit advance.
func writePDF(t *testing.T, document testPDF) string {
	t.Helper()

	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [3 0 R] /Count 1 %s>>", mediaBoxEntry(document.pagesBox)),
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R %s/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>", mediaBoxEntry(document.pageBox)),
		fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths),
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(document.content), document.content),
	}

	var buffer bytes.Buffer
	buffer.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, object := range objects {
		offsets[i] = buffer.Len()
		fmt.Fprintf(&buffer, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}
	xref := buffer.Len()
	fmt.Fprintf(&buffer, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buffer, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buffer, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "document.pdf")
	require.NoError(t, os.WriteFile(path, buffer.Bytes(), 0o600))
	return path
}

func mediaBoxEntry(box string) string {
	if box == "" {
		return ""
	}
	return "/MediaBox [" + box + "] "
}

func TestReadNative(t *testing.T) {
	tests := []struct {
		name     string
		pdf      testPDF
		width    float64
		height   float64
		expected [4]float64
	}{
		{
			name:     "page box",
			pdf:      testPDF{pageBox: "0 0 612 792", content: "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello world) Tj ET"},
			width:    612,
			height:   792,
			expected: [4]float64{72, 62.4, 138, 74.4},
		},
		{
			name:     "inherited box",
			pdf:      testPDF{pagesBox: "0 0 612 792", content: "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello world) Tj ET"},
			width:    612,
			height:   792,
			expected: [4]float64{72, 62.4, 138, 74.4},
		},
		{
			name:     "page box overrides inherited",
			pdf:      testPDF{pagesBox: "0 0 595 842", pageBox: "0 0 612 792", content: "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello world) Tj ET"},
			width:    612,
			height:   792,
			expected: [4]float64{72, 62.4, 138, 74.4},
		},
		{
			name:     "box with offset origin",
			pdf:      testPDF{pagesBox: "50 100 662 892", content: "BT /F1 12 Tf 1 0 0 1 122 820 Tm (Hello world) Tj ET"},
			width:    612,
			height:   792,
			expected: [4]float64{72, 62.4, 138, 74.4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePDF(t, tt.pdf)

			sizes, err := Inspect(path)
			require.NoError(t, err)
			require.Len(t, sizes, 1)
			assert.InDelta(t, tt.width, sizes[0].Width, 1e-6)
			assert.InDelta(t, tt.height, sizes[0].Height, 1e-6)

			document, err := ReadNative(path)
			require.NoError(t, err)
			require.Len(t, document.Pages, 1)
			page := document.Pages[0]
			assert.InDelta(t, tt.width, page.Width, 1e-6)
			assert.InDelta(t, tt.height, page.Height, 1e-6)

			require.Len(t, page.Atoms, 1)
			assert.Equal(t, "Hello world", page.Atoms[0].Text)
			box := page.Atoms[0].BBox
			assert.InDelta(t, tt.expected[0], box.X0, 1e-6)
			assert.InDelta(t, tt.expected[1], box.Y0, 1e-6)
			assert.InDelta(t, tt.expected[2], box.X1, 1e-6)
			assert.InDelta(t, tt.expected[3], box.Y1, 1e-6)
			assert.Equal(t, 12.0, page.Atoms[0].FontSize)

			require.Len(t, page.Rows, 1)
			assert.Equal(t, "Hello world", page.Rows[0].Text)
			assert.InDelta(t, tt.expected[1], page.Rows[0].BBox.Y0, 1e-6)
			assert.InDelta(t, tt.expected[0], page.Rows[0].BBox.X0, 1e-6)
		})
	}
}

func TestReadNative_MultipleRows(t *testing.T) {
	content := "BT /F1 12 Tf 1 0 0 1 72 720 Tm (First row) Tj 1 0 0 1 72 700 Tm (Second row) Tj ET"
	path := writePDF(t, testPDF{pagesBox: "0 0 612 792", content: content})

	document, err := ReadNative(path)

	require.NoError(t, err)
	page := document.Pages[0]
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "First row", page.Rows[0].Text)
	assert.Equal(t, "Second row", page.Rows[1].Text)
	assert.Less(t, page.Rows[0].BBox.Y1, page.Rows[1].BBox.Y1)
}

func TestRowGlyphs_EstimatesMissingMetrics(t *testing.T) {
	row := &pdf.Row{Position: 500, Content: pdf.TextHorizontal{{X: 72, Y: 500, S: "abcd"}}}
	content := glyphs("Body", 72, 700, 10, 5, "F1")

	estimated := rowGlyphs(row, content)

	require.Len(t, estimated, 1)
	assert.Equal(t, 10.0, estimated[0].FontSize)
	assert.InDelta(t, 20, estimated[0].W, 1e-9)

	atoms := GlyphRuns(estimated, Box{X1: 600, Y1: 800})
	require.Len(t, atoms, 1)
	assert.False(t, atoms[0].BBox.IsEmpty())
}

func TestMediaBox_DefaultsWhenMissing(t *testing.T) {
	box := mediaBox(pdf.Page{})

	assert.Equal(t, 595.0, box.Width())
	assert.Equal(t, 842.0, box.Height())
}

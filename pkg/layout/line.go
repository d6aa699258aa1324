package layout

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const SOFT_HYPHEN = "\u00ad"

// LineConfig controls how atoms are merged into lines.
type LineConfig struct {
	// Minimum share of the mean atom height that two atoms must overlap vertically.
	MinVerticalOverlap float64
	// A gap wider than this inserts a single space between atoms.
	SpaceGap float64
	// A gap wider than this many median atom heights splits the band into separate lines.
	// Zero disables splitting.
	MaxWordGapRatio float64
}

// DefaultNativeLineConfig is tuned for native glyph runs, which already carry their own spaces.
func DefaultNativeLineConfig() LineConfig {
	return LineConfig{
		MinVerticalOverlap: 0.5,
		SpaceGap:           1.0,
		MaxWordGapRatio:    3.0,
	}
}

// DefaultOCRLineConfig is tuned for OCR words. pixelsPerPoint converts the 5px space gap into points.
func DefaultOCRLineConfig(pixelsPerPoint float64) LineConfig {
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	return LineConfig{
		MinVerticalOverlap: 0.5,
		SpaceGap:           5.0 / pixelsPerPoint,
		MaxWordGapRatio:    3.0,
	}
}

// BuildLines merges atoms sharing a horizontal band into lines ordered top to bottom.
func BuildLines(atoms []TextAtom, config LineConfig) []Line {
	sorted := make([]TextAtom, 0, len(atoms))
	for _, atom := range atoms {
		atom.Text = StripSoftHyphens(atom.Text)
		if strings.TrimSpace(atom.Text) == "" || atom.BBox.IsEmpty() {
			continue
		}
		sorted = append(sorted, atom)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	bands := [][]TextAtom{}
	current := []TextAtom{sorted[0]}
	lineBox := sorted[0].BBox
	for _, atom := range sorted[1:] {
		last := current[len(current)-1]
		averageHeight := (atom.BBox.Height() + last.BBox.Height()) / 2
		if lineBox.VerticalOverlap(atom.BBox) > averageHeight*config.MinVerticalOverlap {
			current = append(current, atom)
			lineBox = lineBox.Union(atom.BBox)
			continue
		}
		bands = append(bands, current)
		current = []TextAtom{atom}
		lineBox = atom.BBox
	}
	bands = append(bands, current)

	lines := []Line{}
	for _, band := range bands {
		sort.SliceStable(band, func(i, j int) bool {
			return band[i].BBox.X0 < band[j].BBox.X0
		})
		for _, group := range splitWideGaps(band, config.MaxWordGapRatio) {
			lines = append(lines, newLine(group, config.SpaceGap))
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Y0 != lines[j].BBox.Y0 {
			return lines[i].BBox.Y0 < lines[j].BBox.Y0
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
	return lines
}

// Splits a band at horizontal gaps so that text in neighbouring columns does not share a line.
func splitWideGaps(band []TextAtom, ratio float64) [][]TextAtom {
	if ratio <= 0 || len(band) < 2 {
		return [][]TextAtom{band}
	}
	maxGap := median(heights(band)) * ratio
	groups := [][]TextAtom{}
	start := 0
	for i := 1; i < len(band); i++ {
		if band[i].BBox.X0-band[i-1].BBox.X1 > maxGap {
			groups = append(groups, band[start:i])
			start = i
		}
	}
	return append(groups, band[start:])
}

func newLine(atoms []TextAtom, spaceGap float64) Line {
	var builder strings.Builder
	box := BBox{}
	sizes := []float64{}
	startX := atoms[0].BBox.X0
	for i, atom := range atoms {
		if i > 0 {
			previous := atoms[i-1]
			gap := atom.BBox.X0 - previous.BBox.X1
			if gap > spaceGap && !endsWithSpace(previous.Text) && !startsWithSpace(atom.Text) {
				builder.WriteString(" ")
			}
		}
		builder.WriteString(atom.Text)
		box = box.Union(atom.BBox)
		if atom.FontSize > 0 {
			sizes = append(sizes, atom.FontSize)
		}
		startX = min(startX, atom.BBox.X0)
	}
	return Line{
		BBox:     box,
		Text:     strings.Join(strings.Fields(builder.String()), " "),
		FontSize: median(sizes),
		StartX:   startX,
		Atoms:    atoms,
	}
}

// StripSoftHyphens removes invisible soft hyphens from decoded text.
func StripSoftHyphens(text string) string {
	return strings.ReplaceAll(text, SOFT_HYPHEN, "")
}

func endsWithSpace(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(text)
	return unicode.IsSpace(r)
}

func startsWithSpace(text string) bool {
	r, _ := utf8.DecodeRuneInString(text)
	return unicode.IsSpace(r)
}

func heights(atoms []TextAtom) []float64 {
	result := make([]float64, len(atoms))
	for i, atom := range atoms {
		result[i] = atom.BBox.Height()
	}
	return result
}

// median of the values, 0 for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return (sorted[middle-1] + sorted[middle]) / 2
}

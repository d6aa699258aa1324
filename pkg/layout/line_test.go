package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atom(text string, x0, y0, x1, y1, size float64) TextAtom {
	return TextAtom{Text: text, BBox: BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, FontSize: size}
}

func TestBuildLines_MergesAtomsOnSameBand(t *testing.T) {
	lines := BuildLines([]TextAtom{
		atom("world", 55, 10, 100, 20, 10),
		atom("Hello", 10, 10, 50, 20, 10),
	}, DefaultNativeLineConfig())

	require.Len(t, lines, 1)
	assert.Equal(t, "Hello world", lines[0].Text)
	assert.Equal(t, BBox{X0: 10, Y0: 10, X1: 100, Y1: 20}, lines[0].BBox)
	assert.Equal(t, 10.0, lines[0].StartX)
	assert.Equal(t, "Hello", lines[0].Atoms[0].Text)
}

func TestBuildLines_AdjacentNativeRunsJoinWithoutSpace(t *testing.T) {
	lines := BuildLines([]TextAtom{
		atom("trans", 10, 10, 40, 20, 10),
		atom("lation", 40.5, 10, 80, 20, 10),
	}, DefaultNativeLineConfig())

	require.Len(t, lines, 1)
	assert.Equal(t, "translation", lines[0].Text)
}

func TestBuildLines_OCRSpaceGap(t *testing.T) {
	config := DefaultOCRLineConfig(1)
	lines := BuildLines([]TextAtom{
		atom("near", 0, 0, 20, 10, 0),
		atom("by", 24, 0, 34, 10, 0),
		atom("far", 45, 0, 60, 10, 0),
	}, config)

	require.Len(t, lines, 1)
	assert.Equal(t, "nearby far", lines[0].Text)
}

func TestBuildLines_SeparateBands(t *testing.T) {
	lines := BuildLines([]TextAtom{
		atom("second", 10, 30, 60, 40, 10),
		atom("first", 10, 10, 50, 20, 10),
	}, DefaultNativeLineConfig())

	require.Len(t, lines, 2)
	assert.Equal(t, "first", lines[0].Text)
	assert.Equal(t, "second", lines[1].Text)
}

func TestBuildLines_SmallOverlapStartsNewLine(t *testing.T) {
	// Overlap of 4 is below half of the mean height of 10.
	lines := BuildLines([]TextAtom{
		atom("upper", 10, 0, 50, 10, 10),
		atom("lower", 10, 6, 50, 16, 10),
	}, DefaultNativeLineConfig())

	assert.Len(t, lines, 2)
}

func TestBuildLines_MedianFontSizeIgnoresSuperscript(t *testing.T) {
	lines := BuildLines([]TextAtom{
		atom("E", 10, 10, 20, 22, 12),
		atom("=", 22, 10, 30, 22, 12),
		atom("mc", 32, 10, 50, 22, 12),
		atom("2", 50, 9, 54, 16, 6),
	}, DefaultNativeLineConfig())

	require.Len(t, lines, 1)
	assert.Equal(t, 12.0, lines[0].FontSize)
}

func TestBuildLines_WideGapSplitsColumns(t *testing.T) {
	lines := BuildLines([]TextAtom{
		atom("left column", 10, 10, 100, 20, 10),
		atom("right column", 300, 10, 400, 20, 10),
	}, DefaultNativeLineConfig())

	require.Len(t, lines, 2)
	assert.Equal(t, "left column", lines[0].Text)
	assert.Equal(t, "right column", lines[1].Text)
}

func TestBuildLines_StripsSoftHyphens(t *testing.T) {
	lines := BuildLines([]TextAtom{
		atom("hy\u00adphen\u00ad", 10, 10, 60, 20, 10),
		atom("\u00ad", 61, 10, 62, 20, 10),
	}, DefaultNativeLineConfig())

	require.Len(t, lines, 1)
	assert.Equal(t, "hyphen", lines[0].Text)
}

func TestBuildLines_Empty(t *testing.T) {
	assert.Empty(t, BuildLines(nil, DefaultNativeLineConfig()))
	assert.Empty(t, BuildLines([]TextAtom{atom("  ", 0, 0, 10, 10, 10)}, DefaultNativeLineConfig()))
}

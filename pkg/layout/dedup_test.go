package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(text string, x0, y0, x1, y1 float64) Block {
	return Block{Text: text, BBox: BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, TextStartX: x0}
}

func TestBBox_IoU(t *testing.T) {
	a := BBox{X0: 0, Y0: 0, X1: 100, Y1: 20}
	assert.InDelta(t, 1.0, a.IoU(a), 1e-9)
	assert.InDelta(t, 0.72, a.IoU(BBox{X0: 5, Y0: 2, X1: 95, Y1: 18}), 1e-9)
	assert.Zero(t, a.IoU(BBox{X0: 200, Y0: 0, X1: 300, Y1: 20}))
	assert.InDelta(t, 1.0, a.Coverage(BBox{X0: 10, Y0: 5, X1: 20, Y1: 10}), 1e-9)
}

func TestDeduplicate_NestedIdenticalBlocks(t *testing.T) {
	blocks := Deduplicate([]Block{
		block("Same text", 0, 0, 100, 20),
		block("Same text", 5, 2, 95, 18),
	}, FinalDedup())

	require.Len(t, blocks, 1)
	assert.Equal(t, BBox{X0: 0, Y0: 0, X1: 100, Y1: 20}, blocks[0].BBox)
}

func TestDeduplicate_OverlapWithDifferentTextSurvives(t *testing.T) {
	blocks := Deduplicate([]Block{
		block("A caption about cats", 0, 0, 100, 20),
		block("Completely different words", 10, 2, 110, 22),
	}, FinalDedup())

	assert.Len(t, blocks, 2)
}

func TestDeduplicate_HighIoUAlwaysSuppressed(t *testing.T) {
	blocks := Deduplicate([]Block{
		block("one", 0, 0, 100, 100),
		block("two", 1, 1, 100, 100),
	}, FinalDedup())

	assert.Len(t, blocks, 1)
}

func TestMergeSecondary_RowInsideParagraph(t *testing.T) {
	primary := []Block{block("The quick brown fox jumps over the lazy dog.", 10, 10, 300, 60)}
	secondary := []Block{
		block("The quick brown fox", 10, 10, 150, 22),
		block("Figure 1: embedded label", 10, 400, 200, 412),
	}

	merged := MergeSecondary(primary, secondary, nil, CrossPassDedup())

	require.Len(t, merged, 2)
	assert.Equal(t, "Figure 1: embedded label", merged[1].Text)
}

func TestMergeSecondary_CoveredLinesSuppressRows(t *testing.T) {
	primary := []Block{block("The translation pipeline handles examples of hyphenated words across several lines of the same paragraph.", 10, 10, 300, 52)}
	covered := []Block{
		block("The translation pipeline handles exam-", 10, 10, 240, 22),
		block("ples of hyphenated words across", 10, 24, 200, 36),
		block("several lines of the same paragraph.", 10, 38, 230, 50),
	}
	secondary := []Block{block("The translation pipeline handles exam-", 10, 10, 240, 22)}

	assert.Len(t, MergeSecondary(primary, secondary, nil, CrossPassDedup()), 2)
	assert.Len(t, MergeSecondary(primary, secondary, covered, CrossPassDedup()), 1)
}

func TestBuildPage_HyphenatedRowsAreNotDuplicated(t *testing.T) {
	texts := []string{
		"The translation pipeline handles exam-",
		"ples of hyphenated words across",
		"several lines of the same paragraph.",
	}
	atoms := []TextAtom{}
	rows := []Block{}
	for i, text := range texts {
		y := 100 + float64(i)*14
		box := BBox{X0: 72, Y0: y, X1: 72 + float64(len(text))*6, Y1: y + 12}
		atoms = append(atoms, TextAtom{Text: text, BBox: box, FontSize: 12})
		rows = append(rows, Block{Text: text, BBox: box, FontSize: 12, TextStartX: 72})
	}

	page := NewBuilder().BuildPage(atoms, rows, 612, 792)

	require.Len(t, page.Blocks, 1)
	assert.Contains(t, page.Blocks[0].Text, "handles examples of hyphenated")
}

func TestDeduplicate_Idempotent(t *testing.T) {
	blocks := randomBlocks(rand.New(rand.NewSource(7)), 60)

	once := Deduplicate(blocks, FinalDedup())
	twice := Deduplicate(once, FinalDedup())

	assert.Equal(t, once, twice)
}

func TestDeduplicate_NoPairAboveThreshold(t *testing.T) {
	config := FinalDedup()
	for seed := int64(1); seed <= 5; seed++ {
		blocks := Deduplicate(randomBlocks(rand.New(rand.NewSource(seed)), 80), config)
		for i := range blocks {
			for j := i + 1; j < len(blocks); j++ {
				assert.LessOrEqual(t, blocks[i].BBox.IoU(blocks[j].BBox), config.MaxIoU(),
					"seed %d: blocks %d and %d", seed, i, j)
			}
		}
	}
}

func randomBlocks(random *rand.Rand, count int) []Block {
	texts := []string{"alpha beta", "alpha beta", "gamma", "delta epsilon", "gamma"}
	blocks := make([]Block, count)
	for i := range blocks {
		x := float64(random.Intn(10)) * 20
		y := float64(random.Intn(10)) * 15
		w := 40 + float64(random.Intn(3))*5
		h := 20 + float64(random.Intn(3))*2
		text := texts[random.Intn(len(texts))]
		if random.Intn(2) == 0 {
			text = fmt.Sprintf("%s %d", text, i)
		}
		blocks[i] = block(text, x, y, x+w, y+h)
	}
	return blocks
}

package layout

import (
	"math"
	"sort"
)

// Share of the page width a horizontal gap must exceed to count as a column gutter.
const COLUMN_GAP_RATIO = 0.1

// SegmentColumns clusters blocks into left-to-right columns, each sorted top to bottom.
func SegmentColumns(blocks []Block, pageWidth float64) [][]Block {
	if len(blocks) == 0 {
		return nil
	}
	sorted := append([]Block(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	gutter := pageWidth * COLUMN_GAP_RATIO
	columns := [][]Block{{sorted[0]}}
	runningMaxX1 := sorted[0].BBox.X1
	for _, block := range sorted[1:] {
		if block.BBox.X0-runningMaxX1 > gutter {
			columns = append(columns, []Block{block})
			runningMaxX1 = block.BBox.X1
			continue
		}
		columns[len(columns)-1] = append(columns[len(columns)-1], block)
		runningMaxX1 = math.Max(runningMaxX1, block.BBox.X1)
	}

	for _, column := range columns {
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].BBox.Y0 < column[j].BBox.Y0
		})
	}
	return columns
}

// ReadingOrder concatenates columns left to right.
func ReadingOrder(columns [][]Block) []Block {
	ordered := []Block{}
	for _, column := range columns {
		ordered = append(ordered, column...)
	}
	return ordered
}

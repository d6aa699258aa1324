package layout

import "strings"

// Config bundles the thresholds of every grouping stage.
type Config struct {
	Line      LineConfig
	Paragraph ParagraphConfig
	CrossPass DedupConfig
	Final     DedupConfig
}

func DefaultConfig() Config {
	return Config{
		Line:      DefaultNativeLineConfig(),
		Paragraph: DefaultParagraphConfig(),
		CrossPass: CrossPassDedup(),
		Final:     FinalDedup(),
	}
}

// Builder turns positioned atoms into an ordered, deduplicated page.
type Builder struct {
	config Config
}

func NewBuilder() *Builder {
	return NewBuilderWithConfig(DefaultConfig())
}

func NewBuilderWithConfig(config Config) *Builder {
	return &Builder{config: config}
}

func (b *Builder) Config() Config {
	return b.config
}

// BuildPage runs line building, paragraph grouping, the cross-pass merge with secondary blocks,
// column segmentation and the final deduplication.
func (b *Builder) BuildPage(atoms []TextAtom, secondary []Block, width float64, height float64) Page {
	lines := BuildLines(atoms, b.config.Line)
	paragraphs := GroupParagraphs(lines, b.config.Paragraph)

	blocks := []Block{}
	lineBlocks := []Block{}
	for _, paragraph := range paragraphs {
		block := paragraph.ToBlock()
		if strings.TrimSpace(block.Text) == "" {
			continue
		}
		blocks = append(blocks, block)
		if len(paragraph.Lines) > 1 {
			for _, line := range paragraph.Lines {
				lineBlocks = append(lineBlocks, Block{BBox: line.BBox, Text: line.Text, FontSize: line.FontSize})
			}
		}
	}

	candidates := []Block{}
	for _, block := range secondary {
		block.Text = strings.TrimSpace(StripSoftHyphens(block.Text))
		if block.Text == "" || block.BBox.IsEmpty() {
			continue
		}
		candidates = append(candidates, block)
	}
	blocks = MergeSecondary(blocks, candidates, lineBlocks, b.config.CrossPass)

	ordered := ReadingOrder(SegmentColumns(blocks, width))
	return Page{
		Width:  width,
		Height: height,
		Blocks: Deduplicate(ordered, b.config.Final),
	}
}

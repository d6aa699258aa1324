package layout

// DedupRule marks two blocks as duplicates when both thresholds are exceeded.
// A zero MinSimilarity makes the rule purely geometric.
type DedupRule struct {
	// Compared against IoU, or against Coverage when UseCoverage is set.
	MinOverlap    float64
	MinSimilarity float64
	UseCoverage   bool
}

// DedupConfig is an ordered set of rules. Any matching rule suppresses the later block.
type DedupConfig struct {
	Rules []DedupRule
}

// CrossPassDedup compares paragraph blocks with the secondary whole-page pass.
// Rows from that pass sit inside paragraphs, so containment counts as overlap.
func CrossPassDedup() DedupConfig {
	return DedupConfig{Rules: []DedupRule{
		{MinOverlap: 0.8},
		{MinOverlap: 0.3, MinSimilarity: 0.8},
		{MinOverlap: 0.8, MinSimilarity: 0.8, UseCoverage: true},
	}}
}

// FinalDedup runs over the fully ordered block list of a page.
func FinalDedup() DedupConfig {
	return DedupConfig{Rules: []DedupRule{
		{MinOverlap: 0.8},
		{MinOverlap: 0.5, MinSimilarity: 0.85},
	}}
}

// MaxIoU is the IoU above which no two blocks can survive the config.
func (c DedupConfig) MaxIoU() float64 {
	limit := 1.0
	for _, rule := range c.Rules {
		if rule.MinSimilarity == 0 && !rule.UseCoverage {
			limit = min(limit, rule.MinOverlap)
		}
	}
	return limit
}

// IsDuplicate reports whether two blocks match any rule.
func (c DedupConfig) IsDuplicate(a Block, b Block) bool {
	iou := a.BBox.IoU(b.BBox)
	coverage := -1.0
	similarity := -1.0
	for _, rule := range c.Rules {
		overlap := iou
		if rule.UseCoverage {
			if coverage < 0 {
				coverage = a.BBox.Coverage(b.BBox)
			}
			overlap = coverage
		}
		if overlap <= rule.MinOverlap {
			continue
		}
		if rule.MinSimilarity == 0 {
			return true
		}
		if similarity < 0 {
			similarity = Similarity(a.Text, b.Text)
		}
		if similarity > rule.MinSimilarity {
			return true
		}
	}
	return false
}

// Deduplicate keeps the first block of every duplicate group, preserving order.
func Deduplicate(blocks []Block, config DedupConfig) []Block {
	kept := make([]Block, 0, len(blocks))
	for _, block := range blocks {
		duplicate := false
		for _, existing := range kept {
			if config.IsDuplicate(existing, block) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, block)
		}
	}
	return kept
}

// MergeSecondary appends blocks from a secondary extraction pass that no primary block already covers.
// Blocks in covered, such as the single lines a paragraph was merged from, also suppress candidates
// but are never added. A row ending in a hyphenated word matches its line even though the
// paragraph text has joined the word.
func MergeSecondary(primary []Block, secondary []Block, covered []Block, config DedupConfig) []Block {
	merged := append([]Block(nil), primary...)
	for _, candidate := range secondary {
		if !isDuplicateOfAny(candidate, merged, config) && !isDuplicateOfAny(candidate, covered, config) {
			merged = append(merged, candidate)
		}
	}
	return merged
}

func isDuplicateOfAny(candidate Block, blocks []Block, config DedupConfig) bool {
	for _, existing := range blocks {
		if config.IsDuplicate(existing, candidate) {
			return true
		}
	}
	return false
}

package mapping

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

func (m *Mapper) mapPerBlock(ctx context.Context, l *layout.Layout, targetLanguage string) (Stats, error) {
	pageStats := make([]Stats, len(l.Pages))
	var group errgroup.Group
	group.SetLimit(m.options.Concurrency)
	for p := range l.Pages {
		group.Go(func() error {
			pageStats[p] = m.translatePage(ctx, l.Pages[p].Blocks, p, targetLanguage)
			return nil
		})
	}
	group.Wait()

	stats := Stats{}
	for _, s := range pageStats {
		stats.add(s)
	}
	return stats, ctx.Err()
}

// translatePage translates the blocks of one page in reading order so earlier
// translations are available as context for later blocks.
func (m *Mapper) translatePage(ctx context.Context, blocks []layout.Block, pageIndex int, targetLanguage string) Stats {
	stats := Stats{Blocks: len(blocks)}
	for i := range blocks {
		if strings.TrimSpace(blocks[i].Text) == "" {
			blocks[i].TranslatedText = ""
			stats.Empty++
		}
	}
	texts := make([]string, len(blocks))
	for i, block := range blocks {
		texts[i] = strings.TrimSpace(block.Text)
	}

	for _, unit := range m.units(texts) {
		if ctx.Err() != nil {
			break
		}
		pending := unit
		if len(unit) > 1 {
			pending = m.translateBatch(ctx, texts, unit, targetLanguage, func(index int, text string) {
				blocks[index].TranslatedText = StripContextMarkup(text)
				stats.Translated++
			})
		}
		for _, index := range pending {
			result, strategy := FirstSuccess(ctx, m.blockStrategies(blocks, index, targetLanguage))
			if !result.OK() {
				blocks[index].TranslatedText = ""
				stats.Failed++
				warnFailed(pageIndex, index, result.Err)
				continue
			}
			if strategy == "context" {
				result.Text = StripContextMarkup(result.Text)
			}
			blocks[index].TranslatedText = result.Text
			stats.Translated++
		}
	}
	return stats
}

// units splits non-empty blocks into translation calls: large blocks alone,
// runs of small blocks batched within the character budget.
func (m *Mapper) units(texts []string) [][]int {
	units := [][]int{}
	run := []int{}
	flush := func() {
		if len(run) == 0 {
			return
		}
		runTexts := make([]string, len(run))
		for i, index := range run {
			runTexts[i] = texts[index]
		}
		for _, batch := range MergeBatches(runTexts, m.options.BatchChars) {
			unit := make([]int, len(batch))
			for i, position := range batch {
				unit[i] = run[position]
			}
			units = append(units, unit)
		}
		run = []int{}
	}
	for i, text := range texts {
		if text == "" {
			continue
		}
		if len(text) > m.options.LargeBlockChars {
			flush()
			units = append(units, []int{i})
			continue
		}
		run = append(run, i)
	}
	flush()
	return units
}

// blockStrategies returns the fallback chain for one block:
// with context, then with line breaks collapsed, then the raw original text.
func (m *Mapper) blockStrategies(blocks []layout.Block, index int, targetLanguage string) []Strategy {
	text := strings.TrimSpace(blocks[index].Text)
	strategies := []Strategy{}
	before, after := m.neighbours(blocks, index)
	if len(before) > 0 || len(after) > 0 {
		strategies = append(strategies, translateStrategy("context", m.translator, ContextPrompt(before, text, after), targetLanguage))
	}
	plain := strings.Join(strings.Fields(text), " ")
	strategies = append(strategies, translateStrategy("plain", m.translator, plain, targetLanguage))
	if plain != text {
		strategies = append(strategies, translateStrategy("original", m.translator, text, targetLanguage))
	}
	return strategies
}

// neighbours returns up to ContextBefore previous translations and ContextAfter next originals.
func (m *Mapper) neighbours(blocks []layout.Block, index int) ([]string, []string) {
	before := []string{}
	for i := index - 1; i >= 0 && len(before) < m.options.ContextBefore; i-- {
		if text := strings.TrimSpace(blocks[i].TranslatedText); text != "" {
			before = append([]string{text}, before...)
		}
	}
	after := []string{}
	for i := index + 1; i < len(blocks) && len(after) < m.options.ContextAfter; i++ {
		if text := strings.TrimSpace(blocks[i].Text); text != "" {
			after = append(after, text)
		}
	}
	return before, after
}

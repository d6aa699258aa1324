package mapping

import (
	"context"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

type blockRef struct {
	page  int
	block int
}

// cache holds fallback translations keyed by normalized original text.
type cache struct {
	mu      sync.Mutex
	results map[string]Result
}

func newCache() *cache {
	return &cache{results: map[string]Result{}}
}

func (c *cache) get(text string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.results[layout.NormalizeText(text)]
	return result, ok
}

func (c *cache) put(text string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[layout.NormalizeText(text)] = result
}

func (m *Mapper) mapWholeText(ctx context.Context, l *layout.Layout, targetLanguage string) (Stats, error) {
	stats := Stats{}
	lookup := &Lookup{values: map[string]string{}}
	original := DocumentText(l)
	if original != "" {
		translated, err := m.translator.Translate(ctx, original, targetLanguage)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			log.Printf("Failed to translate document text, falling back to blocks: %v", err)
		} else {
			lookup = BuildLookup(original, translated)
		}
	}

	unmatched := map[string][]blockRef{}
	// Unique unmatched texts, owned by the first page they appear on.
	pageTexts := make([][]string, len(l.Pages))
	for p := range l.Pages {
		for b := range l.Pages[p].Blocks {
			block := &l.Pages[p].Blocks[b]
			stats.Blocks++
			text := strings.TrimSpace(block.Text)
			if text == "" {
				block.TranslatedText = ""
				stats.Empty++
				continue
			}
			if value, ok := lookup.Exact(text); ok {
				block.TranslatedText = value
				stats.Exact++
				continue
			}
			if value, _, ok := lookup.Fuzzy(text, m.options.FuzzyThreshold); ok {
				block.TranslatedText = value
				stats.Fuzzy++
				continue
			}
			key := layout.NormalizeText(text)
			if _, ok := unmatched[key]; !ok {
				pageTexts[p] = append(pageTexts[p], text)
			}
			unmatched[key] = append(unmatched[key], blockRef{page: p, block: b})
		}
	}
	if len(unmatched) == 0 {
		return stats, nil
	}

	results := newCache()
	var group errgroup.Group
	group.SetLimit(m.options.Concurrency)
	for _, texts := range pageTexts {
		if len(texts) == 0 {
			continue
		}
		group.Go(func() error {
			m.translateUnmatched(ctx, texts, targetLanguage, results)
			return nil
		})
	}
	group.Wait()
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	for _, refs := range unmatched {
		for _, ref := range refs {
			block := &l.Pages[ref.page].Blocks[ref.block]
			result, _ := results.get(block.Text)
			if !result.OK() {
				block.TranslatedText = ""
				stats.Failed++
				warnFailed(ref.page, ref.block, result.Err)
				continue
			}
			block.TranslatedText = result.Text
			stats.Translated++
		}
	}
	return stats, nil
}

// translateUnmatched translates one page's unmatched texts in delimiter-joined batches,
// falling back to individual calls for anything a batch did not return.
func (m *Mapper) translateUnmatched(ctx context.Context, texts []string, targetLanguage string, results *cache) {
	for _, batch := range MergeBatches(texts, m.options.BatchChars) {
		pending := batch
		if len(batch) > 1 {
			pending = m.translateBatch(ctx, texts, batch, targetLanguage, func(index int, text string) {
				results.put(texts[index], Result{Text: text})
			})
		}
		for _, index := range pending {
			result, _ := FirstSuccess(ctx, []Strategy{
				translateStrategy("individual", m.translator, texts[index], targetLanguage),
			})
			results.put(texts[index], result)
		}
	}
}

// translateBatch sends the texts at indexes as one delimiter-joined call and reports each
// returned part through assign. It returns the indexes left without a translation.
func (m *Mapper) translateBatch(ctx context.Context, texts []string, indexes []int, targetLanguage string, assign func(index int, text string)) []int {
	parts := make([]string, len(indexes))
	for i, index := range indexes {
		parts[i] = texts[index]
	}
	translated, err := m.translator.Translate(ctx, JoinBatch(parts), targetLanguage)
	if err != nil {
		log.Printf("Failed to translate batch of %d blocks: %v", len(indexes), err)
		return indexes
	}
	returned := SplitBatch(translated, len(indexes))
	if len(returned) < len(indexes) {
		log.Printf("Batch returned %d of %d parts, translating the rest individually", len(returned), len(indexes))
	}
	pending := []int{}
	for i, index := range indexes {
		if i < len(returned) && returned[i] != "" {
			assign(index, returned[i])
			continue
		}
		pending = append(pending, index)
	}
	return pending
}

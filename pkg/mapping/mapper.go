package mapping

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

// Mode selects how translations are assigned to blocks.
type Mode string

const (
	// Translate the whole document once and match blocks against it.
	MODE_WHOLE_TEXT Mode = "whole"
	// Translate each block with neighbouring blocks as context.
	MODE_PER_BLOCK Mode = "block"
)

// ParseMode accepts "whole" and "block", defaulting to whole-text mode for an empty string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", MODE_WHOLE_TEXT:
		return MODE_WHOLE_TEXT, nil
	case MODE_PER_BLOCK:
		return MODE_PER_BLOCK, nil
	}
	return "", fmt.Errorf("unknown mapping mode %q", value)
}

// Concurrent translation calls.
const DEFAULT_CONCURRENCY = 5

// Per-block mode limits.
const (
	LARGE_BLOCK_CHARS = 300
	BATCH_CHARS       = 3000
	CONTEXT_BEFORE    = 2
	CONTEXT_AFTER     = 2
)

type Options struct {
	Concurrency     int
	FuzzyThreshold  float64
	LargeBlockChars int
	BatchChars      int
	ContextBefore   int
	ContextAfter    int
}

func DefaultOptions() Options {
	return Options{
		Concurrency:     DEFAULT_CONCURRENCY,
		FuzzyThreshold:  DEFAULT_FUZZY_THRESHOLD,
		LargeBlockChars: LARGE_BLOCK_CHARS,
		BatchChars:      BATCH_CHARS,
		ContextBefore:   CONTEXT_BEFORE,
		ContextAfter:    CONTEXT_AFTER,
	}
}

// Stats counts how each block obtained its translation.
type Stats struct {
	Blocks int `json:"blocks"`
	// Blocks without original text.
	Empty int `json:"empty"`
	// Whole-text mode: exact lookup hits.
	Exact int `json:"exact"`
	// Whole-text mode: fuzzy lookup hits.
	Fuzzy int `json:"fuzzy"`
	// Blocks translated directly, either per-block or as whole-text fallback.
	Translated int `json:"translated"`
	// Blocks left untranslated after every strategy failed.
	Failed int `json:"failed"`
}

func (s *Stats) add(other Stats) {
	s.Blocks += other.Blocks
	s.Empty += other.Empty
	s.Exact += other.Exact
	s.Fuzzy += other.Fuzzy
	s.Translated += other.Translated
	s.Failed += other.Failed
}

// Mapper fills TranslatedText for every block of a layout.
type Mapper struct {
	translator Translator
	options    Options
}

func New(translator Translator, options Options) *Mapper {
	defaults := DefaultOptions()
	if options.Concurrency <= 0 {
		options.Concurrency = defaults.Concurrency
	}
	if options.FuzzyThreshold <= 0 {
		options.FuzzyThreshold = defaults.FuzzyThreshold
	}
	if options.LargeBlockChars <= 0 {
		options.LargeBlockChars = defaults.LargeBlockChars
	}
	if options.BatchChars <= 0 {
		options.BatchChars = defaults.BatchChars
	}
	if options.ContextBefore < 0 {
		options.ContextBefore = 0
	}
	if options.ContextAfter < 0 {
		options.ContextAfter = 0
	}
	return &Mapper{translator: translator, options: options}
}

// Map translates the layout in place.
// Per-block failures are counted in Stats and never returned; the error is set only
// when the context is done.
func (m *Mapper) Map(ctx context.Context, l *layout.Layout, targetLanguage string, mode Mode) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	switch mode {
	case MODE_PER_BLOCK:
		stats, err = m.mapPerBlock(ctx, l, targetLanguage)
	default:
		stats, err = m.mapWholeText(ctx, l, targetLanguage)
	}
	if err != nil {
		return stats, err
	}
	log.WithFields(log.Fields{
		"mode":       mode,
		"blocks":     stats.Blocks,
		"exact":      stats.Exact,
		"fuzzy":      stats.Fuzzy,
		"translated": stats.Translated,
		"failed":     stats.Failed,
	}).Info("Mapped translations")
	return stats, nil
}

// DocumentText joins every block's original text, page by page, with blank lines.
func DocumentText(l *layout.Layout) string {
	texts := []string{}
	for _, page := range l.Pages {
		for _, block := range page.Blocks {
			if text := strings.TrimSpace(block.Text); text != "" {
				texts = append(texts, text)
			}
		}
	}
	return strings.Join(texts, PARAGRAPH_SEPARATOR)
}

func warnFailed(pageIndex int, blockIndex int, err error) {
	log.WithFields(log.Fields{"page": pageIndex, "block": blockIndex}).Warnf("Failed to translate block: %v", err)
}

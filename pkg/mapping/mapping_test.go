package mapping

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

type fakeTranslator struct {
	mu        sync.Mutex
	calls     []string
	translate func(text string) (string, error)
}

func (f *fakeTranslator) Translate(_ context.Context, text string, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	return f.translate(text)
}

func (f *fakeTranslator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// korean marks every paragraph of every batch part as translated.
func korean(text string) string {
	if start := strings.Index(text, TRANSLATE_OPEN+"\n"); start >= 0 {
		end := strings.Index(text, "\n"+TRANSLATE_CLOSE)
		inner := text[start+len(TRANSLATE_OPEN)+1 : end]
		return CONTEXT_BEFORE_OPEN + "\nleaked\n" + CONTEXT_BEFORE_CLOSE + "\n" + TRANSLATE_OPEN + "\nKO(" + inner + ")\n" + TRANSLATE_CLOSE
	}
	parts := strings.Split(text, BLOCK_SEPARATOR)
	for i, part := range parts {
		paragraphs := strings.Split(part, PARAGRAPH_SEPARATOR)
		for j, paragraph := range paragraphs {
			paragraphs[j] = "KO(" + paragraph + ")"
		}
		parts[i] = strings.Join(paragraphs, PARAGRAPH_SEPARATOR)
	}
	return strings.Join(parts, BLOCK_SEPARATOR)
}

func page(texts ...string) layout.Page {
	blocks := []layout.Block{}
	for i, text := range texts {
		y := float64(i) * 30
		blocks = append(blocks, layout.Block{BBox: layout.BBox{X0: 10, Y0: y, X1: 200, Y1: y + 20}, Text: text, FontSize: 10})
	}
	return layout.Page{Width: 595, Height: 842, Blocks: blocks}
}

func TestLookup_DirectMatch(t *testing.T) {
	lookup := BuildLookup("A.\n\nB.", "가.\n\n나.")

	value, ok := lookup.Exact("  A. ")

	require.True(t, ok)
	assert.Equal(t, "가.", value)
	value, ok = lookup.Exact("b.")
	require.True(t, ok)
	assert.Equal(t, "나.", value)
}

func TestWholeText_DirectLookupSkipsFuzzy(t *testing.T) {
	translator := &fakeTranslator{translate: func(text string) (string, error) {
		return "가.\n\n나.", nil
	}}
	l := &layout.Layout{Pages: []layout.Page{page("A.", "B.")}}

	stats, err := New(translator, DefaultOptions()).Map(context.Background(), l, "Korean", MODE_WHOLE_TEXT)

	require.NoError(t, err)
	assert.Equal(t, "가.", l.Pages[0].Blocks[0].TranslatedText)
	assert.Equal(t, "나.", l.Pages[0].Blocks[1].TranslatedText)
	assert.Equal(t, 2, stats.Exact)
	assert.Zero(t, stats.Fuzzy)
	assert.Equal(t, []string{"A.\n\nB."}, translator.Calls())
}

func TestLookup_Fuzzy(t *testing.T) {
	lookup := BuildLookup("The quick brown fox jumps over the lazy dog.", "Der schnelle braune Fuchs.")

	value, score, ok := lookup.Fuzzy("The quick brown fox jumps over the lazy", DEFAULT_FUZZY_THRESHOLD)

	require.True(t, ok)
	assert.Equal(t, "Der schnelle braune Fuchs.", value)
	assert.Greater(t, score, 0.8)

	_, _, ok = lookup.Fuzzy("0123456789", DEFAULT_FUZZY_THRESHOLD)
	assert.False(t, ok)
}

func TestLookup_FuzzyRejectsUntranslatedValue(t *testing.T) {
	lookup := BuildLookup("Figure 1 shows the results", "Figure 1 shows results")

	_, score, ok := lookup.Fuzzy("Figure 1 shows results", DEFAULT_FUZZY_THRESHOLD)

	assert.GreaterOrEqual(t, score, DEFAULT_FUZZY_THRESHOLD)
	assert.False(t, ok)
}

func TestLookup_FuzzyAcceptsKeyKeptAsIs(t *testing.T) {
	lookup := BuildLookup("GPU acceleration", "GPU acceleration")

	value, _, ok := lookup.Fuzzy("GPU accelerations", DEFAULT_FUZZY_THRESHOLD)

	assert.True(t, ok)
	assert.Equal(t, "GPU acceleration", value)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two?", "三。", "四！"}, SplitSentences("One. Two? 三。四！"))
}

func TestWholeText_UnmatchedBlocksAreBatchedAndDeduplicated(t *testing.T) {
	translator := &fakeTranslator{}
	translator.translate = func(text string) (string, error) {
		if strings.Contains(text, PARAGRAPH_SEPARATOR) {
			return "", errors.New("request too large")
		}
		return korean(text), nil
	}
	l := &layout.Layout{Pages: []layout.Page{page("Alpha.", "Beta."), page("Alpha.", " ")}}

	stats, err := New(translator, DefaultOptions()).Map(context.Background(), l, "Korean", MODE_WHOLE_TEXT)

	require.NoError(t, err)
	assert.Equal(t, "KO(Alpha.)", l.Pages[0].Blocks[0].TranslatedText)
	assert.Equal(t, "KO(Beta.)", l.Pages[0].Blocks[1].TranslatedText)
	assert.Equal(t, "KO(Alpha.)", l.Pages[1].Blocks[0].TranslatedText)
	assert.Empty(t, l.Pages[1].Blocks[1].TranslatedText)
	assert.Equal(t, Stats{Blocks: 4, Empty: 1, Translated: 3}, stats)
	calls := translator.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Alpha."+BLOCK_SEPARATOR+"Beta.", calls[1])
}

func TestWholeText_BatchShortfallFallsBackToIndividual(t *testing.T) {
	translator := &fakeTranslator{}
	translator.translate = func(text string) (string, error) {
		switch {
		case strings.Contains(text, PARAGRAPH_SEPARATOR):
			return "", errors.New("request too large")
		case strings.Contains(text, BLOCK_SEPARATOR):
			return "KO(Alpha.)", nil
		}
		return korean(text), nil
	}
	l := &layout.Layout{Pages: []layout.Page{page("Alpha.", "Beta.")}}

	stats, err := New(translator, DefaultOptions()).Map(context.Background(), l, "Korean", MODE_WHOLE_TEXT)

	require.NoError(t, err)
	assert.Equal(t, "KO(Alpha.)", l.Pages[0].Blocks[0].TranslatedText)
	assert.Equal(t, "KO(Beta.)", l.Pages[0].Blocks[1].TranslatedText)
	assert.Equal(t, 2, stats.Translated)
	assert.Equal(t, "Beta.", translator.Calls()[2])
}

func TestPerBlock_UsesPreviousTranslationsAsContext(t *testing.T) {
	large := strings.Repeat("Long sentence about layout. ", 12)
	translator := &fakeTranslator{translate: func(text string) (string, error) { return korean(text), nil }}
	l := &layout.Layout{Pages: []layout.Page{page("Title.", large, "Tail.")}}

	stats, err := New(translator, DefaultOptions()).Map(context.Background(), l, "Korean", MODE_PER_BLOCK)

	require.NoError(t, err)
	blocks := l.Pages[0].Blocks
	assert.Equal(t, "KO(Title.)", blocks[0].TranslatedText)
	assert.Equal(t, "KO("+strings.TrimSpace(large)+")", blocks[1].TranslatedText)
	assert.Equal(t, "KO(Tail.)", blocks[2].TranslatedText)
	assert.Equal(t, 3, stats.Translated)

	calls := translator.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[1], CONTEXT_BEFORE_OPEN+"\nKO(Title.)\n"+CONTEXT_BEFORE_CLOSE)
	assert.Contains(t, calls[1], CONTEXT_AFTER_OPEN+"\nTail.\n"+CONTEXT_AFTER_CLOSE)
	for _, block := range blocks {
		assert.NotContains(t, block.TranslatedText, "[[")
	}
}

func TestPerBlock_SmallBlocksAreBatched(t *testing.T) {
	translator := &fakeTranslator{translate: func(text string) (string, error) { return korean(text), nil }}
	l := &layout.Layout{Pages: []layout.Page{page("One.", "Two.", "Three.")}}

	stats, err := New(translator, DefaultOptions()).Map(context.Background(), l, "Korean", MODE_PER_BLOCK)

	require.NoError(t, err)
	assert.Equal(t, []string{"One." + BLOCK_SEPARATOR + "Two." + BLOCK_SEPARATOR + "Three."}, translator.Calls())
	assert.Equal(t, "KO(Two.)", l.Pages[0].Blocks[1].TranslatedText)
	assert.Equal(t, 3, stats.Translated)
}

func TestPerBlock_FailedBlockIsLeftEmpty(t *testing.T) {
	translator := &fakeTranslator{translate: func(text string) (string, error) {
		if strings.Contains(text, "Broken.") {
			return "", errors.New("provider unavailable")
		}
		return korean(text), nil
	}}
	l := &layout.Layout{Pages: []layout.Page{page("Intro.", "Broken.", ""), page("Other page.")}}

	stats, err := New(translator, DefaultOptions()).Map(context.Background(), l, "Korean", MODE_PER_BLOCK)

	require.NoError(t, err)
	assert.Equal(t, Stats{Blocks: 4, Empty: 1, Translated: 2, Failed: 1}, stats)
	for _, p := range l.Pages {
		for _, block := range p.Blocks {
			if strings.TrimSpace(block.Text) != "" && block.Text != "Broken." {
				assert.NotEmpty(t, block.TranslatedText, block.Text)
			}
		}
	}
	assert.Empty(t, l.Pages[0].Blocks[1].TranslatedText)
}

func TestMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	translator := &fakeTranslator{translate: func(text string) (string, error) { return "", context.Canceled }}
	l := &layout.Layout{Pages: []layout.Page{page("Alpha.")}}

	_, err := New(translator, DefaultOptions()).Map(ctx, l, "Korean", MODE_WHOLE_TEXT)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, MODE_WHOLE_TEXT, mode)
	mode, err = ParseMode("Block")
	require.NoError(t, err)
	assert.Equal(t, MODE_PER_BLOCK, mode)
	_, err = ParseMode("sentence")
	assert.Error(t, err)
}

func TestDocumentText(t *testing.T) {
	l := &layout.Layout{Pages: []layout.Page{page("a", " "), page("b")}}
	assert.Equal(t, "a\n\nb", DocumentText(l))
}

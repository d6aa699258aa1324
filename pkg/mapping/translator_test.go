package mapping

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBatches(t *testing.T) {
	texts := []string{"aaaaa", "bbbbb", strings.Repeat("x", 45), "dd"}

	assert.Equal(t, [][]int{{0, 1}, {2}, {3}}, MergeBatches(texts, 40))
	assert.Equal(t, [][]int{{0}, {1}, {2}, {3}}, MergeBatches(texts, 20))
	assert.Empty(t, MergeBatches(nil, 40))
}

func TestSplitBatch(t *testing.T) {
	tests := []struct {
		name       string
		translated string
		expected   int
		want       []string
	}{
		{"exact", JoinBatch([]string{"a", "b"}), 2, []string{"a", "b"}},
		{"surplus merged into last", JoinBatch([]string{"a", "b", "c"}), 2, []string{"a", "b\nc"}},
		{"shortfall", "a", 3, []string{"a"}},
		{"loose whitespace", "a ---BLOCK_SEPARATOR--- b", 2, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitBatch(tt.translated, tt.expected))
		})
	}
}

func TestChunkParagraphs(t *testing.T) {
	text := "aaaa\n\nbbbb\n\ncccc"

	assert.Equal(t, []string{"aaaa\n\nbbbb", "cccc"}, ChunkParagraphs(text, 10))
	assert.Equal(t, []string{text}, ChunkParagraphs(text, 100))
	assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, ChunkParagraphs(text, 3))
}

func TestChunked_RejoinsWithParagraphSeparator(t *testing.T) {
	translator := &fakeTranslator{translate: func(text string) (string, error) { return korean(text) + "\n", nil }}

	translated, err := Chunked{Translator: translator, MaxChars: 10}.Translate(context.Background(), "aaaa\n\nbbbb\n\ncccc", "Korean")

	require.NoError(t, err)
	assert.Equal(t, "KO(aaaa)\n\nKO(bbbb)\n\nKO(cccc)", translated)
	assert.Len(t, translator.Calls(), 2)
}

func TestChunked_PropagatesFailure(t *testing.T) {
	translator := &fakeTranslator{translate: func(text string) (string, error) {
		if text == "cccc" {
			return "", errors.New("quota")
		}
		return text, nil
	}}

	_, err := Chunked{Translator: translator, MaxChars: 10}.Translate(context.Background(), "aaaa\n\nbbbb\n\ncccc", "Korean")

	assert.ErrorContains(t, err, "quota")
}

func TestChain(t *testing.T) {
	failing := TranslatorFunc(func(context.Context, string, string) (string, error) { return "", errors.New("down") })
	empty := TranslatorFunc(func(context.Context, string, string) (string, error) { return " ", nil })
	working := TranslatorFunc(func(_ context.Context, text string, _ string) (string, error) { return "ok:" + text, nil })

	translated, err := Chain{{"openai", failing}, {"gemini", empty}, {"vertex", working}}.Translate(context.Background(), "x", "Korean")
	require.NoError(t, err)
	assert.Equal(t, "ok:x", translated)

	_, err = Chain{{"openai", failing}, {"gemini", empty}}.Translate(context.Background(), "x", "Korean")
	assert.ErrorContains(t, err, "openai: down")
	assert.ErrorContains(t, err, "gemini: empty translation")

	_, err = Chain{}.Translate(context.Background(), "x", "Korean")
	assert.Error(t, err)
}

func TestRetrying(t *testing.T) {
	attempts := 0
	flaky := TranslatorFunc(func(context.Context, string, string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("rate limited")
		}
		return "done", nil
	})

	translated, err := Retrying{Translator: flaky, MaxRetries: 3}.Translate(context.Background(), "x", "Korean")

	require.NoError(t, err)
	assert.Equal(t, "done", translated)
	assert.Equal(t, 3, attempts)

	attempts = -10
	_, err = Retrying{Translator: flaky, MaxRetries: 1}.Translate(context.Background(), "x", "Korean")
	assert.ErrorContains(t, err, "rate limited")
}

func TestFirstSuccess(t *testing.T) {
	strategies := []Strategy{
		{Name: "context", Run: func(context.Context) Result { return Result{Err: errors.New("timeout")} }},
		{Name: "plain", Run: func(context.Context) Result { return Result{Text: "  "} }},
		{Name: "original", Run: func(context.Context) Result { return Result{Text: "done"} }},
	}

	result, name := FirstSuccess(context.Background(), strategies)
	assert.Equal(t, "original", name)
	assert.Equal(t, "done", result.Text)

	result, name = FirstSuccess(context.Background(), strategies[:2])
	assert.Empty(t, name)
	assert.False(t, result.OK())
	assert.ErrorContains(t, result.Err, "context: timeout")
}

func TestStripContextMarkup(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"translate section", "[[CONTEXT_BEFORE]]\nprev\n[[/CONTEXT_BEFORE]]\n[[TRANSLATE]]\n본문\n[[/TRANSLATE]]", "본문"},
		{"context echoed", "본문\n[[CONTEXT_AFTER]]\n다음\n[[/CONTEXT_AFTER]]", "본문"},
		{"stray tag", "[[TRANSLATE]] 본문", "본문"},
		{"plain", " 본문 ", "본문"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripContextMarkup(tt.response))
		})
	}
}

func TestContextPrompt(t *testing.T) {
	assert.Equal(t, "[[TRANSLATE]]\nx\n[[/TRANSLATE]]", ContextPrompt(nil, "x", nil))
	assert.Equal(t,
		"[[CONTEXT_BEFORE]]\na\n\nb\n[[/CONTEXT_BEFORE]]\n[[TRANSLATE]]\nx\n[[/TRANSLATE]]\n[[CONTEXT_AFTER]]\nc\n[[/CONTEXT_AFTER]]",
		ContextPrompt([]string{"a", "b"}, "x", []string{"c"}))
}

func TestReviewTranslation(t *testing.T) {
	review := ReviewTranslation("Hello world\n\nabcdefghij\n\nzzzz", "hello world\n\nabcdexxxxx\n\nqqqq")

	require.Len(t, review.Items, 4)
	assert.Equal(t, REVIEW_OK, review.Items[0].Status)
	assert.Equal(t, 1.0, review.Items[0].Similarity)
	assert.Equal(t, REVIEW_WARNING, review.Items[1].Status)
	assert.Equal(t, "abcdexxxxx", review.Items[1].Translated)
	assert.Equal(t, REVIEW_MISSING, review.Items[2].Status)
	assert.Equal(t, ReviewItem{Translated: "qqqq", Status: REVIEW_EXTRA}, review.Items[3])
	assert.Equal(t, ReviewSummary{Total: 4, OK: 1, Warning: 1, Missing: 1, Extra: 1, Accuracy: 25}, review.Summary)
}

func TestReviewTranslation_Empty(t *testing.T) {
	review := ReviewTranslation("", "")
	assert.Empty(t, review.Items)
	assert.Zero(t, review.Summary.Accuracy)
}

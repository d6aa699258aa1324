package mapping

import (
	"regexp"
	"strings"

	"github.com/visionex-project/pdftrans/pkg/layout"
)

// Fuzzy matches below this ratio are treated as unmatched.
const DEFAULT_FUZZY_THRESHOLD = 0.45

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+|[。！？]+\s*`)

// Lookup maps normalized original text to its translation.
type Lookup struct {
	keys   []string
	values map[string]string
}

// BuildLookup zips original and translated text at paragraph, line and sentence granularity.
// Coarser granularities win when two pairs share a key.
func BuildLookup(original string, translated string) *Lookup {
	lookup := &Lookup{values: map[string]string{}}
	originalParagraphs := layout.SplitParagraphs(original)
	translatedParagraphs := layout.SplitParagraphs(translated)
	lookup.zip(originalParagraphs, translatedParagraphs)
	lookup.zip(splitLines(originalParagraphs), splitLines(translatedParagraphs))
	lookup.zip(SplitSentences(original), SplitSentences(translated))
	return lookup
}

func (l *Lookup) zip(original []string, translated []string) {
	for i := 0; i < min(len(original), len(translated)); i++ {
		key := layout.NormalizeText(original[i])
		value := strings.TrimSpace(translated[i])
		if key == "" || value == "" {
			continue
		}
		if _, ok := l.values[key]; ok {
			continue
		}
		l.keys = append(l.keys, key)
		l.values[key] = value
	}
}

func (l *Lookup) Len() int {
	return len(l.keys)
}

// Exact returns the translation stored under the normalized form of text.
func (l *Lookup) Exact(text string) (string, bool) {
	value, ok := l.values[layout.NormalizeText(text)]
	return value, ok
}

// Fuzzy returns the translation of the most similar key when its ratio reaches threshold.
// A translation identical to the text being looked up is rejected as untranslated.
func (l *Lookup) Fuzzy(text string, threshold float64) (string, float64, bool) {
	normalized := layout.NormalizeText(text)
	if normalized == "" {
		return "", 0, false
	}
	bestKey, bestScore := "", 0.0
	for _, key := range l.keys {
		score := layout.Ratio(normalized, key)
		if score > bestScore {
			bestKey, bestScore = key, score
		}
	}
	if bestKey == "" || bestScore < threshold {
		return "", bestScore, false
	}
	value := l.values[bestKey]
	if layout.NormalizeText(value) == normalized {
		return "", bestScore, false
	}
	return value, bestScore, true
}

func splitLines(paragraphs []string) []string {
	lines := []string{}
	for _, paragraph := range paragraphs {
		for _, line := range strings.Split(paragraph, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
	}
	return lines
}

// SplitSentences splits text after sentence-ending punctuation, including CJK terminators.
func SplitSentences(text string) []string {
	sentences := []string{}
	start := 0
	for _, match := range sentenceEnd.FindAllStringIndex(text, -1) {
		if sentence := strings.TrimSpace(text[start:match[1]]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = match[1]
	}
	if sentence := strings.TrimSpace(text[start:]); sentence != "" {
		sentences = append(sentences, sentence)
	}
	return sentences
}

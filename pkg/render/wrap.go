package render

import (
	"strings"
	"unicode"
)

// isCJK reports whether r belongs to a script written without spaces between words.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}

type token struct {
	text string
	// Whether a space separates the token from the previous one.
	spaced bool
}

// tokenize splits a line into Latin words and single CJK characters.
func tokenize(line string) []token {
	tokens := []token{}
	var word strings.Builder
	spaced := false
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, token{text: word.String(), spaced: spaced})
			word.Reset()
			spaced = false
		}
	}
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			flush()
			spaced = len(tokens) > 0
		case isCJK(r):
			flush()
			tokens = append(tokens, token{text: string(r), spaced: spaced})
			spaced = false
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// wrapText breaks text into lines no wider than width: per word for Latin scripts and
// per character for CJK. Explicit line breaks are kept. Words wider than a line are split
// by character.
func wrapText(text string, width float64, measure func(string) float64) []string {
	lines := []string{}
	for _, paragraph := range strings.Split(text, "\n") {
		current := ""
		for _, t := range tokenize(paragraph) {
			candidate := t.text
			if current != "" {
				if t.spaced {
					candidate = current + " " + t.text
				} else {
					candidate = current + t.text
				}
			}
			if measure(candidate) <= width {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			if measure(t.text) <= width {
				current = t.text
				continue
			}
			pieces := splitByWidth(t.text, width, measure)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// splitByWidth cuts a word into pieces that fit, keeping at least one character per piece.
func splitByWidth(word string, width float64, measure func(string) float64) []string {
	pieces := []string{}
	current := []rune{}
	for _, r := range word {
		if len(current) > 0 && measure(string(append(current, r))) > width {
			pieces = append(pieces, string(current))
			current = []rune{}
		}
		current = append(current, r)
	}
	return append(pieces, string(current))
}

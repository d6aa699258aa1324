package mapping

import (
	"fmt"
	"regexp"
	"strings"
)

// Delimiters marking the neighbouring blocks sent as context.
const (
	CONTEXT_BEFORE_OPEN  = "[[CONTEXT_BEFORE]]"
	CONTEXT_BEFORE_CLOSE = "[[/CONTEXT_BEFORE]]"
	TRANSLATE_OPEN       = "[[TRANSLATE]]"
	TRANSLATE_CLOSE      = "[[/TRANSLATE]]"
	CONTEXT_AFTER_OPEN   = "[[CONTEXT_AFTER]]"
	CONTEXT_AFTER_CLOSE  = "[[/CONTEXT_AFTER]]"
)

var (
	translateSection = regexp.MustCompile(`(?s)\[\[TRANSLATE\]\](.*?)\[\[/TRANSLATE\]\]`)
	contextSection   = regexp.MustCompile(`(?s)\[\[CONTEXT_(?:BEFORE|AFTER)\]\].*?\[\[/CONTEXT_(?:BEFORE|AFTER)\]\]`)
	markupTag        = regexp.MustCompile(`\[\[/?(?:CONTEXT_BEFORE|CONTEXT_AFTER|TRANSLATE)\]\]`)
)

// Instructions is the system prompt shared by the translation providers.
func Instructions(targetLanguage string) string {
	return fmt.Sprintf(`You are a professional translator. Translate the user's text to %s accurately while preserving the original meaning and tone.
Return only the translation without explanations.
If the text contains %s and %s sections, they are context only: translate only the text between %s and %s.
Keep every "---BLOCK_SEPARATOR---" line exactly as it is and keep paragraphs separated by blank lines.`,
		targetLanguage, CONTEXT_BEFORE_OPEN, CONTEXT_AFTER_OPEN, TRANSLATE_OPEN, TRANSLATE_CLOSE)
}

// ContextPrompt wraps text with the previous translated blocks and the next original blocks.
func ContextPrompt(before []string, text string, after []string) string {
	var builder strings.Builder
	if len(before) > 0 {
		builder.WriteString(CONTEXT_BEFORE_OPEN + "\n")
		builder.WriteString(strings.Join(before, PARAGRAPH_SEPARATOR))
		builder.WriteString("\n" + CONTEXT_BEFORE_CLOSE + "\n")
	}
	builder.WriteString(TRANSLATE_OPEN + "\n")
	builder.WriteString(text)
	builder.WriteString("\n" + TRANSLATE_CLOSE)
	if len(after) > 0 {
		builder.WriteString("\n" + CONTEXT_AFTER_OPEN + "\n")
		builder.WriteString(strings.Join(after, PARAGRAPH_SEPARATOR))
		builder.WriteString("\n" + CONTEXT_AFTER_CLOSE)
	}
	return builder.String()
}

// StripContextMarkup removes any delimiter markup and echoed context from a response.
func StripContextMarkup(response string) string {
	if match := translateSection.FindStringSubmatch(response); match != nil {
		response = match[1]
	}
	response = contextSection.ReplaceAllString(response, "")
	response = markupTag.ReplaceAllString(response, "")
	return strings.TrimSpace(response)
}

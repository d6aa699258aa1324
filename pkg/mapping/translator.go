package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// Paragraph separator used for chunking and rejoining translated text.
const PARAGRAPH_SEPARATOR = "\n\n"

// Character budgets per call imposed by the providers.
const (
	PRIMARY_CHUNK_CHARS  = 6000
	FALLBACK_CHUNK_CHARS = 4500
)

// Translator is an opaque text-in/text-out translation service.
type Translator interface {
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text string, targetLanguage string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	return f(ctx, text, targetLanguage)
}

// ChunkParagraphs splits text at paragraph boundaries into chunks of at most maxChars,
// counting the separators. A single paragraph longer than maxChars becomes its own chunk.
func ChunkParagraphs(text string, maxChars int) []string {
	paragraphs := strings.Split(text, PARAGRAPH_SEPARATOR)
	chunks := []string{}
	current := []string{}
	currentLength := 0
	for _, paragraph := range paragraphs {
		length := len(paragraph)
		separator := 0
		if len(current) > 0 {
			separator = len(PARAGRAPH_SEPARATOR)
		}
		if len(current) > 0 && currentLength+separator+length > maxChars {
			chunks = append(chunks, strings.Join(current, PARAGRAPH_SEPARATOR))
			current = []string{paragraph}
			currentLength = length
			continue
		}
		current = append(current, paragraph)
		currentLength += separator + length
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, PARAGRAPH_SEPARATOR))
	}
	return chunks
}

// Chunked sends text to the wrapped translator in paragraph-aligned chunks and rejoins the results.
type Chunked struct {
	Translator Translator
	MaxChars   int
}

func (c Chunked) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if c.MaxChars <= 0 || len(text) <= c.MaxChars {
		return c.Translator.Translate(ctx, text, targetLanguage)
	}
	outputs := []string{}
	for i, chunk := range ChunkParagraphs(text, c.MaxChars) {
		translated, err := c.Translator.Translate(ctx, chunk, targetLanguage)
		if err != nil {
			return "", fmt.Errorf("failed to translate chunk %d: %w", i, err)
		}
		outputs = append(outputs, strings.TrimSpace(translated))
	}
	return strings.TrimSpace(strings.Join(outputs, PARAGRAPH_SEPARATOR)), nil
}

// Provider is a named translator, used for logging in a Chain.
type Provider struct {
	Name       string
	Translator Translator
}

// Chain tries providers in order and returns the first non-empty translation.
type Chain []Provider

func (c Chain) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	if len(c) == 0 {
		return "", errors.New("no translation provider configured")
	}
	var errs []error
	for _, provider := range c {
		translated, err := provider.Translator.Translate(ctx, text, targetLanguage)
		if err == nil && strings.TrimSpace(translated) != "" {
			return translated, nil
		}
		if err == nil {
			err = errors.New("empty translation")
		}
		log.WithField("provider", provider.Name).Printf("Failed to translate: %v", err)
		errs = append(errs, fmt.Errorf("%s: %w", provider.Name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// Retrying retries transient failures of the wrapped translator with a constant backoff.
type Retrying struct {
	Translator Translator
	Interval   time.Duration
	MaxRetries uint64
}

func (r Retrying) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(r.Interval), r.MaxRetries), ctx)
	return backoff.RetryWithData(func() (string, error) {
		translated, err := r.Translator.Translate(ctx, text, targetLanguage)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return translated, nil
	}, policy)
}

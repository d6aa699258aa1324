package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/visionex-project/pdftrans/pkg/mapping"
	openaiAdapter "github.com/visionex-project/pdftrans/pkg/openai"
)

const DEFAULT_MODEL = "gpt-4o-mini"

// Translator translates text through a chat completion client.
// The Gemini client satisfies the same interface, so both providers share it.
type Translator struct {
	client      openaiAdapter.Client
	model       string
	temperature float32
}

func New(client openaiAdapter.Client, model string) *Translator {
	if model == "" {
		model = DEFAULT_MODEL
	}
	return &Translator{client: client, model: model, temperature: 0.3}
}

func (t *Translator) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	request := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: mapping.Instructions(targetLanguage),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: t.temperature,
	}

	response, err := t.client.CreateChatCompletion(ctx, request)
	if err != nil {
		err = fmt.Errorf("translation failed: %w", err)
		if !openaiAdapter.IsRetryable(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	content, err := openaiAdapter.GetCompletionContent(response)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

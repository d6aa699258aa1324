package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Client is the chat completion surface shared by the OpenAI and Gemini translators.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// adapter wraps the OpenAI client
type adapter struct {
	client *openai.Client
}

func NewAdapter(client *openai.Client) Client {
	return &adapter{client: client}
}

func (a *adapter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, request)
}

// GetCompletionContent extracts the content from the first choice
func GetCompletionContent(response openai.ChatCompletionResponse) (string, error) {
	if len(response.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return response.Choices[0].Message.Content, nil
}

// IsRetryable reports whether a failed request may succeed when sent again.
// Rate limits, server errors and transport errors are retryable.
func IsRetryable(err error) bool {
	var apiError *openai.APIError
	if errors.As(err, &apiError) {
		return retryableStatus(apiError.HTTPStatusCode)
	}
	var requestError *openai.RequestError
	if errors.As(err, &requestError) {
		return retryableStatus(requestError.HTTPStatusCode)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError || code == 0
}

package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
)

// Client answers OpenAI-shaped chat completion requests with Gemini, so the
// OpenAI translator can use it as a fallback provider.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type client struct {
	genaiClient *genai.Client
}

func New(genaiClient *genai.Client) Client {
	return &client{genaiClient: genaiClient}
}

type GenaiModel string

const (
	GenaiModelFlash GenaiModel = "gemini-1.5-flash"
	GenaiModelPro   GenaiModel = "gemini-1.5-pro"
)

func (c *client) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := validateModel(request.Model); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	history, parts, err := toGenaiConversation(request.Messages)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	genaiModel := c.genaiClient.GenerativeModel(request.Model)
	genaiModel.SetTemperature(request.Temperature)

	chatSession := genaiModel.StartChat()
	chatSession.History = history
	resp, err := chatSession.SendMessage(ctx, parts...)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	content, err := responseText(resp)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return openai.ChatCompletionResponse{
		Model: request.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: content,
				},
			},
		},
	}, nil
}

// toGenaiConversation splits messages into chat history and the parts of the message to send.
// System messages have no Gemini role here, so they are prepended to the next user message.
func toGenaiConversation(messages []openai.ChatCompletionMessage) ([]*genai.Content, []genai.Part, error) {
	if len(messages) == 0 {
		return nil, nil, errors.New("no messages in request")
	}

	history := []*genai.Content{}
	var system []genai.Part
	for i, message := range messages {
		if message.Role == openai.ChatMessageRoleSystem {
			system = append(system, genai.Text(message.Content))
			continue
		}
		parts := append(system, toGenaiParts(message)...)
		system = nil
		if i == len(messages)-1 {
			return history, parts, nil
		}
		history = append(history, &genai.Content{Parts: parts, Role: toGenaiRole(message.Role)})
	}
	return nil, nil, errors.New("request must end with a user message")
}

func toGenaiParts(message openai.ChatCompletionMessage) []genai.Part {
	var parts []genai.Part
	if message.MultiContent != nil {
		for _, content := range message.MultiContent {
			if content.Type == openai.ChatMessagePartTypeText {
				parts = append(parts, genai.Text(content.Text))
			}
		}
	} else if message.Content != "" {
		parts = append(parts, genai.Text(message.Content))
	}
	return parts
}

func toGenaiRole(role string) string {
	switch role {
	case openai.ChatMessageRoleAssistant:
		return "model"
	default:
		return "user"
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from model")
	}
	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if builder.Len() == 0 {
		return "", fmt.Errorf("no text in response, finish reason %v", resp.Candidates[0].FinishReason)
	}
	return builder.String(), nil
}

func validateModel(model string) error {
	switch GenaiModel(model) {
	case GenaiModelFlash, GenaiModelPro:
		return nil
	default:
		return fmt.Errorf("invalid model %q", model)
	}
}

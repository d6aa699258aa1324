package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	log "github.com/sirupsen/logrus"

	"github.com/visionex-project/pdftrans/pkg/mapping"
)

const (
	DEFAULT_MODEL    = "gemini-1.5-pro"
	DEFAULT_LOCATION = "us-central1"
)

// Phrases that mark a refusal rather than a translation.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot provide",
	"as a large language model",
}

// Translator translates text with a Gemini model served by Vertex AI.
type Translator struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, projectID string, location string, model string) (*Translator, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a vertex client")
	}
	if location == "" {
		location = DEFAULT_LOCATION
	}
	if model == "" {
		model = DEFAULT_MODEL
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Translator{client: client, model: model}, nil
}

func (t *Translator) Close() error {
	return t.client.Close()
}

func (t *Translator) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	// Models carry the system instruction, so each call configures its own.
	model := t.client.GenerativeModel(t.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(mapping.Instructions(targetLanguage))},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.3),
	}

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return extractText(resp)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from vertex")
	}

	var builder strings.Builder
	textParts := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
			textParts++
		}
	}
	if textParts > 1 {
		log.Printf("Vertex response contained %d text parts; they have been concatenated", textParts)
	}

	content := strings.TrimSpace(builder.String())
	if content == "" {
		return "", fmt.Errorf("no text in vertex response")
	}
	lower := strings.ToLower(content)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return "", fmt.Errorf("vertex response indicates refusal: %q", content)
		}
	}
	return content, nil
}

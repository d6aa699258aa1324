package vertex

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestExtractText(t *testing.T) {
	text, err := extractText(response(genai.Text("  첫 번째 "), genai.Text("문단\n")))
	require.NoError(t, err)
	assert.Equal(t, "첫 번째 문단", text)
}

func TestExtractText_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"no content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"blank", response(genai.Text("   "))},
		{"refusal", response(genai.Text("I am unable to translate this document."))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractText(tt.resp)
			assert.Error(t, err)
		})
	}
}

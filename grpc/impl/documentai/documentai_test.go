package documentai

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionex-project/pdftrans/pkg/extract"
)

type fakeClient struct {
	request  *documentaipb.ProcessRequest
	response *documentaipb.ProcessResponse
	err      error
}

func (f *fakeClient) ProcessDocument(_ context.Context, req *documentaipb.ProcessRequest, _ ...gax.CallOption) (*documentaipb.ProcessResponse, error) {
	f.request = req
	return f.response, f.err
}

func token(start, end int64, left, top, right, bottom int32, confidence float32, fontSize float64) *documentaipb.Document_Page_Token {
	return &documentaipb.Document_Page_Token{
		Layout: &documentaipb.Document_Page_Layout{
			TextAnchor: &documentaipb.Document_TextAnchor{
				TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
			},
			BoundingPoly: &documentaipb.BoundingPoly{Vertices: []*documentaipb.Vertex{
				{X: left, Y: top}, {X: right, Y: top}, {X: right, Y: bottom}, {X: left, Y: bottom},
			}},
			Confidence: confidence,
		},
		StyleInfo: &documentaipb.Document_Page_Token_StyleInfo{PixelFontSize: fontSize},
	}
}

func TestRecognize(t *testing.T) {
	client := &fakeClient{response: &documentaipb.ProcessResponse{Document: &documentaipb.Document{
		Text: "Grüße aus\nBerlin\n",
		Pages: []*documentaipb.Document_Page{{
			Tokens: []*documentaipb.Document_Page_Token{
				token(0, 6, 10, 10, 80, 30, 0.9, 20),
				token(6, 10, 90, 10, 130, 30, 0.75, 20),
				token(10, 17, 10, 40, 80, 60, 1, 18),
			},
		}},
	}}}
	processor := Processor{ProjectID: "project", Location: "us", ProcessorID: "processor"}

	words, err := NewRecognizer(client, processor).Recognize(context.Background(), []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "projects/project/locations/us/processors/processor", client.request.GetName())
	assert.Equal(t, "image/png", client.request.GetRawDocument().GetMimeType())

	assert.Equal(t, []extract.Word{
		{Text: "Grüße", Left: 10, Top: 10, Right: 80, Bottom: 30, Confidence: float64(float32(0.9)) * 100, FontSize: 20},
		{Text: "aus", Left: 90, Top: 10, Right: 130, Bottom: 30, Confidence: 75, FontSize: 20},
		{Text: "Berlin", Left: 10, Top: 40, Right: 80, Bottom: 60, Confidence: 100, FontSize: 18},
	}, words)
}

func TestRecognize_Error(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	_, err := NewRecognizer(client, Processor{}).Recognize(context.Background(), []byte("png"))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestDocumentToWords_IgnoresInvalidAnchors(t *testing.T) {
	words := documentToWords(&documentaipb.Document{
		Text:  "abc",
		Pages: []*documentaipb.Document_Page{{Tokens: []*documentaipb.Document_Page_Token{token(2, 9, 0, 0, 1, 1, 1, 0)}}},
	})
	require.Len(t, words, 1)
	assert.Equal(t, "", words[0].Text)
}

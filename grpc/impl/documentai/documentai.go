package documentai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/visionex-project/pdftrans/pkg/extract"
	"github.com/visionex-project/pdftrans/pkg/utils"
)

// Client is an interface for the DocumentProcessorClient.
// Ref: https://pkg.go.dev/cloud.google.com/go/documentai
// This interface is used for mocking the documentai.DocumentProcessorClient in tests.
type Client interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}

type Processor struct {
	// E.g., special-tf-prod
	ProjectID string
	// E.g., us
	Location string
	// E.g., 98dae69a95e1906
	ProcessorID string
}

func (p Processor) Name() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", p.ProjectID, p.Location, p.ProcessorID)
}

// Recognizer runs a Document AI OCR processor over page images.
type Recognizer struct {
	client    Client
	processor Processor
}

func NewRecognizer(client Client, processor Processor) *Recognizer {
	return &Recognizer{client: client, processor: processor}
}

func (r *Recognizer) Recognize(ctx context.Context, byteImage []byte) ([]extract.Word, error) {
	request := &documentaipb.ProcessRequest{
		Name: r.processor.Name(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  byteImage,
				MimeType: "image/png",
			},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				PremiumFeatures: &documentaipb.OcrConfig_PremiumFeatures{
					ComputeStyleInfo: true,
				},
			},
		},
	}
	response, err := r.client.ProcessDocument(ctx, request)
	if err != nil {
		log.Printf("Failed to process document: %v", err)
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return documentToWords(response.GetDocument()), nil
}

// Document structure:
// Document
//
//	└── Pages []Document_Page
//	     └── Tokens []Document_Page_Token
//	          ├── Layout
//	          │    ├── TextAnchor.TextSegments [start, end) into Document.Text
//	          │    ├── BoundingPoly.Vertices
//	          │    └── Confidence
//	          └── StyleInfo.PixelFontSize
func documentToWords(document *documentaipb.Document) []extract.Word {
	text := []rune(document.GetText())
	return utils.FlatMap(document.GetPages(), func(page *documentaipb.Document_Page) []extract.Word {
		return utils.Map(page.GetTokens(), func(token *documentaipb.Document_Page_Token) extract.Word {
			left, top, right, bottom := verticesBox(token.GetLayout().GetBoundingPoly().GetVertices())
			content := strings.Join(utils.Map(token.GetLayout().GetTextAnchor().GetTextSegments(), func(segment *documentaipb.Document_TextAnchor_TextSegment) string {
				start, end := int(segment.GetStartIndex()), int(segment.GetEndIndex())
				if start < 0 || end > len(text) || start >= end {
					return ""
				}
				return string(text[start:end])
			}), "")

			return extract.Word{
				Text:       strings.TrimSpace(content),
				Left:       left,
				Top:        top,
				Right:      right,
				Bottom:     bottom,
				Confidence: float64(token.GetLayout().GetConfidence()) * 100,
				FontSize:   token.GetStyleInfo().GetPixelFontSize(),
			}
		})
	})
}

func verticesBox(vertices []*documentaipb.Vertex) (float64, float64, float64, float64) {
	if len(vertices) == 0 {
		return 0, 0, 0, 0
	}
	left, top := math.MaxFloat64, math.MaxFloat64
	right, bottom := 0.0, 0.0
	for _, vertex := range vertices {
		left = math.Min(left, float64(vertex.GetX()))
		top = math.Min(top, float64(vertex.GetY()))
		right = math.Max(right, float64(vertex.GetX()))
		bottom = math.Max(bottom, float64(vertex.GetY()))
	}
	return left, top, right, bottom
}

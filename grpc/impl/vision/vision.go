package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/visionex-project/pdftrans/pkg/extract"
	"github.com/visionex-project/pdftrans/pkg/utils"
)

// Client is an interface for the vision.ImageAnnotatorClient
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
// This interface is used for mocking the vision.ImageAnnotatorClient in unit tests.
type Client interface {
	DetectDocumentText(ctx context.Context, image *visionpb.Image, imageContext *visionpb.ImageContext, opts ...gax.CallOption) (*visionpb.TextAnnotation, error)
}

// Recognizer runs Cloud Vision document text detection over page images.
type Recognizer struct {
	client Client
}

func NewRecognizer(client Client) *Recognizer {
	return &Recognizer{client: client}
}

func (r *Recognizer) Recognize(ctx context.Context, byteImage []byte) ([]extract.Word, error) {
	img, _, err := image.Decode(bytes.NewReader(byteImage))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}
	annotation, err := r.ocrResult(ctx, byteImage, img)
	if err != nil {
		return nil, err
	}
	return textAnnotationToWords(annotation), nil
}

// Splits tall pages at wide vertical gaps and runs OCR per segment,
// as detection on very tall images can miss text. Results are merged back into a single annotation.
func (r *Recognizer) ocrResult(ctx context.Context, byteImage []byte, img image.Image) (*visionpb.TextAnnotation, error) {
	textAnnotation, err := r.client.DetectDocumentText(ctx, &visionpb.Image{Content: byteImage}, nil)
	if err != nil {
		log.Printf("Failed to detect text: %v", err)
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}

	points := splitPoints(textAnnotation, img.Bounds().Dy())
	// [0, imageHeight] means the entire image is processed in one go.
	if len(points) <= 2 {
		return textAnnotation, nil
	}

	subImager, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return textAnnotation, nil
	}

	textAnnotations := make([]*visionpb.TextAnnotation, len(points)-1)
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < len(points)-1; i++ {
		start, end := points[i], points[i+1]
		group.Go(func() error {
			subImg := subImager.SubImage(image.Rect(img.Bounds().Min.X, start, img.Bounds().Max.X, end))
			var buf bytes.Buffer
			if err := png.Encode(&buf, subImg); err != nil {
				return err
			}
			subTextAnnotation, err := r.client.DetectDocumentText(groupCtx, &visionpb.Image{Content: buf.Bytes()}, nil)
			if err != nil {
				return err
			}
			adjustVerticalPositions(subTextAnnotation, int32(start))
			textAnnotations[i] = subTextAnnotation
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		log.Printf("Failed to process segment: %v", err)
		return nil, fmt.Errorf("failed to process segment: %w", err)
	}

	return utils.Reduce(textAnnotations, func(merged *visionpb.TextAnnotation, textAnnotation *visionpb.TextAnnotation) *visionpb.TextAnnotation {
		merged.Pages = append(merged.Pages, textAnnotation.GetPages()...)
		return merged
	}, &visionpb.TextAnnotation{}), nil
}

func textAnnotationToWords(annotation *visionpb.TextAnnotation) []extract.Word {
	blocks := utils.FlatMap(annotation.GetPages(), func(page *visionpb.Page) []*visionpb.Block {
		return page.GetBlocks()
	})
	paragraphs := utils.FlatMap(blocks, func(block *visionpb.Block) []*visionpb.Paragraph {
		return block.GetParagraphs()
	})
	words := utils.FlatMap(paragraphs, func(paragraph *visionpb.Paragraph) []*visionpb.Word {
		return paragraph.GetWords()
	})

	return utils.Map(words, func(word *visionpb.Word) extract.Word {
		box := boundingBox(word.GetBoundingBox().GetVertices())
		return extract.Word{
			Text: utils.Reduce(word.GetSymbols(), func(text string, symbol *visionpb.Symbol) string {
				return text + symbol.GetText()
			}, ""),
			Left:       float64(box.left),
			Top:        float64(box.top),
			Right:      float64(box.right),
			Bottom:     float64(box.bottom),
			Confidence: float64(word.GetConfidence()) * 100,
		}
	})
}

type position struct {
	top    int32
	left   int32
	bottom int32
	right  int32
}

func boundingBox(vertices []*visionpb.Vertex) position {
	return utils.Reduce(vertices, func(currentPosition position, vertex *visionpb.Vertex) position {
		return position{
			top:    min(currentPosition.top, vertex.GetY()),
			left:   min(currentPosition.left, vertex.GetX()),
			bottom: max(currentPosition.bottom, vertex.GetY()),
			right:  max(currentPosition.right, vertex.GetX()),
		}
	}, position{
		top:    math.MaxInt32,
		left:   math.MaxInt32,
		bottom: 0,
		right:  0,
	})
}

// Gap in pixels between paragraphs at which a page is split for a second OCR pass.
const MAX_GAP = 200

func splitPoints(textAnnotation *visionpb.TextAnnotation, imageHeight int) []int {
	blocks := utils.FlatMap(textAnnotation.GetPages(), func(page *visionpb.Page) []*visionpb.Block {
		return page.GetBlocks()
	})
	paragraphs := utils.FlatMap(blocks, func(block *visionpb.Block) []*visionpb.Paragraph {
		return block.GetParagraphs()
	})

	currentHeight := 0
	points := utils.Reduce(paragraphs, func(points []int, paragraph *visionpb.Paragraph) []int {
		bottom := utils.Reduce(paragraph.GetBoundingBox().GetVertices(), func(bottom int, vertex *visionpb.Vertex) int {
			return max(bottom, int(vertex.GetY()))
		}, 0)
		if bottom-currentHeight > MAX_GAP && currentHeight > points[len(points)-1] {
			points = append(points, currentHeight)
		}
		currentHeight = max(currentHeight, bottom)
		return points
	}, []int{0})

	if points[len(points)-1] != imageHeight {
		points = append(points, imageHeight)
	}
	return points
}

func adjustVerticalPositions(textAnnotation *visionpb.TextAnnotation, offset int32) {
	shift := func(poly *visionpb.BoundingPoly) {
		for _, vertex := range poly.GetVertices() {
			vertex.Y += offset
		}
	}
	blocks := utils.FlatMap(textAnnotation.GetPages(), func(page *visionpb.Page) []*visionpb.Block {
		return page.GetBlocks()
	})
	paragraphs := utils.FlatMap(blocks, func(block *visionpb.Block) []*visionpb.Paragraph {
		shift(block.GetBoundingBox())
		return block.GetParagraphs()
	})
	words := utils.FlatMap(paragraphs, func(paragraph *visionpb.Paragraph) []*visionpb.Word {
		shift(paragraph.GetBoundingBox())
		return paragraph.GetWords()
	})
	symbols := utils.FlatMap(words, func(word *visionpb.Word) []*visionpb.Symbol {
		shift(word.GetBoundingBox())
		return word.GetSymbols()
	})
	for _, symbol := range symbols {
		shift(symbol.GetBoundingBox())
	}
}

package impl

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/visionex-project/pdftrans/grpc/pb"
	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/mapping"
)

// ReviewTranslation compares the document text with the displayed translation paragraph by paragraph.
func (s *server) ReviewTranslation(ctx context.Context, request *pb.ReviewTranslationRequest) (*pb.ReviewTranslationResponse, error) {
	if request.DocumentId == "" {
		return nil, status.Error(codes.InvalidArgument, "document_id is required")
	}
	document, err := s.records.Load(ctx, request.DocumentId)
	if err != nil {
		return nil, toStatus(err)
	}
	review := mapping.ReviewTranslation(mapping.DocumentText(document.Layout), displayedText(document.Layout))
	return &pb.ReviewTranslationResponse{Review: review}, nil
}

func displayedText(l *layout.Layout) string {
	paragraphs := []string{}
	for _, page := range l.Pages {
		for _, block := range page.Blocks {
			if text := strings.TrimSpace(block.DisplayText()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}
	return strings.Join(paragraphs, mapping.PARAGRAPH_SEPARATOR)
}

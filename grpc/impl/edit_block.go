package impl

import (
	"context"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/visionex-project/pdftrans/grpc/pb"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
	"github.com/visionex-project/pdftrans/pkg/render"
)

// EditBlock stores a user override of one block's translation and re-renders its page.
func (s *server) EditBlock(ctx context.Context, request *pb.EditBlockRequest) (*pb.EditBlockResponse, error) {
	if request.DocumentId == "" {
		return nil, status.Error(codes.InvalidArgument, "document_id is required")
	}
	if request.Page < 0 || request.Block < 0 {
		return nil, status.Error(codes.InvalidArgument, "page and block must not be negative")
	}
	logger := log.WithFields(log.Fields{"document": request.DocumentId, "page": request.Page, "block": request.Block})

	document, err := s.records.Load(ctx, request.DocumentId)
	if err != nil {
		return nil, toStatus(err)
	}
	l := document.Layout
	if request.Page >= len(l.Pages) {
		return nil, toStatus(pipeline.NotFound("page %d of document %s", request.Page, document.ID))
	}
	if request.Block >= len(l.Pages[request.Page].Blocks) {
		return nil, toStatus(pipeline.NotFound("block %d on page %d of document %s", request.Block, request.Page, document.ID))
	}
	l.Pages[request.Page].Blocks[request.Block].EditedText = request.Text

	source, err := s.storage.Client.ReadBytes(ctx, s.storage.UploadBucket, objectName(document.ID, SOURCE_OBJECT))
	if err != nil {
		logger.Printf("Failed to read source document: %v", err)
		return nil, toStatus(err)
	}
	path, cleanup, err := writeTempPDF(source)
	if err != nil {
		return nil, toStatus(err)
	}
	defer cleanup()

	pages, reports, err := s.pipeline.Rerender(ctx, path, l, document.TargetLanguage, []int{request.Page})
	if err != nil {
		logger.Printf("Failed to render page: %v", err)
		return nil, toStatus(err)
	}

	name := pageObject(request.Page)
	if err := s.storage.Client.SaveBytes(ctx, s.storage.RenderBucket, objectName(document.ID, name), pages[0]); err != nil {
		logger.Printf("Failed to save page: %v", err)
		return nil, toStatus(err)
	}
	if err := s.records.SaveEdit(ctx, document.ID, request.Page, request.Block, request.Text); err != nil {
		logger.Printf("Failed to save edit: %v", err)
		return nil, toStatus(err)
	}
	if document.PDF != "" {
		s.refreshPDF(ctx, document.ID, document.Pages, request.Page, pages[0])
	}

	return &pb.EditBlockResponse{
		Block:   l.Pages[request.Page].Blocks[request.Block],
		PageUrl: s.artifactURL(document.ID, name),
		Report:  reportOf(reports),
	}, nil
}

// refreshPDF rebuilds the assembled document with a replaced page. Pages that never
// rendered are left out. Failures leave the previous document in place.
func (s *server) refreshPDF(ctx context.Context, documentID string, names []string, replaced int, page []byte) {
	pages := make([][]byte, len(names))
	for i, name := range names {
		if i == replaced {
			pages[i] = page
			continue
		}
		if name == "" {
			continue
		}
		data, err := s.storage.Client.ReadBytes(ctx, s.storage.RenderBucket, objectName(documentID, name))
		if err != nil {
			log.WithField("document", documentID).Printf("Failed to read page %d: %v", i, err)
			return
		}
		pages[i] = data
	}
	document, err := pipeline.AssemblePDF(pages)
	if err != nil {
		log.WithField("document", documentID).Printf("Failed to assemble pdf: %v", err)
		return
	}
	if err := s.storage.Client.SaveBytes(ctx, s.storage.RenderBucket, objectName(documentID, TRANSLATED_OBJECT), document); err != nil {
		log.WithField("document", documentID).Printf("Failed to save pdf: %v", err)
	}
}

func reportOf(reports []render.PageReport) render.PageReport {
	if len(reports) == 0 {
		return render.PageReport{}
	}
	return reports[0]
}

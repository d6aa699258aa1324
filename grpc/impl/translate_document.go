package impl

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/visionex-project/pdftrans/grpc/impl/record"
	pb "github.com/visionex-project/pdftrans/grpc/pb"
	"github.com/visionex-project/pdftrans/pkg/mapping"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
)

var pdfMagic = []byte("%PDF-")

func (s *server) TranslateDocument(ctx context.Context, request *pb.TranslateDocumentRequest) (*pb.TranslateDocumentResponse, error) {
	if len(request.Pdf) == 0 {
		return nil, status.Error(codes.InvalidArgument, "pdf is required")
	}
	if !bytes.HasPrefix(bytes.TrimLeft(request.Pdf, "\x00\t\r\n "), pdfMagic) {
		return nil, status.Error(codes.InvalidArgument, "pdf is not a PDF document")
	}
	mode := s.defaults.Mode
	if request.Mode != "" {
		parsed, err := mapping.ParseMode(request.Mode)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		mode = parsed
	}
	targetLanguage := strings.TrimSpace(request.TargetLanguage)
	if targetLanguage == "" {
		targetLanguage = s.defaults.TargetLanguage
	}
	if targetLanguage == "" {
		return nil, status.Error(codes.InvalidArgument, "target_language is required")
	}

	documentID := uuid.NewString()
	logger := log.WithFields(log.Fields{"document": documentID, "language": targetLanguage, "mode": mode})

	path, cleanup, err := writeTempPDF(request.Pdf)
	if err != nil {
		return nil, toStatus(err)
	}
	defer cleanup()

	result, err := s.pipeline.Run(ctx, pipeline.Request{
		PDFPath:        path,
		TargetLanguage: targetLanguage,
		Mode:           mode,
	})
	if err != nil {
		logger.Printf("Failed to translate document: %v", err)
		return nil, toStatus(err)
	}

	// Nothing is persisted unless the whole run succeeded.
	document := &record.Document{
		ID:             documentID,
		TargetLanguage: targetLanguage,
		Mode:           string(mode),
		Layout:         result.Layout,
		Report:         result.Report,
		Pages:          make([]string, len(result.Pages)),
	}
	// Pages that failed to render keep an empty name and get no URL.
	for i, page := range result.Pages {
		if len(page) > 0 {
			document.Pages[i] = pageObject(i)
		}
	}
	if len(result.PDF) > 0 {
		document.PDF = TRANSLATED_OBJECT
	}
	if err := s.saveArtifacts(ctx, document, request.Pdf, result); err != nil {
		logger.Printf("Failed to save artifacts: %v", err)
		return nil, toStatus(err)
	}
	if err := s.records.Save(ctx, document); err != nil {
		logger.Printf("Failed to save document: %v", err)
		return nil, toStatus(err)
	}
	logger.Printf("Translated %d pages, %d blocks", len(result.Pages), result.Layout.BlockCount())
	if failed := result.Report.FailedPages; len(failed) > 0 {
		logger.Warnf("Pages %v failed to render", failed)
	}

	return &pb.TranslateDocumentResponse{
		DocumentId: documentID,
		Layout:     result.Layout,
		Report:     result.Report,
		PageUrls:   s.artifactURLs(documentID, document.Pages),
		PdfUrl:     s.artifactURL(documentID, document.PDF),
	}, nil
}

func (s *server) saveArtifacts(ctx context.Context, document *record.Document, source []byte, result *pipeline.Result) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(pipeline.DEFAULT_PAGE_CONCURRENCY)
	group.Go(func() error {
		return s.storage.Client.SaveBytes(groupCtx, s.storage.UploadBucket, objectName(document.ID, SOURCE_OBJECT), source)
	})
	for i, page := range result.Pages {
		if document.Pages[i] == "" {
			continue
		}
		group.Go(func() error {
			return s.storage.Client.SaveBytes(groupCtx, s.storage.RenderBucket, objectName(document.ID, document.Pages[i]), page)
		})
	}
	if document.PDF != "" {
		group.Go(func() error {
			return s.storage.Client.SaveBytes(groupCtx, s.storage.RenderBucket, objectName(document.ID, document.PDF), result.PDF)
		})
	}
	return group.Wait()
}

func (s *server) GetLayout(ctx context.Context, request *pb.GetLayoutRequest) (*pb.GetLayoutResponse, error) {
	if request.DocumentId == "" {
		return nil, status.Error(codes.InvalidArgument, "document_id is required")
	}
	document, err := s.records.Load(ctx, request.DocumentId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.GetLayoutResponse{
		DocumentId:     document.ID,
		TargetLanguage: document.TargetLanguage,
		Layout:         document.Layout,
		Report:         document.Report,
		PageUrls:       s.artifactURLs(document.ID, document.Pages),
		PdfUrl:         s.artifactURL(document.ID, document.PDF),
	}, nil
}

// writeTempPDF stores the upload where the PDF readers and pdftoppm can open it.
func writeTempPDF(data []byte) (string, func(), error) {
	file, err := os.CreateTemp("", "pdftrans-*.pdf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(file.Name()) }
	if _, err := file.Write(data); err != nil {
		file.Close()
		cleanup()
		return "", nil, err
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return file.Name(), cleanup, nil
}

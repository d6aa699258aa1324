package impl

import (
	"context"
	"fmt"

	"github.com/visionex-project/pdftrans/grpc/impl/record"
	"github.com/visionex-project/pdftrans/grpc/impl/storage"
	pb "github.com/visionex-project/pdftrans/grpc/pb"
	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/mapping"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
	"github.com/visionex-project/pdftrans/pkg/render"
)

// Pipeline is the document translation pipeline the server drives.
type Pipeline interface {
	Run(ctx context.Context, request pipeline.Request) (*pipeline.Result, error)
	Rerender(ctx context.Context, pdfPath string, l *layout.Layout, targetLanguage string, pages []int) ([][]byte, []render.PageReport, error)
}

type server struct {
	pipeline Pipeline

	// Storage is a collection of storage related configurations.
	storage Storage

	// Translated layouts and user edits.
	records record.Store

	defaults Defaults
}

type Storage struct {
	// A client for Google Cloud Storage or the local filesystem.
	Client storage.Client

	// The bucket name for uploaded source documents.
	UploadBucket string

	// The bucket name for rendered pages and assembled documents.
	RenderBucket string
}

type Defaults struct {
	// Used when a request leaves the target language empty. E.g., ko
	TargetLanguage string
	// Used when a request leaves the mode empty.
	Mode mapping.Mode
	// Prefix of artifact URLs. E.g., /artifacts
	ArtifactPrefix string
}

func New(
	pipeline Pipeline,
	storage Storage,
	records record.Store,
	defaults Defaults,
) *server {
	if defaults.Mode == "" {
		defaults.Mode = mapping.MODE_WHOLE_TEXT
	}
	if defaults.ArtifactPrefix == "" {
		defaults.ArtifactPrefix = DEFAULT_ARTIFACT_PREFIX
	}
	return &server{
		pipeline: pipeline,
		storage:  storage,
		records:  records,
		defaults: defaults,
	}
}

var _ pb.PdfTranslatorServer = (*server)(nil)

const DEFAULT_ARTIFACT_PREFIX = "/artifacts"

const (
	SOURCE_OBJECT     = "source.pdf"
	TRANSLATED_OBJECT = "translated.pdf"
)

func pageObject(page int) string {
	return fmt.Sprintf("page-%04d.png", page)
}

func objectName(documentID string, name string) string {
	return documentID + "/" + name
}

func (s *server) artifactURL(documentID string, name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", s.defaults.ArtifactPrefix, documentID, name)
}

func (s *server) artifactURLs(documentID string, names []string) []string {
	urls := make([]string, len(names))
	for i, name := range names {
		urls[i] = s.artifactURL(documentID, name)
	}
	return urls
}

// ReadArtifact returns a rendered page or document of a translated document.
func (s *server) ReadArtifact(ctx context.Context, documentID string, name string) ([]byte, error) {
	return s.storage.Client.ReadBytes(ctx, s.storage.RenderBucket, objectName(documentID, name))
}

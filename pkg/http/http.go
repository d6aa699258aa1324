package http

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/visionex-project/pdftrans/pkg/pipeline"
)

// HandleFileServer returns a handler that serves static files
func HandleFileServer(fs http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType := contentTypeByExtension(r.URL.Path); contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		fs.ServeHTTP(w, r)
	}
}

// ArtifactReader reads the rendered artifacts of a translated document.
type ArtifactReader interface {
	ReadArtifact(ctx context.Context, documentID string, name string) ([]byte, error)
}

// HandleArtifacts serves GET /artifacts/{id}/{name}. The route must declare both wildcards.
func HandleArtifacts(reader ArtifactReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID, name := r.PathValue("id"), r.PathValue("name")
		if !validSegment(documentID) || !validSegment(name) {
			http.Error(w, "invalid artifact path", http.StatusBadRequest)
			return
		}

		data, err := reader.ReadArtifact(r.Context(), documentID, name)
		if errors.Is(err, pipeline.ErrResourceNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.WithFields(log.Fields{"document": documentID, "artifact": name}).Printf("Failed to read artifact: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		contentType := contentTypeByExtension(name)
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	}
}

func validSegment(segment string) bool {
	return segment != "" && segment != "." && !strings.Contains(segment, "..") && !strings.ContainsAny(segment, `/\`)
}

func contentTypeByExtension(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".html":
		return "text/html"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	}
	return ""
}

package record

import (
	"context"
	"sync"
	"time"

	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
)

// Document is the persisted state of one translation run.
type Document struct {
	ID             string
	TargetLanguage string
	Mode           string
	Layout         *layout.Layout
	Report         pipeline.Report
	// Rendered page artifact names, in page order.
	Pages     []string
	PDF       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists translated layouts and user edits.
// Load and SaveEdit fail with pipeline.ErrResourceNotFound for an unknown document.
type Store interface {
	Save(ctx context.Context, document *Document) error
	Load(ctx context.Context, id string) (*Document, error)
	// SaveEdit sets the edited override of one block. An empty text clears it.
	SaveEdit(ctx context.Context, id string, page int, block int, text string) error
}

// applyEdit sets the edited text of a block, validating its coordinates.
func applyEdit(l *layout.Layout, page int, block int, text string) error {
	if page < 0 || page >= len(l.Pages) {
		return pipeline.NotFound("page %d", page)
	}
	if block < 0 || block >= len(l.Pages[page].Blocks) {
		return pipeline.NotFound("block %d on page %d", block, page)
	}
	l.Pages[page].Blocks[block].EditedText = text
	return nil
}

type memoryStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewMemory returns a Store that keeps documents in process memory.
func NewMemory() Store {
	return &memoryStore{documents: map[string]*Document{}}
}

func (s *memoryStore) Save(_ context.Context, document *Document) error {
	stored := *document
	stored.Layout = document.Layout.Clone()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[document.ID] = &stored
	return nil
}

func (s *memoryStore) Load(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	document, ok := s.documents[id]
	if !ok {
		return nil, pipeline.NotFound("document %s", id)
	}
	loaded := *document
	loaded.Layout = document.Layout.Clone()
	return &loaded, nil
}

func (s *memoryStore) SaveEdit(_ context.Context, id string, page int, block int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.documents[id]
	if !ok {
		return pipeline.NotFound("document %s", id)
	}
	if err := applyEdit(document.Layout, page, block, text); err != nil {
		return err
	}
	document.UpdatedAt = time.Now().UTC()
	return nil
}

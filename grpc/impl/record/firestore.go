package record

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
)

const DOCUMENTS_COLLECTION = "documents"

// firestoreDocument is the stored shape of a Document. Firestore rejects nested arrays,
// so layout and report are kept as JSON strings.
type firestoreDocument struct {
	TargetLanguage string    `firestore:"targetLanguage"`
	Mode           string    `firestore:"mode"`
	Layout         string    `firestore:"layout"`
	Report         string    `firestore:"report"`
	Pages          []string  `firestore:"pages"`
	PDF            string    `firestore:"pdf,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

type firestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestore(client *firestore.Client) Store {
	return &firestoreStore{client: client, collection: DOCUMENTS_COLLECTION}
}

func (s *firestoreStore) Save(ctx context.Context, document *Document) error {
	stored, err := toFirestore(document)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	if _, err := s.client.Collection(s.collection).Doc(document.ID).Set(ctx, stored); err != nil {
		return fmt.Errorf("failed to save document %s: %w", document.ID, err)
	}
	return nil
}

func (s *firestoreStore) Load(ctx context.Context, id string) (*Document, error) {
	snapshot, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, pipeline.NotFound("document %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	var stored firestoreDocument
	if err := snapshot.DataTo(&stored); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return fromFirestore(id, &stored)
}

func (s *firestoreStore) SaveEdit(ctx context.Context, id string, page int, block int, text string) error {
	ref := s.client.Collection(s.collection).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return pipeline.NotFound("document %s", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load document %s: %w", id, err)
		}
		var stored firestoreDocument
		if err := snapshot.DataTo(&stored); err != nil {
			return fmt.Errorf("failed to decode document %s: %w", id, err)
		}

		var l layout.Layout
		if err := json.Unmarshal([]byte(stored.Layout), &l); err != nil {
			return fmt.Errorf("failed to decode layout of %s: %w", id, err)
		}
		if err := applyEdit(&l, page, block, text); err != nil {
			return err
		}
		encoded, err := json.Marshal(&l)
		if err != nil {
			return fmt.Errorf("failed to encode layout of %s: %w", id, err)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "layout", Value: string(encoded)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
}

func toFirestore(document *Document) (*firestoreDocument, error) {
	encodedLayout, err := json.Marshal(document.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	encodedReport, err := json.Marshal(document.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return &firestoreDocument{
		TargetLanguage: document.TargetLanguage,
		Mode:           document.Mode,
		Layout:         string(encodedLayout),
		Report:         string(encodedReport),
		Pages:          document.Pages,
		PDF:            document.PDF,
		CreatedAt:      document.CreatedAt,
		UpdatedAt:      document.UpdatedAt,
	}, nil
}

func fromFirestore(id string, stored *firestoreDocument) (*Document, error) {
	document := &Document{
		ID:             id,
		TargetLanguage: stored.TargetLanguage,
		Mode:           stored.Mode,
		Layout:         &layout.Layout{},
		Pages:          stored.Pages,
		PDF:            stored.PDF,
		CreatedAt:      stored.CreatedAt,
		UpdatedAt:      stored.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(stored.Layout), document.Layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout of %s: %w", id, err)
	}
	if stored.Report != "" {
		if err := json.Unmarshal([]byte(stored.Report), &document.Report); err != nil {
			return nil, fmt.Errorf("failed to decode report of %s: %w", id, err)
		}
	}
	return document, nil
}

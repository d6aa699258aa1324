package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/mapping"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
	"github.com/visionex-project/pdftrans/pkg/render"
)

func sampleDocument() *Document {
	return &Document{
		ID:             "doc-1",
		TargetLanguage: "ko",
		Mode:           "whole_text",
		Layout: &layout.Layout{Pages: []layout.Page{{
			Width:  612,
			Height: 792,
			Blocks: []layout.Block{
				{BBox: layout.BBox{X0: 72, Y0: 72, X1: 540, Y1: 100}, Text: "Introduction", TranslatedText: "소개", FontSize: 14},
				{BBox: layout.BBox{X0: 72, Y0: 120, X1: 540, Y1: 200}, Text: "Body", TranslatedText: "본문", FontSize: 10},
			},
		}}},
		Report: pipeline.Report{
			Pages:         []render.PageReport{{Page: 0, Blocks: 2, Rendered: 2}},
			FallbackPages: []int{},
			Translation:   mapping.Stats{Blocks: 2, Exact: 2},
		},
		Pages: []string{"page-0000.png"},
		PDF:   "translated.pdf",
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	document := sampleDocument()
	require.NoError(t, store.Save(ctx, document))

	// Mutating the caller's copy after saving does not leak into the store.
	document.Layout.Pages[0].Blocks[0].TranslatedText = "changed"

	loaded, err := store.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "소개", loaded.Layout.Pages[0].Blocks[0].TranslatedText)
	assert.Equal(t, "ko", loaded.TargetLanguage)
	assert.Equal(t, []string{"page-0000.png"}, loaded.Pages)
	assert.False(t, loaded.CreatedAt.IsZero())

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, pipeline.ErrResourceNotFound)
}

func TestMemoryStore_SaveEdit(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Save(ctx, sampleDocument()))

	require.NoError(t, store.SaveEdit(ctx, "doc-1", 0, 1, "수정된 본문"))
	loaded, err := store.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "수정된 본문", loaded.Layout.Pages[0].Blocks[1].DisplayText())
	assert.Equal(t, "본문", loaded.Layout.Pages[0].Blocks[1].TranslatedText)

	require.NoError(t, store.SaveEdit(ctx, "doc-1", 0, 1, ""))
	loaded, err = store.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "본문", loaded.Layout.Pages[0].Blocks[1].DisplayText())

	assert.ErrorIs(t, store.SaveEdit(ctx, "doc-1", 1, 0, "x"), pipeline.ErrResourceNotFound)
	assert.ErrorIs(t, store.SaveEdit(ctx, "doc-1", 0, 5, "x"), pipeline.ErrResourceNotFound)
	assert.ErrorIs(t, store.SaveEdit(ctx, "doc-9", 0, 0, "x"), pipeline.ErrResourceNotFound)
}

func TestFirestoreConversion(t *testing.T) {
	document := sampleDocument()
	stored, err := toFirestore(document)
	require.NoError(t, err)
	assert.Contains(t, stored.Layout, `"translated_text":"소개"`)

	restored, err := fromFirestore("doc-1", stored)
	require.NoError(t, err)
	assert.Equal(t, document.Layout, restored.Layout)
	assert.Equal(t, document.Report, restored.Report)
	assert.Equal(t, "doc-1", restored.ID)
}

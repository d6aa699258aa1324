package pb

import (
	"github.com/visionex-project/pdftrans/pkg/layout"
	"github.com/visionex-project/pdftrans/pkg/mapping"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
	"github.com/visionex-project/pdftrans/pkg/render"
)

type TranslateDocumentRequest struct {
	// The PDF file. Encoded as base64 in JSON.
	Pdf []byte `json:"pdf"`
	// Locale code or language name, e.g. "ko" or "Korean".
	TargetLanguage string `json:"target_language"`
	// "whole" or "block". Empty selects the server default.
	Mode string `json:"mode,omitempty"`
}

type TranslateDocumentResponse struct {
	DocumentId string          `json:"document_id"`
	Layout     *layout.Layout  `json:"layout"`
	Report     pipeline.Report `json:"report"`
	// URLs of the rendered pages, in page order.
	PageUrls []string `json:"page_urls"`
	// Empty when PDF assembly is disabled.
	PdfUrl string `json:"pdf_url,omitempty"`
}

type GetLayoutRequest struct {
	DocumentId string `json:"document_id"`
}

type GetLayoutResponse struct {
	DocumentId     string          `json:"document_id"`
	TargetLanguage string          `json:"target_language"`
	Layout         *layout.Layout  `json:"layout"`
	Report         pipeline.Report `json:"report"`
	PageUrls       []string        `json:"page_urls"`
	PdfUrl         string          `json:"pdf_url,omitempty"`
}

type EditBlockRequest struct {
	DocumentId string `json:"document_id"`
	Page       int    `json:"page"`
	Block      int    `json:"block"`
	// Replacement translation. Empty restores the machine translation.
	Text string `json:"text"`
}

type EditBlockResponse struct {
	Block   layout.Block      `json:"block"`
	PageUrl string            `json:"page_url"`
	Report  render.PageReport `json:"report"`
}

type ReviewTranslationRequest struct {
	DocumentId string `json:"document_id"`
}

type ReviewTranslationResponse struct {
	Review mapping.Review `json:"review"`
}

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindExtraction       Kind = "extraction"
	KindLayoutDegenerate Kind = "layout_degenerate"
	KindTranslation      Kind = "translation"
	KindRender           Kind = "render"
	KindNotFound         Kind = "not_found"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrExtractionFailure  = errors.New("extraction failure")
	ErrLayoutDegenerate   = errors.New("layout degenerate")
	ErrTranslationFailure = errors.New("translation failure")
	ErrRenderFailure      = errors.New("render failure")
	ErrResourceNotFound   = errors.New("resource not found")
)

func (k Kind) sentinel() error {
	switch k {
	case KindExtraction:
		return ErrExtractionFailure
	case KindLayoutDegenerate:
		return ErrLayoutDegenerate
	case KindTranslation:
		return ErrTranslationFailure
	case KindRender:
		return ErrRenderFailure
	case KindNotFound:
		return ErrResourceNotFound
	}
	return nil
}

// Error is a pipeline failure with the page and block it happened on.
// Page and Block are -1 when the failure is not tied to one.
type Error struct {
	Kind  Kind
	Page  int
	Block int
	Err   error
}

func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Page: -1, Block: -1, Err: err}
}

func PageError(kind Kind, page int, err error) *Error {
	return &Error{Kind: kind, Page: page, Block: -1, Err: err}
}

// NotFound reports a missing document, page or artifact.
func NotFound(format string, args ...any) *Error {
	return NewError(KindNotFound, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	var b strings.Builder
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		b.WriteString(sentinel.Error())
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Page >= 0 {
		fmt.Fprintf(&b, " on page %d", e.Page)
	}
	if e.Block >= 0 {
		fmt.Fprintf(&b, " block %d", e.Block)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

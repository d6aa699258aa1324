package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Result is the outcome of one fallback strategy.
type Result struct {
	Text string
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil && strings.TrimSpace(r.Text) != ""
}

// Strategy is one way of obtaining a translation.
type Strategy struct {
	Name string
	Run  func(ctx context.Context) Result
}

// FirstSuccess runs strategies in order and returns the first successful result
// together with the name of the strategy that produced it.
// When every strategy fails the returned result carries all errors.
func FirstSuccess(ctx context.Context, strategies []Strategy) (Result, string) {
	var errs []error
	for _, strategy := range strategies {
		result := strategy.Run(ctx)
		if result.OK() {
			return result, strategy.Name
		}
		err := result.Err
		if err == nil {
			err = errors.New("empty translation")
		}
		errs = append(errs, fmt.Errorf("%s: %w", strategy.Name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return Result{Err: errors.Join(errs...)}, ""
}

// translateStrategy wraps a plain translator call.
func translateStrategy(name string, translator Translator, text string, targetLanguage string) Strategy {
	return Strategy{
		Name: name,
		Run: func(ctx context.Context) Result {
			translated, err := translator.Translate(ctx, text, targetLanguage)
			return Result{Text: strings.TrimSpace(translated), Err: err}
		},
	}
}

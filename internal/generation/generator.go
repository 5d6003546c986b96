// Package generation produces free-form coaching text from a prompt.
package generation

import (
	"context"
	"errors"
)

// Generator returns the model's completion for prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrDisabled      = errors.New("text generation is not configured")
	ErrEmptyResponse = errors.New("generator returned no content")
)

// Disabled fails every call so callers take their fallback path.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrDisabled
}

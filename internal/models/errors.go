package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoSpeech         = errors.New("no speech detected")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrOversizeInput    = errors.New("input exceeds size limit")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")

	// Transient failures at an external service boundary. Retrying later may succeed.
	ErrUpstreamTimeout     = errors.New("upstream service timed out")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// StoreError marks a transient record store failure. Callers may retry the
// whole operation; the store guarantees no partial write was committed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

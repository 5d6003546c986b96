// Package mock provides a scripted transcriber for tests.
package mock

import (
	"context"
	"sync"

	"nena/internal/models"
)

// Call records one Transcribe invocation.
type Call struct {
	Size     int
	MimeType string
}

// Transcriber returns Result or Err, or delegates to Fn when it is set.
type Transcriber struct {
	Result *models.Transcript
	Err    error
	Fn     func(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error)

	mu    sync.Mutex
	calls []Call
}

func (m *Transcriber) Transcribe(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Size: len(media), MimeType: mimeType})
	m.mu.Unlock()

	if m.Fn != nil {
		return m.Fn(ctx, media, mimeType)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

func (m *Transcriber) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

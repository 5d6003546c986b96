// Package mock provides a scripted generator for tests.
package mock

import (
	"context"
	"sync"
)

// Generator replies with Responses in order, repeating the last one, or
// with Err when it is set.
type Generator struct {
	Responses []string
	Err       error
	Fn        func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	n := len(m.prompts)
	m.mu.Unlock()

	if m.Fn != nil {
		return m.Fn(ctx, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	if n > len(m.Responses) {
		n = len(m.Responses)
	}
	return m.Responses[n-1], nil
}

func (m *Generator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

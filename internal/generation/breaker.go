package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"nena/internal/providers"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type BreakerConfig struct {
	Name string
	// MaxFailures consecutive failures open the breaker. Default 5.
	MaxFailures int
	// ResetTimeout is how long the breaker stays open. Default 30s.
	ResetTimeout time.Duration
	// HalfOpenMax successful probes close the breaker again. Default 1.
	HalfOpenMax int
}

// Breaker is a three-state circuit breaker guarding the upstream model.
// Caller cancellations are not counted as upstream failures.
type Breaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	logger       providers.Logger
	now          func() time.Time

	mu              sync.Mutex
	state           State
	consecutiveFail int
	openedAt        time.Time
	halfOpenCalls   int
	halfOpenOK      int
}

func NewBreaker(cfg BreakerConfig, logger providers.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 1
	}
	return &Breaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		logger:       logger,
		now:          time.Now,
	}
}

func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.halfOpenCalls = 0
		b.halfOpenOK = 0
		b.logger.Infof(providers.TypeWorker, "Circuit %s half-open, probing", b.name)
	case StateHalfOpen:
		if b.halfOpenCalls >= b.halfOpenMax {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
	}
	probing := b.state == StateHalfOpen
	if probing {
		b.halfOpenCalls++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case err == nil:
		b.onSuccess(probing)
	case errors.Is(err, context.Canceled):
		if probing {
			b.halfOpenCalls--
		}
	default:
		b.onFailure(probing)
	}
	return err
}

func (b *Breaker) onFailure(probing bool) {
	if probing {
		b.trip()
		b.logger.Warnf(providers.TypeWorker, "Circuit %s re-opened after failed probe", b.name)
		return
	}
	b.consecutiveFail++
	if b.state == StateClosed && b.consecutiveFail >= b.maxFailures {
		b.trip()
		b.logger.Warnf(providers.TypeWorker, "Circuit %s opened after %d consecutive failures", b.name, b.maxFailures)
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.consecutiveFail = 0
}

func (b *Breaker) onSuccess(probing bool) {
	if !probing {
		b.consecutiveFail = 0
		return
	}
	b.halfOpenOK++
	if b.halfOpenOK >= b.halfOpenMax {
		b.state = StateClosed
		b.consecutiveFail = 0
		b.logger.Infof(providers.TypeWorker, "Circuit %s closed", b.name)
	}
}

// State reports half-open once an open breaker's timeout has elapsed, even
// though the transition happens on the next call.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.resetTimeout {
		return StateHalfOpen
	}
	return b.state
}

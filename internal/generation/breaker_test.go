package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"nena/internal/testutil"

	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("upstream error")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures, halfOpen int) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: maxFailures, ResetTimeout: time.Minute, HalfOpenMax: halfOpen}, &testutil.MockLogger{})
	b.now = clock.Now
	return b, clock
}

func fail() error    { return errUpstream }
func succeed() error { return nil }

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test"}, &testutil.MockLogger{})
	assert.Equal(t, 5, b.maxFailures)
	assert.Equal(t, 30*time.Second, b.resetTimeout)
	assert.Equal(t, 1, b.halfOpenMax)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3, 1)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(fail), errUpstream)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, 1)

	_ = b.Execute(fail)
	_ = b.Execute(fail)
	_ = b.Execute(succeed)
	_ = b.Execute(fail)
	_ = b.Execute(fail)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbeCloses(t *testing.T) {
	b, clock := newTestBreaker(1, 1)

	_ = b.Execute(fail)
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	assert.NoError(t, b.Execute(succeed))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(1, 1)

	_ = b.Execute(fail)
	clock.Advance(time.Minute)

	assert.ErrorIs(t, b.Execute(fail), errUpstream)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(succeed), ErrCircuitOpen)
}

func TestBreaker_HalfOpenLimitsProbes(t *testing.T) {
	b, clock := newTestBreaker(1, 1)
	_ = b.Execute(fail)
	clock.Advance(time.Minute)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error { <-release; return nil })
	}()

	assert.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.halfOpenCalls == 1
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, b.Execute(succeed), ErrCircuitOpen)
	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_CancellationIsNotAFailure(t *testing.T) {
	b, _ := newTestBreaker(1, 1)

	err := b.Execute(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

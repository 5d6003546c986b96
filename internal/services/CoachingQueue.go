package services

import (
	"context"
	"sync"
	"time"

	"nena/internal/providers"
	"nena/internal/store"
	"nena/internal/structures"

	"go.uber.org/atomic"
)

type CoachingQueueInterface interface {
	Start()
	// Submit enqueues a coaching refresh for userID without blocking. It
	// reports false when the queue is full or stopped.
	Submit(userID string) bool
	// Stop rejects new work, drains what is queued and waits for workers.
	Stop()
}

// CoachingQueue composes coaching insights off the request path and stores
// the result as the user's latest insight.
type CoachingQueue struct {
	coach   CoachServiceInterface
	store   store.RecordStore
	cache   providers.CacheProviderInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	workers int
	timeout time.Duration

	tasks   chan string
	mu      sync.RWMutex
	started atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup
}

func (q *CoachingQueue) Start() {
	if !q.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.logger.Infof(providers.TypeWorker, "Coaching queue started with %d workers", q.workers)
}

func (q *CoachingQueue) Submit(userID string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed.Load() {
		return false
	}
	select {
	case q.tasks <- userID:
		q.metrics.SetCoachingQueueDepth(len(q.tasks))
		return true
	default:
		q.logger.Warnf(providers.TypeWorker, "Coaching queue full, dropped refresh for user %s", userID)
		return false
	}
}

func (q *CoachingQueue) worker() {
	defer q.wg.Done()
	for userID := range q.tasks {
		q.metrics.SetCoachingQueueDepth(len(q.tasks))
		q.process(userID)
	}
}

func (q *CoachingQueue) process(userID string) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	ins, err := q.coach.GenerateFeedback(ctx, userID)
	if err != nil {
		q.logger.Errorf(providers.TypeWorker, "Coaching refresh for user %s failed: %v", userID, err)
		return
	}
	if err := q.store.SaveCoachingInsight(ctx, ins); err != nil {
		q.logger.Errorf(providers.TypeWorker, "Store coaching insight for user %s: %v", userID, err)
		return
	}
	InvalidateUser(q.cache, userID)
	q.logger.Debugf(providers.TypeWorker, "Coaching insight (%s) stored for user %s", ins.Source, userID)
}

func (q *CoachingQueue) Stop() {
	q.mu.Lock()
	if q.closed.Swap(true) {
		q.mu.Unlock()
		return
	}
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.metrics.SetCoachingQueueDepth(0)
	q.logger.Infof(providers.TypeWorker, "Coaching queue stopped")
}

func NewCoachingQueue(conf *structures.Config, coach CoachServiceInterface, rs store.RecordStore, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) CoachingQueueInterface {
	workers := max(conf.Coaching.Workers, 1)
	size := max(conf.Coaching.QueueSize, 1)
	return &CoachingQueue{
		coach:   coach,
		store:   rs,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		workers: workers,
		timeout: conf.Coaching.Timeout,
		tasks:   make(chan string, size),
	}
}

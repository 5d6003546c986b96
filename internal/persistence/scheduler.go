package persistence

import (
	"context"
	"sync"
	"time"

	"nena/internal/providers"
	"nena/internal/structures"

	"github.com/roylee0704/gron"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// Reconciler rebuilds stored analytics from the recording history.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// Scheduler runs the periodic jobs: snapshotting the in-memory store and
// reconciling analytics. fileManager is nil when the store persists on its
// own, in which case only reconciliation is scheduled.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	reconciler  Reconciler
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) snapshotEnabled() bool {
	return s.fileManager != nil && s.config.Persistence.FilePath != ""
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if s.snapshotEnabled() && s.config.Persistence.SaveInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
			if err := s.Persist(); err == nil {
				s.logger.Debugf(providers.TypeWorker, "Persisted snapshot to %s", s.config.Persistence.FilePath)
			}
		})
	}

	if s.reconciler != nil && s.config.Reconcile.Interval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Reconcile.Interval), s.reconcile)
	}

	s.cron.Start()
}

func (s *Scheduler) reconcile() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	s.logger.Infof(providers.TypeWorker, "Reconciling analytics...")
	n, err := s.reconciler.ReconcileAll(context.Background())
	if err != nil {
		s.logger.Errorf(providers.TypeWorker, "Reconcile failed after %d users: %s", n, err)
		return
	}
	s.metrics.SetUsersTotal(n)
	s.logger.Infof(providers.TypeWorker, "Reconciled %d users in %s", n, time.Since(start))
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if !s.snapshotEnabled() {
		return nil
	}
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	if !s.snapshotEnabled() {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, reconciler Reconciler, fileManager *FileManager, metrics providers.MetricsProviderInterface) SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		reconciler:  reconciler,
		fileManager: fileManager,
	}
}

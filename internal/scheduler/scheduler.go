package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/database"
)

var ErrJobRunning = errors.New("geocoding job already running")

// CoordinateUpdater backfills listing coordinates
type CoordinateUpdater interface {
	UpdateMissingCoordinates(ctx context.Context, geocoder database.LocationGeocoder) (processed int, failed int, err error)
}

// Scheduler runs the coordinate backfill at startup and then periodically
type Scheduler struct {
	store    CoordinateUpdater
	geocoder database.LocationGeocoder
	logger   *logrus.Logger
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler
func NewScheduler(store CoordinateUpdater, geocoder database.LocationGeocoder, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if interval <= 0 {
		interval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	s.logger.Info("Running startup geocoding job")
	s.runJob()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runJob()
		}
	}
}

func (s *Scheduler) runJob() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	s.execute(s.ctx)
}

func (s *Scheduler) execute(ctx context.Context) (int, int, error) {
	processed, failed, err := s.store.UpdateMissingCoordinates(ctx, s.geocoder)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).Error("Geocoding job failed")
		}
		return processed, failed, err
	}

	if processed > 0 || failed > 0 {
		s.logger.WithFields(logrus.Fields{
			"processed": processed,
			"failed":    failed,
		}).Info("Geocoding job completed")
	}
	return processed, failed, nil
}

// RunNow runs the backfill immediately. It fails with ErrJobRunning
// instead of waiting when a run is already in progress.
func (s *Scheduler) RunNow(ctx context.Context) (processed int, failed int, err error) {
	if !s.jobMutex.TryLock() {
		return 0, 0, ErrJobRunning
	}
	defer s.jobMutex.Unlock()
	return s.execute(ctx)
}

// Stop gracefully stops the scheduler, cancelling a run in progress
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

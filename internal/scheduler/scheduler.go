package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-lookup/internal/store"
)

// Dispatcher is the part of the store the scheduler needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, action store.Action)
}

// IntentSource builds the intent run on every tick.
type IntentSource func() store.Intent

// Scheduler periodically refreshes the start-screen cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Dispatcher
	intent    IntentSource
	interval  time.Duration
	logger    *zap.Logger
}

func New(interval time.Duration, st Dispatcher, intent IntentSource, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     st,
		intent:    intent,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs the job once right away and then every interval. A zero
// interval disables the scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("Refresh scheduler disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("Refresh scheduler started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	start := time.Now()
	s.store.Dispatch(ctx, s.intent())
	s.logger.Debug("Refresh job completed", zap.Duration("took", time.Since(start)))
}

// Stop cancels future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

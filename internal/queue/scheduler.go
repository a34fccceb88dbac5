package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"commerce-core/internal/pkg/config"
)

// Scheduler runs the two periodic background jobs: draining coupon queues
// (fast cadence) and recomputing waiting positions plus sweeping expired
// grants (slow cadence). The two loops share no state beyond the service.
type Scheduler struct {
	service *Service
	sweeper GrantSweeper
	cfg     config.QueueConfig
	logger  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(service *Service, sweeper GrantSweeper, cfg config.QueueConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service: service,
		sweeper: sweeper,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.runDrainLoop(ctx)
	go s.runPositionLoop(ctx)
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runDrainLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.service.DrainAll(ctx, s.cfg.DrainBatchSize); err != nil && ctx.Err() == nil {
				s.logger.Error("queue drain tick failed", "error", err.Error())
			}
		}
	}
}

func (s *Scheduler) runPositionLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PositionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.service.RecomputePositions(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("queue position tick failed", "error", err.Error())
			}
			if s.sweeper != nil {
				if _, err := s.sweeper.ExpireGrants(ctx); err != nil && ctx.Err() == nil {
					s.logger.Error("grant expiry tick failed", "error", err.Error())
				}
			}
		}
	}
}

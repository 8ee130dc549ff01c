// Package scheduler drives the time-based auction transitions: opening
// auctions whose start date arrived and closing auctions whose end date
// passed. Both sweeps are idempotent, so overlapping runs and restarts
// are harmless.
package scheduler

import (
	"context"
	"time"

	"auction-management-api/internal/service"

	"github.com/sirupsen/logrus"
)

type Scheduler struct {
	auctionService service.Auction
	interval       time.Duration
	log            *logrus.Logger
}

func New(auctionService service.Auction, interval time.Duration, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		auctionService: auctionService,
		interval:       interval,
		log:            log,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval).Info("auction scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("auction scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if _, err := s.auctionService.ActivateDue(ctx); err != nil {
		s.log.WithError(err).Error("activation sweep failed")
	}

	if _, _, err := s.auctionService.CloseExpired(ctx); err != nil {
		s.log.WithError(err).Error("closing sweep failed")
	}
}

// Package reaper periodically resets files stuck in "processing" (a crashed
// worker never reached a terminal state) back to "error".
package reaper

import (
	"context"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/config"
	"github.com/phantoooomCam/sabanas-server/internal/repository"
	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

// Reaper runs ResetStuckProcessing on a fixed interval.
type Reaper struct {
	repo *repository.Repository
	cfg  config.JobConfig
}

func New(repo *repository.Repository, cfg config.JobConfig) *Reaper {
	return &Reaper{repo: repo, cfg: cfg}
}

// Run blocks, sweeping every ReaperInterval until ctx is canceled. A no-op
// if reaping is disabled in config.
func (r *Reaper) Run(ctx context.Context) {
	if !r.cfg.ReaperEnabled {
		return
	}

	ticker := time.NewTicker(r.cfg.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.repo.ResetStuckProcessing(ctx, r.cfg.ReaperStuckAfter)
	if err != nil {
		logger.WithError(err).Error("reaper sweep failed")
		return
	}
	if n > 0 {
		logger.WithField("reset", n).Warn("reaper reset stuck files to error")
	}
}

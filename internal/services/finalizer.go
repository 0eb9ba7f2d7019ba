package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/talentpad/presale/internal/logger"
)

const finalizerBatch = 10

// LaunchFinalizer settles presales whose window has closed, polling every
// interval until ctx is cancelled.
func LaunchFinalizer(ctx context.Context, wg *sync.WaitGroup, presaleService *Presale, interval time.Duration) {
	defer wg.Done()
	if interval <= 0 {
		interval = time.Minute
	}

	logger.Info("Finalizer started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		finalizeDue(ctx, presaleService)

		select {
		case <-ctx.Done():
			logger.Info("Finalizer received shutdown signal, stopping...")
			return
		case <-ticker.C:
		}
	}
}

// finalizeDue settles one batch of due presales and returns how many succeeded
func finalizeDue(ctx context.Context, presaleService *Presale) int {
	due, err := presaleService.ListDue(ctx, finalizerBatch)
	if err != nil {
		logger.Errorf("Finalizer error fetching presales: %v", err)
		return 0
	}
	if len(due) == 0 {
		logger.Debug("Finalizer: no presales to settle")
		return 0
	}

	done := 0
	for _, p := range due {
		if ctx.Err() != nil {
			break
		}
		if _, err := presaleService.Finalize(ctx, p.ID); err != nil {
			if errors.Is(err, ErrAlreadyFinalized) {
				continue
			}
			logger.ErrorWithFields("Finalizer failed to settle presale", logger.Fields{
				"presale_id": p.ID,
				"error":      err.Error(),
			})
			continue
		}
		done++
	}
	return done
}

// Package worker runs the background refresh loop for the earnings tracker.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/tracker"
	"github.com/stake-dashboard/internal/types"
)

// Refresher is the tracker surface the worker drives.
type Refresher interface {
	Refresh(ctx context.Context) (*tracker.Status, error)
}

// RefreshWorker periodically refreshes the earnings tracker so today's
// figure stays current without the dashboard polling. When tracking is idle
// the tick is a no-op.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	logger    *logging.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshWorker creates a refresh worker ticking at interval.
func NewRefreshWorker(refresher Refresher, interval time.Duration, logger *logging.Logger) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Start launches the refresh loop. Starting a running worker is a no-op.
func (w *RefreshWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run(w.stopCh, w.doneCh)
	w.logger.WithField("interval", w.interval.String()).Info("Tracker refresh worker started")
}

// Stop terminates the loop and waits for the in-flight tick to finish.
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
	w.logger.Info("Tracker refresh worker stopped")
}

func (w *RefreshWorker) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *RefreshWorker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	_, err := w.refresher.Refresh(ctx)
	if err == nil {
		w.logger.Debug("Tracker refreshed")
		return
	}

	var serviceErr *types.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Code == types.ErrTrackingInactive {
		return
	}
	w.logger.WithError(err).Warn("Tracker refresh failed")
}

// SPDX-License-Identifier: AGPL-3.0-only

// Package worker runs the background sweep: retention cleanup of expired
// rows and pickup of pending posts whose async trigger never ran.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siftlabs/leadsift/internal/database"
)

// Posts still pending after this long are assumed orphaned and re-run.
const stalePendingAge = 2 * time.Minute

// Store is the slice of the database the sweep needs.
type Store interface {
	DeleteExpiredLeads(ctx context.Context) error
	DeleteExpiredPosts(ctx context.Context) error
	ListStalePendingPosts(ctx context.Context, olderThan time.Time) ([]database.Post, error)
}

// PostProcessor runs the enrichment pipeline for one post.
type PostProcessor interface {
	ProcessPost(ctx context.Context, postID uuid.UUID) error
}

type Worker struct {
	DB       Store
	Enricher PostProcessor
	Logger   *zap.SugaredLogger
	Ticker   *time.Ticker
	StopChan chan bool

	mu      sync.Mutex
	running bool
	active  bool
}

func NewWorker(db Store, enricher PostProcessor, logger *zap.SugaredLogger) *Worker {
	return &Worker{
		DB:       db,
		Enricher: enricher,
		Logger:   logger,
		StopChan: make(chan bool),
	}
}

func (w *Worker) Start(interval time.Duration) {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		w.Logger.Info("worker already active, use Restart to change interval")
		return
	}
	w.active = true
	w.mu.Unlock()

	w.Ticker = time.NewTicker(interval)
	go func() {
		defer func() {
			w.mu.Lock()
			w.active = false
			w.mu.Unlock()
		}()
		for {
			select {
			case <-w.Ticker.C:
				w.SweepOnce()
			case <-w.StopChan:
				w.Ticker.Stop()
				return
			}
		}
	}()
	w.Logger.Infow("background worker started", "interval", interval)
}

func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		w.Logger.Info("worker not active")
		return
	}
	w.mu.Unlock()

	w.StopChan <- true
	w.Logger.Info("background worker stopped")
}

func (w *Worker) Restart(interval time.Duration) {
	w.mu.Lock()
	isActive := w.active
	w.mu.Unlock()

	if isActive {
		w.Stop()
		time.Sleep(100 * time.Millisecond)
	}
	w.Start(interval)
}

func (w *Worker) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SweepOnce runs one sweep unless a previous one is still in flight.
func (w *Worker) SweepOnce() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.Logger.Info("sweep already in progress, skipping")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.runSweep()
}

func (w *Worker) runSweep() {
	ctx := context.Background()

	if err := w.DB.DeleteExpiredLeads(ctx); err != nil {
		w.Logger.Errorw("failed to delete expired leads", "error", err)
	}
	if err := w.DB.DeleteExpiredPosts(ctx); err != nil {
		w.Logger.Errorw("failed to delete expired posts", "error", err)
	}

	posts, err := w.DB.ListStalePendingPosts(ctx, time.Now().Add(-stalePendingAge))
	if err != nil {
		w.Logger.Errorw("failed to list stale pending posts", "error", err)
		return
	}
	if len(posts) == 0 {
		return
	}

	w.Logger.Infow("picking up stale pending posts", "count", len(posts))

	var wg sync.WaitGroup
	for _, post := range posts {
		wg.Add(1)
		go func(postID uuid.UUID) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					w.Logger.Errorw("panic while processing post", "post_id", postID, "panic", r)
				}
			}()
			// Failures are already recorded on the post itself.
			_ = w.Enricher.ProcessPost(ctx, postID)
		}(post.ID)
	}
	wg.Wait()
}

// SPDX-License-Identifier: AGPL-3.0-only
package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siftlabs/leadsift/internal/database"
)

type fakeStore struct {
	mu              sync.Mutex
	stale           []database.Post
	staleErr        error
	leadsDeleted    int
	postsDeleted    int
	staleListed     int
	listedOlderThan time.Time
}

func (s *fakeStore) DeleteExpiredLeads(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leadsDeleted++
	return nil
}

func (s *fakeStore) DeleteExpiredPosts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postsDeleted++
	return nil
}

func (s *fakeStore) ListStalePendingPosts(ctx context.Context, olderThan time.Time) ([]database.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleListed++
	s.listedOlderThan = olderThan
	if s.staleErr != nil {
		return nil, s.staleErr
	}
	return s.stale, nil
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []uuid.UUID
	err       error
}

func (p *fakeProcessor) ProcessPost(ctx context.Context, postID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, postID)
	return p.err
}

func (p *fakeProcessor) processedIDs() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.processed...)
}

func TestSweepOncePicksUpStalePosts(t *testing.T) {
	first := database.Post{ID: uuid.New(), Status: database.PostStatusPending}
	second := database.Post{ID: uuid.New(), Status: database.PostStatusPending}

	store := &fakeStore{stale: []database.Post{first, second}}
	processor := &fakeProcessor{}
	w := NewWorker(store, processor, zap.NewNop().Sugar())

	w.SweepOnce()

	assert.Equal(t, 1, store.leadsDeleted)
	assert.Equal(t, 1, store.postsDeleted)
	assert.Equal(t, 1, store.staleListed)
	assert.WithinDuration(t, time.Now().Add(-stalePendingAge), store.listedOlderThan, 5*time.Second)

	got := processor.processedIDs()
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, got)
}

func TestSweepOnceNoStalePosts(t *testing.T) {
	store := &fakeStore{}
	processor := &fakeProcessor{}
	w := NewWorker(store, processor, zap.NewNop().Sugar())

	w.SweepOnce()

	assert.Empty(t, processor.processedIDs())
	assert.Equal(t, 1, store.leadsDeleted, "retention sweep still runs")
}

func TestSweepOnceSurvivesProcessingFailure(t *testing.T) {
	post := database.Post{ID: uuid.New(), Status: database.PostStatusPending}
	store := &fakeStore{stale: []database.Post{post}}
	processor := &fakeProcessor{err: errors.New("provider down")}
	w := NewWorker(store, processor, zap.NewNop().Sugar())

	// Failures are recorded on the post by the processor itself; the sweep
	// just moves on.
	w.SweepOnce()

	require.Len(t, processor.processedIDs(), 1)
}

func TestSweepOnceListFailureSkipsPickup(t *testing.T) {
	store := &fakeStore{staleErr: errors.New("db down")}
	processor := &fakeProcessor{}
	w := NewWorker(store, processor, zap.NewNop().Sugar())

	w.SweepOnce()

	assert.Empty(t, processor.processedIDs())
}

func TestWorkerStartStop(t *testing.T) {
	store := &fakeStore{}
	processor := &fakeProcessor{}
	w := NewWorker(store, processor, zap.NewNop().Sugar())

	w.Start(time.Hour)
	assert.True(t, w.IsActive())

	w.Stop()
	assert.Eventually(t, func() bool { return !w.IsActive() }, time.Second, 10*time.Millisecond)
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/queue"
)

type QueueRepository struct {
	mu      sync.RWMutex
	entries map[int64]queue.Entry
	nextSeq int64
}

func NewQueueRepository() *QueueRepository {
	return &QueueRepository{entries: make(map[int64]queue.Entry)}
}

func (r *QueueRepository) Enqueue(_ context.Context, memberID int64, enrolledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[memberID]; ok {
		return fmt.Errorf("%w: member=%d", queue.ErrDuplicateEntry, memberID)
	}

	r.nextSeq++
	r.entries[memberID] = queue.Entry{
		MemberID:   memberID,
		EnrolledAt: enrolledAt,
		Seq:        r.nextSeq,
	}
	return nil
}

func (r *QueueRepository) Remove(_ context.Context, memberID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, memberID)
	return nil
}

func (r *QueueRepository) RemoveMany(_ context.Context, memberIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range memberIDs {
		delete(r.entries, id)
	}
	return nil
}

func (r *QueueRepository) ListOrdered(_ context.Context, limit int) ([]queue.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sortedLocked()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *QueueRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries), nil
}

func (r *QueueRepository) Earliest(_ context.Context) (queue.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.sortedLocked()
	if len(entries) == 0 {
		return queue.Entry{}, false, nil
	}
	return entries[0], true, nil
}

func (r *QueueRepository) sortedLocked() []queue.Entry {
	out := make([]queue.Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.Before(out[j].EnrolledAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

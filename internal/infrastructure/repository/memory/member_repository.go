package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
)

type MemberRepository struct {
	mu      sync.RWMutex
	members map[int64]member.Member
}

func NewMemberRepository(members []member.Member) *MemberRepository {
	index := make(map[int64]member.Member, len(members))
	for _, m := range members {
		index[m.ID] = m
	}
	return &MemberRepository{members: index}
}

func (r *MemberRepository) UpsertProfile(_ context.Context, m member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.members[m.ID]
	if !ok {
		r.members[m.ID] = m
		return nil
	}

	// Profile fields only; strikes, penalty, and points survive re-registration.
	existing.ValorantNickname = m.ValorantNickname
	existing.ChzzkNickname = m.ChzzkNickname
	existing.HighestTier = m.HighestTier
	existing.CurrentTier = m.CurrentTier
	r.members[m.ID] = existing
	return nil
}

func (r *MemberRepository) GetByID(_ context.Context, id int64) (member.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	return m, ok, nil
}

func (r *MemberRepository) GetByIDs(_ context.Context, ids []int64) ([]member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		m, ok := r.members[id]
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemberRepository) AdjustPoints(_ context.Context, id int64, delta int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return 0, false, nil
	}

	m.Points += delta
	if m.Points < 0 {
		m.Points = 0
	}
	r.members[id] = m
	return m.Points, true, nil
}

func (r *MemberRepository) AdjustStrikes(_ context.Context, id int64, delta int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return 0, false, nil
	}

	m.Strikes += delta
	if m.Strikes < 0 {
		m.Strikes = 0
	}
	r.members[id] = m
	return m.Strikes, true, nil
}

func (r *MemberRepository) SetStrikes(_ context.Context, id int64, strikes int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return false, nil
	}

	if strikes < 0 {
		strikes = 0
	}
	m.Strikes = strikes
	r.members[id] = m
	return true, nil
}

func (r *MemberRepository) SetPenaltyEndsAt(_ context.Context, id int64, until *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return false, nil
	}

	m.PenaltyEndsAt = until
	r.members[id] = m
	return true, nil
}

func (r *MemberRepository) ListByPoints(_ context.Context, limit int) ([]member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]member.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemberRepository) CountRankedAhead(_ context.Context, points int, id int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.members {
		if m.Points > points || (m.Points == points && m.ID < id) {
			count++
		}
	}
	return count, nil
}

package devkit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-verify/core"
)

// MemoryAttemptStore keeps delivery attempts in memory.
type MemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts []core.DeliveryAttempt
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{}
}

func (s *MemoryAttemptStore) Record(_ context.Context, attempt core.DeliveryAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *MemoryAttemptStore) List(_ context.Context, filter core.AttemptFilter) (core.AttemptPage, error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)
	matched := s.matching(func(attempt core.DeliveryAttempt) bool {
		if filter.Attribute != "" && attempt.Attribute != filter.Attribute {
			return false
		}
		return filter.Status == "" || attempt.Status == filter.Status
	})

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	return core.AttemptPage{
		Items:   matched[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   len(matched),
		HasNext: end < len(matched),
	}, nil
}

func (s *MemoryAttemptStore) Latest(_ context.Context, attribute core.AttributeKey) (core.DeliveryAttempt, error) {
	matched := s.matching(func(attempt core.DeliveryAttempt) bool {
		return attempt.Attribute == attribute
	})
	if len(matched) == 0 {
		return core.DeliveryAttempt{}, core.ErrAttemptNotFound
	}
	return matched[0], nil
}

func (s *MemoryAttemptStore) matching(keep func(core.DeliveryAttempt) bool) []core.DeliveryAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.DeliveryAttempt, 0, len(s.attempts))
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if keep(s.attempts[i]) {
			out = append(out, s.attempts[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func normalizePage(page int, perPage int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 25
	}
	if perPage > 200 {
		perPage = 200
	}
	return page, perPage
}

var (
	_ core.AttemptRecorder = (*MemoryAttemptStore)(nil)
	_ core.AttemptReader   = (*MemoryAttemptStore)(nil)
)

package payroll

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu      sync.RWMutex
	periods map[string]PeriodWithEntries
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		periods: map[string]PeriodWithEntries{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Save(ctx context.Context, period Period, entries []Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := s.now()
	period.ID = uuid.NewString()
	period.CreatedAt = now
	period.UpdatedAt = now

	stored := make([]Entry, len(entries))
	for i, entry := range entries {
		entry.ID = uuid.NewString()
		entry.PeriodID = period.ID
		entry.CreatedAt = now
		stored[i] = entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[period.ID] = PeriodWithEntries{Period: period, Entries: stored}
	return period.ID, nil
}

func (s *MemoryStore) Fetch(ctx context.Context, id string) (PeriodWithEntries, error) {
	if err := ctx.Err(); err != nil {
		return PeriodWithEntries{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.periods[id]
	if !ok {
		return PeriodWithEntries{}, ErrPeriodNotFound
	}
	entries := make([]Entry, len(found.Entries))
	copy(entries, found.Entries)
	found.Entries = entries
	return found, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Period, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	periods := make([]Period, 0, len(s.periods))
	for _, p := range s.periods {
		periods = append(periods, p.Period)
	}
	s.mu.RUnlock()
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].PaymentDate.Equal(periods[j].PaymentDate) {
			return periods[i].CreatedAt.After(periods[j].CreatedAt)
		}
		return periods[i].PaymentDate.After(periods[j].PaymentDate)
	})
	return periods, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

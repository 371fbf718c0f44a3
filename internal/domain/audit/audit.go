package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ActionFieldCreate = "payroll.field.create"
	ActionFieldUpdate = "payroll.field.update"
	ActionFieldDelete = "payroll.field.delete"
	ActionPeriodSave  = "payroll.period.save"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

// Service keeps the most recent events in memory and mirrors each one to
// the structured log, which is the durable trail.
type Service struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

func New(limit int) *Service {
	if limit < 1 {
		limit = 1
	}
	return &Service{limit: limit}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, after any) error {
	evt := Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		CreatedAt:  time.Now().UTC(),
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		evt.After = payload
	}

	slog.InfoContext(ctx, "audit",
		"action", action,
		"entityType", entityType,
		"entityId", entityID,
		"actor", actorID,
		"requestId", requestID,
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	if over := len(s.events) - s.limit; over > 0 {
		s.events = append(s.events[:0:0], s.events[over:]...)
	}
	return nil
}

// List returns matching events newest first.
func (s *Service) List(filter Filter, limit, offset int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, limit)
	skipped := 0
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		evt := s.events[i]
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			continue
		}
		if filter.ActorUser != "" && evt.ActorID != filter.ActorUser {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, evt)
	}
	return out
}

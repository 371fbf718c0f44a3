package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const JobPayrollBatch = "payroll_batch"

// maxRetained bounds how many finished runs stay queryable.
const maxRetained = 1000

var (
	ErrQueueFull  = errors.New("job queue full")
	ErrNotStarted = errors.New("job service not started")
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      Status     `json:"status"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Service struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	order   []string
	queue   chan job
	workers int
	started bool
	wg      sync.WaitGroup
}

type job struct {
	ID  string
	Run func(context.Context) (any, error)
}

func New(queueSize, workers int) *Service {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Service{
		runs:    map[string]*Run{},
		queue:   make(chan job, queueSize),
		workers: workers,
	}
}

// Start launches the workers. They stop when ctx is cancelled; Wait
// blocks until they have.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.worker(ctx)
		}()
	}
}

func (s *Service) Wait() {
	s.wg.Wait()
}

// Enqueue records a queued run and hands it to the workers. It never
// blocks: a full queue is reported as ErrQueueFull.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return Run{}, ErrNotStarted
	}
	record := &Run{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	select {
	case s.queue <- job{ID: record.ID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return Run{}, ErrQueueFull
	}
	s.runs[record.ID] = record
	s.order = append(s.order, record.ID)
	s.prune()
	return *record, nil
}

func (s *Service) Get(id string) (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.runs[id]
	if !ok {
		return Run{}, false
	}
	return *record, true
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runJob(ctx, j)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) {
	started := time.Now().UTC()
	s.update(j.ID, func(r *Run) {
		r.Status = StatusRunning
		r.StartedAt = &started
	})

	result, err := safeRun(ctx, j.Run)

	completed := time.Now().UTC()
	s.update(j.ID, func(r *Run) {
		r.CompletedAt = &completed
		r.Result = result
		if err != nil {
			r.Status = StatusFailed
			r.Error = err.Error()
			slog.Warn("job run failed", "jobId", j.ID, "jobType", r.Type, "err", err)
			return
		}
		r.Status = StatusCompleted
	})
}

func safeRun(ctx context.Context, run func(context.Context) (any, error)) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New("job panicked")
			slog.Error("job panicked", "panic", rec)
		}
	}()
	return run(ctx)
}

func (s *Service) update(id string, fn func(*Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.runs[id]; ok {
		fn(record)
	}
}

// prune drops the oldest finished runs once more than maxRetained are held.
// Callers hold s.mu.
func (s *Service) prune() {
	if len(s.order) <= maxRetained {
		return
	}
	kept := s.order[:0]
	excess := len(s.order) - maxRetained
	for _, id := range s.order {
		record := s.runs[id]
		finished := record.Status == StatusCompleted || record.Status == StatusFailed
		if excess > 0 && finished {
			delete(s.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

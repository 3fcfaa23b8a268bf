package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Scheduler is the public API for enqueueing delayed work. The job is durably
// recorded before Schedule returns; no upper bound on execution latency is
// guaranteed beyond the executor's poll interval.
type Scheduler struct {
	store  Store
	logger *slog.Logger
}

// NewScheduler creates a Scheduler over the given store
func NewScheduler(store Store, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		logger: logger,
	}
}

// Schedule records a job named name carrying payload, eligible for execution
// no earlier than now + delay. Scheduling a name with no registered handler is
// legal here; the executor fails such jobs at dispatch time.
func (s *Scheduler) Schedule(ctx context.Context, delay time.Duration, name string, payload any) (string, error) {
	if delay < 0 {
		delay = 0
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.New().String(),
		Name:      name,
		Payload:   raw,
		State:     StateScheduled,
		NextRunAt: now.Add(delay),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Enqueue(ctx, job); err != nil {
		return "", err
	}

	s.logger.Info("Job scheduled",
		slog.String("job_id", job.ID),
		slog.String("name", name),
		slog.Duration("delay", delay),
		slog.Time("next_run_at", job.NextRunAt),
	)

	return job.ID, nil
}

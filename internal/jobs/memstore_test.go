package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store mirroring the claim contract of the SQL
// implementation: due scheduled jobs and due jobs with an expired lease are
// claimable, and a claim is atomic with respect to concurrent claimers.
type memStore struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	lease time.Duration

	// now can be overridden to simulate the passage of time
	now func() time.Time
}

func newMemStore(lease time.Duration) *memStore {
	return &memStore{
		jobs:  make(map[string]*Job),
		lease: lease,
		now:   time.Now,
	}
}

func (s *memStore) Enqueue(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memStore) ClaimDue(ctx context.Context, workerID string, limit int) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	var due []*Job
	for _, job := range s.jobs {
		if job.NextRunAt.After(now) {
			continue
		}

		switch job.State {
		case StateScheduled:
			due = append(due, job)
		case StateLocked:
			if job.LockedAt.Valid && job.LockedAt.Time.Add(s.lease).Before(now) {
				due = append(due, job)
			}
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRunAt.Before(due[j].NextRunAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]Job, 0, len(due))
	for _, job := range due {
		job.State = StateLocked
		job.LockedAt.Time = now
		job.LockedAt.Valid = true
		job.LockedBy.String = workerID
		job.LockedBy.Valid = true
		job.UpdatedAt = now
		claimed = append(claimed, *job)
	}

	return claimed, nil
}

func (s *memStore) MarkSucceeded(ctx context.Context, jobID string) error {
	return s.finish(jobID, StateSucceeded, "")
}

func (s *memStore) MarkFailed(ctx context.Context, jobID string, reason string) error {
	return s.finish(jobID, StateFailed, reason)
}

func (s *memStore) finish(jobID string, state State, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if job.State != StateLocked {
		return ErrJobNotLocked
	}

	job.State = state
	job.LockedAt.Valid = false
	job.LockedBy.Valid = false
	job.FailReason.String = reason
	job.FailReason.Valid = reason != ""
	job.UpdatedAt = s.now()
	return nil
}

func (s *memStore) GetByID(ctx context.Context, jobID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}

	copied := *job
	return &copied, nil
}

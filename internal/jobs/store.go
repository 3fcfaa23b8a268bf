package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the durable job table. Claiming must be atomic: two concurrent
// claimers must never both obtain the same job.
type Store interface {
	// Enqueue durably records a new job in scheduled state
	Enqueue(ctx context.Context, job *Job) error

	// ClaimDue atomically leases up to limit due jobs for workerID. A due job
	// is scheduled, or locked with an expired lease (the previous holder is
	// presumed crashed).
	ClaimDue(ctx context.Context, workerID string, limit int) ([]Job, error)

	// MarkSucceeded transitions a locked job to succeeded
	MarkSucceeded(ctx context.Context, jobID string) error

	// MarkFailed transitions a locked job to failed and records the reason
	MarkFailed(ctx context.Context, jobID, reason string) error

	// GetByID returns a job by id
	GetByID(ctx context.Context, jobID string) (*Job, error)
}

// PostgresStore implements Store on a PostgreSQL jobs table
type PostgresStore struct {
	db     *sqlx.DB
	lease  time.Duration
	logger *slog.Logger
}

// NewPostgresStore creates a PostgresStore. lease bounds how long a claimed
// job stays ineligible for re-claim; a crashed worker's jobs become due again
// once the lease expires.
func NewPostgresStore(db *sqlx.DB, lease time.Duration, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		lease:  lease,
		logger: logger,
	}
}

func (s *PostgresStore) Enqueue(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO jobs (
			job_id, name, payload, state, next_run_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Name,
		[]byte(job.Payload),
		job.State,
		job.NextRunAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return nil
}

// ClaimDue takes due jobs with a single UPDATE over a SKIP LOCKED subselect,
// so concurrent executors never race on the same rows
func (s *PostgresStore) ClaimDue(ctx context.Context, workerID string, limit int) ([]Job, error) {
	query := `
		UPDATE jobs
		SET state = $1,
		    locked_at = NOW(),
		    locked_by = $2,
		    updated_at = NOW()
		WHERE job_id IN (
			SELECT job_id
			FROM jobs
			WHERE next_run_at <= NOW()
			  AND (state = $3
			       OR (state = $1 AND locked_at < NOW() - make_interval(secs => $4)))
			ORDER BY next_run_at
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING job_id, name, payload, state, next_run_at, locked_at, locked_by,
		          fail_reason, created_at, updated_at
	`

	var claimed []Job
	err := s.db.SelectContext(ctx, &claimed, query,
		StateLocked,
		workerID,
		StateScheduled,
		s.lease.Seconds(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due jobs: %w", err)
	}

	if len(claimed) > 0 {
		s.logger.Debug("Claimed due jobs",
			slog.Int("count", len(claimed)),
			slog.String("worker_id", workerID),
		)
	}

	return claimed, nil
}

func (s *PostgresStore) MarkSucceeded(ctx context.Context, jobID string) error {
	query := `
		UPDATE jobs
		SET state = $1,
		    locked_at = NULL,
		    locked_by = NULL,
		    updated_at = NOW()
		WHERE job_id = $2 AND state = $3
	`

	result, err := s.db.ExecContext(ctx, query, StateSucceeded, jobID, StateLocked)
	if err != nil {
		return fmt.Errorf("failed to mark job succeeded: %w", err)
	}

	return requireLockedRow(result, jobID)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, jobID, reason string) error {
	query := `
		UPDATE jobs
		SET state = $1,
		    fail_reason = $2,
		    locked_at = NULL,
		    locked_by = NULL,
		    updated_at = NOW()
		WHERE job_id = $3 AND state = $4
	`

	result, err := s.db.ExecContext(ctx, query, StateFailed, reason, jobID, StateLocked)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	return requireLockedRow(result, jobID)
}

func (s *PostgresStore) GetByID(ctx context.Context, jobID string) (*Job, error) {
	query := `
		SELECT job_id, name, payload, state, next_run_at, locked_at, locked_by,
		       fail_reason, created_at, updated_at
		FROM jobs
		WHERE job_id = $1
	`

	var job Job
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func requireLockedRow(result sql.Result, jobID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrJobNotLocked)
	}

	return nil
}

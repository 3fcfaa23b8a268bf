package jobs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// State tracks a job through its lifecycle:
// scheduled -> locked -> succeeded | failed
type State string

const (
	StateScheduled State = "scheduled"
	StateLocked    State = "locked"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var (
	// ErrJobNotFound is returned when a job cannot be found in the database
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotLocked is returned when recording an outcome for a job the
	// caller does not hold a lease on
	ErrJobNotLocked = errors.New("job is not locked")
)

// Job is a named, delayed unit of work. Terminal jobs are retained for
// observability and excluded from future claims.
type Job struct {
	ID         string          `db:"job_id"`
	Name       string          `db:"name"`
	Payload    json.RawMessage `db:"payload"`
	State      State           `db:"state"`
	NextRunAt  time.Time       `db:"next_run_at"`
	LockedAt   sql.NullTime    `db:"locked_at"`
	LockedBy   sql.NullString  `db:"locked_by"`
	FailReason sql.NullString  `db:"fail_reason"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// Terminal reports whether the job reached a final state
func (j *Job) Terminal() bool {
	return j.State == StateSucceeded || j.State == StateFailed
}

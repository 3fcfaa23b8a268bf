package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrCoachNotFound is returned when a coach record does not exist
	ErrCoachNotFound = errors.New("coach not found")

	// ErrUsernameTaken is returned when registering an already-used username
	ErrUsernameTaken = errors.New("username already in use")
)

// Coach is an authenticated user who owns player records
type Coach struct {
	ID           string    `db:"coach_id"`
	FullName     string    `db:"full_name"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Store handles coach persistence
type Store struct {
	db *sqlx.DB
}

// NewStore creates a coach Store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *Coach) error {
	query := `
		INSERT INTO coaches (coach_id, full_name, username, password_hash, created_at)
		VALUES (:coach_id, :full_name, :username, :password_hash, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, c); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create coach: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, coachID string) (*Coach, error) {
	query := `
		SELECT coach_id, full_name, username, password_hash, created_at
		FROM coaches
		WHERE coach_id = $1
	`

	var c Coach
	if err := s.db.GetContext(ctx, &c, query, coachID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach: %w", err)
	}

	return &c, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*Coach, error) {
	query := `
		SELECT coach_id, full_name, username, password_hash, created_at
		FROM coaches
		WHERE username = $1
	`

	var c Coach
	if err := s.db.GetContext(ctx, &c, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach: %w", err)
	}

	return &c, nil
}

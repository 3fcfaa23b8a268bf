package player

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const playerColumns = `
	player_id, coach_id, player_name, position, team_name, height_with_shoes,
	weight, body_fat, wing_span, standing_reach, hand_width, hand_length,
	standing_vert, max_vert, lane_agility, shuttle, court_sprint, max_speed,
	max_jump, prpp, acceleration, deceleration, ttto, braking_phase,
	description, images, videos, preview_remote_id, preview_url,
	created_at, updated_at
`

// Store handles player persistence
type Store struct {
	db *sqlx.DB
}

// NewStore creates a player Store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, p *Player) error {
	query := `
		INSERT INTO players (` + playerColumns + `)
		VALUES (
			:player_id, :coach_id, :player_name, :position, :team_name,
			:height_with_shoes, :weight, :body_fat, :wing_span, :standing_reach,
			:hand_width, :hand_length, :standing_vert, :max_vert, :lane_agility,
			:shuttle, :court_sprint, :max_speed, :max_jump, :prpp,
			:acceleration, :deceleration, :ttto, :braking_phase, :description,
			:images, :videos, :preview_remote_id, :preview_url,
			:created_at, :updated_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, playerID string) (*Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`

	var p Player
	if err := s.db.GetContext(ctx, &p, query, playerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &p, nil
}

func (s *Store) ListByCoach(ctx context.Context, coachID string) ([]Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE coach_id = $1 ORDER BY created_at DESC`

	var players []Player
	if err := s.db.SelectContext(ctx, &players, query, coachID); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return players, nil
}

// Update writes the scalar fields, images and videos of a player record. The
// preview columns are deliberately excluded; only UpdateArtifact touches
// those, so a concurrent artifact write is never clobbered.
func (s *Store) Update(ctx context.Context, p *Player) error {
	query := `
		UPDATE players
		SET player_name = :player_name,
		    position = :position,
		    team_name = :team_name,
		    height_with_shoes = :height_with_shoes,
		    weight = :weight,
		    body_fat = :body_fat,
		    wing_span = :wing_span,
		    standing_reach = :standing_reach,
		    hand_width = :hand_width,
		    hand_length = :hand_length,
		    standing_vert = :standing_vert,
		    max_vert = :max_vert,
		    lane_agility = :lane_agility,
		    shuttle = :shuttle,
		    court_sprint = :court_sprint,
		    max_speed = :max_speed,
		    max_jump = :max_jump,
		    prpp = :prpp,
		    acceleration = :acceleration,
		    deceleration = :deceleration,
		    ttto = :ttto,
		    braking_phase = :braking_phase,
		    description = :description,
		    images = :images,
		    videos = :videos,
		    updated_at = NOW()
		WHERE player_id = :player_id
	`

	result, err := s.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return requireRow(result)
}

// UpdateArtifact is the field-scoped write used by the artifact pipeline: it
// touches only the preview columns
func (s *Store) UpdateArtifact(ctx context.Context, playerID string, artifact Artifact) error {
	query := `
		UPDATE players
		SET preview_remote_id = $1,
		    preview_url = $2,
		    updated_at = NOW()
		WHERE player_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, artifact.RemoteID, artifact.URL, playerID)
	if err != nil {
		return fmt.Errorf("failed to update player artifact: %w", err)
	}

	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPlayerNotFound
	}

	return nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/scoutpro/scoutpro-be/internal/jobs"
	"github.com/scoutpro/scoutpro-be/internal/player"
	"github.com/scoutpro/scoutpro-be/shared/objectstore"
)

// Job names handled by the artifact pipeline
const (
	JobGeneratePlayerArtifact = "generate-player-artifact"
	JobDeleteRemoteArtifact   = "delete-remote-artifact"
)

// GeneratePayload carries only the player reference. The handler re-fetches
// the live record at execution time; a snapshot captured at schedule time
// would go stale under concurrent edits.
type GeneratePayload struct {
	PlayerID string `json:"player_id"`
}

// DeletePayload identifies a remote object to remove from storage
type DeletePayload struct {
	RemoteID string `json:"remote_id"`
}

// PlayerStore is the slice of player persistence the pipeline needs
type PlayerStore interface {
	GetByID(ctx context.Context, playerID string) (*player.Player, error)
	UpdateArtifact(ctx context.Context, playerID string, artifact player.Artifact) error
}

// Renderer produces the card image for a player record
type Renderer interface {
	Render(ctx context.Context, p *player.Player) ([]byte, error)
}

// Scheduler enqueues follow-up jobs (failed old-artifact cleanup)
type Scheduler interface {
	Schedule(ctx context.Context, delay time.Duration, name string, payload any) (string, error)
}

// Config holds pipeline construction parameters
type Config struct {
	Players      PlayerStore
	Storage      objectstore.Client
	Renderer     Renderer
	Scheduler    Scheduler
	CleanupDelay time.Duration
	Logger       *slog.Logger
}

// Pipeline owns the two artifact job handlers and the cleanup rule keeping
// exactly one live artifact per player
type Pipeline struct {
	players      PlayerStore
	storage      objectstore.Client
	renderer     Renderer
	scheduler    Scheduler
	cleanupDelay time.Duration
	locks        *keyedMutex
	logger       *slog.Logger
}

// New creates a Pipeline from cfg
func New(cfg *Config) *Pipeline {
	cleanupDelay := cfg.CleanupDelay
	if cleanupDelay <= 0 {
		cleanupDelay = time.Minute
	}

	return &Pipeline{
		players:      cfg.Players,
		storage:      cfg.Storage,
		renderer:     cfg.Renderer,
		scheduler:    cfg.Scheduler,
		cleanupDelay: cleanupDelay,
		locks:        newKeyedMutex(),
		logger:       cfg.Logger,
	}
}

// Handlers returns the executor handler map for the pipeline's job names
func (p *Pipeline) Handlers() map[string]jobs.HandlerFunc {
	return map[string]jobs.HandlerFunc{
		JobGeneratePlayerArtifact: p.GeneratePlayerArtifact,
		JobDeleteRemoteArtifact:   p.DeleteRemoteArtifact,
	}
}

// GeneratePlayerArtifact renders the player's scouting card, uploads it, and
// swaps the record's artifact reference. The sequence is write-new-then-
// delete-old: the record never points at a deleted object, and the old object
// is removed only once the new reference is durable. A per-player lock keeps
// two quick successive edits from interleaving the swap.
func (p *Pipeline) GeneratePlayerArtifact(ctx context.Context, payload json.RawMessage) error {
	var req GeneratePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("invalid generate payload: %w", err)
	}
	if req.PlayerID == "" {
		return fmt.Errorf("invalid generate payload: player_id is required")
	}

	unlock := p.locks.Lock(req.PlayerID)
	defer unlock()

	pl, err := p.players.GetByID(ctx, req.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to fetch player %s: %w", req.PlayerID, err)
	}

	img, err := p.renderer.Render(ctx, pl)
	if err != nil {
		return fmt.Errorf("failed to render card for player %s: %w", pl.ID, err)
	}

	obj, err := p.storage.Upload(ctx, img, "image/png")
	if err != nil {
		return fmt.Errorf("failed to upload card for player %s: %w", pl.ID, err)
	}

	old := pl.Preview()

	if err := p.players.UpdateArtifact(ctx, pl.ID, player.Artifact{RemoteID: obj.ID, URL: obj.URL}); err != nil {
		// the fresh upload is unreachable now; remove it so storage holds no
		// object that no record references
		if delErr := p.storage.Delete(ctx, obj.ID); delErr != nil {
			p.logger.Warn("Failed to remove orphaned upload",
				slog.String("player_id", pl.ID),
				slog.String("remote_id", obj.ID),
				slog.Any("error", delErr),
			)
		}
		return fmt.Errorf("failed to store artifact reference for player %s: %w", pl.ID, err)
	}

	p.logger.Info("Player artifact generated",
		slog.String("player_id", pl.ID),
		slog.String("remote_id", obj.ID),
	)

	if old != nil && old.RemoteID != obj.ID {
		if err := p.storage.Delete(ctx, old.RemoteID); err != nil {
			p.logger.Warn("Failed to delete replaced artifact, re-queueing cleanup",
				slog.String("player_id", pl.ID),
				slog.String("remote_id", old.RemoteID),
				slog.Any("error", err),
			)

			if _, schedErr := p.scheduler.Schedule(ctx, p.cleanupDelay, JobDeleteRemoteArtifact,
				DeletePayload{RemoteID: old.RemoteID}); schedErr != nil {
				return fmt.Errorf("failed to re-queue cleanup of %s: %w", old.RemoteID, schedErr)
			}
		}
	}

	return nil
}

// DeleteRemoteArtifact removes a remote object. Errors propagate and fail the
// job rather than silently leaking the object.
func (p *Pipeline) DeleteRemoteArtifact(ctx context.Context, payload json.RawMessage) error {
	var req DeletePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("invalid delete payload: %w", err)
	}
	if req.RemoteID == "" {
		return fmt.Errorf("invalid delete payload: remote_id is required")
	}

	if err := p.storage.Delete(ctx, req.RemoteID); err != nil {
		return fmt.Errorf("failed to delete remote artifact %s: %w", req.RemoteID, err)
	}

	p.logger.Info("Remote artifact deleted",
		slog.String("remote_id", req.RemoteID),
	)

	return nil
}

package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scoutpro/scoutpro-be/internal/auth"
	"github.com/scoutpro/scoutpro-be/internal/coach"
	"github.com/scoutpro/scoutpro-be/internal/jobs"
	"github.com/scoutpro/scoutpro-be/internal/player"
	"github.com/scoutpro/scoutpro-be/shared/objectstore"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Coaches       *coach.Store
	Players       *player.Store
	Scheduler     *jobs.Scheduler
	Storage       objectstore.Client
	Tokens        *auth.TokenManager
	GenerateDelay time.Duration
	MaxUploadSize int64
}

const coachContextKey = "currentCoach"

// SetCurrentCoach stores the authenticated coach on the request context.
// Called by the auth middleware after token verification.
func SetCurrentCoach(c *gin.Context, co *coach.Coach) {
	c.Set(coachContextKey, co)
}

// CurrentCoach returns the authenticated coach, or nil outside a protected
// route
func CurrentCoach(c *gin.Context) *coach.Coach {
	v, ok := c.Get(coachContextKey)
	if !ok {
		return nil
	}

	co, ok := v.(*coach.Coach)
	if !ok {
		return nil
	}
	return co
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scoutpro/scoutpro-be/internal/api/dto"
	"github.com/scoutpro/scoutpro-be/internal/auth"
	"github.com/scoutpro/scoutpro-be/internal/coach"
	"github.com/scoutpro/scoutpro-be/internal/player"
)

// AuthHandler handles signup, login and the current-user endpoint
type AuthHandler struct {
	logger  *slog.Logger
	coaches *coach.Store
	players *player.Store
	tokens  *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger:  deps.Logger,
		coaches: deps.Coaches,
		players: deps.Players,
		tokens:  deps.Tokens,
	}
}

// Signup handles POST /api/v1/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Username and password are required.",
		})
		return
	}

	if _, err := h.coaches.GetByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Email already in use. Try different one.",
		})
		return
	} else if !errors.Is(err, coach.ErrCoachNotFound) {
		h.logger.Error("Failed to look up username", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register",
		})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register",
		})
		return
	}

	co := &coach.Coach{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.coaches.Create(c.Request.Context(), co); err != nil {
		if errors.Is(err, coach.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Email already in use. Try different one.",
			})
			return
		}
		h.logger.Error("Failed to create coach", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register",
		})
		return
	}

	token, err := h.tokens.Generate(co.ID)
	if err != nil {
		h.logger.Error("Failed to issue token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register",
		})
		return
	}

	c.JSON(http.StatusCreated, dto.TokenResponse{
		Token:   token,
		Success: "Email has been registered",
	})
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Username and password are required.",
		})
		return
	}

	co, err := h.coaches.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, coach.ErrCoachNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid email or password",
			})
			return
		}
		h.logger.Error("Failed to look up coach", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to log in",
		})
		return
	}

	if !auth.CheckPassword(co.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid email or password",
		})
		return
	}

	token, err := h.tokens.Generate(co.ID)
	if err != nil {
		h.logger.Error("Failed to issue token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to log in",
		})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// GetUser handles GET /api/v1/user
// Returns the authenticated coach together with their roster.
func (h *AuthHandler) GetUser(c *gin.Context) {
	co := CurrentCoach(c)
	if co == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid User"})
		return
	}

	players, err := h.players.ListByCoach(c.Request.Context(), co.ID)
	if err != nil {
		h.logger.Error("Failed to list players", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch user",
		})
		return
	}

	c.JSON(http.StatusOK, dto.FromCoach(co, players))
}

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scoutpro/scoutpro-be/internal/api/dto"
	"github.com/scoutpro/scoutpro-be/internal/jobs"
	"github.com/scoutpro/scoutpro-be/internal/importer"
	"github.com/scoutpro/scoutpro-be/internal/pipeline"
	"github.com/scoutpro/scoutpro-be/internal/player"
	"github.com/scoutpro/scoutpro-be/shared/objectstore"
)

// PlayerHandler handles player CRUD, bulk import and card retrieval
type PlayerHandler struct {
	logger        *slog.Logger
	players       *player.Store
	scheduler     *jobs.Scheduler
	storage       objectstore.Client
	generateDelay time.Duration
	maxUploadSize int64
}

// NewPlayerHandler creates a new PlayerHandler instance
func NewPlayerHandler(deps *Dependencies) *PlayerHandler {
	return &PlayerHandler{
		logger:        deps.Logger,
		players:       deps.Players,
		scheduler:     deps.Scheduler,
		storage:       deps.Storage,
		generateDelay: deps.GenerateDelay,
		maxUploadSize: deps.MaxUploadSize,
	}
}

// CreatePlayer handles POST /api/v1/players
// Accepts a multipart form with the player fields plus up to two image files
// under "images" (mugshot first, standing shot second). The scouting card is
// generated asynchronously after a short delay.
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	co := CurrentCoach(c)
	if co == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized user detected."})
		return
	}

	var form dto.PlayerForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player data"})
		return
	}

	now := time.Now().UTC()
	p := &player.Player{
		ID:        uuid.New().String(),
		CoachID:   co.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	form.Apply(p)

	images, err := h.uploadImages(c)
	if err != nil {
		h.logger.Error("Failed to upload player images", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload images"})
		return
	}
	p.Images = images

	if err := h.players.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("Failed to create player", slog.String("error", err.Error()))
		h.discardUploads(c, images)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register player"})
		return
	}

	if err := h.scheduleGenerate(c, p.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule card generation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": "Player added to list."})
}

// ListPlayers handles GET /api/v1/players
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	co := CurrentCoach(c)
	if co == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized user detected."})
		return
	}

	players, err := h.players.ListByCoach(c.Request.Context(), co.ID)
	if err != nil {
		h.logger.Error("Failed to list players", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch players"})
		return
	}

	dtos := make([]dto.PlayerDTO, 0, len(players))
	for i := range players {
		dtos = append(dtos, dto.FromPlayer(&players[i]))
	}

	c.JSON(http.StatusOK, dtos)
}

// GetPlayer handles GET /api/v1/players/:player_id
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	p, ok := h.ownedPlayer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.FromPlayer(p))
}

// UpdatePlayer handles PUT /api/v1/players/:player_id
// Replacement image files arrive under "images[0]" (mugshot) and "images[1]"
// (standing shot). A new image is uploaded and recorded before the one it
// replaces is removed from storage; a failed removal is retried through a
// scheduled cleanup job.
func (h *PlayerHandler) UpdatePlayer(c *gin.Context) {
	p, ok := h.ownedPlayer(c)
	if !ok {
		return
	}

	var form dto.PlayerForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player data"})
		return
	}
	form.Apply(p)

	fresh, stale, err := h.replaceImages(c, p)
	if err != nil {
		h.logger.Error("Failed to upload player images", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload images"})
		return
	}

	p.UpdatedAt = time.Now().UTC()
	if err := h.players.Update(c.Request.Context(), p); err != nil {
		h.logger.Error("Failed to update player", slog.String("error", err.Error()))
		h.discardUploads(c, fresh)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update player"})
		return
	}

	for _, img := range stale {
		if err := h.storage.Delete(c.Request.Context(), img.RemoteID); err != nil {
			h.logger.Warn("Failed to delete replaced image, scheduling cleanup",
				slog.String("remote_id", img.RemoteID),
				slog.String("error", err.Error()),
			)
			h.scheduleCleanup(c, img.RemoteID)
		}
	}

	if err := h.scheduleGenerate(c, p.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule card generation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": "Player Information Updated"})
}

// ImportPlayers handles POST /api/v1/players/import
// Accepts an xlsx workbook under "file" and registers one player per row.
func (h *PlayerHandler) ImportPlayers(c *gin.Context) {
	co := CurrentCoach(c)
	if co == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized user detected."})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A spreadsheet file is required"})
		return
	}

	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	players, err := importer.Parse(file)
	if err != nil {
		h.logger.Error("Failed to parse workbook", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to parse spreadsheet"})
		return
	}

	now := time.Now().UTC()
	for i := range players {
		p := &players[i]
		p.ID = uuid.New().String()
		p.CoachID = co.ID
		p.CreatedAt = now
		p.UpdatedAt = now

		if err := h.players.Create(c.Request.Context(), p); err != nil {
			h.logger.Error("Failed to create imported player",
				slog.String("player_name", p.PlayerName),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register players"})
			return
		}

		if err := h.scheduleGenerate(c, p.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule card generation"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": "Players registered successfully!"})
}

// GetCard handles GET /api/v1/players/:player_id/card
// Returns the live scouting card artifact reference, or 404 while generation
// is still pending.
func (h *PlayerHandler) GetCard(c *gin.Context) {
	p, ok := h.ownedPlayer(c)
	if !ok {
		return
	}

	preview := p.Preview()
	if preview == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No card generated yet."})
		return
	}

	c.JSON(http.StatusOK, dto.ArtifactDTO{
		RemoteID: preview.RemoteID,
		URL:      preview.URL,
	})
}

// ownedPlayer resolves :player_id and enforces that it belongs to the
// authenticated coach. Writes the error response itself on failure.
func (h *PlayerHandler) ownedPlayer(c *gin.Context) (*player.Player, bool) {
	co := CurrentCoach(c)
	if co == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized user detected."})
		return nil, false
	}

	playerID := c.Param("player_id")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id is required"})
		return nil, false
	}

	p, err := h.players.GetByID(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unable to find player"})
			return nil, false
		}
		h.logger.Error("Failed to get player", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch player"})
		return nil, false
	}

	// Hide other coaches' players rather than admitting they exist
	if p.CoachID != co.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unable to find player"})
		return nil, false
	}

	return p, true
}

// uploadImages stores the "images" files of the create form. The first file
// is the mugshot, the second the standing shot.
func (h *PlayerHandler) uploadImages(c *gin.Context) (player.ImageList, error) {
	mpForm, err := c.MultipartForm()
	if err != nil {
		// no multipart body at all means no images, which is fine
		return nil, nil
	}

	files := mpForm.File["images"]
	if len(files) > 2 {
		files = files[:2]
	}

	var images player.ImageList
	for i, fh := range files {
		obj, err := h.uploadFile(c, fh)
		if err != nil {
			h.discardUploads(c, images)
			return nil, err
		}

		images = append(images, player.Image{
			RemoteID: obj.ID,
			URL:      obj.URL,
			Kind:     kindForSlot(i),
		})
	}

	return images, nil
}

// replaceImages stores the "images[N]" files of the update form and swaps
// them into the player's image slots. Returns the freshly uploaded images and
// the ones they displaced; the caller removes the stale ones only after the
// record write succeeds.
func (h *PlayerHandler) replaceImages(c *gin.Context, p *player.Player) (fresh, stale player.ImageList, err error) {
	mpForm, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil
	}

	for slot := 0; slot < 2; slot++ {
		files := mpForm.File[fmt.Sprintf("images[%d]", slot)]
		if len(files) == 0 {
			continue
		}

		obj, err := h.uploadFile(c, files[0])
		if err != nil {
			h.discardUploads(c, fresh)
			return nil, nil, err
		}

		img := player.Image{
			RemoteID: obj.ID,
			URL:      obj.URL,
			Kind:     kindForSlot(slot),
		}
		fresh = append(fresh, img)

		if old := setImage(p, img); old != nil {
			stale = append(stale, *old)
		}
	}

	return fresh, stale, nil
}

func (h *PlayerHandler) uploadFile(c *gin.Context, fh *multipart.FileHeader) (objectstore.Object, error) {
	if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
		return objectstore.Object{}, fmt.Errorf("file %q exceeds upload limit", fh.Filename)
	}

	file, err := fh.Open()
	if err != nil {
		return objectstore.Object{}, fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return objectstore.Object{}, fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return h.storage.Upload(c.Request.Context(), data, contentType)
}

// discardUploads removes objects that were stored for a request that then
// failed, so nothing orphaned stays behind
func (h *PlayerHandler) discardUploads(c *gin.Context, images player.ImageList) {
	for _, img := range images {
		if err := h.storage.Delete(c.Request.Context(), img.RemoteID); err != nil {
			h.logger.Warn("Failed to delete orphaned upload, scheduling cleanup",
				slog.String("remote_id", img.RemoteID),
				slog.String("error", err.Error()),
			)
			h.scheduleCleanup(c, img.RemoteID)
		}
	}
}

func (h *PlayerHandler) scheduleGenerate(c *gin.Context, playerID string) error {
	_, err := h.scheduler.Schedule(c.Request.Context(), h.generateDelay,
		pipeline.JobGeneratePlayerArtifact,
		pipeline.GeneratePayload{PlayerID: playerID},
	)
	if err != nil {
		h.logger.Error("Failed to schedule card generation",
			slog.String("player_id", playerID),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (h *PlayerHandler) scheduleCleanup(c *gin.Context, remoteID string) {
	_, err := h.scheduler.Schedule(c.Request.Context(), time.Minute,
		pipeline.JobDeleteRemoteArtifact,
		pipeline.DeletePayload{RemoteID: remoteID},
	)
	if err != nil {
		h.logger.Error("Failed to schedule cleanup job",
			slog.String("remote_id", remoteID),
			slog.String("error", err.Error()),
		)
	}
}

// setImage swaps img into the player's image slot for its kind, returning the
// image it displaced (nil for a fresh slot)
func setImage(p *player.Player, img player.Image) *player.Image {
	for i := range p.Images {
		if p.Images[i].Kind == img.Kind {
			old := p.Images[i]
			p.Images[i] = img
			return &old
		}
	}

	p.Images = append(p.Images, img)
	return nil
}

func kindForSlot(slot int) string {
	if slot == 0 {
		return player.ImageKindMugshot
	}
	return player.ImageKindStandingShot
}

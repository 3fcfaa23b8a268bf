package dto

import (
	"time"

	"github.com/scoutpro/scoutpro-be/internal/coach"
	"github.com/scoutpro/scoutpro-be/internal/player"
)

type SignupRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token   string `json:"token"`
	Success string `json:"success,omitempty"`
}

type CoachResponse struct {
	CoachID  string      `json:"coach_id"`
	FullName string      `json:"fullName"`
	Username string      `json:"username"`
	Players  []PlayerDTO `json:"players"`
}

// PlayerForm carries the editable player fields of the multipart
// create/update forms. Image files travel alongside it, not in it.
type PlayerForm struct {
	PlayerName      string   `form:"playerName"`
	Position        string   `form:"position"`
	TeamName        string   `form:"teamName"`
	HeightWithShoes string   `form:"heightWithShoes"`
	Weight          string   `form:"weight"`
	BodyFat         string   `form:"bodyFat"`
	WingSpan        string   `form:"wingSpan"`
	StandingReach   string   `form:"standingReach"`
	HandWidth       string   `form:"handWidth"`
	HandLength      string   `form:"handLength"`
	StandingVert    string   `form:"standingVert"`
	MaxVert         string   `form:"maxVert"`
	LaneAgility     string   `form:"laneAgility"`
	Shuttle         string   `form:"shuttle"`
	CourtSprint     string   `form:"courtSprint"`
	MaxSpeed        string   `form:"maxSpeed"`
	MaxJump         string   `form:"maxJump"`
	Prpp            string   `form:"prpp"`
	Acceleration    string   `form:"acceleration"`
	Deceleration    string   `form:"deceleration"`
	Ttto            string   `form:"ttto"`
	BrakingPhase    string   `form:"brakingPhase"`
	Description     string   `form:"description"`
	Videos          []string `form:"videos"`
}

type ImageDTO struct {
	RemoteID string `json:"remote_id"`
	URL      string `json:"url"`
	Kind     string `json:"kind"`
}

type ArtifactDTO struct {
	RemoteID string `json:"remote_id"`
	URL      string `json:"url"`
}

type PlayerDTO struct {
	PlayerID        string       `json:"player_id"`
	PlayerName      string       `json:"playerName"`
	Position        string       `json:"position"`
	TeamName        string       `json:"teamName"`
	HeightWithShoes string       `json:"heightWithShoes"`
	Weight          string       `json:"weight"`
	BodyFat         string       `json:"bodyFat"`
	WingSpan        string       `json:"wingSpan"`
	StandingReach   string       `json:"standingReach"`
	HandWidth       string       `json:"handWidth"`
	HandLength      string       `json:"handLength"`
	StandingVert    string       `json:"standingVert"`
	MaxVert         string       `json:"maxVert"`
	LaneAgility     string       `json:"laneAgility"`
	Shuttle         string       `json:"shuttle"`
	CourtSprint     string       `json:"courtSprint"`
	MaxSpeed        string       `json:"maxSpeed"`
	MaxJump         string       `json:"maxJump"`
	Prpp            string       `json:"prpp"`
	Acceleration    string       `json:"acceleration"`
	Deceleration    string       `json:"deceleration"`
	Ttto            string       `json:"ttto"`
	BrakingPhase    string       `json:"brakingPhase"`
	Description     string       `json:"description"`
	Images          []ImageDTO   `json:"images"`
	Videos          []string     `json:"videos"`
	Preview         *ArtifactDTO `json:"preview,omitempty"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

// Apply copies the form fields onto a player record. Empty form fields leave
// the existing value alone so partial updates do not blank out measurements.
func (f *PlayerForm) Apply(p *player.Player) {
	fields := map[*string]string{
		&p.PlayerName:      f.PlayerName,
		&p.Position:        f.Position,
		&p.TeamName:        f.TeamName,
		&p.HeightWithShoes: f.HeightWithShoes,
		&p.Weight:          f.Weight,
		&p.BodyFat:         f.BodyFat,
		&p.WingSpan:        f.WingSpan,
		&p.StandingReach:   f.StandingReach,
		&p.HandWidth:       f.HandWidth,
		&p.HandLength:      f.HandLength,
		&p.StandingVert:    f.StandingVert,
		&p.MaxVert:         f.MaxVert,
		&p.LaneAgility:     f.LaneAgility,
		&p.Shuttle:         f.Shuttle,
		&p.CourtSprint:     f.CourtSprint,
		&p.MaxSpeed:        f.MaxSpeed,
		&p.MaxJump:         f.MaxJump,
		&p.Prpp:            f.Prpp,
		&p.Acceleration:    f.Acceleration,
		&p.Deceleration:    f.Deceleration,
		&p.Ttto:            f.Ttto,
		&p.BrakingPhase:    f.BrakingPhase,
		&p.Description:     f.Description,
	}

	for dst, v := range fields {
		if v != "" {
			*dst = v
		}
	}

	if f.Videos != nil {
		p.Videos = player.StringList(f.Videos)
	}
}

// FromPlayer converts a player record into its API representation
func FromPlayer(p *player.Player) PlayerDTO {
	images := make([]ImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageDTO{
			RemoteID: img.RemoteID,
			URL:      img.URL,
			Kind:     img.Kind,
		})
	}

	videos := []string(p.Videos)
	if videos == nil {
		videos = []string{}
	}

	dto := PlayerDTO{
		PlayerID:        p.ID,
		PlayerName:      p.PlayerName,
		Position:        p.Position,
		TeamName:        p.TeamName,
		HeightWithShoes: p.HeightWithShoes,
		Weight:          p.Weight,
		BodyFat:         p.BodyFat,
		WingSpan:        p.WingSpan,
		StandingReach:   p.StandingReach,
		HandWidth:       p.HandWidth,
		HandLength:      p.HandLength,
		StandingVert:    p.StandingVert,
		MaxVert:         p.MaxVert,
		LaneAgility:     p.LaneAgility,
		Shuttle:         p.Shuttle,
		CourtSprint:     p.CourtSprint,
		MaxSpeed:        p.MaxSpeed,
		MaxJump:         p.MaxJump,
		Prpp:            p.Prpp,
		Acceleration:    p.Acceleration,
		Deceleration:    p.Deceleration,
		Ttto:            p.Ttto,
		BrakingPhase:    p.BrakingPhase,
		Description:     p.Description,
		Images:          images,
		Videos:          videos,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if preview := p.Preview(); preview != nil {
		dto.Preview = &ArtifactDTO{
			RemoteID: preview.RemoteID,
			URL:      preview.URL,
		}
	}

	return dto
}

// FromCoach converts a coach and their roster into the /user response
func FromCoach(c *coach.Coach, players []player.Player) CoachResponse {
	dtos := make([]PlayerDTO, 0, len(players))
	for i := range players {
		dtos = append(dtos, FromPlayer(&players[i]))
	}

	return CoachResponse{
		CoachID:  c.ID,
		FullName: c.FullName,
		Username: c.Username,
		Players:  dtos,
	}
}

package player

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPlayerNotFound is returned when a player record does not exist
	ErrPlayerNotFound = errors.New("player not found")
)

// Image slot kinds, by upload position
const (
	ImageKindMugshot      = "mugshot"
	ImageKindStandingShot = "standingshot"
)

// Image is an uploaded player photo reference
type Image struct {
	RemoteID string `json:"remote_id"`
	URL      string `json:"url"`
	Kind     string `json:"kind"`
}

// ImageList stores player images as a JSONB column
type ImageList []Image

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
	return json.Unmarshal(data, l)
}

// StringList stores a list of strings as a JSONB column
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	return json.Unmarshal(data, l)
}

// Artifact is the rendered scouting card reference held by a player record
type Artifact struct {
	RemoteID string `json:"remote_id"`
	URL      string `json:"url"`
}

// Player is an athlete record. Scalar measurement fields are free-form
// strings ("6' 10\"", "N/A", ...). The preview columns are mutated only by
// the artifact pipeline, never by the CRUD layer.
type Player struct {
	ID      string `db:"player_id"`
	CoachID string `db:"coach_id"`

	PlayerName      string `db:"player_name"`
	Position        string `db:"position"`
	TeamName        string `db:"team_name"`
	HeightWithShoes string `db:"height_with_shoes"`
	Weight          string `db:"weight"`
	BodyFat         string `db:"body_fat"`
	WingSpan        string `db:"wing_span"`
	StandingReach   string `db:"standing_reach"`
	HandWidth       string `db:"hand_width"`
	HandLength      string `db:"hand_length"`
	StandingVert    string `db:"standing_vert"`
	MaxVert         string `db:"max_vert"`
	LaneAgility     string `db:"lane_agility"`
	Shuttle         string `db:"shuttle"`
	CourtSprint     string `db:"court_sprint"`
	MaxSpeed        string `db:"max_speed"`
	MaxJump         string `db:"max_jump"`
	Prpp            string `db:"prpp"`
	Acceleration    string `db:"acceleration"`
	Deceleration    string `db:"deceleration"`
	Ttto            string `db:"ttto"`
	BrakingPhase    string `db:"braking_phase"`
	Description     string `db:"description"`

	Images ImageList  `db:"images"`
	Videos StringList `db:"videos"`

	PreviewRemoteID string `db:"preview_remote_id"`
	PreviewURL      string `db:"preview_url"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Preview returns the live artifact reference, or nil if none was generated
// yet
func (p *Player) Preview() *Artifact {
	if p.PreviewRemoteID == "" {
		return nil
	}
	return &Artifact{
		RemoteID: p.PreviewRemoteID,
		URL:      p.PreviewURL,
	}
}

// ImageURL returns the URL of the image in the given slot, or empty
func (p *Player) ImageURL(kind string) string {
	for _, img := range p.Images {
		if img.Kind == kind {
			return img.URL
		}
	}
	return ""
}

package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/scoutpro/scoutpro-be/internal/player"
)

// Substitution defaults. The sentinel "N/A" is also what bulk import writes
// for blank cells, so a field carrying it renders the same as a missing one.
const (
	DefaultValue       = "N/A"
	DefaultDescription = "No description available."

	DefaultMugshotURL      = "https://res.cloudinary.com/uzairarslan/image/upload/v1730518031/ScoutPro/Players/ehqjrudw4jw61lzju8pt.png"
	DefaultStandingShotURL = "https://res.cloudinary.com/uzairarslan/image/upload/v1731158399/ScoutPro/Group_48_c0akgu.png"
)

// LoadTemplate reads the card template from disk
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read card template: %w", err)
	}
	return string(data), nil
}

// Fill substitutes every placeholder in the template with the corresponding
// player field. No placeholder from the known set survives in the output:
// absent, empty and "N/A" fields resolve to their defaults. Unknown
// placeholders pass through unchanged.
func Fill(template string, p *player.Player) string {
	replacer := strings.NewReplacer(
		"{{playerName}}", fieldOrDefault(p.PlayerName),
		"{{position}}", fieldOrDefault(p.Position),
		"{{teamName}}", fieldOrDefault(p.TeamName),
		"{{weight}}", fieldOrDefault(p.Weight),
		"{{heightWithShoes}}", fieldOrDefault(p.HeightWithShoes),
		"{{bodyFat}}", fieldOrDefault(p.BodyFat),
		"{{wingSpan}}", fieldOrDefault(p.WingSpan),
		"{{standingReach}}", fieldOrDefault(p.StandingReach),
		"{{handWidth}}", fieldOrDefault(p.HandWidth),
		"{{handLength}}", fieldOrDefault(p.HandLength),
		"{{standingVert}}", fieldOrDefault(p.StandingVert),
		"{{maxVert}}", fieldOrDefault(p.MaxVert),
		"{{laneAgility}}", fieldOrDefault(p.LaneAgility),
		"{{shuttle}}", fieldOrDefault(p.Shuttle),
		"{{courtSprint}}", fieldOrDefault(p.CourtSprint),
		"{{maxSpeed}}", fieldOrDefault(p.MaxSpeed),
		"{{maxJump}}", fieldOrDefault(p.MaxJump),
		"{{prpp}}", fieldOrDefault(p.Prpp),
		"{{acceleration}}", fieldOrDefault(p.Acceleration),
		"{{deceleration}}", fieldOrDefault(p.Deceleration),
		"{{ttto}}", fieldOrDefault(p.Ttto),
		"{{breakingPhase}}", fieldOrDefault(p.BrakingPhase),
		"{{description}}", description(p.Description),
		"{{mugShot}}", imageOrDefault(p, player.ImageKindMugshot, DefaultMugshotURL),
		"{{standingShot}}", imageOrDefault(p, player.ImageKindStandingShot, DefaultStandingShotURL),
	)

	return replacer.Replace(template)
}

func fieldOrDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultValue
	}
	return v
}

func description(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == DefaultValue {
		return DefaultDescription
	}
	return v
}

func imageOrDefault(p *player.Player, kind, fallback string) string {
	if url := p.ImageURL(kind); url != "" {
		return url
	}
	return fallback
}

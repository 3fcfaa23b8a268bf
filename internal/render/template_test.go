package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutpro/scoutpro-be/internal/player"
)

func fullPlayer() *player.Player {
	return &player.Player{
		ID:              "player-1",
		PlayerName:      "Victor Wembanyama",
		Position:        "C",
		TeamName:        "Spurs",
		HeightWithShoes: `7' 5"`,
		Weight:          "230 lbs",
		BodyFat:         "6.5%",
		WingSpan:        `8' 0"`,
		StandingReach:   `9' 7"`,
		HandWidth:       "10.5",
		HandLength:      "9.5",
		StandingVert:    "29.0",
		MaxVert:         "34.5",
		LaneAgility:     "11.4",
		Shuttle:         "3.1",
		CourtSprint:     "3.3",
		MaxSpeed:        "18.2",
		MaxJump:         "36.1",
		Prpp:            "54.2",
		Acceleration:    "4.1",
		Deceleration:    "3.8",
		Ttto:            "0.58",
		BrakingPhase:    "0.31",
		Description:     "Generational rim protector with guard skills.",
		Images: player.ImageList{
			{RemoteID: "mug-1", URL: "https://cdn.example.com/mug-1.png", Kind: player.ImageKindMugshot},
			{RemoteID: "stand-1", URL: "https://cdn.example.com/stand-1.png", Kind: player.ImageKindStandingShot},
		},
	}
}

func TestFillSubstitutesAllPlaceholders(t *testing.T) {
	template, err := LoadTemplate("../../templates/card.html")
	require.NoError(t, err)

	markup := Fill(template, fullPlayer())

	assert.NotContains(t, markup, "{{")
	assert.NotContains(t, markup, "}}")
	assert.Contains(t, markup, "Victor Wembanyama")
	assert.Contains(t, markup, `7' 5"`)
	assert.Contains(t, markup, "https://cdn.example.com/mug-1.png")
	assert.Contains(t, markup, "https://cdn.example.com/stand-1.png")
}

func TestFillEmptyPlayerUsesDefaults(t *testing.T) {
	template, err := LoadTemplate("../../templates/card.html")
	require.NoError(t, err)

	markup := Fill(template, &player.Player{})

	assert.NotContains(t, markup, "{{")
	assert.Contains(t, markup, DefaultValue)
	assert.Contains(t, markup, DefaultDescription)
	assert.Contains(t, markup, DefaultMugshotURL)
	assert.Contains(t, markup, DefaultStandingShotURL)
}

func TestFillFieldDefaults(t *testing.T) {
	tests := []struct {
		name     string
		template string
		player   player.Player
		want     string
	}{
		{
			name:     "empty field becomes N/A",
			template: "{{weight}}",
			player:   player.Player{},
			want:     DefaultValue,
		},
		{
			name:     "whitespace-only field becomes N/A",
			template: "{{weight}}",
			player:   player.Player{Weight: "   "},
			want:     DefaultValue,
		},
		{
			name:     "populated field passes through",
			template: "{{weight}}",
			player:   player.Player{Weight: "230 lbs"},
			want:     "230 lbs",
		},
		{
			name:     "empty description gets default text",
			template: "{{description}}",
			player:   player.Player{},
			want:     DefaultDescription,
		},
		{
			name:     "N/A description gets default text",
			template: "{{description}}",
			player:   player.Player{Description: "N/A"},
			want:     DefaultDescription,
		},
		{
			name:     "real description passes through",
			template: "{{description}}",
			player:   player.Player{Description: "Elite finisher."},
			want:     "Elite finisher.",
		},
		{
			name:     "missing mugshot falls back",
			template: "{{mugShot}}",
			player:   player.Player{},
			want:     DefaultMugshotURL,
		},
		{
			name:     "missing standing shot falls back",
			template: "{{standingShot}}",
			player:   player.Player{},
			want:     DefaultStandingShotURL,
		},
		{
			name:     "uploaded mugshot wins over fallback",
			template: "{{mugShot}}",
			player: player.Player{Images: player.ImageList{
				{RemoteID: "m", URL: "https://cdn.example.com/m.png", Kind: player.ImageKindMugshot},
			}},
			want: "https://cdn.example.com/m.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fill(tt.template, &tt.player)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFillIsDeterministic(t *testing.T) {
	template := "{{playerName}} / {{weight}} / {{description}}"
	p := fullPlayer()

	first := Fill(template, p)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Fill(template, p))
	}
}

func TestFillLeavesUnknownPlaceholders(t *testing.T) {
	markup := Fill("{{playerName}} {{somethingElse}}", fullPlayer())

	assert.True(t, strings.Contains(markup, "{{somethingElse}}"))
	assert.Contains(t, markup, "Victor Wembanyama")
}

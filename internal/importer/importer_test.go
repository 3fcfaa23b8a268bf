package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into the first sheet of a fresh workbook and
// returns it as a reader
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestParseWorkbook(t *testing.T) {
	r := buildWorkbook(t, [][]any{
		{"PLAYER", "POS", "HEIGHT", "WEIGHT", "WINGSPAN", "Description"},
		{"Jalen Green", "SG", `6'4`, "180 lbs", `6'8`, "Explosive guard."},
		{"Chet Holmgren", "C", `7'0`, "-", "", ""},
	})

	players, err := Parse(r)
	require.NoError(t, err)
	require.Len(t, players, 2)

	first := players[0]
	assert.Equal(t, "Jalen Green", first.PlayerName)
	assert.Equal(t, "SG", first.Position)
	assert.Equal(t, `6' 4`, first.HeightWithShoes)
	assert.Equal(t, "180 lbs", first.Weight)
	assert.Equal(t, `6' 8`, first.WingSpan)
	assert.Equal(t, "Explosive guard.", first.Description)
	// columns absent from the sheet default like blank cells
	assert.Equal(t, "N/A", first.MaxVert)
	assert.Equal(t, "N/A", first.Shuttle)

	second := players[1]
	assert.Equal(t, "Chet Holmgren", second.PlayerName)
	assert.Equal(t, `7' 0`, second.HeightWithShoes)
	assert.Equal(t, "N/A", second.Weight)
	assert.Equal(t, "N/A", second.WingSpan)
	assert.Equal(t, "N/A", second.Description)
}

func TestParseSkipsNamelessRows(t *testing.T) {
	r := buildWorkbook(t, [][]any{
		{"PLAYER", "POS"},
		{"", "PG"},
		{"-", "SF"},
		{"Real Player", "C"},
	})

	players, err := Parse(r)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Real Player", players[0].PlayerName)
}

func TestParseHeaderOnlyWorkbook(t *testing.T) {
	r := buildWorkbook(t, [][]any{
		{"PLAYER", "POS"},
	})

	players, err := Parse(r)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(strings.NewReader("this is not a zip archive"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

func TestSanitizeMeasurement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "feet and inches regain their space",
			input: `6'10`,
			want:  `6' 10`,
		},
		{
			name:  "already spaced value unchanged",
			input: `6' 10`,
			want:  `6' 10`,
		},
		{
			name:  "inch mark keeps trailing space",
			input: `10" wide`,
			want:  `10" wide`,
		},
		{
			name:  "plain number untouched",
			input: "34.5",
			want:  "34.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeMeasurement(tt.input))
		})
	}
}

func TestCellDefaults(t *testing.T) {
	row := Row{
		"WEIGHT":  "  210 lbs ",
		"HEIGHT":  `6'9`,
		"SHUTTLE": "-",
	}

	assert.Equal(t, "210 lbs", cell(row, "WEIGHT"))
	assert.Equal(t, `6' 9`, cell(row, "HEIGHT"))
	assert.Equal(t, "N/A", cell(row, "SHUTTLE"))
	assert.Equal(t, "N/A", cell(row, "MAX VERT"))
}

package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/scoutpro/scoutpro-be/internal/player"
)

// Spreadsheet column headers, as exported by the combine testing sheets
const (
	colPlayer        = "PLAYER"
	colPosition      = "POS"
	colHeight        = "HEIGHT"
	colWeight        = "WEIGHT"
	colBodyComp      = "BODY COMP"
	colWingspan      = "WINGSPAN"
	colStandingReach = "STANDING REACH"
	colHandWidth     = "HAND WIDTH"
	colHandLength    = "HAND LENGTH"
	colStandingVert  = "STANDING VERT"
	colMaxVert       = "MAX VERT"
	colLaneAgility   = "LANE AGILITY"
	colShuttle       = "SHUTTLE"
	colCourtSprint   = "3/4 COURT SPRINT"
	colMaxSpeed      = "MAX SPEED"
	colMaxJump       = "MAX JUMP"
	colPropPower     = "PROPULSIVE POWER"
	colAcceleration  = "ACCELERATION"
	colDeceleration  = "DECELERATION"
	colTakeOff       = "TAKE OFF"
	colBrakingPhase  = "BRAKING PHASE"
	colDescription   = "Description"
)

// measurementColumns carry feet/inches notation that spreadsheet tools
// mangle; their cells get re-spaced before use
var measurementColumns = map[string]bool{
	colHeight:        true,
	colWingspan:      true,
	colStandingReach: true,
	colHandWidth:     true,
	colHandLength:    true,
	colStandingVert:  true,
	colMaxVert:       true,
}

var (
	feetInchesRe = regexp.MustCompile(`(\d)'(\d)`)
	inchSpaceRe  = regexp.MustCompile(`(\d)"\s`)
)

// Row is one spreadsheet row keyed by its column header
type Row map[string]string

// ReadRows parses the first sheet of an xlsx workbook. The first row is the
// header; short rows are padded with empty cells.
func ReadRows(r io.Reader) ([]Row, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	result := make([]Row, 0, len(rows)-1)

	for _, cells := range rows[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		if len(row) > 0 {
			result = append(result, row)
		}
	}

	return result, nil
}

// PlayerFromRow builds a player record from a spreadsheet row. Blank and "-"
// cells become "N/A"; measurement cells are sanitized first.
func PlayerFromRow(row Row) player.Player {
	return player.Player{
		PlayerName:      cell(row, colPlayer),
		Position:        cell(row, colPosition),
		HeightWithShoes: cell(row, colHeight),
		Weight:          cell(row, colWeight),
		BodyFat:         cell(row, colBodyComp),
		WingSpan:        cell(row, colWingspan),
		StandingReach:   cell(row, colStandingReach),
		HandWidth:       cell(row, colHandWidth),
		HandLength:      cell(row, colHandLength),
		StandingVert:    cell(row, colStandingVert),
		MaxVert:         cell(row, colMaxVert),
		LaneAgility:     cell(row, colLaneAgility),
		Shuttle:         cell(row, colShuttle),
		CourtSprint:     cell(row, colCourtSprint),
		MaxSpeed:        cell(row, colMaxSpeed),
		MaxJump:         cell(row, colMaxJump),
		Prpp:            cell(row, colPropPower),
		Acceleration:    cell(row, colAcceleration),
		Deceleration:    cell(row, colDeceleration),
		Ttto:            cell(row, colTakeOff),
		BrakingPhase:    cell(row, colBrakingPhase),
		Description:     cell(row, colDescription),
	}
}

// Parse reads a workbook and returns one player record per data row
func Parse(r io.Reader) ([]player.Player, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}

	players := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		p := PlayerFromRow(row)
		if p.PlayerName == "N/A" {
			// a row without a player name is noise, not a record
			continue
		}
		players = append(players, p)
	}

	return players, nil
}

func cell(row Row, column string) string {
	v := row[column]
	if measurementColumns[column] {
		v = sanitizeMeasurement(v)
	}

	v = strings.TrimSpace(v)
	if v == "" || v == "-" {
		return "N/A"
	}
	return v
}

// sanitizeMeasurement restores the space in feet/inches notation (6'10 ->
// 6' 10) and normalizes spacing after the inch mark
func sanitizeMeasurement(v string) string {
	v = feetInchesRe.ReplaceAllString(v, `$1' $2`)
	v = inchSpaceRe.ReplaceAllString(v, `$1" `)
	return v
}

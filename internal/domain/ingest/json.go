package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/careerstandings/internal/domain/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// dnfMarker is the position TPVirtual's API reports for non-finishers.
const dnfMarker = 32767

// JSONAdapter parses TPVirtual API results, either a bare array or an object
// with a "results" array.
type JSONAdapter struct{}

func (JSONAdapter) Format() Format { return FormatJSON }

type jsonEnvelope struct {
	Results []jsoniter.RawMessage `json:"results"`
}

type jsonResult struct {
	Position  flexString `json:"position"`
	IsDNF     bool       `json:"isDNF"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	PlayerID  flexString `json:"playerId"`
	ARR       flexString `json:"arr"`
	Rating    flexString `json:"rating"`
	TeamName  string     `json:"teamName"`
	IsBot     bool       `json:"isBot"`
	Gender    flexString `json:"gender"`
	Time      flexString `json:"time"`
	Pen       flexString `json:"pen"`
}

func (JSONAdapter) Parse(file RawFile) ([]Record, error) {
	data := bytes.TrimSpace(bytes.TrimPrefix(file.Data, utf8BOM))
	if len(data) == 0 {
		return nil, ErrEmptySource
	}

	var rows []jsoniter.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode json array: %w", err)
		}
	case '{':
		var env jsonEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode json object: %w", err)
		}
		rows = env.Results
	default:
		return nil, fmt.Errorf("%w: json must start with [ or {", ErrUnknownFormat)
	}

	out := make([]Record, 0, len(rows))
	for i, raw := range rows {
		out = append(out, jsonRecord(i+1, raw))
	}
	return out, nil
}

func jsonRecord(row int, raw jsoniter.RawMessage) Record {
	var jr jsonResult
	if err := json.Unmarshal(raw, &jr); err != nil {
		return Record{Row: row, Err: fmt.Errorf("decode row: %w", err)}
	}

	rating := lenientInt(string(jr.ARR))
	if rating == 0 {
		rating = lenientInt(string(jr.Rating))
	}

	rec := Record{
		Row:      row,
		Category: string(jr.Gender),
		Result: model.EventResult{
			ParticipantID: string(jr.PlayerID),
			DisplayName:   strings.TrimSpace(jr.FirstName + " " + jr.LastName),
			Team:          strings.TrimSpace(jr.TeamName),
			Rating:        rating,
			EventRating:   lenientInt(string(jr.Rating)),
			IsSimulated:   jr.IsBot,
			TimeSeconds:   lenientFloat(string(jr.Time)) / 1000,
			Pen:           max(1, lenientInt(string(jr.Pen))),
		},
	}

	if jr.IsDNF {
		rec.Result.FinishPosition = model.DNF
		return rec
	}
	rawPos := strings.TrimSpace(string(jr.Position))
	if rawPos == "" {
		rec.Err = ErrMissingPosition
		return rec
	}
	if n, err := strconv.Atoi(rawPos); err == nil && n >= dnfMarker {
		rec.Result.FinishPosition = model.DNF
		return rec
	}
	pos, err := model.ParsePosition(rawPos)
	if err != nil {
		rec.Err = err
		return rec
	}
	rec.Result.FinishPosition = pos
	return rec
}

// flexString accepts JSON strings, numbers and booleans as text. null and
// missing values stay empty.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("unexpected composite value %s", b)
	default:
		*f = flexString(b)
	}
	return nil
}

func lenientFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

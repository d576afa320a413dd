package resultgen

import (
	"bytes"
	"encoding/csv"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const botCategory = "Bot"

type jsonRow struct {
	Position  int     `json:"position"`
	IsDNF     bool    `json:"isDNF"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	PlayerID  string  `json:"playerId"`
	ARR       int     `json:"arr"`
	TeamName  string  `json:"teamName,omitempty"`
	IsBot     bool    `json:"isBot"`
	Gender    string  `json:"gender,omitempty"`
	Time      float64 `json:"time,omitempty"`
	Pen       int     `json:"pen"`
}

type jsonEnvelope struct {
	Results []jsonRow `json:"results"`
}

func encodeJSON(rows []finish) ([]byte, error) {
	env := jsonEnvelope{Results: make([]jsonRow, len(rows))}
	for i, f := range rows {
		row := jsonRow{
			Position:  f.position,
			IsDNF:     f.position == 0,
			FirstName: f.rider.FirstName,
			LastName:  f.rider.LastName,
			PlayerID:  f.rider.ID,
			ARR:       f.rider.Rating,
			TeamName:  f.rider.Team,
			IsBot:     f.rider.Bot,
			Time:      f.timeMs,
			Pen:       f.pen,
		}
		if f.rider.Bot {
			row.Gender = botCategory
		}
		env.Results[i] = row
	}
	return json.MarshalIndent(env, "", "  ")
}

var csvHeader = []string{"Position", "Name", "UID", "ARR", "Team", "Gender", "Time", "Pen"}

func encodeCSV(rows []finish) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, f := range rows {
		position, elapsed := "DNF", ""
		if f.position > 0 {
			position = strconv.Itoa(f.position)
			elapsed = strconv.FormatFloat(f.timeMs/1000, 'f', 3, 64)
		}
		gender := ""
		if f.rider.Bot {
			gender = botCategory
		}
		record := []string{
			position,
			f.rider.Name(),
			f.rider.ID,
			strconv.Itoa(f.rider.Rating),
			f.rider.Team,
			gender,
			elapsed,
			strconv.Itoa(f.pen),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

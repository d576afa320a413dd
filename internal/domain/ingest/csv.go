package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/careerstandings/internal/domain/model"
)

// CSV column names in TPVirtual exports.
const (
	colPosition    = "Position"
	colName        = "Name"
	colUID         = "UID"
	colARR         = "ARR"
	colTeam        = "Team"
	colGender      = "Gender"
	colEventRating = "EventRating"
	colTime        = "Time"
	colPen         = "Pen"
)

// CSVAdapter parses TPVirtual CSV exports. Preamble lines before the header
// row are ignored; the header is the first row carrying both Position and UID.
type CSVAdapter struct{}

func (CSVAdapter) Format() Format { return FormatCSV }

func (CSVAdapter) Parse(file RawFile) ([]Record, error) {
	data := bytes.TrimPrefix(file.Data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySource
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var (
		cols map[string]int
		out  []Record
	)
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read csv: %w", err)
			}
			if cols != nil {
				out = append(out, Record{Row: perr.Line, Err: err})
			}
			continue
		}
		line, _ := r.FieldPos(0)

		if cols == nil {
			if isHeader(fields) {
				cols = indexColumns(fields)
			}
			continue
		}
		if blankRow(fields) {
			continue
		}
		out = append(out, csvRecord(cols, fields, line))
	}

	if cols == nil {
		return nil, ErrNoHeader
	}
	return out, nil
}

func isHeader(fields []string) bool {
	var pos, uid bool
	for _, f := range fields {
		switch strings.TrimSpace(f) {
		case colPosition:
			pos = true
		case colUID:
			uid = true
		}
	}
	return pos && uid
}

func indexColumns(fields []string) map[string]int {
	cols := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(f)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func csvRecord(cols map[string]int, fields []string, line int) Record {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	rec := Record{
		Row:      line,
		Category: get(colGender),
		Result: model.EventResult{
			ParticipantID: get(colUID),
			DisplayName:   get(colName),
			Team:          get(colTeam),
			Rating:        lenientInt(get(colARR)),
			EventRating:   lenientInt(get(colEventRating)),
			TimeSeconds:   parseTimeSeconds(get(colTime)),
			Pen:           max(1, lenientInt(get(colPen))),
		},
	}

	raw := get(colPosition)
	if raw == "" {
		rec.Err = ErrMissingPosition
		return rec
	}
	pos, err := model.ParsePosition(raw)
	if err != nil {
		rec.Err = err
		return rec
	}
	rec.Result.FinishPosition = pos
	return rec
}

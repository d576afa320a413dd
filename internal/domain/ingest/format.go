package ingest

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/okian/careerstandings/internal/domain/model"
)

// Format names a result export shape.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// RawFile is one result export as read from storage.
type RawFile struct {
	Name string
	Data []byte
}

// Record is one parsed row before identity and simulation rules apply.
// Err is set when the row cannot be used.
type Record struct {
	Row      int
	Result   model.EventResult
	Category string
	Err      error
}

// Adapter parses one source shape into records.
type Adapter interface {
	Format() Format
	Parse(file RawFile) ([]Record, error)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat picks a format from the file extension, falling back to the
// first non-space byte.
func DetectFormat(file RawFile) Format {
	switch strings.ToLower(filepath.Ext(file.Name)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(file.Data, utf8BOM), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatCSV
}

package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
)

var (
	// ErrNoHeader is returned for input without a header row.
	ErrNoHeader = eris.New("ingest: file has no header row")
	// ErrNoRecognizedColumns is returned when no header maps to a lead field.
	ErrNoRecognizedColumns = eris.New("ingest: no recognized lead columns in header")
	// ErrUnsupportedFormat is returned for file extensions with no decoder.
	ErrUnsupportedFormat = eris.New("ingest: unsupported file format")
)

// Format is a source file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the decoder for path by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "ingest: %s", filepath.Base(path))
	}
}

// ReadFile decodes the spreadsheet at path into a Table.
func ReadFile(path string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ReadXLSXFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, CSVOptions{})
}

// ParseFile decodes path and builds its canonical rows.
func ParseFile(path string) ([]model.ParsedRow, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return BuildRows(t)
}

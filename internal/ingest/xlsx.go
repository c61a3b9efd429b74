package ingest

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

var cellNewlines = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// ReadXLSX decodes a workbook held in r. Only the first sheet is read; its
// first row is the header.
func ReadXLSX(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: read input")
	}
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}
	return sheetTable(f)
}

// ReadXLSXFile decodes the workbook at path.
func ReadXLSXFile(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return sheetTable(f)
}

func sheetTable(f *xlsx.File) (*Table, error) {
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	sheet := f.Sheets[0]

	var t Table
	for i, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := rowToStrings(row)
		if t.Header == nil {
			t.Header = cells
			continue
		}
		// Pad short rows so every record spans the header.
		for len(cells) < len(t.Header) {
			cells = append(cells, "")
		}
		t.Records = append(t.Records, cells)
		t.Lines = append(t.Lines, i+1)
	}

	if t.Header == nil {
		return nil, ErrNoHeader
	}
	return &t, nil
}

// rowToStrings coerces every cell to a single-line string.
func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cellNewlines.Replace(cell.String())
	}
	return cells
}

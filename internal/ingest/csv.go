// Package ingest decodes lead spreadsheets (delimited text and workbooks)
// into canonical rows. Both formats share one mapping, normalization and
// validation path; they differ only in how raw cells are decoded.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a decoded spreadsheet: one header row and the data records below
// it. Records are not padded; BuildRows treats missing cells as empty.
type Table struct {
	Header  []string
	Records [][]string
	Lines   []int // source line of each record; nil means header+index
}

// line returns the 1-based source line of record i.
func (t *Table) line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// CSVOptions configures the delimited-text reader.
type CSVOptions struct {
	Delimiter rune // 0 = sniff comma vs tab from the header line
}

// ReadCSV decodes comma-separated text with a mandatory header row.
// UTF-8 input with or without a byte-order mark and UTF-16 input with a
// byte-order mark are accepted. Quoted fields may contain commas, doubled
// quotes and newlines.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	delim := opts.Delimiter
	if delim == 0 {
		d, err := sniffDelimiter(br)
		if err != nil {
			return nil, err
		}
		delim = d
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var t Table
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read record")
		}
		if t.Header == nil {
			t.Header = record
			continue
		}
		line, _ := reader.FieldPos(0)
		t.Records = append(t.Records, record)
		t.Lines = append(t.Lines, line)
	}

	if t.Header == nil {
		return nil, ErrNoHeader
	}
	return &t, nil
}

// sniffDelimiter peeks at the first line and picks tab when it holds tabs but
// no commas. Some ad platforms export tab-separated files with a .csv name.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, eris.Wrap(err, "csv: peek header")
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	first := string(head)
	if strings.Contains(first, "\t") && !strings.Contains(first, ",") {
		return '\t', nil
	}
	return ',', nil
}

package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestReadCSV_Basic(t *testing.T) {
	input := "Name,Email\nAna,ana@ex.com\nLuis,luis@ex.com\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email"}, table.Header)
	require.Len(t, table.Records, 2)
	assert.Equal(t, []string{"Luis", "luis@ex.com"}, table.Records[1])
	assert.Equal(t, []int{2, 3}, table.Lines)
}

func TestReadCSV_QuotedFields(t *testing.T) {
	input := "name,notes\n" +
		"\"Ruiz, Ana\",\"said \"\"call me\"\"\"\n" +
		"Luis,\"line one\nline two\"\n" +
		"Marta,ok\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, table.Records, 3)
	assert.Equal(t, "Ruiz, Ana", table.Records[0][0])
	assert.Equal(t, `said "call me"`, table.Records[0][1])
	assert.Equal(t, "line one\nline two", table.Records[1][1])
	// The multi-line record starts on line 3, so Marta sits on line 5.
	assert.Equal(t, []int{2, 3, 5}, table.Lines)
}

func TestReadCSV_UTF8BOM(t *testing.T) {
	input := "\ufeffEmail,Name\nana@ex.com,Ana\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Email", table.Header[0])
}

func TestReadCSV_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.String("Nombre,Correo\nJosé,jose@ex.com\n")
	require.NoError(t, err)

	table, err := ReadCSV(strings.NewReader(data), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nombre", "Correo"}, table.Header)
	assert.Equal(t, []string{"José", "jose@ex.com"}, table.Records[0])
}

func TestReadCSV_TabSniffing(t *testing.T) {
	input := "Name\tEmail\nAna\tana@ex.com\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email"}, table.Header)
	assert.Equal(t, []string{"Ana", "ana@ex.com"}, table.Records[0])
}

func TestReadCSV_ExplicitDelimiter(t *testing.T) {
	input := "Name;Email\nAna;ana@ex.com\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "ana@ex.com"}, table.Records[0])
}

func TestReadCSV_VariableFieldCount(t *testing.T) {
	input := "Name,Email,Phone\nAna,ana@ex.com\nLuis,luis@ex.com,600111222,extra\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Len(t, table.Records[0], 2)
	assert.Len(t, table.Records[1], 4)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(bytes.NewReader(nil), CSVOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Name,Email\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, table.Records)
}

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

func buildFromCSV(t *testing.T, input string) []model.ParsedRow {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	rows, err := BuildRows(table)
	require.NoError(t, err)
	return rows
}

func TestBuildRows_NormalizesRow(t *testing.T) {
	rows := buildFromCSV(t, "name,email,phone,country,status\nAna Ruiz,ANA@EX.com,,,new\n")
	require.Len(t, rows, 1)

	pr := rows[0]
	assert.Equal(t, 2, pr.Line)
	assert.Equal(t, "Ana Ruiz", pr.Row.Name)
	assert.Equal(t, "ana@ex.com", pr.Row.Email)
	assert.Equal(t, "", pr.Row.Phone)
	assert.Equal(t, model.CountryOther, pr.Row.Country)
	assert.Equal(t, model.StatusNotContacted, pr.Row.Status)
	assert.True(t, pr.Validation.Valid())
	assert.Equal(t, []string{normalize.WarnCountryDefaulted}, pr.Validation.Warnings)
}

func TestBuildRows_MissingName(t *testing.T) {
	rows := buildFromCSV(t, "name,email\nAna,ana@ex.com\n,luis@ex.com\n")
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Validation.Valid())
	assert.False(t, rows[1].Validation.Valid())
	assert.Equal(t, []string{MsgNameRequired}, rows[1].Validation.Errors)
	assert.Equal(t, 3, rows[1].Line)
}

func TestBuildRows_EmailErrors(t *testing.T) {
	rows := buildFromCSV(t, "name,email\nAna,\nLuis,not-an-email\nMarta,marta@ex\n")
	require.Len(t, rows, 3)

	assert.Equal(t, []string{MsgEmailRequired}, rows[0].Validation.Errors)
	assert.Equal(t, []string{MsgEmailInvalid}, rows[1].Validation.Errors)
	assert.Equal(t, []string{MsgEmailInvalid}, rows[2].Validation.Errors)
}

func TestBuildRows_FirstLastNameFallback(t *testing.T) {
	rows := buildFromCSV(t, "first name,last name,full name,email\n"+
		"Ana,Ruiz,,ana@ex.com\n"+
		"Ana,Ruiz,Ana María Ruiz,ana2@ex.com\n"+
		",Ruiz,,ruiz@ex.com\n")
	require.Len(t, rows, 3)

	assert.Equal(t, "Ana Ruiz", rows[0].Row.Name)
	assert.Equal(t, "Ana María Ruiz", rows[1].Row.Name)
	assert.Equal(t, "Ruiz", rows[2].Row.Name)
}

func TestBuildRows_CampaignFallback(t *testing.T) {
	rows := buildFromCSV(t, "name,email,campaign,campaign name\n"+
		"Ana,ana@ex.com,Ad Set 1,\n"+
		"Luis,luis@ex.com,Ad Set 1,Spring Intake\n")

	assert.Equal(t, "Ad Set 1", rows[0].Row.CampaignName)
	assert.Equal(t, "Spring Intake", rows[1].Row.CampaignName)
}

func TestBuildRows_FirstNonEmptyColumnWins(t *testing.T) {
	rows := buildFromCSV(t, "email,work email,name\n,work@ex.com,Ana\nhome@ex.com,work@ex.com,Luis\n")

	assert.Equal(t, "work@ex.com", rows[0].Row.Email)
	assert.Equal(t, "home@ex.com", rows[1].Row.Email)
}

func TestBuildRows_SkipsBlankRecords(t *testing.T) {
	rows := buildFromCSV(t, "name,email\nAna,ana@ex.com\n , \n,\nLuis,luis@ex.com\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "Luis", rows[1].Row.Name)
}

func TestBuildRows_DropsUnknownColumns(t *testing.T) {
	rows := buildFromCSV(t, "name,favourite colour,email\nAna,blue,ana@ex.com\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "ana@ex.com", rows[0].Row.Email)
	assert.True(t, rows[0].Validation.Valid())
}

func TestBuildRows_ShortRecords(t *testing.T) {
	rows := buildFromCSV(t, "name,email,phone,notes\nAna,ana@ex.com\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Row.Notes)
	assert.True(t, rows[0].Validation.Valid())
}

func TestBuildRows_Warnings(t *testing.T) {
	rows := buildFromCSV(t, "name,email,country,status,timeline,lead score\n"+
		"Ana,ana@ex.com,Spain,maybe later,soon,n/a\n")
	require.Len(t, rows, 1)

	v := rows[0].Validation
	assert.True(t, v.Valid())
	assert.Len(t, v.Warnings, 3)
	assert.Contains(t, v.Warnings[0], "Unknown status")
	assert.Nil(t, rows[0].Row.BarcelonaTimeline)
	assert.Nil(t, rows[0].Row.LeadScore)
}

func TestBuildRows_SourceScores(t *testing.T) {
	rows := buildFromCSV(t, "name,email,lead score,lead quality,phone valid\nAna,ana@ex.com,82,medium,no\n")
	require.Len(t, rows, 1)

	row := rows[0].Row
	require.NotNil(t, row.LeadScore)
	assert.Equal(t, 82, *row.LeadScore)
	require.NotNil(t, row.LeadQuality)
	assert.Equal(t, "Medium", *row.LeadQuality)
	require.NotNil(t, row.PhoneValid)
	assert.False(t, *row.PhoneValid)
	assert.Nil(t, row.NameScore)
}

func TestBuildRows_NoRecognizedColumns(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("foo,bar\n1,2\n"), CSVOptions{})
	require.NoError(t, err)

	_, err = BuildRows(table)
	assert.ErrorIs(t, err, ErrNoRecognizedColumns)
}

func TestBuildRows_NilTable(t *testing.T) {
	_, err := BuildRows(nil)
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte("Full Name,E-mail\nAna Ruiz,ana@ex.com\n"), 0o644))

	rows, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana Ruiz", rows[0].Row.Name)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"leads.csv", FormatCSV},
		{"LEADS.TSV", FormatCSV},
		{"export.txt", FormatCSV},
		{"book.xlsx", FormatXLSX},
		{"book.XLSM", FormatXLSX},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := DetectFormat("leads.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

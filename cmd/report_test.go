package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/reconcile"
)

func sampleSummary() *reconcile.Summary {
	return &reconcile.Summary{
		RunID:    "run-1",
		State:    reconcile.StateReported,
		Total:    2,
		Valid:    1,
		Inserted: 1,
		Invalid:  1,
		InvalidRows: []reconcile.RowIssue{{
			Line:     3,
			Row:      model.CanonicalRow{Email: "luis@ex.com", Country: model.CountryOther},
			Errors:   []string{"Name is required"},
			Warnings: []string{`Unknown country "Narnia", defaulted to Other`},
		}},
		Rows: []reconcile.RowOutcome{},
	}
}

func TestWriteSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, sampleSummary(), "json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, "reported", got["state"])
	assert.EqualValues(t, 1, got["inserted"])
}

func TestWriteSummary_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, sampleSummary(), "yaml"))

	out := buf.String()
	assert.Contains(t, out, "run_id: run-1")
	assert.Contains(t, out, "state: reported")
	assert.Contains(t, out, "- Name is required")
}

func TestWriteSummary_UnknownFormat(t *testing.T) {
	err := writeSummary(&bytes.Buffer{}, sampleSummary(), "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestWriteRejects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRejects(&buf, sampleSummary().InvalidRows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "line,name,email,phone,country,status,campaign_name,errors,warnings", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "3,,luis@ex.com,,Other,,,Name is required,"))
}

func TestFormatHeaders(t *testing.T) {
	var buf bytes.Buffer
	formatHeaders(&buf)

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "campaign name")
}

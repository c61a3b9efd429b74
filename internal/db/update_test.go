package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdate_Dollar(t *testing.T) {
	sql, err := BuildUpdate(UpdateConfig{
		Table:   "leads",
		Columns: []string{"phone", "notes", "updated_at"},
		Key:     "id",
	}, Dollar)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE leads SET phone = $1, notes = $2, updated_at = $3 WHERE id = $4", sql)
}

func TestBuildUpdate_Question(t *testing.T) {
	sql, err := BuildUpdate(UpdateConfig{Table: "leads", Columns: []string{"phone"}, Key: "id"}, Question)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE leads SET phone = ? WHERE id = ?", sql)
}

func TestBuildUpdate_Validation(t *testing.T) {
	_, err := BuildUpdate(UpdateConfig{Table: "leads", Key: "id"}, Dollar)
	assert.ErrorContains(t, err, "no columns")

	_, err = BuildUpdate(UpdateConfig{Columns: []string{"a"}}, Dollar)
	assert.ErrorContains(t, err, "table and key")
}

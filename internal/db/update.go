package db

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Dollar renders PostgreSQL placeholders ($1, $2, ...).
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Question renders SQLite placeholders.
func Question(int) string { return "?" }

// UpdateConfig defines a single-row UPDATE keyed by one column.
type UpdateConfig struct {
	Table   string   // target table
	Columns []string // columns to assign, in bind order
	Key     string   // WHERE column, bound last
}

// BuildUpdate renders UPDATE <table> SET c1 = $1, ... WHERE key = $n.
// Column names are not quoted; callers pass only known column constants.
func BuildUpdate(cfg UpdateConfig, ph Placeholder) (string, error) {
	if cfg.Table == "" || cfg.Key == "" {
		return "", eris.New("db: update: table and key are required")
	}
	if len(cfg.Columns) == 0 {
		return "", eris.New("db: update: no columns specified")
	}

	sets := make([]string, len(cfg.Columns))
	for i, c := range cfg.Columns {
		sets[i] = fmt.Sprintf("%s = %s", c, ph(i+1))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		cfg.Table, strings.Join(sets, ", "), cfg.Key, ph(len(cfg.Columns)+1)), nil
}

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/lead-ingest/internal/model"
)

var firstIntRe = regexp.MustCompile(`\d+`)

// Timeline extracts the first integer in raw ("6 months" → 6). Returns nil
// when raw holds no digits.
func Timeline(raw string) *int {
	m := firstIntRe.FindString(raw)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// Int parses a numeric score cell, rounding decimals. Returns nil for blank
// or non-numeric input.
func Int(raw string) *int {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

// Bool parses yes/no style cells. Returns nil when the value is not
// recognized.
func Bool(raw string) *bool {
	var v bool
	switch Fold(raw) {
	case "true", "yes", "y", "1", "si", "valid", "ok":
		v = true
	case "false", "no", "n", "0", "invalid":
		v = false
	default:
		return nil
	}
	return &v
}

// Quality canonicalizes a lead-quality label. Unknown labels are kept as
// given; blank input yields nil.
func Quality(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, q := range []model.Quality{model.QualityHigh, model.QualityMedium, model.QualityLow, model.QualityVeryLow} {
		if Key(s) == Key(string(q)) {
			out := string(q)
			return &out
		}
	}
	return &s
}

// Text trims raw and returns nil when it is blank.
func Text(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"01-02-06",
}

// Time parses a created-time cell in any of the layouts platform exports
// use. Times without a zone are read as UTC. Returns nil when unparseable.
func Time(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Package scoring computes the deterministic lead-quality score used when a
// source file does not carry its own scoring columns.
package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// Component caps (sum = 100).
const (
	MaxNameScore    = 25
	MaxEmailScore   = 30
	PhoneScore      = 25
	MaxRecencyScore = 20
)

// Quality band cut points, inclusive lower bounds on TotalScore.
const (
	HighThreshold   = 75
	MediumThreshold = 50
	LowThreshold    = 25
)

// Valid phone length bounds (digits only).
const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// Input holds the signals the score is computed from. Now anchors the
// intake recency component so results are reproducible.
type Input struct {
	Name   string
	Email  string
	Phone  string
	Intake string
	Now    time.Time
}

// Result is the computed score breakdown.
type Result struct {
	NameScore    int           `json:"name_score"`
	EmailScore   int           `json:"email_score"`
	PhoneValid   bool          `json:"phone_valid"`
	RecencyScore int           `json:"recency_score"`
	TotalScore   int           `json:"total_score"`
	Quality      model.Quality `json:"quality"`
}

// Score computes the composite lead score. It is pure: the same Input always
// yields the same Result.
func Score(in Input) Result {
	r := Result{
		NameScore:    nameScore(in.Name),
		EmailScore:   emailScore(in.Email),
		PhoneValid:   phoneValid(in.Phone),
		RecencyScore: recencyScore(in.Intake, in.Now),
	}
	r.TotalScore = r.NameScore + r.EmailScore + r.RecencyScore
	if r.PhoneValid {
		r.TotalScore += PhoneScore
	}
	r.Quality = Band(r.TotalScore)
	return r
}

// Band maps a total score to its quality label.
func Band(total int) model.Quality {
	switch {
	case total >= HighThreshold:
		return model.QualityHigh
	case total >= MediumThreshold:
		return model.QualityMedium
	case total >= LowThreshold:
		return model.QualityLow
	default:
		return model.QualityVeryLow
	}
}

// ApplyDefaults fills the score fields of row that the source did not
// supply. Explicit source values are never replaced.
func ApplyDefaults(row *model.CanonicalRow, now time.Time) {
	intake := ""
	if row.Intake != nil {
		intake = *row.Intake
	}
	r := Score(Input{Name: row.Name, Email: row.Email, Phone: row.Phone, Intake: intake, Now: now})

	if row.NameScore == nil {
		row.NameScore = intPtr(r.NameScore)
	}
	if row.EmailScore == nil {
		row.EmailScore = intPtr(r.EmailScore)
	}
	if row.PhoneValid == nil {
		v := r.PhoneValid
		row.PhoneValid = &v
	}
	if row.RecencyScore == nil {
		row.RecencyScore = intPtr(r.RecencyScore)
	}
	if row.LeadScore == nil {
		row.LeadScore = intPtr(r.TotalScore)
	}
	if row.LeadQuality == nil {
		q := string(Band(*row.LeadScore))
		row.LeadQuality = &q
	}
}

func intPtr(n int) *int { return &n }

func nameScore(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return 5
	}
	words := strings.Fields(name)
	if len(words) == 1 {
		return 10
	}
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters < 2 {
			return 15
		}
	}
	return MaxNameScore
}

var freeMailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"hotmail.com":    true,
	"hotmail.es":     true,
	"outlook.com":    true,
	"outlook.es":     true,
	"live.com":       true,
	"msn.com":        true,
	"yahoo.com":      true,
	"yahoo.es":       true,
	"icloud.com":     true,
	"me.com":         true,
	"aol.com":        true,
	"protonmail.com": true,
	"proton.me":      true,
	"gmx.com":        true,
}

var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"tempmail.com":      true,
	"temp-mail.org":     true,
	"yopmail.com":       true,
	"trashmail.com":     true,
	"sharklasers.com":   true,
	"getnada.com":       true,
	"dispostable.com":   true,
}

var roleLocalParts = map[string]bool{
	"info":      true,
	"admin":     true,
	"contact":   true,
	"sales":     true,
	"support":   true,
	"office":    true,
	"hello":     true,
	"noreply":   true,
	"no-reply":  true,
	"marketing": true,
	"test":      true,
}

func emailScore(email string) int {
	if !normalize.ValidEmail(email) {
		return 0
	}
	e := normalize.Email(email)
	at := strings.LastIndex(e, "@")
	local, domain := e[:at], e[at+1:]
	switch {
	case disposableDomains[domain]:
		return 5
	case roleLocalParts[local]:
		return 10
	case freeMailDomains[domain]:
		return 25
	default:
		return MaxEmailScore
	}
}

func phoneValid(phone string) bool {
	n := len(normalize.Phone(phone))
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}

var (
	yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// monthWords maps folded month names and academic-term words to a month.
	monthWords = map[string]time.Month{
		"january": time.January, "jan": time.January, "enero": time.January,
		"february": time.February, "feb": time.February, "febrero": time.February,
		"march": time.March, "mar": time.March, "marzo": time.March,
		"april": time.April, "apr": time.April, "abril": time.April,
		"may": time.May, "mayo": time.May,
		"june": time.June, "jun": time.June, "junio": time.June,
		"july": time.July, "jul": time.July, "julio": time.July,
		"august": time.August, "aug": time.August, "agosto": time.August,
		"september": time.September, "sep": time.September, "sept": time.September, "septiembre": time.September,
		"october": time.October, "oct": time.October, "octubre": time.October,
		"november": time.November, "nov": time.November, "noviembre": time.November,
		"december": time.December, "dec": time.December, "diciembre": time.December,
		"spring": time.February, "primavera": time.February,
		"summer": time.June, "verano": time.June,
		"fall": time.September, "autumn": time.September, "otono": time.September,
		"winter": time.January, "invierno": time.January,
	}
)

// parseIntake reads an intake label such as "September 2025", "Fall 2026",
// "2026-01" or "2025" and returns the first day of the intake month.
func parseIntake(intake string) (time.Time, bool) {
	s := normalize.Fold(intake)
	if s == "" {
		return time.Time{}, false
	}
	y := yearRe.FindString(s)
	if y == "" {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return time.Time{}, false
	}

	month := time.January
	found := false
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if m, ok := monthWords[tok]; ok {
			month, found = m, true
			break
		}
	}
	if !found {
		// Numeric month: "2026-01", "01/2026".
		rest := strings.Replace(s, y, " ", 1)
		if m := normalize.Timeline(rest); m != nil && *m >= 1 && *m <= 12 {
			month = time.Month(*m)
		}
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}

func recencyScore(intake string, now time.Time) int {
	start, ok := parseIntake(intake)
	if !ok {
		return 0
	}
	ref := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := (start.Year()-ref.Year())*12 + int(start.Month()-ref.Month())
	switch {
	case months < 0:
		return 3
	case months <= 6:
		return MaxRecencyScore
	case months <= 12:
		return 15
	case months <= 24:
		return 8
	default:
		return 3
	}
}

package normalize

import (
	"regexp"
	"strings"
)

// emailRe accepts the local@domain.tld shape. It is intentionally loose: no
// quoted local parts, no IP-literal domains.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]{2,}$`)

// Email trims, unwraps and lower-cases an address for storage and comparison.
func Email(raw string) string {
	e := strings.TrimSpace(raw)
	e = strings.Trim(e, "\"'<>")
	if len(e) >= 7 && strings.EqualFold(e[:7], "mailto:") {
		e = e[7:]
	}
	return strings.ToLower(strings.TrimSpace(e))
}

// ValidEmail reports whether raw looks like local@domain.tld.
func ValidEmail(raw string) bool {
	e := Email(raw)
	if e == "" || strings.Contains(e, "..") {
		return false
	}
	return emailRe.MatchString(e)
}

// Phone strips every non-digit character. The result is used for comparison
// only; stored phones keep their source formatting.
func Phone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneDisplay tidies a phone for storage without changing its digits:
// spreadsheet tools often prefix numbers with an apostrophe or "p:".
func PhoneDisplay(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.TrimPrefix(p, "'")
	if len(p) >= 2 && strings.EqualFold(p[:2], "p:") {
		p = strings.TrimSpace(p[2:])
	}
	return p
}

// Name trims and collapses internal whitespace.
func Name(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

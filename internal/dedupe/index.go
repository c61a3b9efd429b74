// Package dedupe flags imported rows that refer to leads already in the
// store, or to rows earlier in the same file.
package dedupe

import (
	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// MinPhoneDigits is the shortest normalized phone that counts as a duplicate
// key. Shorter digit strings are partial numbers and never match.
const MinPhoneDigits = 10

// Match describes the key that matched a row.
type Match struct {
	Key  model.MatchKey
	Lead *model.ExistingLead // nil for in-file matches
	Line int                 // source line of the earlier row for in-file matches
}

// Found reports whether anything matched.
func (m Match) Found() bool { return m.Key != model.MatchNone }

// Index holds the email and phone lookups for one run. It is built from a
// point-in-time snapshot; leads written by other processes during the run
// are not visible.
type Index struct {
	byID    map[string]*model.ExistingLead
	byEmail map[string]*model.ExistingLead
	byPhone map[string]*model.ExistingLead

	// rows accepted for insert earlier in this run, keyed the same way
	fileEmail map[string]int
	filePhone map[string]int
}

// NewIndex builds the lookups. When several snapshot leads share a key the
// first one wins.
func NewIndex(snapshot []model.ExistingLead) *Index {
	idx := &Index{
		byID:      make(map[string]*model.ExistingLead, len(snapshot)),
		byEmail:   make(map[string]*model.ExistingLead, len(snapshot)),
		byPhone:   make(map[string]*model.ExistingLead, len(snapshot)),
		fileEmail: make(map[string]int),
		filePhone: make(map[string]int),
	}
	for i := range snapshot {
		lead := &snapshot[i]
		idx.byID[lead.ID] = lead
		if email := normalize.Email(lead.ProspectEmail); email != "" {
			if _, ok := idx.byEmail[email]; !ok {
				idx.byEmail[email] = lead
			}
		}
		if phone := PhoneKey(lead.Phone); phone != "" {
			if _, ok := idx.byPhone[phone]; !ok {
				idx.byPhone[phone] = lead
			}
		}
	}
	return idx
}

// PhoneKey returns the digits of raw when there are enough to identify a
// number, else "".
func PhoneKey(raw string) string {
	digits := normalize.Phone(raw)
	if len(digits) < MinPhoneDigits {
		return ""
	}
	return digits
}

// Len returns the number of distinct emails and phones indexed.
func (idx *Index) Len() (emails, phones int) {
	return len(idx.byEmail), len(idx.byPhone)
}

// ByEmail looks up a stored lead by email.
func (idx *Index) ByEmail(email string) *model.ExistingLead {
	return idx.byEmail[normalize.Email(email)]
}

// ByPhone looks up a stored lead by phone. Short phones never match.
func (idx *Index) ByPhone(phone string) *model.ExistingLead {
	key := PhoneKey(phone)
	if key == "" {
		return nil
	}
	return idx.byPhone[key]
}

// Apply records a merge written to the lead with id, so later lookups in
// the run see the merged values. Keys are not re-indexed.
func (idx *Index) Apply(id string, patch model.Patch) {
	if lead, ok := idx.byID[id]; ok {
		lead.Apply(patch)
	}
}

// Check matches row against the snapshot, email first. Either key alone is
// enough.
func (idx *Index) Check(row model.CanonicalRow) Match {
	if lead := idx.ByEmail(row.Email); lead != nil {
		return Match{Key: model.MatchEmail, Lead: lead}
	}
	if lead := idx.ByPhone(row.Phone); lead != nil {
		return Match{Key: model.MatchPhone, Lead: lead}
	}
	return Match{}
}

// CheckFile matches row against rows tracked earlier in the run.
func (idx *Index) CheckFile(row model.CanonicalRow) Match {
	if line, ok := idx.fileEmail[normalize.Email(row.Email)]; ok {
		return Match{Key: model.MatchFile, Line: line}
	}
	if key := PhoneKey(row.Phone); key != "" {
		if line, ok := idx.filePhone[key]; ok {
			return Match{Key: model.MatchFile, Line: line}
		}
	}
	return Match{}
}

// Track records a row accepted for insert so later repeats in the same file
// are caught by CheckFile.
func (idx *Index) Track(row model.CanonicalRow, line int) {
	if email := normalize.Email(row.Email); email != "" {
		if _, ok := idx.fileEmail[email]; !ok {
			idx.fileEmail[email] = line
		}
	}
	if key := PhoneKey(row.Phone); key != "" {
		if _, ok := idx.filePhone[key]; !ok {
			idx.filePhone[key] = line
		}
	}
}

// Package store persists leads. The reconcile engine talks to it through
// the narrow Store interface; Postgres and SQLite back it in production and
// Memory backs it in tests.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
)

// Store defines the lead persistence operations used by the reconcile engine.
type Store interface {
	// FetchSnapshot reads the duplicate-detection projection of every lead.
	FetchSnapshot(ctx context.Context) ([]model.ExistingLead, error)
	// InsertMany writes one page of new leads. A page commits fully or not
	// at all.
	InsertMany(ctx context.Context, leads []model.Lead) (int, error)
	// UpdateByID applies a patch to one lead in a single statement.
	UpdateByID(ctx context.Context, id string, patch model.Patch) error
	// FindByEmail returns the oldest lead with the email, or nil.
	FindByEmail(ctx context.Context, email string) (*model.ExistingLead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Table is the leads table name.
const Table = "leads"

// leadColumns is the insert column order; leadValues must match it.
var leadColumns = []string{
	"id", "user_id", "prospect_name", "prospect_email", "phone", "country",
	"contact_status", "referral_destination", "referral_source", "notes",
	"campaign_name", "barcelona_timeline", "created_time", "intake",
	"name_score", "email_score", "phone_valid", "recency_score", "lead_score",
	"lead_quality", "is_duplicate", "duplicate_detected_at", "created_at",
	"updated_at",
}

func leadValues(l model.Lead) []any {
	vals := []any{
		l.ID, nilIfEmpty(l.UserID), l.Name, l.Email, l.Phone, l.Country,
		string(l.ContactStatus), l.ReferralDestination, l.ReferralSource, l.Notes,
		l.CampaignName, l.BarcelonaTimeline, l.CreatedTime, l.Intake,
		l.NameScore, l.EmailScore, l.PhoneValid, l.RecencyScore, l.LeadScore,
		l.LeadQuality, l.IsDuplicate, l.DuplicateDetectedAt, l.CreatedAt,
		l.UpdatedAt,
	}
	for i, v := range vals {
		vals[i] = bindValue(v)
	}
	return vals
}

// bindValue dereferences optional fields and widens ints so both drivers
// bind the same plain values.
func bindValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case *int:
		if x == nil {
			return nil
		}
		return int64(*x)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}

// snapshotSelect reads the ExistingLead projection; scanExisting matches its
// column order. Text columns are coalesced for rows written by other tools.
const snapshotSelect = `SELECT id, COALESCE(prospect_email, ''), COALESCE(phone, ''), COALESCE(country, ''),
	COALESCE(campaign_name, ''), COALESCE(referral_source, ''), barcelona_timeline, created_time,
	COALESCE(notes, ''), intake, name_score, email_score, lead_score, lead_quality, recency_score,
	phone_valid, contact_status
FROM leads`

type scannable interface {
	Scan(dest ...any) error
}

func scanExisting(row scannable) (model.ExistingLead, error) {
	var l model.ExistingLead
	var status string
	err := row.Scan(
		&l.ID, &l.ProspectEmail, &l.Phone, &l.Country,
		&l.CampaignName, &l.ReferralSource, &l.BarcelonaTimeline, &l.CreatedTime,
		&l.Notes, &l.Intake, &l.NameScore, &l.EmailScore, &l.LeadScore, &l.LeadQuality, &l.RecencyScore,
		&l.PhoneValid, &status,
	)
	l.ContactStatus = model.ContactStatus(status)
	return l, err
}

// patchArgs validates the patch columns and returns them sorted, followed
// by updated_at, with matching bind values.
func patchArgs(p model.Patch, now time.Time) ([]string, []any, error) {
	cols := p.Columns()
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		if !model.IsPatchColumn(c) {
			return nil, nil, eris.Errorf("store: column %q is not patchable", c)
		}
		args = append(args, bindValue(p[c]))
	}
	return append(cols, "updated_at"), append(args, now), nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

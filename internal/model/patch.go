package model

import (
	"sort"
	"time"
)

// Lead column names written by merge patches.
const (
	ColPhone               = "phone"
	ColCountry             = "country"
	ColContactStatus       = "contact_status"
	ColCampaignName        = "campaign_name"
	ColReferralSource      = "referral_source"
	ColBarcelonaTimeline   = "barcelona_timeline"
	ColCreatedTime         = "created_time"
	ColNotes               = "notes"
	ColIntake              = "intake"
	ColNameScore           = "name_score"
	ColEmailScore          = "email_score"
	ColPhoneValid          = "phone_valid"
	ColRecencyScore        = "recency_score"
	ColLeadScore           = "lead_score"
	ColLeadQuality         = "lead_quality"
	ColIsDuplicate         = "is_duplicate"
	ColDuplicateDetectedAt = "duplicate_detected_at"
)

var patchColumns = map[string]bool{
	ColPhone: true, ColCountry: true, ColContactStatus: true, ColCampaignName: true,
	ColReferralSource: true, ColBarcelonaTimeline: true, ColCreatedTime: true,
	ColNotes: true, ColIntake: true, ColNameScore: true, ColEmailScore: true,
	ColPhoneValid: true, ColRecencyScore: true, ColLeadScore: true,
	ColLeadQuality: true, ColIsDuplicate: true, ColDuplicateDetectedAt: true,
}

// IsPatchColumn reports whether col may appear in a Patch.
func IsPatchColumn(col string) bool { return patchColumns[col] }

// Patch is a set of column assignments applied to one lead in a single update.
// A nil value clears the column.
type Patch map[string]any

// Set assigns a column value.
func (p Patch) Set(col string, v any) { p[col] = v }

// Has reports whether the column is assigned.
func (p Patch) Has(col string) bool {
	_, ok := p[col]
	return ok
}

// Columns returns the assigned columns in sorted order.
func (p Patch) Columns() []string {
	cols := make([]string, 0, len(p))
	for c := range p {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Apply writes the patch onto l. Unknown columns are ignored; values must
// have the types merge rules assign.
func (l *Lead) Apply(p Patch, now time.Time) {
	for col, v := range p {
		switch col {
		case ColPhone:
			l.Phone, _ = v.(string)
		case ColCountry:
			l.Country, _ = v.(string)
		case ColContactStatus:
			s, _ := v.(string)
			l.ContactStatus = ContactStatus(s)
		case ColCampaignName:
			l.CampaignName, _ = v.(string)
		case ColReferralSource:
			l.ReferralSource, _ = v.(string)
		case ColNotes:
			l.Notes, _ = v.(string)
		case ColBarcelonaTimeline:
			l.BarcelonaTimeline = ptrOf[int](v)
		case ColCreatedTime:
			l.CreatedTime = ptrOf[time.Time](v)
		case ColIntake:
			l.Intake = ptrOf[string](v)
		case ColNameScore:
			l.NameScore = ptrOf[int](v)
		case ColEmailScore:
			l.EmailScore = ptrOf[int](v)
		case ColPhoneValid:
			l.PhoneValid = ptrOf[bool](v)
		case ColRecencyScore:
			l.RecencyScore = ptrOf[int](v)
		case ColLeadScore:
			l.LeadScore = ptrOf[int](v)
		case ColLeadQuality:
			l.LeadQuality = ptrOf[string](v)
		case ColIsDuplicate:
			l.IsDuplicate, _ = v.(bool)
		case ColDuplicateDetectedAt:
			l.DuplicateDetectedAt = ptrOf[time.Time](v)
		}
	}
	l.UpdatedAt = now
}

func ptrOf[T any](v any) *T {
	t, ok := v.(T)
	if !ok {
		return nil
	}
	return &t
}

// Apply writes the patch onto the snapshot projection the same way
// UpdateByID changes the stored lead.
func (e *ExistingLead) Apply(p Patch) {
	l := e.lead()
	l.Apply(p, time.Time{})
	*e = l.Existing()
}

func (e ExistingLead) lead() Lead {
	return Lead{
		ID:                e.ID,
		Email:             e.ProspectEmail,
		Phone:             e.Phone,
		Country:           e.Country,
		CampaignName:      e.CampaignName,
		ReferralSource:    e.ReferralSource,
		BarcelonaTimeline: e.BarcelonaTimeline,
		CreatedTime:       e.CreatedTime,
		Notes:             e.Notes,
		Intake:            e.Intake,
		NameScore:         e.NameScore,
		EmailScore:        e.EmailScore,
		LeadScore:         e.LeadScore,
		LeadQuality:       e.LeadQuality,
		RecencyScore:      e.RecencyScore,
		PhoneValid:        e.PhoneValid,
		ContactStatus:     e.ContactStatus,
	}
}

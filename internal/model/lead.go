// Package model defines the lead records shared by the ingest, reconcile and
// store packages.
package model

import (
	"strings"
	"time"
)

// ContactStatus is the sales-workflow state of a lead.
type ContactStatus string

const (
	StatusNotContacted ContactStatus = "not_contacted"
	StatusReferral     ContactStatus = "referral"
	StatusContacted    ContactStatus = "contacted"
	StatusUnqualified  ContactStatus = "unqualified"

	// Archived states only exist on persisted leads; imports never produce them.
	StatusArchivedReferral    ContactStatus = "archived_referral"
	StatusArchivedUnqualified ContactStatus = "archived_unqualified"
)

// RowStatuses lists the statuses an imported row may carry.
var RowStatuses = []ContactStatus{
	StatusNotContacted,
	StatusReferral,
	StatusContacted,
	StatusUnqualified,
}

// IsArchived reports whether the status is one of the archived_* states.
func (s ContactStatus) IsArchived() bool {
	return strings.HasPrefix(string(s), "archived")
}

// Quality is the bucketed lead-quality label.
type Quality string

const (
	QualityHigh    Quality = "High"
	QualityMedium  Quality = "Medium"
	QualityLow     Quality = "Low"
	QualityVeryLow Quality = "Very Low"
)

// CountryOther is the fallback country for blank or unresolvable values.
const CountryOther = "Other"

// Lead is the persisted prospect record.
type Lead struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"user_id,omitempty"`
	Name                string        `json:"prospect_name"`
	Email               string        `json:"prospect_email"`
	Phone               string        `json:"phone,omitempty"`
	Country             string        `json:"country"`
	ContactStatus       ContactStatus `json:"contact_status"`
	ReferralDestination string        `json:"referral_destination,omitempty"`
	ReferralSource      string        `json:"referral_source,omitempty"`
	Notes               string        `json:"notes,omitempty"`
	CampaignName        string        `json:"campaign_name,omitempty"`
	BarcelonaTimeline   *int          `json:"barcelona_timeline,omitempty"`
	CreatedTime         *time.Time    `json:"created_time,omitempty"`
	Intake              *string       `json:"intake,omitempty"`
	NameScore           *int          `json:"name_score,omitempty"`
	EmailScore          *int          `json:"email_score,omitempty"`
	PhoneValid          *bool         `json:"phone_valid,omitempty"`
	RecencyScore        *int          `json:"recency_score,omitempty"`
	LeadScore           *int          `json:"lead_score,omitempty"`
	LeadQuality         *string       `json:"lead_quality,omitempty"`
	IsDuplicate         bool          `json:"is_duplicate"`
	DuplicateDetectedAt *time.Time    `json:"duplicate_detected_at,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// ExistingLead is the read-only projection of a stored lead used for
// duplicate detection and merging.
type ExistingLead struct {
	ID                string        `json:"id"`
	ProspectEmail     string        `json:"prospect_email"`
	Phone             string        `json:"phone,omitempty"`
	Country           string        `json:"country,omitempty"`
	CampaignName      string        `json:"campaign_name,omitempty"`
	ReferralSource    string        `json:"referral_source,omitempty"`
	BarcelonaTimeline *int          `json:"barcelona_timeline,omitempty"`
	CreatedTime       *time.Time    `json:"created_time,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	Intake            *string       `json:"intake,omitempty"`
	NameScore         *int          `json:"name_score,omitempty"`
	EmailScore        *int          `json:"email_score,omitempty"`
	LeadScore         *int          `json:"lead_score,omitempty"`
	LeadQuality       *string       `json:"lead_quality,omitempty"`
	RecencyScore      *int          `json:"recency_score,omitempty"`
	PhoneValid        *bool         `json:"phone_valid,omitempty"`
	ContactStatus     ContactStatus `json:"contact_status"`
}

// Existing projects a full lead onto the snapshot shape.
func (l Lead) Existing() ExistingLead {
	return ExistingLead{
		ID:                l.ID,
		ProspectEmail:     l.Email,
		Phone:             l.Phone,
		Country:           l.Country,
		CampaignName:      l.CampaignName,
		ReferralSource:    l.ReferralSource,
		BarcelonaTimeline: l.BarcelonaTimeline,
		CreatedTime:       l.CreatedTime,
		Notes:             l.Notes,
		Intake:            l.Intake,
		NameScore:         l.NameScore,
		EmailScore:        l.EmailScore,
		LeadScore:         l.LeadScore,
		LeadQuality:       l.LeadQuality,
		RecencyScore:      l.RecencyScore,
		PhoneValid:        l.PhoneValid,
		ContactStatus:     l.ContactStatus,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// CanonicalRow is one imported record after header mapping and normalization.
type CanonicalRow struct {
	Name                string        `json:"name" yaml:"name"`
	Email               string        `json:"email" yaml:"email"`
	Phone               string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	Country             string        `json:"country" yaml:"country"`
	Status              ContactStatus `json:"status" yaml:"status"`
	ReferralDestination string        `json:"referral_destination,omitempty" yaml:"referral_destination,omitempty"`
	ReferralSource      string        `json:"referral_source,omitempty" yaml:"referral_source,omitempty"`
	Notes               string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	CampaignName        string        `json:"campaign_name,omitempty" yaml:"campaign_name,omitempty"`
	BarcelonaTimeline   *int          `json:"barcelona_timeline,omitempty" yaml:"barcelona_timeline,omitempty"`
	CreatedTime         *time.Time    `json:"created_time,omitempty" yaml:"created_time,omitempty"`
	Intake              *string       `json:"intake,omitempty" yaml:"intake,omitempty"`

	// Pre-supplied scoring fields; when set they win over computed values.
	NameScore    *int    `json:"name_score,omitempty" yaml:"name_score,omitempty"`
	EmailScore   *int    `json:"email_score,omitempty" yaml:"email_score,omitempty"`
	PhoneValid   *bool   `json:"phone_valid,omitempty" yaml:"phone_valid,omitempty"`
	RecencyScore *int    `json:"recency_score,omitempty" yaml:"recency_score,omitempty"`
	LeadScore    *int    `json:"lead_score,omitempty" yaml:"lead_score,omitempty"`
	LeadQuality  *string `json:"lead_quality,omitempty" yaml:"lead_quality,omitempty"`
}

// MatchKey names the duplicate key that matched a row.
type MatchKey string

const (
	MatchNone  MatchKey = ""
	MatchEmail MatchKey = "email"
	MatchPhone MatchKey = "phone"
	MatchFile  MatchKey = "file" // repeated earlier in the same import file
)

// ValidationResult is attached to every parsed row.
type ValidationResult struct {
	Errors      []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	IsDuplicate bool     `json:"is_duplicate" yaml:"is_duplicate"`
	MatchedBy   MatchKey `json:"matched_by,omitempty" yaml:"matched_by,omitempty"`
	MatchedID   string   `json:"matched_id,omitempty" yaml:"matched_id,omitempty"`
}

// Valid reports whether the row has no blocking errors.
func (v ValidationResult) Valid() bool { return len(v.Errors) == 0 }

// AddError appends a blocking error.
func (v *ValidationResult) AddError(msg string) { v.Errors = append(v.Errors, msg) }

// AddWarning appends a non-blocking warning. Empty messages are ignored.
func (v *ValidationResult) AddWarning(msg string) {
	if msg != "" {
		v.Warnings = append(v.Warnings, msg)
	}
}

// ParsedRow pairs a canonical row with its source line and validation result.
type ParsedRow struct {
	Line       int              `json:"line" yaml:"line"`
	Row        CanonicalRow     `json:"row" yaml:"row"`
	Validation ValidationResult `json:"validation" yaml:"validation"`
}

// NewLead builds a persisted lead from a validated row.
func NewLead(row CanonicalRow, userID string, now time.Time) Lead {
	status := row.Status
	if status == "" {
		status = StatusNotContacted
	}
	return Lead{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Name:                row.Name,
		Email:               row.Email,
		Phone:               row.Phone,
		Country:             row.Country,
		ContactStatus:       status,
		ReferralDestination: row.ReferralDestination,
		ReferralSource:      row.ReferralSource,
		Notes:               row.Notes,
		CampaignName:        row.CampaignName,
		BarcelonaTimeline:   row.BarcelonaTimeline,
		CreatedTime:         row.CreatedTime,
		Intake:              row.Intake,
		NameScore:           row.NameScore,
		EmailScore:          row.EmailScore,
		PhoneValid:          row.PhoneValid,
		RecencyScore:        row.RecencyScore,
		LeadScore:           row.LeadScore,
		LeadQuality:         row.LeadQuality,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

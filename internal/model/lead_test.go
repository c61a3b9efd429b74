package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestContactStatus_IsArchived(t *testing.T) {
	assert.True(t, StatusArchivedReferral.IsArchived())
	assert.True(t, StatusArchivedUnqualified.IsArchived())
	for _, s := range RowStatuses {
		assert.False(t, s.IsArchived(), s)
	}
}

func TestNewLead(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	row := CanonicalRow{
		Name:              "Ana Ruiz",
		Email:             "ana@ex.com",
		Phone:             "+34 600 111 222",
		Country:           "Spain",
		CampaignName:      "Spring",
		BarcelonaTimeline: ptr(6),
		Intake:            ptr("September 2025"),
		LeadScore:         ptr(80),
		LeadQuality:       ptr("High"),
	}

	l := NewLead(row, "user-7", now)
	_, err := uuid.Parse(l.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-7", l.UserID)
	assert.Equal(t, "Ana Ruiz", l.Name)
	assert.Equal(t, "ana@ex.com", l.Email)
	assert.Equal(t, StatusNotContacted, l.ContactStatus)
	assert.Equal(t, 6, *l.BarcelonaTimeline)
	assert.Equal(t, 80, *l.LeadScore)
	assert.False(t, l.IsDuplicate)
	assert.Nil(t, l.DuplicateDetectedAt)
	assert.Equal(t, now, l.CreatedAt)
	assert.Equal(t, now, l.UpdatedAt)

	other := NewLead(row, "", now)
	assert.NotEqual(t, l.ID, other.ID)
}

func TestNewLead_KeepsRowStatus(t *testing.T) {
	l := NewLead(CanonicalRow{Name: "A", Email: "a@ex.com", Status: StatusReferral}, "", time.Now())
	assert.Equal(t, StatusReferral, l.ContactStatus)
}

func TestLead_Existing(t *testing.T) {
	l := Lead{ID: "lead-1", Email: "ana@ex.com", Phone: "123", Notes: "n", LeadScore: ptr(5), ContactStatus: StatusContacted}
	e := l.Existing()
	assert.Equal(t, "lead-1", e.ID)
	assert.Equal(t, "ana@ex.com", e.ProspectEmail)
	assert.Equal(t, "n", e.Notes)
	assert.Equal(t, 5, *e.LeadScore)
	assert.Equal(t, StatusContacted, e.ContactStatus)
}

func TestValidationResult(t *testing.T) {
	var v ValidationResult
	assert.True(t, v.Valid())

	v.AddWarning("")
	assert.Empty(t, v.Warnings)
	v.AddWarning("careful")
	assert.Equal(t, []string{"careful"}, v.Warnings)
	assert.True(t, v.Valid())

	v.AddError("Name is required")
	assert.False(t, v.Valid())
}

func TestPatch_ColumnsSorted(t *testing.T) {
	p := Patch{}
	p.Set(ColPhone, "1")
	p.Set(ColCampaignName, "x")
	p.Set(ColIsDuplicate, true)

	assert.Equal(t, []string{ColCampaignName, ColIsDuplicate, ColPhone}, p.Columns())
	assert.True(t, p.Has(ColPhone))
	assert.False(t, p.Has(ColNotes))
}

func TestIsPatchColumn(t *testing.T) {
	assert.True(t, IsPatchColumn(ColDuplicateDetectedAt))
	assert.False(t, IsPatchColumn("prospect_email"))
	assert.False(t, IsPatchColumn("id"))
}

func TestLead_Apply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)
	detected := created.Add(time.Hour)
	l := Lead{
		ID:                  "lead-1",
		ContactStatus:       StatusArchivedReferral,
		IsDuplicate:         true,
		DuplicateDetectedAt: &detected,
		UpdatedAt:           created,
	}

	l.Apply(Patch{
		ColPhone:               "+52 55 1234 5678",
		ColCountry:             "Mexico",
		ColContactStatus:       string(StatusNotContacted),
		ColBarcelonaTimeline:   6,
		ColCreatedTime:         created,
		ColIntake:              "Fall 2025",
		ColPhoneValid:          true,
		ColLeadQuality:         "Medium",
		ColIsDuplicate:         false,
		ColDuplicateDetectedAt: nil,
		"unknown":              "ignored",
	}, now)

	assert.Equal(t, "+52 55 1234 5678", l.Phone)
	assert.Equal(t, "Mexico", l.Country)
	assert.Equal(t, StatusNotContacted, l.ContactStatus)
	assert.Equal(t, 6, *l.BarcelonaTimeline)
	assert.Equal(t, created, *l.CreatedTime)
	assert.Equal(t, "Fall 2025", *l.Intake)
	assert.True(t, *l.PhoneValid)
	assert.Equal(t, "Medium", *l.LeadQuality)
	assert.False(t, l.IsDuplicate)
	assert.Nil(t, l.DuplicateDetectedAt)
	assert.Equal(t, now, l.UpdatedAt)
}

func TestExistingLead_Apply(t *testing.T) {
	e := ExistingLead{
		ID:            "lead-1",
		ProspectEmail: "ana@ex.com",
		Phone:         "+34 612 345 678",
		Notes:         "kept",
		ContactStatus: StatusArchivedReferral,
	}

	e.Apply(Patch{
		ColCampaignName:  "Camp A",
		ColNotes:         "kept",
		ColContactStatus: string(StatusNotContacted),
		ColNameScore:     40,
		ColIsDuplicate:   false,
	})

	assert.Equal(t, "lead-1", e.ID)
	assert.Equal(t, "ana@ex.com", e.ProspectEmail)
	assert.Equal(t, "+34 612 345 678", e.Phone)
	assert.Equal(t, "Camp A", e.CampaignName)
	assert.Equal(t, StatusNotContacted, e.ContactStatus)
	require.NotNil(t, e.NameScore)
	assert.Equal(t, 40, *e.NameScore)
}

// Package merge decides how an imported duplicate row updates the lead it
// matched. The policy is an ordered rule list: duplicates enrich stored
// leads, never overwrite them.
package merge

import (
	"strings"
	"time"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// Input is one duplicate row and the stored lead it matched.
type Input struct {
	Existing       model.ExistingLead
	Row            model.CanonicalRow
	SkipDuplicates bool
	Now            time.Time
}

// Decision is the outcome of running the rules for one row.
type Decision struct {
	Patch       model.Patch
	Skip        bool
	Reactivated bool
	Filled      []string // data columns copied from the row, in rule order
	Rules       []string // rules that changed the decision
}

// Changed reports whether the decision writes anything.
func (d Decision) Changed() bool { return !d.Skip && len(d.Patch) > 0 }

// Enriched reports whether the row filled data or reactivated the lead, as
// opposed to only stamping the duplicate flag.
func (d Decision) Enriched() bool {
	return !d.Skip && (len(d.Filled) > 0 || d.Reactivated)
}

// Rule is one step of the merge policy. Apply reports whether the rule
// changed the decision and whether evaluation stops after it.
type Rule struct {
	Name  string
	Apply func(in Input, d *Decision) (fired, stop bool)
}

// Rules is the merge policy, evaluated top to bottom.
var Rules = []Rule{
	{Name: "skip-duplicates", Apply: skipDuplicates},
	{Name: "fill-empty", Apply: fillEmpty},
	{Name: "country-from-phone", Apply: countryFromPhone},
	{Name: "reactivate", Apply: reactivate},
	{Name: "flag-duplicate", Apply: flagDuplicate},
}

// FillRules only copy data into empty fields. They fold a repeated row of
// the same file into the earlier row before it is inserted.
var FillRules = []Rule{
	{Name: "fill-empty", Apply: fillEmpty},
	{Name: "country-from-phone", Apply: countryFromPhone},
}

// Plan runs the default rule list.
func Plan(in Input) Decision {
	return PlanWith(Rules, in)
}

// PlanWith runs rules against in.
func PlanWith(rules []Rule, in Input) Decision {
	d := Decision{Patch: model.Patch{}}
	for _, r := range rules {
		fired, stop := r.Apply(in, &d)
		if fired {
			d.Rules = append(d.Rules, r.Name)
		}
		if stop {
			break
		}
	}
	return d
}

func skipDuplicates(in Input, d *Decision) (bool, bool) {
	if !in.SkipDuplicates || in.Existing.ContactStatus == model.StatusArchivedReferral {
		return false, false
	}
	d.Skip = true
	return true, true
}

// field copies one incoming value when the stored one is empty.
type field struct {
	col  string
	fill func(ex model.ExistingLead, row model.CanonicalRow) (any, bool)
}

var fillFields = []field{
	{model.ColPhone, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillString(ex.Phone, row.Phone)
	}},
	{model.ColCampaignName, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillString(ex.CampaignName, row.CampaignName)
	}},
	{model.ColReferralSource, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillString(ex.ReferralSource, row.ReferralSource)
	}},
	{model.ColBarcelonaTimeline, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.BarcelonaTimeline, row.BarcelonaTimeline)
	}},
	{model.ColCreatedTime, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.CreatedTime, row.CreatedTime)
	}},
	{model.ColNotes, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillString(ex.Notes, row.Notes)
	}},
	{model.ColIntake, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillStringPtr(ex.Intake, row.Intake)
	}},
	{model.ColNameScore, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.NameScore, row.NameScore)
	}},
	{model.ColEmailScore, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.EmailScore, row.EmailScore)
	}},
	{model.ColPhoneValid, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.PhoneValid, row.PhoneValid)
	}},
	{model.ColRecencyScore, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.RecencyScore, row.RecencyScore)
	}},
	{model.ColLeadScore, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillPtr(ex.LeadScore, row.LeadScore)
	}},
	{model.ColLeadQuality, func(ex model.ExistingLead, row model.CanonicalRow) (any, bool) {
		return fillStringPtr(ex.LeadQuality, row.LeadQuality)
	}},
}

// MergeableColumns lists the columns fill-empty may write, in order.
func MergeableColumns() []string {
	cols := make([]string, len(fillFields))
	for i, f := range fillFields {
		cols[i] = f.col
	}
	return cols
}

func fillEmpty(in Input, d *Decision) (bool, bool) {
	for _, f := range fillFields {
		if v, ok := f.fill(in.Existing, in.Row); ok {
			d.Patch.Set(f.col, v)
			d.Filled = append(d.Filled, f.col)
		}
	}
	return len(d.Filled) > 0, false
}

func fillString(existing, incoming string) (any, bool) {
	if strings.TrimSpace(existing) != "" || strings.TrimSpace(incoming) == "" {
		return nil, false
	}
	return incoming, true
}

func fillStringPtr(existing, incoming *string) (any, bool) {
	var ex, in string
	if existing != nil {
		ex = *existing
	}
	if incoming != nil {
		in = *incoming
	}
	return fillString(ex, in)
}

func fillPtr[T any](existing, incoming *T) (any, bool) {
	if existing != nil || incoming == nil {
		return nil, false
	}
	return *incoming, true
}

func countryFromPhone(in Input, d *Decision) (bool, bool) {
	phone, ok := d.Patch[model.ColPhone].(string)
	if !ok || !normalize.IsUnknownCountry(in.Existing.Country) {
		return false, false
	}
	country := normalize.CountryFromPhone(phone)
	if country == "" {
		return false, false
	}
	d.Patch.Set(model.ColCountry, country)
	return true, false
}

func reactivate(in Input, d *Decision) (bool, bool) {
	if in.Existing.ContactStatus != model.StatusArchivedReferral {
		return false, false
	}
	d.Patch.Set(model.ColContactStatus, string(model.StatusNotContacted))
	d.Patch.Set(model.ColIsDuplicate, false)
	d.Patch.Set(model.ColDuplicateDetectedAt, nil)
	d.Reactivated = true
	return true, true
}

func flagDuplicate(in Input, d *Decision) (bool, bool) {
	d.Patch.Set(model.ColIsDuplicate, true)
	d.Patch.Set(model.ColDuplicateDetectedAt, in.Now)
	return true, false
}

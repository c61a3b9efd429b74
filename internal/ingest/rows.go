package ingest

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// Row validation messages.
const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Invalid email format"
	MsgUnexpected    = "Unexpected error processing row"
)

// columnMap records the canonical field of each header column; unmapped
// columns hold "".
type columnMap []FieldKey

func mapColumns(header []string) (columnMap, int) {
	cols := make(columnMap, len(header))
	mapped := 0
	for i, h := range header {
		if key, ok := MapHeader(h); ok {
			cols[i] = key
			mapped++
		} else if strings.TrimSpace(h) != "" {
			zap.L().Debug("ingest: dropping unrecognized column", zap.String("header", h))
		}
	}
	return cols, mapped
}

// values gathers the cells of one record by canonical field. When several
// columns share a field the first non-empty cell wins.
func (c columnMap) values(record []string) map[FieldKey]string {
	vals := make(map[FieldKey]string, len(c))
	for i, key := range c {
		if key == "" || i >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[i])
		if v == "" || vals[key] != "" {
			continue
		}
		vals[key] = v
	}
	return vals
}

// BuildRows maps, normalizes and validates every data record of t. Records
// whose cells are all blank are skipped. Duplicate detection is left to the
// caller, which owns the store snapshot.
func BuildRows(t *Table) ([]model.ParsedRow, error) {
	if t == nil || t.Header == nil {
		return nil, ErrNoHeader
	}
	cols, mapped := mapColumns(t.Header)
	if mapped == 0 {
		return nil, ErrNoRecognizedColumns
	}

	rows := make([]model.ParsedRow, 0, len(t.Records))
	for i, record := range t.Records {
		if blankRecord(record) {
			continue
		}
		rows = append(rows, buildRow(cols, record, t.line(i)))
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// buildRow converts one record. A panic while normalizing marks the row
// invalid instead of aborting the file.
func buildRow(cols columnMap, record []string, line int) (pr model.ParsedRow) {
	pr.Line = line
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("ingest: row panic", zap.Int("line", line), zap.Any("panic", r))
			pr.Validation.AddError(MsgUnexpected)
		}
	}()

	vals := cols.values(record)
	row := &pr.Row
	v := &pr.Validation

	row.Name = normalize.Name(vals[FieldName])
	if row.Name == "" {
		row.Name = normalize.Name(vals[FieldFirstName] + " " + vals[FieldLastName])
	}
	row.Email = normalize.Email(vals[FieldEmail])
	row.Phone = normalize.PhoneDisplay(vals[FieldPhone])

	var warn string
	row.Country, warn = normalize.Country(vals[FieldCountry])
	v.AddWarning(warn)
	row.Status, warn = normalize.Status(vals[FieldStatus])
	v.AddWarning(warn)

	row.ReferralDestination = vals[FieldReferralDestination]
	row.ReferralSource = vals[FieldReferralSource]
	row.Notes = vals[FieldNotes]
	row.CampaignName = vals[FieldCampaignName]
	if row.CampaignName == "" {
		row.CampaignName = vals[FieldCampaign]
	}

	if raw := vals[FieldBarcelonaTimeline]; raw != "" {
		row.BarcelonaTimeline = normalize.Timeline(raw)
		if row.BarcelonaTimeline == nil {
			v.AddWarning(fmt.Sprintf("Could not read timeline %q", raw))
		}
	}
	if raw := vals[FieldCreatedTime]; raw != "" {
		row.CreatedTime = normalize.Time(raw)
		if row.CreatedTime == nil {
			v.AddWarning(fmt.Sprintf("Could not read created time %q", raw))
		}
	}
	row.Intake = normalize.Text(vals[FieldIntake])

	row.NameScore = scoreCell(v, FieldNameScore, vals[FieldNameScore])
	row.EmailScore = scoreCell(v, FieldEmailScore, vals[FieldEmailScore])
	row.RecencyScore = scoreCell(v, FieldRecencyScore, vals[FieldRecencyScore])
	row.LeadScore = scoreCell(v, FieldLeadScore, vals[FieldLeadScore])
	if raw := vals[FieldPhoneValid]; raw != "" {
		row.PhoneValid = normalize.Bool(raw)
		if row.PhoneValid == nil {
			v.AddWarning(fmt.Sprintf("Ignored %s value %q", FieldPhoneValid, raw))
		}
	}
	row.LeadQuality = normalize.Quality(vals[FieldLeadQuality])

	Validate(row, v)
	return pr
}

func scoreCell(v *model.ValidationResult, key FieldKey, raw string) *int {
	if raw == "" {
		return nil
	}
	n := normalize.Int(raw)
	if n == nil {
		v.AddWarning(fmt.Sprintf("Ignored %s value %q", key, raw))
	}
	return n
}

// Validate applies the blocking rules: a name and a well-formed email are
// required.
func Validate(row *model.CanonicalRow, v *model.ValidationResult) {
	if strings.TrimSpace(row.Name) == "" {
		v.AddError(MsgNameRequired)
	}
	switch {
	case row.Email == "":
		v.AddError(MsgEmailRequired)
	case !normalize.ValidEmail(row.Email):
		v.AddError(MsgEmailInvalid)
	}
}

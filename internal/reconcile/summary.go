package reconcile

import (
	"fmt"

	"github.com/sells-group/lead-ingest/internal/model"
)

// State is a step of a reconciliation run.
type State string

const (
	StateIdle       State = "idle"
	StateParsing    State = "parsing"
	StateValidating State = "validating"
	StateCommitting State = "committing"
	StateReported   State = "reported"
	StateAborted    State = "aborted"
)

// Outcome is what happened to one row.
type Outcome string

const (
	OutcomeInserted     Outcome = "inserted"
	OutcomeUpdated      Outcome = "updated"
	OutcomeReactivated  Outcome = "reactivated"
	OutcomeFlagged      Outcome = "flagged"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeFailed       Outcome = "failed"
	OutcomeNotCommitted Outcome = "not_committed"
)

// RowIssue reports a rejected row back to the caller.
type RowIssue struct {
	Line     int                `json:"line" yaml:"line"`
	Row      model.CanonicalRow `json:"row" yaml:"row"`
	Errors   []string           `json:"errors" yaml:"errors"`
	Warnings []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// RowOutcome is the per-row result of a run.
type RowOutcome struct {
	Line      int            `json:"line" yaml:"line"`
	Email     string         `json:"email" yaml:"email"`
	Outcome   Outcome        `json:"outcome" yaml:"outcome"`
	MatchedBy model.MatchKey `json:"matched_by,omitempty" yaml:"matched_by,omitempty"`
	MatchedID string         `json:"matched_id,omitempty" yaml:"matched_id,omitempty"`
	LeadID    string         `json:"lead_id,omitempty" yaml:"lead_id,omitempty"`
	Filled    []string       `json:"filled,omitempty" yaml:"filled,omitempty"`
	Warnings  []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary is the structured result of a run. Callers always receive one,
// including when the run fails.
type Summary struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	State  State  `json:"state" yaml:"state"`
	DryRun bool   `json:"dry_run" yaml:"dry_run"`

	Total       int `json:"total" yaml:"total"`
	Valid       int `json:"valid" yaml:"valid"`
	New         int `json:"new" yaml:"new"`
	Duplicates  int `json:"duplicates" yaml:"duplicates"`
	Inserted    int `json:"inserted" yaml:"inserted"`
	Updated     int `json:"updated" yaml:"updated"`
	Reactivated int `json:"reactivated" yaml:"reactivated"`
	Flagged     int `json:"flagged" yaml:"flagged"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Invalid     int `json:"invalid" yaml:"invalid"`
	MergeFailed int `json:"merge_failed" yaml:"merge_failed"`

	// NoChanges is set when a completed run inserted, updated and
	// reactivated nothing. It is not a failure.
	NoChanges bool `json:"no_changes" yaml:"no_changes"`

	InvalidRows []RowIssue   `json:"invalid_rows" yaml:"invalid_rows"`
	Rows        []RowOutcome `json:"rows" yaml:"rows"`
}

// BatchAbortError reports an insert page the store rejected. Pages before it
// stay committed.
type BatchAbortError struct {
	Page      int // 1-based index of the failed page
	Pages     int
	Committed int // rows committed by earlier pages
	Err       error
}

func (e *BatchAbortError) Error() string {
	return fmt.Sprintf("reconcile: insert page %d of %d failed, %d rows committed before abort: %v",
		e.Page, e.Pages, e.Committed, e.Err)
}

func (e *BatchAbortError) Unwrap() error { return e.Err }

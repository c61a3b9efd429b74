// Package reconcile runs lead imports: it classifies parsed rows against a
// store snapshot, inserts new leads in pages and merges duplicates into the
// leads they match.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-ingest/internal/dedupe"
	"github.com/sells-group/lead-ingest/internal/ingest"
	"github.com/sells-group/lead-ingest/internal/merge"
	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/scoring"
	"github.com/sells-group/lead-ingest/internal/store"
)

// DefaultPageSize is the number of leads written per insert page.
const DefaultPageSize = 100

// Options configures one run.
type Options struct {
	SkipDuplicates bool   // leave matched leads untouched unless archived as referral
	UserID         string // importer recorded on new leads
}

// Engine sequences parsing, duplicate detection and commit. Runs are
// single-threaded and store calls are made one at a time, in row order.
type Engine struct {
	store    store.Store
	pageSize int
	limiter  *rate.Limiter
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPageSize overrides the insert page size. Non-positive values are ignored.
func WithPageSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithRateLimit paces store writes to rps per second; 0 disables pacing.
func WithRateLimit(rps float64) EngineOption {
	return func(e *Engine) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			e.limiter = nil
		}
	}
}

// WithClock overrides the time source used for timestamps and scoring.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine writing to st.
func New(st store.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    st,
		pageSize: DefaultPageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run carries the state of one reconciliation.
type run struct {
	sum   *Summary
	opts  Options
	now   time.Time
	log   *zap.Logger
	write bool

	index    *dedupe.Index
	inserts  []pending
	merges   []pending
	fileRows map[int]int // source line -> inserts index
}

// pending is a classified row waiting for commit; outcome indexes Summary.Rows.
type pending struct {
	row     model.ParsedRow
	match   dedupe.Match
	outcome int
	fill    model.Patch // values folded in from later repeats of the row
}

func (e *Engine) newRun(opts Options, write bool) *run {
	sum := &Summary{
		RunID:       uuid.New().String(),
		State:       StateIdle,
		DryRun:      !write,
		InvalidRows: []RowIssue{},
		Rows:        []RowOutcome{},
	}
	return &run{
		sum:   sum,
		opts:  opts,
		now:   e.now(),
		log:   zap.L().With(zap.String("run_id", sum.RunID)),
		write: write,

		fileRows: make(map[int]int),
	}
}

func (r *run) transition(s State) {
	r.log.Debug("reconcile: state", zap.String("from", string(r.sum.State)), zap.String("to", string(s)))
	r.sum.State = s
}

// Import parses the file at path and reconciles its rows.
func (e *Engine) Import(ctx context.Context, path string, opts Options) (*Summary, error) {
	r := e.newRun(opts, true)
	rows, err := r.parse(path)
	if err != nil {
		return r.sum, err
	}
	return e.reconcile(ctx, r, rows)
}

// Reconcile classifies and commits rows that were already parsed.
func (e *Engine) Reconcile(ctx context.Context, rows []model.ParsedRow, opts Options) (*Summary, error) {
	return e.reconcile(ctx, e.newRun(opts, true), rows)
}

// Preview parses and classifies the file at path and reports what a real
// import would do. It reads the store but never writes to it.
func (e *Engine) Preview(ctx context.Context, path string, opts Options) (*Summary, error) {
	r := e.newRun(opts, false)
	rows, err := r.parse(path)
	if err != nil {
		return r.sum, err
	}
	return e.reconcile(ctx, r, rows)
}

func (r *run) parse(path string) ([]model.ParsedRow, error) {
	r.transition(StateParsing)
	rows, err := ingest.ParseFile(path)
	if err != nil {
		r.transition(StateAborted)
		return nil, eris.Wrapf(err, "reconcile: parse %s", path)
	}
	r.log.Info("reconcile: parsed file", zap.String("path", path), zap.Int("rows", len(rows)))
	return rows, nil
}

func (e *Engine) reconcile(ctx context.Context, r *run, rows []model.ParsedRow) (sum *Summary, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.transition(StateAborted)
			r.log.Error("reconcile: run panic", zap.Any("panic", p), zap.Stack("stack"))
			sum, err = r.sum, eris.Errorf("reconcile: unexpected failure: %v", p)
		}
	}()

	r.transition(StateValidating)
	snapshot, err := e.store.FetchSnapshot(ctx)
	if err != nil {
		r.transition(StateAborted)
		return r.sum, eris.Wrap(err, "reconcile: fetch snapshot")
	}
	r.index = dedupe.NewIndex(snapshot)
	emails, phones := r.index.Len()
	r.log.Debug("reconcile: snapshot loaded",
		zap.Int("leads", len(snapshot)),
		zap.Int("emails", emails),
		zap.Int("phones", phones),
	)

	for _, pr := range rows {
		r.classify(pr)
	}

	r.transition(StateCommitting)
	if err := e.insertPages(ctx, r); err != nil {
		r.transition(StateAborted)
		r.log.Error("reconcile: run aborted", zap.Error(err))
		return r.sum, err
	}
	e.mergeRows(ctx, r)

	r.sum.NoChanges = r.sum.Inserted == 0 && r.sum.Updated == 0
	r.transition(StateReported)
	r.log.Info("reconcile: run complete",
		zap.Bool("dry_run", r.sum.DryRun),
		zap.Int("total", r.sum.Total),
		zap.Int("inserted", r.sum.Inserted),
		zap.Int("updated", r.sum.Updated),
		zap.Int("reactivated", r.sum.Reactivated),
		zap.Int("flagged", r.sum.Flagged),
		zap.Int("skipped", r.sum.Skipped),
		zap.Int("invalid", r.sum.Invalid),
		zap.Int("merge_failed", r.sum.MergeFailed),
		zap.Bool("no_changes", r.sum.NoChanges),
	)
	return r.sum, nil
}

// classify sorts one row into the insert batch, the merge queue or the
// rejects. A panic marks the row invalid.
func (r *run) classify(pr model.ParsedRow) {
	r.sum.Total++
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("reconcile: row panic", zap.Int("line", pr.Line), zap.Any("panic", p))
			pr.Validation.AddError(ingest.MsgUnexpected)
			r.reject(pr)
		}
	}()

	if !pr.Validation.Valid() {
		r.reject(pr)
		return
	}
	scoring.ApplyDefaults(&pr.Row, r.now)

	if m := r.index.Check(pr.Row); m.Found() {
		pr.Validation.IsDuplicate = true
		pr.Validation.MatchedBy = m.Key
		pr.Validation.MatchedID = m.Lead.ID
		pr.Validation.AddWarning(fmt.Sprintf("Duplicate of existing lead %s (matched by %s)", m.Lead.ID, m.Key))
		r.sum.Valid++
		r.sum.Duplicates++
		r.merges = append(r.merges, pending{row: pr, match: m, outcome: r.addOutcome(pr, OutcomeNotCommitted)})
		return
	}

	if m := r.index.CheckFile(pr.Row); m.Found() {
		pr.Validation.IsDuplicate = true
		pr.Validation.MatchedBy = m.Key
		pr.Validation.AddWarning(fmt.Sprintf("Duplicate of row %d in this file", m.Line))
		r.sum.Valid++
		r.sum.Skipped++
		o := r.addOutcome(pr, OutcomeSkipped)
		if !r.opts.SkipDuplicates {
			r.sum.Rows[o].Filled = r.fold(m.Line, pr.Row)
		}
		return
	}

	r.index.Track(pr.Row, pr.Line)
	r.sum.Valid++
	r.sum.New++
	r.fileRows[pr.Line] = len(r.inserts)
	r.inserts = append(r.inserts, pending{row: pr, outcome: r.addOutcome(pr, OutcomeNotCommitted)})
}

// fold copies values of a repeated row into the empty fields of the earlier
// row at line, which is then inserted once. It returns the columns filled.
func (r *run) fold(line int, row model.CanonicalRow) []string {
	i, ok := r.fileRows[line]
	if !ok {
		return nil
	}
	first := &r.inserts[i]
	lead := model.NewLead(first.row.Row, r.opts.UserID, r.now)
	lead.Apply(first.fill, r.now)

	d := merge.PlanWith(merge.FillRules, merge.Input{Existing: lead.Existing(), Row: row, Now: r.now})
	if len(d.Patch) == 0 {
		return nil
	}
	if first.fill == nil {
		first.fill = model.Patch{}
	}
	for col, v := range d.Patch {
		first.fill.Set(col, v)
	}
	return d.Filled
}

func (r *run) reject(pr model.ParsedRow) {
	r.sum.Invalid++
	r.sum.InvalidRows = append(r.sum.InvalidRows, RowIssue{
		Line:     pr.Line,
		Row:      pr.Row,
		Errors:   pr.Validation.Errors,
		Warnings: pr.Validation.Warnings,
	})
	o := r.addOutcome(pr, OutcomeInvalid)
	r.sum.Rows[o].Error = pr.Validation.Errors[0]
}

func (r *run) addOutcome(pr model.ParsedRow, o Outcome) int {
	r.sum.Rows = append(r.sum.Rows, RowOutcome{
		Line:      pr.Line,
		Email:     pr.Row.Email,
		Outcome:   o,
		MatchedBy: pr.Validation.MatchedBy,
		MatchedID: pr.Validation.MatchedID,
		Warnings:  pr.Validation.Warnings,
	})
	return len(r.sum.Rows) - 1
}

package reconcile

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/merge"
	"github.com/sells-group/lead-ingest/internal/model"
)

// wait blocks on the write throttle, if any.
func (e *Engine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// insertPages writes the insert batch one page per InsertMany call. The
// first failed page stops the run; pages before it stay committed and rows
// in later pages are reported as not committed.
func (e *Engine) insertPages(ctx context.Context, r *run) error {
	if len(r.inserts) == 0 {
		return nil
	}
	pages := (len(r.inserts) + e.pageSize - 1) / e.pageSize

	for p := 0; p < pages; p++ {
		start := p * e.pageSize
		end := min(start+e.pageSize, len(r.inserts))
		page := r.inserts[start:end]

		leads := make([]model.Lead, len(page))
		for i, pr := range page {
			leads[i] = model.NewLead(pr.row.Row, r.opts.UserID, r.now)
			if len(pr.fill) > 0 {
				leads[i].Apply(pr.fill, r.now)
			}
		}

		if r.write {
			err := e.wait(ctx)
			if err == nil {
				_, err = e.store.InsertMany(ctx, leads)
			}
			if err != nil {
				for _, pr := range r.inserts[start:] {
					r.sum.Rows[pr.outcome].Error = "page not committed"
				}
				return &BatchAbortError{Page: p + 1, Pages: pages, Committed: r.sum.Inserted, Err: err}
			}
		}

		for i, pr := range page {
			o := &r.sum.Rows[pr.outcome]
			o.Outcome = OutcomeInserted
			if r.write {
				o.LeadID = leads[i].ID
			}
		}
		r.sum.Inserted += len(page)
		r.log.Info("reconcile: page committed",
			zap.Int("page", p+1),
			zap.Int("pages", pages),
			zap.Int("rows", len(page)),
			zap.Bool("dry_run", !r.write),
		)
	}
	return nil
}

// mergeRows applies the merge policy to each duplicate row, one store
// round-trip at a time. A failed row is counted and the run continues.
func (e *Engine) mergeRows(ctx context.Context, r *run) {
	for _, pr := range r.merges {
		o := &r.sum.Rows[pr.outcome]
		if err := e.mergeRow(ctx, r, pr, o); err != nil {
			r.sum.MergeFailed++
			o.Outcome = OutcomeFailed
			o.Error = err.Error()
			r.log.Warn("reconcile: merge failed",
				zap.Int("line", pr.row.Line),
				zap.String("lead_id", pr.match.Lead.ID),
				zap.Error(err),
			)
		}
	}
}

func (e *Engine) mergeRow(ctx context.Context, r *run, pr pending, o *RowOutcome) error {
	existing, err := e.resolve(ctx, r, pr)
	if err != nil {
		return err
	}
	o.MatchedID = existing.ID

	d := merge.Plan(merge.Input{
		Existing:       *existing,
		Row:            pr.row.Row,
		SkipDuplicates: r.opts.SkipDuplicates,
		Now:            r.now,
	})
	if d.Skip {
		r.sum.Skipped++
		o.Outcome = OutcomeSkipped
		return nil
	}

	if r.write && d.Changed() {
		if err := e.wait(ctx); err != nil {
			return eris.Wrap(err, "reconcile: throttle")
		}
		if err := e.store.UpdateByID(ctx, existing.ID, d.Patch); err != nil {
			return eris.Wrapf(err, "reconcile: merge into lead %s", existing.ID)
		}
	}
	if d.Changed() {
		r.index.Apply(existing.ID, d.Patch)
	}

	o.LeadID = existing.ID
	o.Filled = d.Filled
	switch {
	case d.Reactivated:
		r.sum.Reactivated++
		r.sum.Updated++
		o.Outcome = OutcomeReactivated
	case d.Enriched():
		r.sum.Updated++
		o.Outcome = OutcomeUpdated
	default:
		r.sum.Flagged++
		o.Outcome = OutcomeFlagged
	}
	r.log.Debug("reconcile: merged row",
		zap.Int("line", pr.row.Line),
		zap.String("lead_id", existing.ID),
		zap.Strings("rules", d.Rules),
		zap.Strings("filled", d.Filled),
	)
	return nil
}

// resolve re-reads the matched lead: by email from the store, then by phone
// from the run index, which carries the merges made earlier in the run.
// Previews read the index only.
func (e *Engine) resolve(ctx context.Context, r *run, pr pending) (*model.ExistingLead, error) {
	if !r.write {
		return pr.match.Lead, nil
	}
	if pr.row.Row.Email != "" {
		found, err := e.store.FindByEmail(ctx, pr.row.Row.Email)
		if err != nil {
			return nil, eris.Wrap(err, "reconcile: resolve lead")
		}
		if found != nil {
			return found, nil
		}
	}
	if found := r.index.ByPhone(pr.row.Row.Phone); found != nil {
		return found, nil
	}
	return nil, eris.Errorf("reconcile: matched lead %s no longer exists", pr.match.Lead.ID)
}

package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
)

// Memory is an in-process Store for tests and dry runs. Failures can be
// injected per InsertMany call or per lead ID.
type Memory struct {
	mu    sync.Mutex
	leads []model.Lead
	now   func() time.Time

	insertCalls int
	updateCalls int

	// FailInsertCall makes the n-th InsertMany call (1-based) fail.
	FailInsertCall map[int]error
	// FailUpdate makes UpdateByID fail for the given lead IDs.
	FailUpdate map[string]error
	// FailSnapshot makes FetchSnapshot fail.
	FailSnapshot error
}

// NewMemory returns a Memory store seeded with leads.
func NewMemory(leads ...model.Lead) *Memory {
	m := &Memory{now: utcNow}
	m.leads = append(m.leads, leads...)
	return m
}

// Leads returns a copy of the stored leads in insertion order.
func (m *Memory) Leads() []model.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Lead(nil), m.leads...)
}

// Lead returns the stored lead with id.
func (m *Memory) Lead(id string) (model.Lead, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.ID == id {
			return l, true
		}
	}
	return model.Lead{}, false
}

// Calls returns how many InsertMany and UpdateByID calls were made.
func (m *Memory) Calls() (inserts, updates int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCalls, m.updateCalls
}

func (m *Memory) Migrate(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) FetchSnapshot(ctx context.Context) ([]model.ExistingLead, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "memory: fetch snapshot")
	}
	if m.FailSnapshot != nil {
		return nil, eris.Wrap(m.FailSnapshot, "memory: fetch snapshot")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ExistingLead, len(m.leads))
	for i, l := range m.leads {
		out[i] = l.Existing()
	}
	return out, nil
}

func (m *Memory) InsertMany(ctx context.Context, leads []model.Lead) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, eris.Wrap(err, "memory: insert leads page")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCalls++
	if err := m.FailInsertCall[m.insertCalls]; err != nil {
		return 0, eris.Wrap(err, "memory: insert leads page")
	}
	m.leads = append(m.leads, leads...)
	return len(leads), nil
}

func (m *Memory) UpdateByID(ctx context.Context, id string, patch model.Patch) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrapf(err, "memory: update lead %s", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(patch) == 0 {
		return nil
	}
	m.updateCalls++
	if err := m.FailUpdate[id]; err != nil {
		return eris.Wrapf(err, "memory: update lead %s", id)
	}
	for _, c := range patch.Columns() {
		if !model.IsPatchColumn(c) {
			return eris.Errorf("memory: column %q is not patchable", c)
		}
	}
	for i := range m.leads {
		if m.leads[i].ID == id {
			m.leads[i].Apply(patch, m.now())
			return nil
		}
	}
	return eris.Errorf("memory: lead not found: %s", id)
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*model.ExistingLead, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "memory: find lead by email")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.leads {
		if strings.EqualFold(l.Email, email) {
			e := l.Existing()
			return &e, nil
		}
	}
	return nil, nil
}

var _ Store = (*Memory)(nil)

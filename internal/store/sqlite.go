package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-ingest/internal/db"
	"github.com/sells-group/lead-ingest/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It serves local and
// offline imports.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB, now: utcNow}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                    TEXT PRIMARY KEY,
	user_id               TEXT,
	prospect_name         TEXT NOT NULL,
	prospect_email        TEXT NOT NULL,
	phone                 TEXT NOT NULL DEFAULT '',
	country               TEXT NOT NULL DEFAULT 'Other',
	contact_status        TEXT NOT NULL DEFAULT 'not_contacted',
	referral_destination  TEXT NOT NULL DEFAULT '',
	referral_source       TEXT NOT NULL DEFAULT '',
	notes                 TEXT NOT NULL DEFAULT '',
	campaign_name         TEXT NOT NULL DEFAULT '',
	barcelona_timeline    INTEGER,
	created_time          DATETIME,
	intake                TEXT,
	name_score            INTEGER,
	email_score           INTEGER,
	phone_valid           BOOLEAN,
	recency_score         INTEGER,
	lead_score            INTEGER,
	lead_quality          TEXT,
	is_duplicate          BOOLEAN NOT NULL DEFAULT 0,
	duplicate_detected_at DATETIME,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_email ON leads (lower(prospect_email));
CREATE INDEX IF NOT EXISTS idx_leads_phone ON leads (phone);
CREATE INDEX IF NOT EXISTS idx_leads_contact_status ON leads (contact_status);
`

// Migrate creates the leads table and its indexes if they are missing.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FetchSnapshot reads every lead's duplicate-detection projection, oldest
// first.
func (s *SQLiteStore) FetchSnapshot(ctx context.Context) ([]model.ExistingLead, error) {
	rows, err := s.db.QueryContext(ctx, snapshotSelect+` ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch snapshot")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.ExistingLead
	for rows.Next() {
		l, err := scanExisting(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot row")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: fetch snapshot iterate")
}

var sqliteInsert = `INSERT INTO leads (` + strings.Join(leadColumns, ", ") + `) VALUES (` +
	strings.TrimSuffix(strings.Repeat("?, ", len(leadColumns)), ", ") + `)`

// InsertMany writes one page of leads inside a transaction.
func (s *SQLiteStore) InsertMany(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, l := range leads {
		if _, err := stmt.ExecContext(ctx, leadValues(l)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %s", l.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return len(leads), nil
}

// UpdateByID applies patch to one lead and bumps updated_at.
func (s *SQLiteStore) UpdateByID(ctx context.Context, id string, patch model.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	cols, args, err := patchArgs(patch, s.now())
	if err != nil {
		return err
	}
	query, err := db.BuildUpdate(db.UpdateConfig{Table: Table, Columns: cols, Key: "id"}, db.Question)
	if err != nil {
		return eris.Wrap(err, "sqlite: build update")
	}

	res, err := s.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

// FindByEmail returns the oldest lead with email (case-insensitive), or nil.
func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*model.ExistingLead, error) {
	row := s.db.QueryRowContext(ctx, snapshotSelect+` WHERE lower(prospect_email) = lower(?) ORDER BY created_at, id LIMIT 1`, email)
	l, err := scanExisting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find lead by email %s", email)
	}
	return &l, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s not found: %s", entity, id)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)

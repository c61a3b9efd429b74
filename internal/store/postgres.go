package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/db"
	"github.com/sells-group/lead-ingest/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, now: utcNow}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

const postgresMigration = `
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
	created_time          TIMESTAMPTZ,
	intake                TEXT,
	name_score            INTEGER,
	email_score           INTEGER,
	phone_valid           BOOLEAN,
	recency_score         INTEGER,
	lead_score            INTEGER,
	lead_quality          TEXT,
	is_duplicate          BOOLEAN NOT NULL DEFAULT false,
	duplicate_detected_at TIMESTAMPTZ,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_email ON leads (lower(prospect_email));
CREATE INDEX IF NOT EXISTS idx_leads_phone ON leads (phone);
CREATE INDEX IF NOT EXISTS idx_leads_contact_status ON leads (contact_status);
`

// Migrate creates the leads table and its indexes if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool when the store owns it.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// FetchSnapshot reads every lead's duplicate-detection projection, oldest
// first.
func (s *PostgresStore) FetchSnapshot(ctx context.Context) ([]model.ExistingLead, error) {
	rows, err := s.pool.Query(ctx, snapshotSelect+` ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: fetch snapshot")
	}
	defer rows.Close()

	var leads []model.ExistingLead
	for rows.Next() {
		l, err := scanExisting(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot row")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: fetch snapshot iterate")
}

// InsertMany copies one page of leads in a single COPY.
func (s *PostgresStore) InsertMany(ctx context.Context, leads []model.Lead) (int, error) {
	rows := make([][]any, len(leads))
	for i, l := range leads {
		rows[i] = leadValues(l)
	}
	n, err := db.CopyFrom(ctx, s.pool, Table, leadColumns, rows)
	if err != nil {
		return int(n), eris.Wrap(err, "postgres: insert leads page")
	}
	return int(n), nil
}

// UpdateByID applies patch to one lead and bumps updated_at.
func (s *PostgresStore) UpdateByID(ctx context.Context, id string, patch model.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	cols, args, err := patchArgs(patch, s.now())
	if err != nil {
		return err
	}
	query, err := db.BuildUpdate(db.UpdateConfig{Table: Table, Columns: cols, Key: "id"}, db.Dollar)
	if err != nil {
		return eris.Wrap(err, "postgres: build update")
	}

	tag, err := s.pool.Exec(ctx, query, append(args, id)...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead not found: %s", id)
	}
	return nil
}

// FindByEmail returns the oldest lead with email (case-insensitive), or nil.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*model.ExistingLead, error) {
	row := s.pool.QueryRow(ctx, snapshotSelect+` WHERE lower(prospect_email) = lower($1) ORDER BY created_at, id LIMIT 1`, email)
	l, err := scanExisting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find lead by email %s", email)
	}
	return &l, nil
}

var _ Store = (*PostgresStore)(nil)

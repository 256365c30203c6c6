package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// interface satisfies it, which keeps the Postgres backend unit-testable
// without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
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
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS credentials (
	id             TEXT PRIMARY KEY,
	api_key        TEXT NOT NULL,
	cse_id         TEXT NOT NULL,
	uses           INTEGER NOT NULL DEFAULT 0,
	last_used_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS checkpoints (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
);

CREATE TABLE IF NOT EXISTS company_facts (
	company      TEXT PRIMARY KEY,
	website      TEXT NOT NULL DEFAULT 'unknown',
	industry     TEXT NOT NULL DEFAULT 'unknown',
	company_size TEXT NOT NULL DEFAULT 'unknown',
	resolved_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS decision_makers (
	company      TEXT NOT NULL,
	name_key     TEXT NOT NULL,
	name         TEXT NOT NULL,
	job_title    TEXT NOT NULL DEFAULT 'unknown',
	linkedin_url TEXT NOT NULL DEFAULT 'unknown',
	PRIMARY KEY (company, name_key)
);

CREATE INDEX IF NOT EXISTS idx_checkpoints_namespace ON checkpoints(namespace);
CREATE INDEX IF NOT EXISTS idx_decision_makers_company ON decision_makers(company);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadCredentials(ctx context.Context) ([]model.CredentialRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, api_key, cse_id, uses, last_used_date FROM credentials ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load credentials")
	}
	defer rows.Close()

	var records []model.CredentialRecord
	for rows.Next() {
		var r model.CredentialRecord
		if err := rows.Scan(&r.ID, &r.APIKey, &r.SearchScope, &r.UsesToday, &r.LastUsedDate); err != nil {
			return nil, eris.Wrap(err, "postgres: scan credential")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: load credentials iterate")
}

func (s *PostgresStore) SaveCredentials(ctx context.Context, records []model.CredentialRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save credentials")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM credentials`); err != nil {
		return eris.Wrap(err, "postgres: clear credentials")
	}
	for _, r := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO credentials (id, api_key, cse_id, uses, last_used_date) VALUES ($1, $2, $3, $4, $5)`,
			r.ID, r.APIKey, r.SearchScope, r.UsesToday, r.LastUsedDate,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert credential %s", r.ID)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit credentials")
}

func (s *PostgresStore) GetCheckpoint(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT value FROM checkpoints WHERE namespace = $1 AND key = $2`,
		namespace, key,
	)
	var value string
	err := row.Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: get checkpoint")
	}
	return []byte(value), true, nil
}

func (s *PostgresStore) PutCheckpoint(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checkpoints (namespace, key, value, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		namespace, key, string(value),
	)
	return eris.Wrap(err, "postgres: put checkpoint")
}

func (s *PostgresStore) ListCheckpoints(ctx context.Context, namespace string) (map[string][]byte, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM checkpoints WHERE namespace = $1`,
		namespace,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list checkpoints")
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan checkpoint")
		}
		out[key] = []byte(value)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list checkpoints iterate")
}

func (s *PostgresStore) SaveCompanyFacts(ctx context.Context, facts model.CompanyFacts) error {
	resolvedAt := facts.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_facts (company, website, industry, company_size, resolved_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (company) DO UPDATE SET
			website = EXCLUDED.website,
			industry = EXCLUDED.industry,
			company_size = EXCLUDED.company_size,
			resolved_at = EXCLUDED.resolved_at`,
		facts.CompanyName, facts.Website, facts.Industry, string(facts.SizeBucket), resolvedAt,
	)
	return eris.Wrapf(err, "postgres: save company facts %s", facts.CompanyName)
}

func (s *PostgresStore) ListCompanyFacts(ctx context.Context) ([]model.CompanyFacts, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company, website, industry, company_size, resolved_at FROM company_facts ORDER BY company`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list company facts")
	}
	defer rows.Close()

	var facts []model.CompanyFacts
	for rows.Next() {
		var f model.CompanyFacts
		var size string
		if err := rows.Scan(&f.CompanyName, &f.Website, &f.Industry, &size, &f.ResolvedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company facts")
		}
		f.SizeBucket = model.SizeBucket(size)
		facts = append(facts, f)
	}
	return facts, eris.Wrap(rows.Err(), "postgres: list company facts iterate")
}

func (s *PostgresStore) SaveDecisionMakers(ctx context.Context, company string, contacts map[string]model.Contact) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save decision makers")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for name, c := range contacts {
		_, err := tx.Exec(ctx,
			`INSERT INTO decision_makers (company, name_key, name, job_title, linkedin_url) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (company, name_key) DO UPDATE SET
				name = EXCLUDED.name,
				job_title = EXCLUDED.job_title,
				linkedin_url = EXCLUDED.linkedin_url`,
			company, nameKey(name), name, c.JobTitle, c.LinkedInURL,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert decision maker %s at %s", name, company)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit decision makers")
}

func (s *PostgresStore) ListDecisionMakers(ctx context.Context) (map[string]map[string]model.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company, name, job_title, linkedin_url FROM decision_makers ORDER BY company, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list decision makers")
	}
	defer rows.Close()

	out := make(map[string]map[string]model.Contact)
	for rows.Next() {
		var company, name string
		var c model.Contact
		if err := rows.Scan(&company, &name, &c.JobTitle, &c.LinkedInURL); err != nil {
			return nil, eris.Wrap(err, "postgres: scan decision maker")
		}
		if out[company] == nil {
			out[company] = make(map[string]model.Contact)
		}
		out[company][name] = c
	}
	return out, eris.Wrap(rows.Err(), "postgres: list decision makers iterate")
}

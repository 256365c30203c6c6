package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (namespace, key)
);

CREATE TABLE IF NOT EXISTS company_facts (
	company      TEXT PRIMARY KEY,
	website      TEXT NOT NULL DEFAULT 'unknown',
	industry     TEXT NOT NULL DEFAULT 'unknown',
	company_size TEXT NOT NULL DEFAULT 'unknown',
	resolved_at  DATETIME NOT NULL DEFAULT (datetime('now'))
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadCredentials(ctx context.Context) ([]model.CredentialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, api_key, cse_id, uses, last_used_date FROM credentials ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load credentials")
	}
	defer rows.Close()

	var records []model.CredentialRecord
	for rows.Next() {
		var r model.CredentialRecord
		if err := rows.Scan(&r.ID, &r.APIKey, &r.SearchScope, &r.UsesToday, &r.LastUsedDate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan credential")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: load credentials iterate")
}

// SaveCredentials rewrites the whole pool in one transaction. O(pool size)
// per call, acceptable because call volume is bounded by the daily quota.
func (s *SQLiteStore) SaveCredentials(ctx context.Context, records []model.CredentialRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save credentials")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return eris.Wrap(err, "sqlite: clear credentials")
	}
	for _, r := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (id, api_key, cse_id, uses, last_used_date) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.APIKey, r.SearchScope, r.UsesToday, r.LastUsedDate,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert credential %s", r.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit credentials")
}

func (s *SQLiteStore) GetCheckpoint(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM checkpoints WHERE namespace = ? AND key = ?`,
		namespace, key,
	)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get checkpoint")
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) PutCheckpoint(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, string(value), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: put checkpoint")
}

func (s *SQLiteStore) ListCheckpoints(ctx context.Context, namespace string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM checkpoints WHERE namespace = ?`,
		namespace,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list checkpoints")
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan checkpoint")
		}
		out[key] = []byte(value)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list checkpoints iterate")
}

func (s *SQLiteStore) SaveCompanyFacts(ctx context.Context, facts model.CompanyFacts) error {
	resolvedAt := facts.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO company_facts (company, website, industry, company_size, resolved_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (company) DO UPDATE SET
			website = excluded.website,
			industry = excluded.industry,
			company_size = excluded.company_size,
			resolved_at = excluded.resolved_at`,
		facts.CompanyName, facts.Website, facts.Industry, string(facts.SizeBucket), resolvedAt,
	)
	return eris.Wrapf(err, "sqlite: save company facts %s", facts.CompanyName)
}

func (s *SQLiteStore) ListCompanyFacts(ctx context.Context) ([]model.CompanyFacts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company, website, industry, company_size, resolved_at FROM company_facts ORDER BY company`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list company facts")
	}
	defer rows.Close()

	var facts []model.CompanyFacts
	for rows.Next() {
		var f model.CompanyFacts
		var size string
		if err := rows.Scan(&f.CompanyName, &f.Website, &f.Industry, &size, &f.ResolvedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company facts")
		}
		f.SizeBucket = model.SizeBucket(size)
		facts = append(facts, f)
	}
	return facts, eris.Wrap(rows.Err(), "sqlite: list company facts iterate")
}

func (s *SQLiteStore) SaveDecisionMakers(ctx context.Context, company string, contacts map[string]model.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save decision makers")
	}
	defer tx.Rollback() //nolint:errcheck

	for name, c := range contacts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO decision_makers (company, name_key, name, job_title, linkedin_url) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (company, name_key) DO UPDATE SET
				name = excluded.name,
				job_title = excluded.job_title,
				linkedin_url = excluded.linkedin_url`,
			company, nameKey(name), name, c.JobTitle, c.LinkedInURL,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert decision maker %s at %s", name, company)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit decision makers")
}

func (s *SQLiteStore) ListDecisionMakers(ctx context.Context) (map[string]map[string]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company, name, job_title, linkedin_url FROM decision_makers ORDER BY company, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list decision makers")
	}
	defer rows.Close()

	out := make(map[string]map[string]model.Contact)
	for rows.Next() {
		var company, name string
		var c model.Contact
		if err := rows.Scan(&company, &name, &c.JobTitle, &c.LinkedInURL); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan decision maker")
		}
		if out[company] == nil {
			out[company] = make(map[string]model.Contact)
		}
		out[company][name] = c
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list decision makers iterate")
}

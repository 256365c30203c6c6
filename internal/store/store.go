// Package store provides durable persistence for the enrichment pipeline:
// credential counters, resumable checkpoints, company facts, and the
// decision-maker map. Backends: SQLite (default) and Postgres.
package store

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Checkpoint namespaces. The fine-grained namespace keys one
// (company, title) search; the coarse one keys a whole company.
const (
	NamespaceSearch  = "search"
	NamespaceCompany = "company"
)

// Store defines the persistence interface for the enrichment pipeline.
// All writes are synchronous: a method returning nil means the state is
// durable. A single writer is assumed throughout.
type Store interface {
	// Credentials. SaveCredentials rewrites the whole pool.
	LoadCredentials(ctx context.Context) ([]model.CredentialRecord, error)
	SaveCredentials(ctx context.Context, records []model.CredentialRecord) error

	// Checkpoints. PutCheckpoint is an idempotent upsert; presence of a
	// key means the unit of work is done regardless of the value.
	GetCheckpoint(ctx context.Context, namespace, key string) ([]byte, bool, error)
	PutCheckpoint(ctx context.Context, namespace, key string, value []byte) error
	ListCheckpoints(ctx context.Context, namespace string) (map[string][]byte, error)

	// Company facts. Last write wins; rows are never partially merged.
	SaveCompanyFacts(ctx context.Context, facts model.CompanyFacts) error
	ListCompanyFacts(ctx context.Context) ([]model.CompanyFacts, error)

	// Decision makers, keyed by (company, person-name, case-insensitive).
	SaveDecisionMakers(ctx context.Context, company string, contacts map[string]model.Contact) error
	ListDecisionMakers(ctx context.Context) (map[string]map[string]model.Contact, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

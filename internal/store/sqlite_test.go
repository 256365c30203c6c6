package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_Credentials_FullRewrite(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	records, err := s.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	pool := []model.CredentialRecord{
		{ID: "key-1", APIKey: "aaa", SearchScope: "cse-1", UsesToday: 3, LastUsedDate: "2026-08-30"},
		{ID: "key-2", APIKey: "bbb", SearchScope: "cse-2", UsesToday: 0, LastUsedDate: ""},
	}
	require.NoError(t, s.SaveCredentials(ctx, pool))

	got, err := s.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, pool, got)

	// A save replaces the whole table, not just updated rows.
	pool[0].UsesToday = 4
	require.NoError(t, s.SaveCredentials(ctx, pool[:1]))

	got, err = s.LoadCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].UsesToday)
}

func TestSQLiteStore_Checkpoints(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, ok, err := s.GetCheckpoint(ctx, NamespaceSearch, "Acme_CTO")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutCheckpoint(ctx, NamespaceSearch, "Acme_CTO", []byte(`[]`)))

	// An empty value still counts as done.
	value, ok, err := s.GetCheckpoint(ctx, NamespaceSearch, "Acme_CTO")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(value))

	// Overwrite is idempotent.
	require.NoError(t, s.PutCheckpoint(ctx, NamespaceSearch, "Acme_CTO", []byte(`[{"name":"Jane Doe"}]`)))
	value, ok, err = s.GetCheckpoint(ctx, NamespaceSearch, "Acme_CTO")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, string(value), "Jane Doe")

	// Namespaces are independent.
	_, ok, err = s.GetCheckpoint(ctx, NamespaceCompany, "Acme_CTO")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutCheckpoint(ctx, NamespaceCompany, "Acme", []byte(`{}`)))
	all, err := s.ListCheckpoints(ctx, NamespaceSearch)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, "Acme_CTO")
}

func TestSQLiteStore_CompanyFacts_LastWriteWins(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCompanyFacts(ctx, model.CompanyFacts{
		CompanyName: "Acme",
		Website:     model.Unknown,
		Industry:    model.Unknown,
		SizeBucket:  model.SizeUnknown,
	}))
	require.NoError(t, s.SaveCompanyFacts(ctx, model.CompanyFacts{
		CompanyName: "Acme",
		Website:     "https://www.acme.com",
		Industry:    "Software Development",
		SizeBucket:  model.Size51To200,
	}))

	facts, err := s.ListCompanyFacts(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "https://www.acme.com", facts[0].Website)
	assert.Equal(t, model.Size51To200, facts[0].SizeBucket)
}

func TestSQLiteStore_DecisionMakers_CaseInsensitiveKey(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDecisionMakers(ctx, "Acme", map[string]model.Contact{
		"Jane Doe": {JobTitle: "CTO", LinkedInURL: "https://linkedin.com/in/janedoe"},
	}))
	// Same person, different casing, must not create a second row.
	require.NoError(t, s.SaveDecisionMakers(ctx, "Acme", map[string]model.Contact{
		"JANE DOE": {JobTitle: "Chief Technology Officer", LinkedInURL: "https://linkedin.com/in/janedoe"},
	}))
	require.NoError(t, s.SaveDecisionMakers(ctx, "Zenith", map[string]model.Contact{
		"Jane Doe": {JobTitle: "CEO", LinkedInURL: "https://linkedin.com/in/janedoe2"},
	}))

	all, err := s.ListDecisionMakers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Len(t, all["Acme"], 1)
	assert.Equal(t, "Chief Technology Officer", all["Acme"]["JANE DOE"].JobTitle)
	assert.Len(t, all["Zenith"], 1)
}

package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetCheckpoint_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM checkpoints WHERE namespace = \$1 AND key = \$2`).
		WithArgs(NamespaceSearch, "Acme_CTO").
		WillReturnError(pgx.ErrNoRows)

	_, ok, err := s.GetCheckpoint(context.Background(), NamespaceSearch, "Acme_CTO")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutCheckpoint_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO checkpoints .* ON CONFLICT`).
		WithArgs(NamespaceSearch, "Acme_CTO", `[]`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.PutCheckpoint(context.Background(), NamespaceSearch, "Acme_CTO", []byte(`[]`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCredentials_FullRewrite(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM credentials`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs("key-1", "aaa", "cse-1", 3, "2026-08-30").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.SaveCredentials(context.Background(), []model.CredentialRecord{
		{ID: "key-1", APIKey: "aaa", SearchScope: "cse-1", UsesToday: 3, LastUsedDate: "2026-08-30"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadCredentials(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "api_key", "cse_id", "uses", "last_used_date"}).
		AddRow("key-1", "aaa", "cse-1", 5, "2026-08-31")
	mock.ExpectQuery(`SELECT id, api_key, cse_id, uses, last_used_date FROM credentials`).
		WillReturnRows(rows)

	records, err := s.LoadCredentials(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "key-1", records[0].ID)
	assert.Equal(t, 5, records[0].UsesToday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCompanyFacts_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO company_facts .* ON CONFLICT \(company\) DO UPDATE`).
		WithArgs("Acme", "https://www.acme.com", "Software Development", "51-200 employees", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveCompanyFacts(context.Background(), model.CompanyFacts{
		CompanyName: "Acme",
		Website:     "https://www.acme.com",
		Industry:    "Software Development",
		SizeBucket:  model.Size51To200,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDecisionMakers_Tx(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO decision_makers .* ON CONFLICT \(company, name_key\) DO UPDATE`).
		WithArgs("Acme", "jane doe", "Jane Doe", "CTO", "https://linkedin.com/in/janedoe").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.SaveDecisionMakers(context.Background(), "Acme", map[string]model.Contact{
		"Jane Doe": {JobTitle: "CTO", LinkedInURL: "https://linkedin.com/in/janedoe"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

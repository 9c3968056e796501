//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("raseed_test"),
		postgresContainer.WithUsername("raseed"),
		postgresContainer.WithPassword("raseed"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrationSQL, err := os.ReadFile("../../../db/migrations/000001_init_schema.up.sql")
	require.NoError(t, err, "Failed to read migration file")
	_, err = pool.Exec(ctx, string(migrationSQL))
	require.NoError(t, err, "Failed to apply migration")

	return pool
}

func TestReceiptStore_SaveThenFetchRoundTrip(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	s := NewReceiptStore(pool)

	at := time.Date(2025, 7, 12, 9, 15, 0, 0, time.UTC)
	r := &types.Receipt{
		UserID:     "user-rt",
		VendorName: "Apollo Pharmacy",
		Category:   types.CategoryPharmacy,
		DateTime:   at,
		Amount:     decimal.RequireFromString("318.75"),
		Items:      []types.ReceiptItem{{Name: "Paracetamol", Quantity: 2, Unit: "strip", Price: 30}},
		RawText:    "APOLLO ...",
	}
	id, err := s.Save(ctx, r)
	require.NoError(t, err)

	receipts, err := s.FetchByTimeRange(ctx, "user-rt", at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	got := receipts[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Apollo Pharmacy", got.VendorName)
	assert.Equal(t, types.CategoryPharmacy, got.Category)
	assert.True(t, got.Amount.Equal(r.Amount))
	assert.Equal(t, "", got.RawText)
	assert.Equal(t, types.DefaultCurrency, got.Currency)

	other, err := s.FetchByTimeRange(ctx, "someone-else", at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, other)

	// end bound is inclusive
	exact, err := s.FetchByTimeRange(ctx, "user-rt", at, at)
	require.NoError(t, err)
	assert.Len(t, exact, 1)
}

func TestPassAndQueryStores_Integration(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	passes := NewPassStore(pool)
	pass := &types.WalletPass{
		UserID:   "user-q",
		PassType: types.PassTypeOther,
		Title:    "Your Agent's Answer",
		Subtitle: "what did I spend?",
		Details:  types.AnswerDetails{Response: "Nothing yet.", ExecutionResults: []types.ToolExecution{}},
	}
	passID, err := passes.Save(ctx, pass)
	require.NoError(t, err)

	loaded, err := passes.Get(ctx, "user-q", passID)
	require.NoError(t, err)
	assert.Equal(t, "Nothing yet.", loaded.Answer())

	queries := NewQueryLogStore(pool)
	_, err = queries.LogQuery(ctx, &types.QueryRecord{UserID: "user-q", Query: "what did I spend?", Response: "Nothing yet.", PassID: passID})
	require.NoError(t, err)
}

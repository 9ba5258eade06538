//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shestoi/evstore/internal/repository"
)

func TestReconciliationRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер через testcontainers
	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront_user"),
		postgres.WithPassword("storefront_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, postgresContainer.Terminate(ctx))
	}()

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Миграции встроены в бинарник, путь к файлам не нужен
	require.NoError(t, Migrate(ctx, dsn), "Failed to run migrations")
	// повторный запуск ничего не ломает
	require.NoError(t, Migrate(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewReconciliationRepository(pool)
	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rec := repository.Reconciliation{
		ID:             "rec-1",
		CheckoutID:     "chk-1",
		UserID:         "user-1",
		SessionID:      "sess-1",
		TransactionID:  "txn9",
		PaymentOrderID: "ord1",
		Amount:         1000.00,
		Reason:         "backend returned 500",
		Status:         repository.ReconciliationOpen,
		CreatedAt:      createdAt,
	}

	t.Run("Save and GetByID", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.GetByID(ctx, "rec-1")
		require.NoError(t, err)
		require.Equal(t, rec.UserID, got.UserID)
		require.Equal(t, rec.TransactionID, got.TransactionID)
		require.Equal(t, rec.PaymentOrderID, got.PaymentOrderID)
		require.InDelta(t, 1000.00, got.Amount, 0.001)
		require.Equal(t, repository.ReconciliationOpen, got.Status)
		require.True(t, createdAt.Equal(got.CreatedAt))
		require.Nil(t, got.ResolvedAt)
	})

	t.Run("Save does not overwrite", func(t *testing.T) {
		changed := rec
		changed.Amount = 1
		require.NoError(t, repo.Save(ctx, changed))

		got, err := repo.GetByID(ctx, "rec-1")
		require.NoError(t, err)
		require.InDelta(t, 1000.00, got.Amount, 0.001)
	})

	t.Run("ListOpen oldest first", func(t *testing.T) {
		newer := rec
		newer.ID = "rec-2"
		newer.CreatedAt = createdAt.Add(time.Minute)
		require.NoError(t, repo.Save(ctx, newer))

		open, err := repo.ListOpen(ctx)
		require.NoError(t, err)
		require.Len(t, open, 2)
		require.Equal(t, "rec-1", open[0].ID)
		require.Equal(t, "rec-2", open[1].ID)
	})

	t.Run("Resolve", func(t *testing.T) {
		resolvedAt := createdAt.Add(time.Hour)
		require.NoError(t, repo.Resolve(ctx, "rec-1", "order created manually", resolvedAt))

		got, err := repo.GetByID(ctx, "rec-1")
		require.NoError(t, err)
		require.Equal(t, repository.ReconciliationResolved, got.Status)
		require.Equal(t, "order created manually", got.ResolutionNote)
		require.NotNil(t, got.ResolvedAt)
		require.True(t, resolvedAt.Equal(*got.ResolvedAt))

		require.ErrorIs(t, repo.Resolve(ctx, "rec-1", "again", resolvedAt), repository.ErrNotFound)

		open, err := repo.ListOpen(ctx)
		require.NoError(t, err)
		require.Len(t, open, 1)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

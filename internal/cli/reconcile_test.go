package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shestoi/evstore/internal/repository"
	"github.com/shestoi/evstore/internal/repository/memory"
)

func seededRepo(t *testing.T, n int) *memory.ReconciliationRepository {
	t.Helper()
	repo := memory.NewReconciliationRepository()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Save(context.Background(), repository.Reconciliation{
			ID:            fmt.Sprintf("rec-%d", i),
			UserID:        "user-1",
			TransactionID: fmt.Sprintf("txn-%d", i),
			Amount:        100,
			Reason:        "order service unavailable",
			Status:        repository.ReconciliationOpen,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}
	return repo
}

func runCmd(t *testing.T, repo repository.ReconciliationRepository, args ...string) (string, error) {
	t.Helper()
	closed := false
	open := func(context.Context) (repository.ReconciliationRepository, func(), error) {
		return repo, func() { closed = true }, nil
	}

	buf := &bytes.Buffer{}
	cmd := NewRootCmd(open, nil)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SilenceErrors = true
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		assert.True(t, closed, "store must be closed after command")
	}
	return buf.String(), err
}

func TestList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out, err := runCmd(t, memory.NewReconciliationRepository(), "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No open reconciliations")
	})

	t.Run("single page hides footer", func(t *testing.T) {
		out, err := runCmd(t, seededRepo(t, 2), "list")
		require.NoError(t, err)
		assert.Contains(t, out, "rec-0")
		assert.Contains(t, out, "rec-1")
		assert.NotContains(t, out, "Page ")
	})

	t.Run("paged", func(t *testing.T) {
		out, err := runCmd(t, seededRepo(t, 5), "list", "--page", "2", "--page-size", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "rec-4")
		assert.NotContains(t, out, "rec-0")
		assert.Contains(t, out, "Page 3 of 3 (5 records)")
	})

	t.Run("page out of range is clamped", func(t *testing.T) {
		out, err := runCmd(t, seededRepo(t, 3), "list", "--page", "9", "--page-size", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "rec-2")
		assert.Contains(t, out, "Page 2 of 2")
	})
}

func TestShow(t *testing.T) {
	repo := seededRepo(t, 1)

	out, err := runCmd(t, repo, "show", "rec-0")
	require.NoError(t, err)
	assert.Contains(t, out, "txn-0")
	assert.Contains(t, out, "open")

	_, err = runCmd(t, repo, "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestResolve(t *testing.T) {
	repo := seededRepo(t, 1)

	_, err := runCmd(t, repo, "resolve", "rec-0")
	require.Error(t, err, "--note is required")

	_, err = runCmd(t, repo, "resolve", "rec-0", "--note", "  ")
	require.Error(t, err)

	out, err := runCmd(t, repo, "resolve", "rec-0", "--note", "refunded")
	require.NoError(t, err)
	assert.Contains(t, out, "Resolved rec-0")

	rec, err := repo.GetByID(context.Background(), "rec-0")
	require.NoError(t, err)
	assert.Equal(t, repository.ReconciliationResolved, rec.Status)
	assert.Equal(t, "refunded", rec.ResolutionNote)

	_, err = runCmd(t, repo, "resolve", "rec-0", "--note", "again")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open reconciliation rec-0 not found")
}

func TestOpenFailure(t *testing.T) {
	open := func(context.Context) (repository.ReconciliationRepository, func(), error) {
		return nil, nil, errors.New("connection refused")
	}
	cmd := NewRootCmd(open, nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWatch(t *testing.T) {
	repo := memory.NewReconciliationRepository()
	var got repository.ReconciliationRepository
	watch := func(_ context.Context, r repository.ReconciliationRepository) error {
		got = r
		return nil
	}
	open := func(context.Context) (repository.ReconciliationRepository, func(), error) {
		return repo, func() {}, nil
	}

	cmd := NewRootCmd(open, watch)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch"})
	require.NoError(t, cmd.Execute())
	assert.Same(t, repo, got)

	_, err := runCmd(t, repo, "watch")
	require.Error(t, err, "watch is not registered without a watcher")
}

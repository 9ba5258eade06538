package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/evstore/internal/repository"
)

// ReconciliationRepository реализует repository.ReconciliationRepository используя PostgreSQL
type ReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository создаёт новый PostgreSQL репозиторий сверок
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{
		pool: pool,
	}
}

const reconciliationColumns = `id, checkout_id, user_id, session_id, transaction_id, payment_order_id,
	amount, reason, status, resolution_note, created_at, resolved_at`

// Save сохраняет новую запись сверки.
// Повторный Save с тем же ID ничего не меняет: запись о списанных деньгах не перезаписывается.
func (r *ReconciliationRepository) Save(ctx context.Context, rec repository.Reconciliation) error {
	status := rec.Status
	if status == "" {
		status = repository.ReconciliationOpen
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO reconciliations (id, checkout_id, user_id, session_id, transaction_id, payment_order_id,
		                              amount, reason, status, resolution_note, created_at, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.CheckoutID, rec.UserID, rec.SessionID, rec.TransactionID, rec.PaymentOrderID,
		rec.Amount, rec.Reason, string(status), rec.ResolutionNote, createdAt.UTC(), rec.ResolvedAt)
	return err
}

// GetByID получает запись сверки по ID
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (repository.Reconciliation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+reconciliationColumns+`
		 FROM reconciliations
		 WHERE id = $1`,
		id)

	rec, err := scanReconciliation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Reconciliation{}, repository.ErrNotFound
		}
		return repository.Reconciliation{}, err
	}
	return rec, nil
}

// ListOpen возвращает открытые записи, старые первыми
func (r *ReconciliationRepository) ListOpen(ctx context.Context) ([]repository.Reconciliation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reconciliationColumns+`
		 FROM reconciliations
		 WHERE status = $1
		 ORDER BY created_at, id`,
		string(repository.ReconciliationOpen))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.Reconciliation, 0)
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve закрывает открытую запись. Уже закрытая или отсутствующая запись даёт ErrNotFound.
func (r *ReconciliationRepository) Resolve(ctx context.Context, id, note string, resolvedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reconciliations
		 SET status = $2, resolution_note = $3, resolved_at = $4
		 WHERE id = $1 AND status = $5`,
		id, string(repository.ReconciliationResolved), note, resolvedAt.UTC(), string(repository.ReconciliationOpen))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanReconciliation(row pgx.Row) (repository.Reconciliation, error) {
	var (
		rec    repository.Reconciliation
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.CheckoutID, &rec.UserID, &rec.SessionID, &rec.TransactionID, &rec.PaymentOrderID,
		&rec.Amount, &rec.Reason, &status, &rec.ResolutionNote, &rec.CreatedAt, &rec.ResolvedAt,
	)
	if err != nil {
		return repository.Reconciliation{}, err
	}
	rec.Status = repository.ReconciliationStatus(status)
	return rec, nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shestoi/evstore/internal/repository"
)

// ReconciliationRepository реализует repository.ReconciliationRepository в памяти процесса.
// Используется в режиме STORAGE_MODE=memory и в тестах: записи не переживают рестарт.
type ReconciliationRepository struct {
	mu   sync.RWMutex
	recs map[string]repository.Reconciliation
}

// NewReconciliationRepository создаёт новый in-memory репозиторий сверок
func NewReconciliationRepository() *ReconciliationRepository {
	return &ReconciliationRepository{
		recs: make(map[string]repository.Reconciliation),
	}
}

// Save сохраняет запись; существующая запись с тем же ID не перезаписывается
func (r *ReconciliationRepository) Save(ctx context.Context, rec repository.Reconciliation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recs[rec.ID]; exists {
		return nil
	}
	if rec.Status == "" {
		rec.Status = repository.ReconciliationOpen
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.recs[rec.ID] = rec
	return nil
}

// GetByID получает запись по ID
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (repository.Reconciliation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.recs[id]
	if !exists {
		return repository.Reconciliation{}, repository.ErrNotFound
	}
	return rec, nil
}

// ListOpen возвращает открытые записи, старые первыми
func (r *ReconciliationRepository) ListOpen(ctx context.Context) ([]repository.Reconciliation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.Reconciliation, 0, len(r.recs))
	for _, rec := range r.recs {
		if rec.Status == repository.ReconciliationOpen {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Resolve закрывает открытую запись
func (r *ReconciliationRepository) Resolve(ctx context.Context, id, note string, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.recs[id]
	if !exists || rec.Status != repository.ReconciliationOpen {
		return repository.ErrNotFound
	}
	rec.Status = repository.ReconciliationResolved
	rec.ResolutionNote = note
	rec.ResolvedAt = &resolvedAt
	r.recs[id] = rec
	return nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shestoi/evstore/internal/repository"
)

// CatalogRepository реализует repository.CatalogRepository в памяти
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]repository.Product
}

// NewCatalogRepository создаёт новый in-memory каталог
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products: make(map[string]repository.Product),
	}
}

// List возвращает товары по фильтру, отсортированные по имени
func (r *CatalogRepository) List(ctx context.Context, filter repository.ProductFilter) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]repository.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Kind != "" && p.Kind != filter.Kind {
			continue
		}
		if filter.OnDealOnly && !p.OnDeal {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetByID получает товар по ID
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.products[id]
	if !exists {
		return repository.Product{}, repository.ErrNotFound
	}
	return p, nil
}

// Upsert создаёт или обновляет товары
func (r *CatalogRepository) Upsert(ctx context.Context, products []repository.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		r.products[p.ID] = p
	}
	return nil
}

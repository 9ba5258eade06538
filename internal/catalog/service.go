package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/pagination"
	"github.com/shestoi/evstore/internal/repository"
)

const defaultPageSize = 12

// ErrProductNotFound возвращается, когда товара нет в каталоге
var ErrProductNotFound = errors.New("catalog: product not found")

// Query содержит параметры листинга. Page считается с нуля и зажимается в допустимый диапазон.
type Query struct {
	Kind       repository.ProductKind
	Search     string
	OnDealOnly bool
	Page       int
	PageSize   int
}

// Source отдаёт каталог для синхронизации (REST клиент platform API)
type Source interface {
	ListProducts(ctx context.Context) ([]repository.Product, error)
}

// Service реализует листинг витрины поверх read model каталога
type Service struct {
	repo            repository.CatalogRepository
	logger          *zap.Logger
	defaultPageSize int
}

// NewService создаёт сервис каталога
func NewService(repo repository.CatalogRepository, logger *zap.Logger, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		repo:            repo,
		logger:          logger,
		defaultPageSize: pageSize,
	}
}

// List возвращает страницу товаров по фильтру
func (s *Service) List(ctx context.Context, q Query) (pagination.Page[repository.Product], error) {
	products, err := s.repo.List(ctx, repository.ProductFilter{
		Kind:       q.Kind,
		Search:     q.Search,
		OnDealOnly: q.OnDealOnly,
	})
	if err != nil {
		return pagination.Page[repository.Product]{}, fmt.Errorf("list products: %w", err)
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	return pagination.Window(products, pageSize, q.Page), nil
}

// Get возвращает товар по ID
func (s *Service) Get(ctx context.Context, id string) (repository.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Product{}, ErrProductNotFound
		}
		return repository.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// Sync загружает товары из source и сохраняет их в read model. Возвращает количество товаров.
func (s *Service) Sync(ctx context.Context, source Source) (int, error) {
	products, err := source.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch products: %w", err)
	}
	if err := s.repo.Upsert(ctx, products); err != nil {
		return 0, fmt.Errorf("upsert products: %w", err)
	}

	s.logger.Info("Catalog synchronized", zap.Int("products", len(products)))
	return len(products), nil
}

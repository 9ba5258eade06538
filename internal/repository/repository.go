package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается, когда запись не найдена в хранилище
var ErrNotFound = errors.New("not found")

// ReconciliationStatus представляет статус ручной сверки
type ReconciliationStatus string

const (
	ReconciliationOpen     ReconciliationStatus = "open"
	ReconciliationResolved ReconciliationStatus = "resolved"
)

// Reconciliation представляет запись о платеже, который прошёл, но заказ по нему не записан.
// Деньги списаны, заказа нет: запись остаётся open, пока оператор не разберёт её вручную.
type Reconciliation struct {
	ID             string
	CheckoutID     string
	UserID         string
	SessionID      string
	TransactionID  string
	PaymentOrderID string
	Amount         float64
	Reason         string
	Status         ReconciliationStatus
	ResolutionNote string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ReconciliationRepository --dir=. --output=./mocks --outpkg=mocks

// ReconciliationRepository определяет интерфейс хранилища записей сверки
type ReconciliationRepository interface {
	// Save сохраняет новую запись
	Save(ctx context.Context, rec Reconciliation) error

	// GetByID получает запись по ID, ErrNotFound если её нет
	GetByID(ctx context.Context, id string) (Reconciliation, error)

	// ListOpen возвращает все неразобранные записи, старые первыми
	ListOpen(ctx context.Context) ([]Reconciliation, error)

	// Resolve закрывает запись; ErrNotFound если открытой записи с таким ID нет
	Resolve(ctx context.Context, id, note string, resolvedAt time.Time) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderGuard --dir=. --output=./mocks --outpkg=mocks

// OrderGuard обеспечивает at-most-once запись заказа по одобренной транзакции,
// в том числе между репликами storefront.
type OrderGuard interface {
	// TryAcquire атомарно помечает key. Возвращает false, если key уже помечен и ttl не истёк.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ProductKind представляет тип товара витрины
type ProductKind string

const (
	KindVehicle   ProductKind = "vehicle"
	KindAccessory ProductKind = "accessory"
)

// Product представляет товар каталога (read model)
type Product struct {
	ID                 string
	Name               string
	Kind               ProductKind
	Brand              string
	UnitPrice          float64
	DiscountPrice      *float64
	OnDeal             bool
	DiscountPercentage *float64
	RangeKm            int
	Rating             float64
	UpdatedAt          time.Time
}

// EffectivePrice считает цену так же, как позиция корзины: скидка только по акции и только если ниже
func (p Product) EffectivePrice() float64 {
	if p.OnDeal && p.DiscountPrice != nil && *p.DiscountPrice < p.UnitPrice {
		return *p.DiscountPrice
	}
	return p.UnitPrice
}

// ProductFilter определяет фильтр листинга. Пустые поля не фильтруют.
type ProductFilter struct {
	Kind       ProductKind
	Search     string
	OnDealOnly bool
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CatalogRepository --dir=. --output=./mocks --outpkg=mocks

// CatalogRepository определяет интерфейс read model каталога
type CatalogRepository interface {
	// List возвращает товары по фильтру, отсортированные по имени
	List(ctx context.Context, filter ProductFilter) ([]Product, error)

	// GetByID получает товар по ID, ErrNotFound если его нет
	GetByID(ctx context.Context, id string) (Product, error)

	// Upsert создаёт или обновляет товары
	Upsert(ctx context.Context, products []Product) error
}

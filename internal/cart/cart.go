package cart

import "context"

// LineItem представляет позицию корзины (электромобиль или аксессуар).
// Корзиной владеет platform API, здесь позиции только читаются.
type LineItem struct {
	ID                 string   `json:"id"`
	ProductRef         string   `json:"product_ref"`
	Quantity           int      `json:"quantity"`
	UnitPrice          float64  `json:"unit_price"`
	DiscountPrice      *float64 `json:"discount_price,omitempty"`
	OnDeal             bool     `json:"on_deal"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
}

// EffectivePrice возвращает цену со скидкой, только если товар участвует в акции
// и скидочная цена действительно ниже обычной
func (i LineItem) EffectivePrice() float64 {
	if i.OnDeal && i.DiscountPrice != nil && *i.DiscountPrice < i.UnitPrice {
		return *i.DiscountPrice
	}
	return i.UnitPrice
}

// LineTotal возвращает effectivePrice * quantity
func (i LineItem) LineTotal() float64 {
	return i.EffectivePrice() * float64(i.Quantity)
}

// Cart представляет снимок корзины пользователя.
// Total вычисляется backend-ом и является единственной суммой, которая уходит в оплату.
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []LineItem `json:"items"`
	Total  float64    `json:"total"`
}

// Subtotal возвращает сумму LineTotal по позициям. Только для отображения, к оплате идёт Total.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.LineTotal()
	}
	return sum
}

// Savings возвращает разницу между обычной и акционной ценой по всей корзине (для отображения)
func (c Cart) Savings() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += (item.UnitPrice - item.EffectivePrice()) * float64(item.Quantity)
	}
	return sum
}

// IsEmpty возвращает true, если в корзине нет позиций
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Provider --dir=. --output=./mocks --outpkg=mocks

// Provider определяет интерфейс корзины (реализуется REST клиентом platform API)
type Provider interface {
	// GetCart возвращает текущую корзину пользователя вместе с серверным Total
	GetCart(ctx context.Context, userID string) (Cart, error)

	// ClearCart очищает корзину пользователя
	ClearCart(ctx context.Context, userID string) error
}

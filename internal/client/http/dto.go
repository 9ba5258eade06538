package httpclient

import (
	"time"

	"github.com/shestoi/evstore/internal/cart"
	"github.com/shestoi/evstore/internal/checkout"
	"github.com/shestoi/evstore/internal/payment"
	"github.com/shestoi/evstore/internal/repository"
)

// JSON DTO platform API (camelCase, формат принадлежит backend-у)

type lineItemDTO struct {
	ID                 string   `json:"id"`
	ProductRef         string   `json:"productRef"`
	Quantity           int      `json:"quantity"`
	UnitPrice          float64  `json:"unitPrice"`
	DiscountPrice      *float64 `json:"discountPrice,omitempty"`
	OnDeal             bool     `json:"onDeal"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
}

type cartDTO struct {
	UserID string        `json:"userId"`
	Items  []lineItemDTO `json:"items"`
	Total  float64       `json:"total"`
}

func (d cartDTO) toDomain(userID string) cart.Cart {
	out := cart.Cart{
		UserID: d.UserID,
		Items:  make([]cart.LineItem, 0, len(d.Items)),
		Total:  d.Total,
	}
	if out.UserID == "" {
		out.UserID = userID
	}
	for _, item := range d.Items {
		out.Items = append(out.Items, cart.LineItem{
			ID:                 item.ID,
			ProductRef:         item.ProductRef,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPrice:      item.DiscountPrice,
			OnDeal:             item.OnDeal,
			DiscountPercentage: item.DiscountPercentage,
		})
	}
	return out
}

type sessionRequestDTO struct {
	UserID string `json:"userId"`
}

type sessionResponseDTO struct {
	SessionID string `json:"sessionId"`
}

type processPaymentDTO struct {
	UserID         string  `json:"userId"`
	SessionID      string  `json:"sessionId,omitempty"`
	CartTotal      float64 `json:"cartTotal"`
	PaymentMethod  string  `json:"paymentMethod"`
	CardNumber     string  `json:"cardNumber,omitempty"`
	ExpiryDate     string  `json:"expiryDate,omitempty"`
	CVV            string  `json:"cvv,omitempty"`
	NameOnCard     string  `json:"nameOnCard,omitempty"`
	BillingAddress string  `json:"billingAddress,omitempty"`
	City           string  `json:"city,omitempty"`
	PostalCode     string  `json:"postalCode,omitempty"`
	Country        string  `json:"country,omitempty"`
}

func newProcessPaymentDTO(req checkout.PaymentRequest) processPaymentDTO {
	return processPaymentDTO{
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		CartTotal:      req.CartTotal,
		PaymentMethod:  req.PaymentMethod,
		CardNumber:     req.CardNumber,
		ExpiryDate:     req.ExpiryDate,
		CVV:            req.CVV,
		NameOnCard:     req.NameOnCard,
		BillingAddress: req.BillingAddress,
		City:           req.City,
		PostalCode:     req.PostalCode,
		Country:        req.Country,
	}
}

type paymentResultDTO struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId"`
	OrderID       string  `json:"orderId"`
	FailureReason string  `json:"failureReason"`
	Amount        float64 `json:"amount"`
}

func (d paymentResultDTO) toDomain() checkout.PaymentOutcome {
	return checkout.PaymentOutcome{
		Status:        checkout.PaymentStatus(d.Status),
		TransactionID: d.TransactionID,
		OrderID:       d.OrderID,
		FailureReason: d.FailureReason,
		Amount:        d.Amount,
	}
}

type orderDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d orderDTO) toDomain() checkout.Order {
	return checkout.Order{
		ID:        d.ID,
		UserID:    d.UserID,
		Status:    d.Status,
		Total:     d.Total,
		CreatedAt: d.CreatedAt,
	}
}

type paymentDTO struct {
	OrderID       string    `json:"orderId"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	FailureReason string    `json:"failureReason"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (d paymentDTO) toDomain() payment.Payment {
	return payment.Payment{
		OrderID:       d.OrderID,
		TransactionID: d.TransactionID,
		Amount:        d.Amount,
		Status:        payment.Status(d.Status),
		PaymentMethod: d.PaymentMethod,
		FailureReason: d.FailureReason,
		CreatedAt:     d.CreatedAt,
	}
}

type paymentStatusDTO struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type productDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	Brand              string   `json:"brand"`
	Price              float64  `json:"price"`
	DiscountPrice      *float64 `json:"discountPrice,omitempty"`
	OnDeal             bool     `json:"onDeal"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	RangeKm            int      `json:"rangeKm"`
	Rating             float64  `json:"rating"`
}

func (d productDTO) toDomain(now time.Time) repository.Product {
	kind := repository.KindAccessory
	if d.Type == string(repository.KindVehicle) {
		kind = repository.KindVehicle
	}
	return repository.Product{
		ID:                 d.ID,
		Name:               d.Name,
		Kind:               kind,
		Brand:              d.Brand,
		UnitPrice:          d.Price,
		DiscountPrice:      d.DiscountPrice,
		OnDeal:             d.OnDeal,
		DiscountPercentage: d.DiscountPercentage,
		RangeKm:            d.RangeKm,
		Rating:             d.Rating,
		UpdatedAt:          now,
	}
}

package payment

import (
	"context"
	"time"
)

// Status представляет статус платежа на стороне platform API
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusDenied    Status = "DENIED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// Cancellable возвращает true, если платёж ещё можно отменить
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusApproved
}

// Payment представляет запись истории платежей пользователя
type Payment struct {
	OrderID       string    `json:"order_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        float64   `json:"amount"`
	Status        Status    `json:"status"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=History --dir=. --output=./mocks --outpkg=mocks

// History определяет вызовы platform API вокруг уже совершённых платежей
type History interface {
	// GetPaymentHistory возвращает платежи пользователя, новые первыми
	GetPaymentHistory(ctx context.Context, userID string) ([]Payment, error)

	// GetPaymentStatus возвращает статус платежа по заказу
	GetPaymentStatus(ctx context.Context, orderID string) (Status, error)

	// CancelPayment отменяет платёж по заказу
	CancelPayment(ctx context.Context, orderID string) error
}

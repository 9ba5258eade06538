package checkout

import (
	"context"
	"time"
)

// SessionHandle представляет ответ platform API на создание платёжной сессии
type SessionHandle struct {
	SessionID string
}

// PaymentRequest представляет запрос на списание
type PaymentRequest struct {
	UserID         string
	SessionID      string
	CartTotal      float64
	PaymentMethod  string
	CardNumber     string
	ExpiryDate     string
	CVV            string
	NameOnCard     string
	BillingAddress string
	City           string
	PostalCode     string
	Country        string
}

// PaymentOutcome представляет ответ platform API на списание. DENIED приходит успешным вызовом.
type PaymentOutcome struct {
	Status        PaymentStatus
	TransactionID string
	OrderID       string
	FailureReason string
	Amount        float64
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentAPI --dir=. --output=./mocks --outpkg=mocks

// PaymentAPI определяет вызовы platform API, которые последовательно делает checkout.
// Использует доменные типы вместо JSON DTO - checkout не зависит от транспорта.
type PaymentAPI interface {
	// CreatePaymentSession создаёт платёжную сессию для пользователя
	CreatePaymentSession(ctx context.Context, userID string) (SessionHandle, error)

	// ProcessPayment выполняет списание; бизнес-отказ возвращается как Status=DENIED без ошибки
	ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentOutcome, error)

	// CreateOrderFromCart создаёт заказ из текущей корзины пользователя
	CreateOrderFromCart(ctx context.Context, userID string) (Order, error)
}

// EventType определяет тип события checkout
type EventType string

const (
	EventPaymentApproved       EventType = "checkout.payment.approved"
	EventPaymentDenied         EventType = "checkout.payment.denied"
	EventOrderRecorded         EventType = "checkout.order.recorded"
	EventOrderRecordingFailed  EventType = "checkout.order.recording_failed"
	EventOrderRecordingSkipped EventType = "checkout.order.recording_skipped"
)

// Event представляет событие checkout для внешних подписчиков (аналитика, поддержка, сверка)
type Event struct {
	Type             EventType
	CheckoutID       string
	UserID           string
	SessionID        string
	TransactionID    string
	PaymentOrderID   string
	OrderID          string
	ReconciliationID string
	Amount           float64
	Reason           string
	OccurredAt       time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=EventPublisher --dir=. --output=./mocks --outpkg=mocks

// EventPublisher публикует события checkout. Ошибки публикации не влияют на состояние flow.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher реализует EventPublisher, который ничего не делает (Kafka выключена)
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(context.Context, Event) error { return nil }

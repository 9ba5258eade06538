package checkout

import "time"

// Step представляет шаг checkout, который показывает UI. Никогда не хранится: вычисляется из State.
type Step string

const (
	StepReview     Step = "REVIEW"
	StepPayment    Step = "PAYMENT"
	StepProcessing Step = "PROCESSING"
	StepResult     Step = "RESULT"
)

// PaymentStatus представляет бизнес-результат оплаты, не зависит от успеха транспорта
type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentDenied   PaymentStatus = "DENIED"
)

// Session представляет платёжную сессию, выданная platform API на одну попытку checkout
type Session struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Result содержит исход завершённой попытки оплаты (APPROVED или DENIED)
type Result struct {
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	OrderID       string        `json:"order_id,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	Amount        float64       `json:"amount,omitempty"`
}

// Order представляет заказ, созданный из корзины после одобренной оплаты
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderRecordingStatus представляет состояние записи заказа после APPROVED
type OrderRecordingStatus string

const (
	OrderRecordingPending   OrderRecordingStatus = "pending"
	OrderRecordingRecorded  OrderRecordingStatus = "recorded"
	OrderRecordingFailed    OrderRecordingStatus = "failed"
	OrderRecordingDuplicate OrderRecordingStatus = "duplicate"
)

// OrderRecording описывает post-approval side effect: создание заказа и очистку корзины
type OrderRecording struct {
	Status           OrderRecordingStatus `json:"status"`
	Order            *Order               `json:"order,omitempty"`
	CartCleared      bool                 `json:"cart_cleared"`
	ReconciliationID string               `json:"reconciliation_id,omitempty"`
	Error            *FlowError           `json:"error,omitempty"`
}

// State содержит эфемерное состояние одной попытки checkout
type State struct {
	Session           *Session        `json:"session,omitempty"`
	Result            *Result         `json:"result,omitempty"`
	CreatingSession   bool            `json:"creating_session"`
	ProcessingPayment bool            `json:"processing_payment"`
	LastError         *FlowError      `json:"last_error,omitempty"`
	Form              PaymentForm     `json:"form"`
	Recording         *OrderRecording `json:"order_recording,omitempty"`
}

// Step вычисляет текущий шаг. Result всегда важнее Session.
func (s State) Step() Step {
	switch {
	case s.Result != nil:
		return StepResult
	case s.ProcessingPayment:
		return StepProcessing
	case s.Session != nil:
		return StepPayment
	default:
		return StepReview
	}
}

// clone копирует State вместе с указателями, чтобы снимок не разделял память с Flow
func (s State) clone() State {
	out := s
	if s.Session != nil {
		v := *s.Session
		out.Session = &v
	}
	if s.Result != nil {
		v := *s.Result
		out.Result = &v
	}
	if s.LastError != nil {
		v := *s.LastError
		out.LastError = &v
	}
	if s.Recording != nil {
		v := *s.Recording
		if v.Order != nil {
			o := *v.Order
			v.Order = &o
		}
		if v.Error != nil {
			e := *v.Error
			v.Error = &e
		}
		out.Recording = &v
	}
	return out
}

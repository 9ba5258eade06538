package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrSubmissionInFlight — повторный запуск операции, пока предыдущая ещё выполняется
	ErrSubmissionInFlight = errors.New("checkout: submission already in flight")
	// ErrInvalidTransition — операция недопустима на текущем шаге
	ErrInvalidTransition = errors.New("checkout: invalid transition")
	// ErrFlowClosed — flow уже разобран (teardown), операции больше не принимаются
	ErrFlowClosed = errors.New("checkout: flow closed")
	// ErrFlowReset — flow был сброшен, пока сетевой вызов был в полёте; результат отброшен
	ErrFlowReset = errors.New("checkout: flow reset while call was in flight")
	// ErrFlowNotFound — checkout с таким ID нет (или он принадлежит другому пользователю)
	ErrFlowNotFound = errors.New("checkout: flow not found")
	// ErrInvalidAmount — сумма к оплате должна быть положительной
	ErrInvalidAmount = errors.New("checkout: invalid amount")
	// ErrInvalidForm — платёжная форма заполнена некорректно
	ErrInvalidForm = errors.New("checkout: invalid payment form")
)

// ErrorKind классифицирует ошибки сетевых вызовов checkout.
// PaymentDenied сюда не входит: отказ банка остаётся обычными данными Result.
type ErrorKind string

const (
	KindSessionCreationFailed   ErrorKind = "SessionCreationFailed"
	KindPaymentProcessingFailed ErrorKind = "PaymentProcessingFailed"
	KindOrderRecordingFailed    ErrorKind = "OrderRecordingFailed"
)

var genericMessages = map[ErrorKind]string{
	KindSessionCreationFailed:   "Could not start the payment session. Please try again.",
	KindPaymentProcessingFailed: "Your payment could not be processed. Please try again.",
	KindOrderRecordingFailed:    "Your payment was received, but we could not record your order. Our team has been notified and will contact you.",
}

// FlowError представляет ошибку сетевого вызова, переведённая в сообщение для пользователя
type FlowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// MarshalJSON отдаёт в UI только kind и message, без внутренних деталей
func (e *FlowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    ErrorKind `json:"kind"`
		Message string    `json:"message"`
	}{Kind: e.Kind, Message: e.Message})
}

// backendMessager реализуется ошибками REST клиента, несущими сообщение от backend
type backendMessager interface {
	BackendMessage() string
}

func newFlowError(kind ErrorKind, err error) *FlowError {
	return &FlowError{
		Kind:    kind,
		Message: userMessage(kind, err),
		Err:     err,
	}
}

// userMessage предпочитает сообщение backend-а, иначе общий текст.
// Для OrderRecordingFailed всегда общий текст: пользователь должен понять, что деньги списаны.
func userMessage(kind ErrorKind, err error) string {
	if kind != KindOrderRecordingFailed {
		var bm backendMessager
		if errors.As(err, &bm) && bm.BackendMessage() != "" {
			return bm.BackendMessage()
		}
	}
	return genericMessages[kind]
}

package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/cart"
	"github.com/shestoi/evstore/internal/repository"
)

const (
	defaultListingPath = "/products"
	defaultGuardTTL    = 7 * 24 * time.Hour
	// recordTimeout ограничивает запись заказа, которая не зависит от отмены запроса клиента
	recordTimeout = 30 * time.Second
)

// Deps содержит зависимости flow. Передаются явно: никаких глобальных store.
type Deps struct {
	Payments        PaymentAPI
	Cart            cart.Provider
	Reconciliations repository.ReconciliationRepository
	Guard           repository.OrderGuard
	Events          EventPublisher
	Logger          *zap.Logger

	// ListingPath — куда уводить пользователя после StartNewOrder
	ListingPath string
	// GuardTTL — сколько помнить, что заказ по транзакции уже записывался
	GuardTTL time.Duration
	// Now — источник времени (подменяется в тестах)
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.ListingPath == "" {
		d.ListingPath = defaultListingPath
	}
	if d.GuardTTL <= 0 {
		d.GuardTTL = defaultGuardTTL
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Flow реализует линейную машину состояний одной попытки checkout: REVIEW → PAYMENT → PROCESSING → RESULT.
// Шаг не хранится, а вычисляется из State. Сетевые вызовы выполняются без удержания mutex;
// результат применяется, только если flow не был сброшен или разобран за время вызова.
type Flow struct {
	id    string
	owner string
	deps  Deps

	mu           sync.Mutex
	state        State
	generation   uint64
	closed       bool
	lastActivity time.Time
}

// NewFlow создаёт flow в начальном состоянии REVIEW
func NewFlow(id, owner string, deps Deps) *Flow {
	deps = deps.withDefaults()
	return &Flow{
		id:           id,
		owner:        owner,
		deps:         deps,
		lastActivity: deps.Now(),
	}
}

// ID возвращает идентификатор checkout
func (f *Flow) ID() string {
	return f.id
}

// Owner возвращает пользователя, создавшего checkout
func (f *Flow) Owner() string {
	return f.owner
}

// Snapshot возвращает копию текущего состояния
func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Step возвращает текущий шаг
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Step()
}

// ListingPath возвращает путь листинга, на который уводит StartNewOrder
func (f *Flow) ListingPath() string {
	return f.deps.ListingPath
}

// StartPaymentSession создаёт платёжную сессию. Успех переводит flow в PAYMENT,
// ошибка оставляет REVIEW с LastError вида SessionCreationFailed.
func (f *Flow) StartPaymentSession(ctx context.Context, userID string) error {
	f.mu.Lock()
	if err := f.checkOpenLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.state.CreatingSession {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if step := f.state.Step(); step != StepReview {
		f.mu.Unlock()
		return fmt.Errorf("%w: cannot start payment session in %s", ErrInvalidTransition, step)
	}
	if userID == "" {
		f.mu.Unlock()
		return fmt.Errorf("%w: user id is required", ErrInvalidTransition)
	}
	f.state.CreatingSession = true
	gen := f.generation
	f.touchLocked()
	f.mu.Unlock()

	logger := f.logger().With(zap.String("user_id", userID))
	logger.Info("Creating payment session")

	handle, err := f.deps.Payments.CreatePaymentSession(ctx, userID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if staleErr := f.staleLocked(gen); staleErr != nil {
		logger.Warn("Payment session result dropped", zap.Error(staleErr))
		return staleErr
	}
	f.state.CreatingSession = false
	f.touchLocked()

	if err != nil {
		flowErr := newFlowError(KindSessionCreationFailed, err)
		f.state.LastError = flowErr
		logger.Warn("Payment session creation failed", zap.Error(err))
		return flowErr
	}

	f.state.Session = &Session{
		UserID:    userID,
		SessionID: handle.SessionID,
		CreatedAt: f.deps.Now(),
	}
	f.state.LastError = nil
	logger.Info("Payment session created", zap.String("session_id", handle.SessionID))
	return nil
}

// SetFormField устанавливает одно поле платёжной формы
func (f *Flow) SetFormField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if f.state.ProcessingPayment {
		return ErrSubmissionInFlight
	}
	form := f.state.Form
	if err := form.Set(field, value); err != nil {
		return err
	}
	f.state.Form = form
	f.touchLocked()
	return nil
}

// CanSubmitPayment проверяет, что flow сейчас примет SubmitPayment.
// HTTP handler вызывает его до загрузки корзины из platform API.
func (f *Flow) CanSubmitPayment() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Flow) canSubmitLocked() error {
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if f.state.ProcessingPayment {
		return ErrSubmissionInFlight
	}
	if step := f.state.Step(); step != StepPayment {
		return fmt.Errorf("%w: cannot submit payment in %s", ErrInvalidTransition, step)
	}
	return nil
}

// SubmitPayment отправляет оплату на сумму cartTotal (серверный Total корзины).
// Непустые поля form перекрывают ранее заполненные через SetFormField.
//
// Транспортная ошибка возвращает flow в PAYMENT с LastError вида PaymentProcessingFailed.
// APPROVED и DENIED оба ведут в RESULT; после APPROVED ровно один раз записывается заказ.
func (f *Flow) SubmitPayment(ctx context.Context, form PaymentForm, cartTotal float64) error {
	f.mu.Lock()
	if err := f.canSubmitLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if cartTotal <= 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: cart total must be greater than 0", ErrInvalidAmount)
	}
	merged := f.state.Form.Merge(form)
	if merged.PaymentMethod == "" {
		merged.PaymentMethod = PaymentMethodCard
	}
	if err := merged.Validate(); err != nil {
		f.state.Form = merged
		f.mu.Unlock()
		return err
	}

	session := *f.state.Session
	f.state.Form = merged
	// CVV не хранится после отправки: при повторе пользователь вводит его заново
	f.state.Form.CVV = ""
	f.state.ProcessingPayment = true
	f.state.LastError = nil
	gen := f.generation
	f.touchLocked()
	f.mu.Unlock()

	logger := f.logger().With(
		zap.String("user_id", session.UserID),
		zap.String("session_id", session.SessionID),
		zap.Float64("amount", cartTotal),
	)
	logger.Info("Processing payment", zap.String("payment_method", merged.PaymentMethod))

	outcome, err := f.deps.Payments.ProcessPayment(ctx, PaymentRequest{
		UserID:         session.UserID,
		SessionID:      session.SessionID,
		CartTotal:      cartTotal,
		PaymentMethod:  merged.PaymentMethod,
		CardNumber:     merged.CardNumber,
		ExpiryDate:     merged.ExpiryDate,
		CVV:            merged.CVV,
		NameOnCard:     merged.NameOnCard,
		BillingAddress: merged.BillingAddress,
		City:           merged.City,
		PostalCode:     merged.PostalCode,
		Country:        merged.Country,
	})
	if err == nil && outcome.Status != PaymentApproved && outcome.Status != PaymentDenied {
		err = fmt.Errorf("unexpected payment status %q", outcome.Status)
	}

	f.mu.Lock()
	if staleErr := f.staleLocked(gen); staleErr != nil {
		f.mu.Unlock()
		logger.Warn("Payment result arrived after checkout was reset", zap.Error(staleErr))
		// Деньги могли быть списаны: заказ всё равно записываем, но состояние flow не трогаем
		if err == nil && outcome.Status == PaymentApproved {
			f.recordOrder(ctx, session, outcome)
		}
		return staleErr
	}
	f.state.ProcessingPayment = false
	f.touchLocked()

	if err != nil {
		flowErr := newFlowError(KindPaymentProcessingFailed, err)
		f.state.LastError = flowErr
		f.mu.Unlock()
		logger.Warn("Payment processing failed", zap.Error(err))
		return flowErr
	}

	result := &Result{
		Status:        outcome.Status,
		TransactionID: outcome.TransactionID,
		OrderID:       outcome.OrderID,
		FailureReason: outcome.FailureReason,
		Amount:        outcome.Amount,
	}
	if result.Amount == 0 {
		result.Amount = cartTotal
	}
	if result.Status == PaymentDenied && result.FailureReason == "" {
		result.FailureReason = "payment declined"
	}
	f.state.Result = result

	if result.Status == PaymentDenied {
		f.mu.Unlock()
		logger.Info("Payment denied", zap.String("failure_reason", result.FailureReason))
		f.publish(ctx, Event{
			Type:      EventPaymentDenied,
			UserID:    session.UserID,
			SessionID: session.SessionID,
			Amount:    result.Amount,
			Reason:    result.FailureReason,
		})
		return nil
	}

	f.state.Recording = &OrderRecording{Status: OrderRecordingPending}
	f.mu.Unlock()

	logger.Info("Payment approved", zap.String("transaction_id", result.TransactionID))
	f.publish(ctx, Event{
		Type:           EventPaymentApproved,
		UserID:         session.UserID,
		SessionID:      session.SessionID,
		TransactionID:  result.TransactionID,
		PaymentOrderID: result.OrderID,
		Amount:         result.Amount,
	})

	outcome.Amount = result.Amount
	recording := f.recordOrder(ctx, session, outcome)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleLocked(gen) != nil {
		return nil
	}
	f.state.Recording = recording
	if recording.Error != nil {
		f.state.LastError = recording.Error
	}
	return nil
}

// recordOrder выполняет post-approval side effect: guard → создать заказ → только после успеха очистить корзину.
// Вызывается ровно один раз на одобренный результат; при ошибке НЕ повторяется автоматически.
func (f *Flow) recordOrder(ctx context.Context, session Session, outcome PaymentOutcome) *OrderRecording {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	logger := f.logger().With(
		zap.String("user_id", session.UserID),
		zap.String("session_id", session.SessionID),
		zap.String("transaction_id", outcome.TransactionID),
		zap.String("payment_order_id", outcome.OrderID),
		zap.Float64("amount", outcome.Amount),
	)

	key := "order-recording:" + outcome.TransactionID
	if outcome.TransactionID == "" {
		key = "order-recording:" + f.id + ":" + session.SessionID
	}

	if f.deps.Guard != nil {
		acquired, err := f.deps.Guard.TryAcquire(ctx, key, f.deps.GuardTTL)
		if err != nil {
			// Без guard нельзя гарантировать at-most-once: отдаём на ручную сверку
			return f.orderRecordingFailed(ctx, logger, session, outcome, fmt.Errorf("order guard: %w", err))
		}
		if !acquired {
			logger.Warn("Order already recorded for this transaction, skipping")
			f.publish(ctx, Event{
				Type:           EventOrderRecordingSkipped,
				UserID:         session.UserID,
				SessionID:      session.SessionID,
				TransactionID:  outcome.TransactionID,
				PaymentOrderID: outcome.OrderID,
				Amount:         outcome.Amount,
			})
			return &OrderRecording{Status: OrderRecordingDuplicate}
		}
	}

	order, err := f.deps.Payments.CreateOrderFromCart(ctx, session.UserID)
	if err != nil {
		return f.orderRecordingFailed(ctx, logger, session, outcome, err)
	}
	logger.Info("Order recorded", zap.String("order_id", order.ID))

	recording := &OrderRecording{
		Status: OrderRecordingRecorded,
		Order:  &order,
	}
	if err := f.deps.Cart.ClearCart(ctx, session.UserID); err != nil {
		// Заказ уже записан; корзина останется, пользователь может очистить её сам
		logger.Warn("Failed to clear cart after order recording", zap.Error(err), zap.String("order_id", order.ID))
	} else {
		recording.CartCleared = true
	}

	f.publish(ctx, Event{
		Type:           EventOrderRecorded,
		UserID:         session.UserID,
		SessionID:      session.SessionID,
		TransactionID:  outcome.TransactionID,
		PaymentOrderID: outcome.OrderID,
		OrderID:        order.ID,
		Amount:         outcome.Amount,
	})
	return recording
}

// orderRecordingFailed фиксирует самый тяжёлый случай: деньги списаны, заказа нет.
// Пишет error лог с контекстом, запись сверки и событие. Корзина не очищается.
func (f *Flow) orderRecordingFailed(ctx context.Context, logger *zap.Logger, session Session, outcome PaymentOutcome, cause error) *OrderRecording {
	flowErr := newFlowError(KindOrderRecordingFailed, cause)

	rec := repository.Reconciliation{
		ID:             uuid.NewString(),
		CheckoutID:     f.id,
		UserID:         session.UserID,
		SessionID:      session.SessionID,
		TransactionID:  outcome.TransactionID,
		PaymentOrderID: outcome.OrderID,
		Amount:         outcome.Amount,
		Reason:         cause.Error(),
		Status:         repository.ReconciliationOpen,
		CreatedAt:      f.deps.Now(),
	}

	logger.Error("Payment succeeded but order recording failed, manual reconciliation required",
		zap.Error(cause),
		zap.String("reconciliation_id", rec.ID),
	)

	recording := &OrderRecording{
		Status: OrderRecordingFailed,
		Error:  flowErr,
	}
	if f.deps.Reconciliations != nil {
		if err := f.deps.Reconciliations.Save(ctx, rec); err != nil {
			logger.Error("Failed to persist reconciliation record",
				zap.Error(err),
				zap.String("reconciliation_id", rec.ID),
			)
		} else {
			recording.ReconciliationID = rec.ID
		}
	}

	f.publish(ctx, Event{
		Type:             EventOrderRecordingFailed,
		UserID:           session.UserID,
		SessionID:        session.SessionID,
		TransactionID:    outcome.TransactionID,
		PaymentOrderID:   outcome.OrderID,
		ReconciliationID: recording.ReconciliationID,
		Amount:           outcome.Amount,
		Reason:           cause.Error(),
	})
	return recording
}

// RetryPayment очищает только Result: session сохраняется, flow возвращается в PAYMENT.
// После APPROVED повтор запрещён.
func (f *Flow) RetryPayment() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if step := f.state.Step(); step != StepResult {
		return fmt.Errorf("%w: cannot retry payment in %s", ErrInvalidTransition, step)
	}
	if f.state.Result.Status == PaymentApproved {
		return fmt.Errorf("%w: payment already approved", ErrInvalidTransition)
	}
	f.state.Result = nil
	f.state.Recording = nil
	f.state.LastError = nil
	f.touchLocked()
	return nil
}

// StartNewOrder полностью сбрасывает состояние и возвращает путь листинга для навигации
func (f *Flow) StartNewOrder() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return "", err
	}
	f.resetLocked()
	f.touchLocked()
	return f.deps.ListingPath, nil
}

// Close выполняет teardown: сбрасывает состояние в любом шаге и запрещает дальнейшие операции.
// Результаты вызовов, пришедшие после Close, отбрасываются.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.resetLocked()
	f.closed = true
}

// Idle возвращает время последней активности и признак вызова в полёте
func (f *Flow) Idle() (lastActivity time.Time, inFlight bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActivity, f.state.CreatingSession || f.state.ProcessingPayment
}

func (f *Flow) resetLocked() {
	f.state = State{}
	f.generation++
}

func (f *Flow) checkOpenLocked() error {
	if f.closed {
		return ErrFlowClosed
	}
	return nil
}

// staleLocked проверяет, что flow не сбрасывали с момента начала вызова
func (f *Flow) staleLocked(gen uint64) error {
	if f.closed {
		return ErrFlowClosed
	}
	if f.generation != gen {
		return ErrFlowReset
	}
	return nil
}

func (f *Flow) touchLocked() {
	f.lastActivity = f.deps.Now()
}

func (f *Flow) logger() *zap.Logger {
	return f.deps.Logger.With(zap.String("checkout_id", f.id))
}

func (f *Flow) publish(ctx context.Context, event Event) {
	event.CheckoutID = f.id
	if event.OccurredAt.IsZero() {
		event.OccurredAt = f.deps.Now()
	}
	if err := f.deps.Events.Publish(ctx, event); err != nil {
		f.logger().Warn("Failed to publish checkout event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
		)
	}
}

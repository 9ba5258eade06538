package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cucumber/godog"

	"github.com/shestoi/evstore/internal/cart"
	"github.com/shestoi/evstore/internal/checkout"
	"github.com/shestoi/evstore/internal/repository/memory"
)

// fakePlatform подменяет platform API в сценариях: корзина, сессии, оплата и заказы
type fakePlatform struct {
	mu            sync.Mutex
	cart          cart.Cart
	sessionErr    error
	outcome       checkout.PaymentOutcome
	orderID       string
	orderErr      error
	sessions      int
	ordersCreated int
	cartCleared   bool
}

type platformError struct{ message string }

func (e *platformError) Error() string          { return "platform: " + e.message }
func (e *platformError) BackendMessage() string { return e.message }

func (p *fakePlatform) GetCart(_ context.Context, _ string) (cart.Cart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cart, nil
}

func (p *fakePlatform) ClearCart(_ context.Context, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cartCleared = true
	p.cart.Items = nil
	return nil
}

func (p *fakePlatform) CreatePaymentSession(_ context.Context, _ string) (checkout.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionErr != nil {
		return checkout.SessionHandle{}, p.sessionErr
	}
	p.sessions++
	return checkout.SessionHandle{SessionID: fmt.Sprintf("sess-%d", p.sessions)}, nil
}

func (p *fakePlatform) ProcessPayment(_ context.Context, req checkout.PaymentRequest) (checkout.PaymentOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.outcome
	out.Amount = req.CartTotal
	return out, nil
}

func (p *fakePlatform) CreateOrderFromCart(_ context.Context, userID string) (checkout.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.orderErr != nil {
		return checkout.Order{}, p.orderErr
	}
	p.ordersCreated++
	return checkout.Order{ID: p.orderID, UserID: userID, Total: p.cart.Total}, nil
}

type checkoutScenario struct {
	platform *fakePlatform
	recs     *memory.ReconciliationRepository
	registry *checkout.Registry
	userID   string
	flow     *checkout.Flow
	redirect string
}

func (s *checkoutScenario) reset() {
	s.platform = &fakePlatform{}
	s.recs = memory.NewReconciliationRepository()
	s.registry = checkout.NewRegistry(checkout.Deps{
		Payments:        s.platform,
		Cart:            s.platform,
		Reconciliations: s.recs,
		Guard:           memory.NewOrderGuard(),
	}, 0)
	s.userID = ""
	s.flow = nil
	s.redirect = ""
}

func (s *checkoutScenario) aCartWithTotal(userID string, total float64) error {
	s.userID = userID
	s.platform.cart = cart.Cart{
		UserID: userID,
		Items:  []cart.LineItem{{ID: "li-1", ProductRef: "ev-1", Quantity: 1, UnitPrice: total}},
		Total:  total,
	}
	return nil
}

func (s *checkoutScenario) platformApproves(txn, order string) error {
	s.platform.outcome = checkout.PaymentOutcome{Status: checkout.PaymentApproved, TransactionID: txn, OrderID: order}
	return nil
}

func (s *checkoutScenario) platformDenies(reason string) error {
	s.platform.outcome = checkout.PaymentOutcome{Status: checkout.PaymentDenied, FailureReason: reason}
	return nil
}

func (s *checkoutScenario) platformRejectsSessions(message string) error {
	s.platform.sessionErr = &platformError{message: message}
	return nil
}

func (s *checkoutScenario) orderServiceCreates(orderID string) error {
	s.platform.orderID = orderID
	return nil
}

func (s *checkoutScenario) orderServiceUnavailable() error {
	s.platform.orderErr = errors.New("order service unavailable")
	return nil
}

func (s *checkoutScenario) startCheckout() error {
	s.flow = s.registry.Create(s.userID)
	return nil
}

func (s *checkoutScenario) openSession() error {
	err := s.flow.StartPaymentSession(context.Background(), s.userID)
	var flowErr *checkout.FlowError
	if err != nil && !errors.As(err, &flowErr) {
		return err
	}
	return nil
}

func (s *checkoutScenario) submitValidCard() error {
	c, err := s.platform.GetCart(context.Background(), s.userID)
	if err != nil {
		return err
	}
	err = s.flow.SubmitPayment(context.Background(), checkout.PaymentForm{
		CardNumber: "4242424242424242",
		ExpiryDate: "12/29",
		CVV:        "123",
		NameOnCard: "Ada Lovelace",
	}, c.Total)
	var flowErr *checkout.FlowError
	if err != nil && !errors.As(err, &flowErr) {
		return err
	}
	return nil
}

func (s *checkoutScenario) retryPayment() error {
	return s.flow.RetryPayment()
}

func (s *checkoutScenario) startNewOrder() error {
	path, err := s.flow.StartNewOrder()
	s.redirect = path
	return err
}

func (s *checkoutScenario) stepIs(want string) error {
	if got := s.flow.Step(); string(got) != want {
		return fmt.Errorf("expected step %s, got %s", want, got)
	}
	return nil
}

func (s *checkoutScenario) paymentStatusIs(want string) error {
	state := s.flow.Snapshot()
	if state.Result == nil {
		return errors.New("no payment result")
	}
	if string(state.Result.Status) != want {
		return fmt.Errorf("expected payment status %s, got %s", want, state.Result.Status)
	}
	return nil
}

func (s *checkoutScenario) failureReasonIs(want string) error {
	state := s.flow.Snapshot()
	if state.Result == nil || state.Result.FailureReason != want {
		return fmt.Errorf("expected failure reason %q, got %+v", want, state.Result)
	}
	return nil
}

func (s *checkoutScenario) lastErrorIs(want string) error {
	state := s.flow.Snapshot()
	if state.LastError == nil || state.LastError.Message != want {
		return fmt.Errorf("expected last error %q, got %+v", want, state.LastError)
	}
	return nil
}

func (s *checkoutScenario) recordingStatusIs(want string) error {
	state := s.flow.Snapshot()
	if state.Recording == nil {
		return errors.New("order recording not started")
	}
	if string(state.Recording.Status) != want {
		return fmt.Errorf("expected order recording %s, got %s", want, state.Recording.Status)
	}
	return nil
}

func (s *checkoutScenario) recordedOrderIs(want string) error {
	state := s.flow.Snapshot()
	if state.Recording == nil || state.Recording.Order == nil || state.Recording.Order.ID != want {
		return fmt.Errorf("expected recorded order %s, got %+v", want, state.Recording)
	}
	return nil
}

func (s *checkoutScenario) cartIsCleared() error {
	if !s.platform.cartCleared {
		return errors.New("cart was not cleared")
	}
	return nil
}

func (s *checkoutScenario) noOrderCreated() error {
	return s.ordersCreatedAre(0)
}

func (s *checkoutScenario) ordersCreatedAre(want int) error {
	if s.platform.ordersCreated != want {
		return fmt.Errorf("expected %d orders, got %d", want, s.platform.ordersCreated)
	}
	return nil
}

func (s *checkoutScenario) openReconciliationsFor(want int, txn string) error {
	recs, err := s.recs.ListOpen(context.Background())
	if err != nil {
		return err
	}
	got := 0
	for _, rec := range recs {
		if rec.TransactionID == txn {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("expected %d open reconciliations for %s, got %d", want, txn, got)
	}
	return nil
}

func (s *checkoutScenario) sentTo(want string) error {
	if s.redirect != want {
		return fmt.Errorf("expected redirect %s, got %s", want, s.redirect)
	}
	return nil
}

func initializeCheckoutScenario(ctx *godog.ScenarioContext) {
	s := &checkoutScenario{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.reset()
		return ctx, nil
	})

	// Given
	ctx.Step(`^a cart for "([^"]*)" with total (\d+(?:\.\d+)?)$`, s.aCartWithTotal)
	ctx.Step(`^the payment platform approves with transaction "([^"]*)" and order "([^"]*)"$`, s.platformApproves)
	ctx.Step(`^the payment platform denies with reason "([^"]*)"$`, s.platformDenies)
	ctx.Step(`^the payment platform rejects sessions with "([^"]*)"$`, s.platformRejectsSessions)
	ctx.Step(`^the order service creates order "([^"]*)"$`, s.orderServiceCreates)
	ctx.Step(`^the order service is unavailable$`, s.orderServiceUnavailable)

	// When
	ctx.Step(`^the customer starts (?:checkout|another checkout)$`, s.startCheckout)
	ctx.Step(`^the customer opens a payment session$`, s.openSession)
	ctx.Step(`^the customer submits a valid card$`, s.submitValidCard)
	ctx.Step(`^the customer retries the payment$`, s.retryPayment)
	ctx.Step(`^the customer starts a new order$`, s.startNewOrder)

	// Then
	ctx.Step(`^the checkout step is "([^"]*)"$`, s.stepIs)
	ctx.Step(`^the payment status is "([^"]*)"$`, s.paymentStatusIs)
	ctx.Step(`^the failure reason is "([^"]*)"$`, s.failureReasonIs)
	ctx.Step(`^the last error is "([^"]*)"$`, s.lastErrorIs)
	ctx.Step(`^the order recording status is "([^"]*)"$`, s.recordingStatusIs)
	ctx.Step(`^the recorded order is "([^"]*)"$`, s.recordedOrderIs)
	ctx.Step(`^the cart is cleared$`, s.cartIsCleared)
	ctx.Step(`^no order was created$`, s.noOrderCreated)
	ctx.Step(`^exactly (\d+) orders? (?:was|were) created$`, s.ordersCreatedAre)
	ctx.Step(`^there is (\d+) open reconciliations? for transaction "([^"]*)"$`, s.openReconciliationsFor)
	ctx.Step(`^the customer is sent to "([^"]*)"$`, s.sentTo)
}

func TestCheckoutFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeCheckoutScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

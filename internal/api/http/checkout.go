package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/authctx"
	"github.com/shestoi/evstore/internal/checkout"
	platformobservability "github.com/shestoi/evstore/platform/observability"
)

// checkoutView представляет ответ на любую операцию checkout: текущий шаг и снимок состояния.
// Форма отдаётся в маскированном виде, CVV никогда не покидает сервис.
type checkoutView struct {
	ID                string                   `json:"id"`
	Step              checkout.Step            `json:"step"`
	Session           *checkout.Session        `json:"session,omitempty"`
	CreatingSession   bool                     `json:"creating_session"`
	ProcessingPayment bool                     `json:"processing_payment"`
	Form              checkout.PaymentForm     `json:"form"`
	LastError         *checkout.FlowError      `json:"last_error,omitempty"`
	Result            *checkout.Result         `json:"result,omitempty"`
	OrderRecording    *checkout.OrderRecording `json:"order_recording,omitempty"`
}

func newCheckoutView(flow *checkout.Flow) checkoutView {
	state := flow.Snapshot()
	return checkoutView{
		ID:                flow.ID(),
		Step:              state.Step(),
		Session:           state.Session,
		CreatingSession:   state.CreatingSession,
		ProcessingPayment: state.ProcessingPayment,
		Form:              state.Form.Masked(),
		LastError:         state.LastError,
		Result:            state.Result,
		OrderRecording:    state.Recording,
	}
}

// formFieldRequest представляет тело PATCH /checkout/{id}/form
type formFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// newOrderResponse говорит, куда UI уводит пользователя после «новый заказ»
type newOrderResponse struct {
	Redirect string `json:"redirect"`
}

// flowFromRequest достаёт flow текущего пользователя по {id}; при ошибке ответ уже записан
func (h *Handler) flowFromRequest(w http.ResponseWriter, r *http.Request) (*checkout.Flow, string, bool) {
	userID, _ := authctx.UserIDFromContext(r.Context())
	flow, err := h.checkouts.Get(chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return nil, userID, false
	}
	return flow, userID, true
}

// writeCheckoutError переводит ошибки flow в HTTP статусы.
// FlowError не попадает сюда: это состояние flow, оно отдаётся во view с 200.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrFlowNotFound), errors.Is(err, checkout.ErrFlowClosed):
		writeError(w, http.StatusNotFound, "checkout not found")
	case errors.Is(err, checkout.ErrInvalidForm), errors.Is(err, checkout.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrSubmissionInFlight),
		errors.Is(err, checkout.ErrFlowReset):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.writeInternal(w, r, "Checkout operation failed", err)
	}
}

// respondFlow отвечает view; FlowError уже лежит в LastError, поэтому это 200
func (h *Handler) respondFlow(w http.ResponseWriter, r *http.Request, flow *checkout.Flow, err error) {
	var flowErr *checkout.FlowError
	if err != nil && !errors.As(err, &flowErr) {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutView(flow))
}

// CreateCheckout обрабатывает POST /checkout
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, _ := authctx.UserIDFromContext(r.Context())
	flow := h.checkouts.Create(userID)
	writeJSON(w, http.StatusCreated, newCheckoutView(flow))
}

// GetCheckout обрабатывает GET /checkout/{id}
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	flow, _, ok := h.flowFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutView(flow))
}

// StartPaymentSession обрабатывает POST /checkout/{id}/session
func (h *Handler) StartPaymentSession(w http.ResponseWriter, r *http.Request) {
	flow, userID, ok := h.flowFromRequest(w, r)
	if !ok {
		return
	}
	err := flow.StartPaymentSession(r.Context(), userID)
	h.respondFlow(w, r, flow, err)
}

// SetFormField обрабатывает PATCH /checkout/{id}/form
func (h *Handler) SetFormField(w http.ResponseWriter, r *http.Request) {
	flow, _, ok := h.flowFromRequest(w, r)
	if !ok {
		return
	}

	var req formFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := flow.SetFormField(req.Field, req.Value)
	h.respondFlow(w, r, flow, err)
}

// SubmitPayment обрабатывает POST /checkout/{id}/payment.
// Сумма к оплате берётся из корзины на сервере (Total backend-а), клиент её не передаёт.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	flow, userID, ok := h.flowFromRequest(w, r)
	if !ok {
		return
	}

	var form checkout.PaymentForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := flow.CanSubmitPayment(); err != nil {
		h.respondFlow(w, r, flow, err)
		return
	}

	c, err := h.cart.GetCart(r.Context(), userID)
	if err != nil {
		h.writeUpstream(w, r, "Failed to load cart for payment", err)
		return
	}
	if c.IsEmpty() {
		writeError(w, http.StatusUnprocessableEntity, "cart is empty")
		return
	}

	err = flow.SubmitPayment(r.Context(), form, c.Total)
	if err != nil {
		platformobservability.L(r.Context(), h.logger).Info("Payment submission finished with error",
			zap.String("checkout_id", flow.ID()),
			zap.Error(err),
		)
	}
	h.respondFlow(w, r, flow, err)
}

// RetryPayment обрабатывает POST /checkout/{id}/retry
func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	flow, _, ok := h.flowFromRequest(w, r)
	if !ok {
		return
	}
	h.respondFlow(w, r, flow, flow.RetryPayment())
}

// StartNewOrder обрабатывает POST /checkout/{id}/new-order
func (h *Handler) StartNewOrder(w http.ResponseWriter, r *http.Request) {
	flow, _, ok := h.flowFromRequest(w, r)
	if !ok {
		return
	}
	path, err := flow.StartNewOrder()
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse{Redirect: path})
}

// DeleteCheckout обрабатывает DELETE /checkout/{id}
func (h *Handler) DeleteCheckout(w http.ResponseWriter, r *http.Request) {
	userID, _ := authctx.UserIDFromContext(r.Context())
	if err := h.checkouts.Remove(chi.URLParam(r, "id"), userID); err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCart обрабатывает GET /cart: позиции, серверный Total и суммы для отображения
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := authctx.UserIDFromContext(r.Context())
	c, err := h.cart.GetCart(r.Context(), userID)
	if err != nil {
		h.writeUpstream(w, r, "Failed to load cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Cart:     c,
		Subtotal: c.Subtotal(),
		Savings:  c.Savings(),
	})
}

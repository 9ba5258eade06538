package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shestoi/evstore/internal/authctx"
	"github.com/shestoi/evstore/internal/cart"
	"github.com/shestoi/evstore/internal/catalog"
	"github.com/shestoi/evstore/internal/pagination"
	"github.com/shestoi/evstore/internal/payment"
	"github.com/shestoi/evstore/internal/repository"
)

type cartResponse struct {
	cart.Cart
	Subtotal float64 `json:"subtotal"`
	Savings  float64 `json:"savings"`
}

// productResponse представляет товар витрины в ответе API
type productResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Kind               string   `json:"kind"`
	Brand              string   `json:"brand"`
	UnitPrice          float64  `json:"unit_price"`
	DiscountPrice      *float64 `json:"discount_price,omitempty"`
	OnDeal             bool     `json:"on_deal"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
	EffectivePrice     float64  `json:"effective_price"`
	RangeKm            int      `json:"range_km,omitempty"`
	Rating             float64  `json:"rating"`
}

func toProductResponse(p repository.Product) productResponse {
	return productResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Kind:               string(p.Kind),
		Brand:              p.Brand,
		UnitPrice:          p.UnitPrice,
		DiscountPrice:      p.DiscountPrice,
		OnDeal:             p.OnDeal,
		DiscountPercentage: p.DiscountPercentage,
		EffectivePrice:     p.EffectivePrice(),
		RangeKm:            p.RangeKm,
		Rating:             p.Rating,
	}
}

// ListProducts обрабатывает GET /products?kind=&q=&deals=&page=&page_size=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalog.List(r.Context(), catalog.Query{
		Kind:       repository.ProductKind(q.Get("kind")),
		Search:     strings.TrimSpace(q.Get("q")),
		OnDealOnly: q.Get("deals") == "true",
		Page:       queryInt(r, "page", 0),
		PageSize:   queryInt(r, "page_size", 0),
	})
	if err != nil {
		h.writeInternal(w, r, "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, pagination.Map(page, toProductResponse))
}

// GetProduct обрабатывает GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.writeInternal(w, r, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// ListPayments обрабатывает GET /payments/history?page=&page_size=: история платежей постранично
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, _ := authctx.UserIDFromContext(r.Context())
	payments, err := h.payments.GetPaymentHistory(r.Context(), userID)
	if err != nil {
		h.writeUpstream(w, r, "Failed to load payment history", err)
		return
	}
	pageSize := queryInt(r, "page_size", defaultListPageSize)
	writeJSON(w, http.StatusOK, pagination.Window(payments, pageSize, queryInt(r, "page", 0)))
}

type paymentStatusResponse struct {
	OrderID     string         `json:"order_id"`
	Status      payment.Status `json:"status"`
	Cancellable bool           `json:"cancellable"`
}

// ownedPayment проверяет, что заказ есть в истории платежей текущего пользователя.
// Чужой или несуществующий заказ отдаётся как 404, как и чужой checkout.
func (h *Handler) ownedPayment(w http.ResponseWriter, r *http.Request) (string, bool) {
	orderID := chi.URLParam(r, "orderId")
	userID, _ := authctx.UserIDFromContext(r.Context())

	payments, err := h.payments.GetPaymentHistory(r.Context(), userID)
	if err != nil {
		h.writeUpstream(w, r, "Failed to load payment history", err)
		return "", false
	}
	for _, p := range payments {
		if p.OrderID == orderID {
			return orderID, true
		}
	}
	writeError(w, http.StatusNotFound, "payment not found")
	return "", false
}

// GetPaymentStatus обрабатывает GET /payments/{orderId}/status
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.ownedPayment(w, r)
	if !ok {
		return
	}
	status, err := h.payments.GetPaymentStatus(r.Context(), orderID)
	if err != nil {
		h.writeUpstream(w, r, "Failed to load payment status", err)
		return
	}
	writeJSON(w, http.StatusOK, paymentStatusResponse{
		OrderID:     orderID,
		Status:      status,
		Cancellable: status.Cancellable(),
	})
}

// CancelPayment обрабатывает POST /payments/{orderId}/cancel
func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.ownedPayment(w, r)
	if !ok {
		return
	}
	if err := h.payments.CancelPayment(r.Context(), orderID); err != nil {
		h.writeUpstream(w, r, "Failed to cancel payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reconciliationResponse представляет запись сверки для операторов поддержки
type reconciliationResponse struct {
	ID             string     `json:"id"`
	CheckoutID     string     `json:"checkout_id"`
	UserID         string     `json:"user_id"`
	SessionID      string     `json:"session_id"`
	TransactionID  string     `json:"transaction_id,omitempty"`
	PaymentOrderID string     `json:"payment_order_id,omitempty"`
	Amount         float64    `json:"amount"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func toReconciliationResponse(rec repository.Reconciliation) reconciliationResponse {
	return reconciliationResponse{
		ID:             rec.ID,
		CheckoutID:     rec.CheckoutID,
		UserID:         rec.UserID,
		SessionID:      rec.SessionID,
		TransactionID:  rec.TransactionID,
		PaymentOrderID: rec.PaymentOrderID,
		Amount:         rec.Amount,
		Reason:         rec.Reason,
		Status:         string(rec.Status),
		ResolutionNote: rec.ResolutionNote,
		CreatedAt:      rec.CreatedAt,
		ResolvedAt:     rec.ResolvedAt,
	}
}

// ListReconciliations обрабатывает GET /admin/reconciliations?page=&page_size=
func (h *Handler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.reconciliations.ListOpen(r.Context())
	if err != nil {
		h.writeInternal(w, r, "Failed to list reconciliations", err)
		return
	}
	page := pagination.Window(recs, queryInt(r, "page_size", defaultListPageSize), queryInt(r, "page", 0))
	writeJSON(w, http.StatusOK, pagination.Map(page, toReconciliationResponse))
}

type resolveRequest struct {
	Note string `json:"note"`
}

// ResolveReconciliation обрабатывает POST /admin/reconciliations/{id}/resolve
func (h *Handler) ResolveReconciliation(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		writeError(w, http.StatusUnprocessableEntity, "note is required")
		return
	}

	err := h.reconciliations.Resolve(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.Note), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "open reconciliation not found")
			return
		}
		h.writeInternal(w, r, "Failed to resolve reconciliation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

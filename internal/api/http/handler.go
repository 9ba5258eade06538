package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/cart"
	"github.com/shestoi/evstore/internal/catalog"
	"github.com/shestoi/evstore/internal/checkout"
	"github.com/shestoi/evstore/internal/payment"
	"github.com/shestoi/evstore/internal/repository"
	platformobservability "github.com/shestoi/evstore/platform/observability"
)

const defaultListPageSize = 20

// Handler содержит HTTP-обработчики storefront.
// Не знает, как устроены хранилища и platform API: работает через доменные интерфейсы.
type Handler struct {
	checkouts       *checkout.Registry
	cart            cart.Provider
	catalog         *catalog.Service
	payments        payment.History
	reconciliations repository.ReconciliationRepository
	logger          *zap.Logger
}

// Deps содержит зависимости Handler
type Deps struct {
	Checkouts       *checkout.Registry
	Cart            cart.Provider
	Catalog         *catalog.Service
	Payments        payment.History
	Reconciliations repository.ReconciliationRepository
	Logger          *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		checkouts:       deps.Checkouts,
		cart:            deps.Cart,
		catalog:         deps.Catalog,
		payments:        deps.Payments,
		reconciliations: deps.Reconciliations,
		logger:          logger,
	}
}

// errorResponse представляет тело ответа об ошибке
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// queryInt читает целый query параметр; пустой или нечисловой даёт def
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// writeInternal логирует ошибку с trace_id и отвечает 500 без деталей
func (h *Handler) writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	platformobservability.L(r.Context(), h.logger).Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeUpstream отвечает на ошибку platform API: backend-сообщение пробрасывается, если оно есть
func (h *Handler) writeUpstream(w http.ResponseWriter, r *http.Request, msg string, err error) {
	platformobservability.L(r.Context(), h.logger).Warn(msg, zap.Error(err))

	var bm interface{ BackendMessage() string }
	status := http.StatusBadGateway
	text := "platform API is unavailable"
	if errors.As(err, &bm) && bm.BackendMessage() != "" {
		text = bm.BackendMessage()
	}
	var sc interface{ HTTPStatus() int }
	if errors.As(err, &sc) && sc.HTTPStatus() == http.StatusNotFound {
		status = http.StatusNotFound
	}
	writeError(w, status, text)
}

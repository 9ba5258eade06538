package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/api/http/middleware"
	platformhealth "github.com/shestoi/evstore/platform/health/http"
	platformobservability "github.com/shestoi/evstore/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер storefront.
// readiness - функция для проверки готовности сервиса (БД, Redis, Mongo).
// Если readiness возвращает false, health endpoint вернёт 503 Service Unavailable.
// logger используется для observability HTTP middleware (trace_id в логах).
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("storefront", logger))
	}

	// Health и каталог без middleware (не требуют пользователя)
	router.Get("/health", platformhealth.Handler(readiness))
	router.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Get("/{id}", handler.GetProduct)
	})

	// Всё, что касается пользователя, требует x-user-id (401 при отсутствии)
	router.Group(func(r chi.Router) {
		r.Use(middleware.WithUserID, middleware.WithSessionID)

		r.Get("/cart", handler.GetCart)

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", handler.CreateCheckout)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.GetCheckout)
				r.Delete("/", handler.DeleteCheckout)
				r.Post("/session", handler.StartPaymentSession)
				r.Patch("/form", handler.SetFormField)
				r.Post("/payment", handler.SubmitPayment)
				r.Post("/retry", handler.RetryPayment)
				r.Post("/new-order", handler.StartNewOrder)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/history", handler.ListPayments)
			r.Get("/{orderId}/status", handler.GetPaymentStatus)
			r.Post("/{orderId}/cancel", handler.CancelPayment)
		})
	})

	// Сверка для операторов поддержки; доступ ограничивается на уровне ingress
	router.Route("/admin/reconciliations", func(r chi.Router) {
		r.Get("/", handler.ListReconciliations)
		r.Post("/{id}/resolve", handler.ResolveReconciliation)
	})

	return router
}

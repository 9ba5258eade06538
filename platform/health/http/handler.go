package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check проверяет одну зависимость сервиса (postgres, redis, mongo)
type Check func(ctx context.Context) error

// Handler возвращает HTTP handler для health check endpoint.
// 200 OK с {"status":"ok"} если readiness не указана или вернула true,
// 503 Service Unavailable с {"status":"not ready"} иначе.
func Handler(readiness func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if readiness != nil && !readiness() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// Readiness собирает readiness функцию из набора проверок.
// Каждая проверка получает свой timeout; сервис готов, только если все проверки прошли.
func Readiness(timeout time.Duration, checks map[string]Check) func() bool {
	return func() bool {
		for _, check := range checks {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err := check(ctx)
			cancel()
			if err != nil {
				return false
			}
		}
		return true
	}
}

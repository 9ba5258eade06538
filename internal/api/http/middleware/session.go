package middleware

import (
	"net/http"

	"github.com/shestoi/evstore/internal/authctx"
)

// WithUserID создаёт HTTP middleware, которое читает заголовок x-user-id, при отсутствии возвращает 401, иначе кладёт user_id в context
func WithUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("x-user-id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusUnauthorized)
			return
		}
		ctx := authctx.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithSessionID создаёт HTTP middleware: если есть заголовок x-session-id, кладёт sid в context.
// Дальше REST клиент пробрасывает его в platform API.
func WithSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sid := r.Header.Get("x-session-id"); sid != "" {
			r = r.WithContext(authctx.WithSessionID(r.Context(), sid))
		}
		next.ServeHTTP(w, r)
	})
}

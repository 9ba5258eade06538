package observability

import "net/http"

// headerCarrier адаптирует http.Header к propagation.TextMapCarrier.
// Используется и для входящих запросов (Extract), и для исходящих (Inject).
type headerCarrier http.Header

func (c headerCarrier) Get(key string) string {
	return http.Header(c).Get(key)
}

func (c headerCarrier) Set(key, value string) {
	http.Header(c).Set(key, value)
}

func (c headerCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}

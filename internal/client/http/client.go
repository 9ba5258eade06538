package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/authctx"
	platformobservability "github.com/shestoi/evstore/platform/observability"
)

const (
	defaultTimeout = 10 * time.Second
	// maxErrorBody ограничивает чтение тела ошибки
	maxErrorBody = 64 << 10
)

// APIError представляет non-2xx ответ platform API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform api responded with %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("platform api responded with %d: %s", e.StatusCode, e.Message)
}

// BackendMessage возвращает сообщение, которое backend предназначил пользователю
func (e *APIError) BackendMessage() string {
	return e.Message
}

// HTTPStatus возвращает HTTP статус ответа platform API
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// IsNotFound проверяет, что err является APIError со статусом 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Config содержит параметры клиента platform API
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	ServiceName string
}

// Client реализует REST адаптер platform API: корзина, платежи, заказы, каталог.
// Использует доменные типы наружу и JSON DTO внутри.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New создаёт клиента. Каждый исходящий запрос получает client span и trace context.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: platformobservability.Transport(cfg.ServiceName, nil),
		},
		logger: logger,
	}
}

// do выполняет запрос. body и out могут быть nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid, ok := authctx.SessionIDFromContext(ctx); ok {
		req.Header.Set("x-session-id", sid)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		platformobservability.L(ctx, c.logger).Warn("Platform API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	platformobservability.L(ctx, c.logger).Debug("Platform API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	return nil
}

// decodeAPIError достаёт сообщение из полей message или error, если тело в JSON
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shestoi/evstore/internal/cart"
	"github.com/shestoi/evstore/internal/checkout"
	"github.com/shestoi/evstore/internal/payment"
	"github.com/shestoi/evstore/internal/repository"
)

var (
	_ cart.Provider       = (*Client)(nil)
	_ checkout.PaymentAPI = (*Client)(nil)
	_ payment.History     = (*Client)(nil)
)

// GetCart — GET /api/cart/{userId}
func (c *Client) GetCart(ctx context.Context, userID string) (cart.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodGet, "/api/cart/"+url.PathEscape(userID), nil, &dto); err != nil {
		return cart.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return dto.toDomain(userID), nil
}

// ClearCart — DELETE /api/cart/{userId}
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(userID), nil, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// CreatePaymentSession — POST /api/payments/session
func (c *Client) CreatePaymentSession(ctx context.Context, userID string) (checkout.SessionHandle, error) {
	var dto sessionResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/payments/session", sessionRequestDTO{UserID: userID}, &dto); err != nil {
		return checkout.SessionHandle{}, fmt.Errorf("create payment session: %w", err)
	}
	if dto.SessionID == "" {
		return checkout.SessionHandle{}, fmt.Errorf("create payment session: empty session id")
	}
	return checkout.SessionHandle{SessionID: dto.SessionID}, nil
}

// ProcessPayment — POST /api/payments/process.
// DENIED приходит как 2xx с status=DENIED и ошибкой не является.
func (c *Client) ProcessPayment(ctx context.Context, req checkout.PaymentRequest) (checkout.PaymentOutcome, error) {
	var dto paymentResultDTO
	if err := c.do(ctx, http.MethodPost, "/api/payments/process", newProcessPaymentDTO(req), &dto); err != nil {
		return checkout.PaymentOutcome{}, fmt.Errorf("process payment: %w", err)
	}
	return dto.toDomain(), nil
}

// CreateOrderFromCart — POST /api/orders/from-cart/{userId}
func (c *Client) CreateOrderFromCart(ctx context.Context, userID string) (checkout.Order, error) {
	var dto orderDTO
	if err := c.do(ctx, http.MethodPost, "/api/orders/from-cart/"+url.PathEscape(userID), nil, &dto); err != nil {
		return checkout.Order{}, fmt.Errorf("create order from cart: %w", err)
	}
	return dto.toDomain(), nil
}

// GetPaymentHistory — GET /api/payments/history/{userId}
func (c *Client) GetPaymentHistory(ctx context.Context, userID string) ([]payment.Payment, error) {
	var dtos []paymentDTO
	if err := c.do(ctx, http.MethodGet, "/api/payments/history/"+url.PathEscape(userID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("get payment history: %w", err)
	}
	out := make([]payment.Payment, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// GetPaymentStatus — GET /api/payments/{orderId}/status
func (c *Client) GetPaymentStatus(ctx context.Context, orderID string) (payment.Status, error) {
	var dto paymentStatusDTO
	if err := c.do(ctx, http.MethodGet, "/api/payments/"+url.PathEscape(orderID)+"/status", nil, &dto); err != nil {
		return "", fmt.Errorf("get payment status: %w", err)
	}
	return payment.Status(dto.Status), nil
}

// CancelPayment — POST /api/payments/{orderId}/cancel
func (c *Client) CancelPayment(ctx context.Context, orderID string) error {
	if err := c.do(ctx, http.MethodPost, "/api/payments/"+url.PathEscape(orderID)+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	return nil
}

// ListProducts — GET /api/products. Используется синхронизацией каталога.
func (c *Client) ListProducts(ctx context.Context) ([]repository.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &dtos); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	now := time.Now().UTC()
	out := make([]repository.Product, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, dto.toDomain(now))
	}
	return out, nil
}

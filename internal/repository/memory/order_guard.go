package memory

import (
	"context"
	"sync"
	"time"
)

// OrderGuard реализует repository.OrderGuard в памяти. Гарантия действует только внутри одного процесса.
type OrderGuard struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

// NewOrderGuard создаёт новый in-memory guard
func NewOrderGuard() *OrderGuard {
	return &OrderGuard{
		keys: make(map[string]time.Time),
		now:  time.Now,
	}
}

// TryAcquire помечает key на ttl. Повторный вызов до истечения ttl возвращает false.
func (g *OrderGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expiresAt, exists := g.keys[key]; exists && now.Before(expiresAt) {
		return false, nil
	}
	g.keys[key] = now.Add(ttl)
	g.purgeLocked(now)
	return true, nil
}

// purgeLocked удаляет истёкшие ключи, чтобы map не рос бесконечно
func (g *OrderGuard) purgeLocked(now time.Time) {
	for key, expiresAt := range g.keys {
		if !now.Before(expiresAt) {
			delete(g.keys, key)
		}
	}
}

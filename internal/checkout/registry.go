package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry хранит активные checkout flow в памяти процесса.
// Flow принадлежит пользователю, который его создал; чужой ID выглядит как несуществующий.
type Registry struct {
	deps    Deps
	idleTTL time.Duration

	mu    sync.RWMutex
	flows map[string]*Flow
}

// NewRegistry создаёт реестр. idleTTL <= 0 отключает вытеснение простаивающих flow.
func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	return &Registry{
		deps:    deps.withDefaults(),
		idleTTL: idleTTL,
		flows:   make(map[string]*Flow),
	}
}

// Create создаёт новый flow для пользователя
func (r *Registry) Create(userID string) *Flow {
	flow := NewFlow(uuid.NewString(), userID, r.deps)

	r.mu.Lock()
	r.flows[flow.ID()] = flow
	r.mu.Unlock()

	r.deps.Logger.Info("Checkout created",
		zap.String("checkout_id", flow.ID()),
		zap.String("user_id", userID),
	)
	return flow
}

// Get возвращает flow пользователя
func (r *Registry) Get(id, userID string) (*Flow, error) {
	r.mu.RLock()
	flow, ok := r.flows[id]
	r.mu.RUnlock()
	if !ok || flow.Owner() != userID {
		return nil, ErrFlowNotFound
	}
	return flow, nil
}

// Remove разбирает flow (teardown) и удаляет его из реестра
func (r *Registry) Remove(id, userID string) error {
	r.mu.Lock()
	flow, ok := r.flows[id]
	if !ok || flow.Owner() != userID {
		r.mu.Unlock()
		return ErrFlowNotFound
	}
	delete(r.flows, id)
	r.mu.Unlock()

	flow.Close()
	r.deps.Logger.Info("Checkout closed",
		zap.String("checkout_id", id),
		zap.String("user_id", userID),
	)
	return nil
}

// Len возвращает количество активных flow
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// Evict закрывает flow, простаивающие дольше idleTTL. Flow с вызовом в полёте не трогаются.
// Возвращает количество вытесненных flow.
func (r *Registry) Evict(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	var evicted []*Flow
	r.mu.Lock()
	for id, flow := range r.flows {
		lastActivity, inFlight := flow.Idle()
		if inFlight || now.Sub(lastActivity) < r.idleTTL {
			continue
		}
		delete(r.flows, id)
		evicted = append(evicted, flow)
	}
	r.mu.Unlock()

	for _, flow := range evicted {
		flow.Close()
	}
	if len(evicted) > 0 {
		r.deps.Logger.Info("Evicted idle checkouts", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run периодически вытесняет простаивающие flow, пока ctx не отменён
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.deps.Logger.Info("Checkout janitor started",
		zap.Duration("interval", interval),
		zap.Duration("idle_ttl", r.idleTTL),
	)

	for {
		select {
		case <-ctx.Done():
			r.deps.Logger.Info("Checkout janitor stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Evict(r.deps.Now())
		}
	}
}

// CloseAll разбирает все flow (при остановке сервиса)
func (r *Registry) CloseAll() {
	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*Flow)
	r.mu.Unlock()

	for _, flow := range flows {
		flow.Close()
	}
}

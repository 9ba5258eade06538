package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_ShutdownRunsInReverseOrder(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	var order []string
	m.Add("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Add("failing", func(ctx context.Context) error {
		order = append(order, "failing")
		return errors.New("boom")
	})
	m.Add("last", func(ctx context.Context) error {
		order = append(order, "last")
		return nil
	})

	m.Shutdown()
	m.Shutdown() // повторный вызов ничего не делает

	require.Equal(t, []string{"last", "failing", "first"}, order)
}

func TestManager_WaitReturnsOnContextCancel(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	called := make(chan struct{}, 1)
	m.Add("hook", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		called <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Wait(ctx)

	select {
	case <-called:
	default:
		t.Fatal("shutdown hook was not called")
	}
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestCloseWithError(t *testing.T) {
	require.NoError(t, CloseWithError(closer{})(context.Background()))
	require.EqualError(t, CloseWithError(closer{err: errors.New("x")})(context.Background()), "x")
}

package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		readiness  func() bool
		wantStatus int
		wantBody   string
	}{
		{name: "no readiness", readiness: nil, wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "ready", readiness: func() bool { return true }, wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "not ready", readiness: func() bool { return false }, wantStatus: http.StatusServiceUnavailable, wantBody: `{"status":"not ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler(tt.readiness)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			require.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestReadiness(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	fail := func(ctx context.Context) error { return errors.New("down") }

	require.True(t, Readiness(time.Second, nil)())
	require.True(t, Readiness(time.Second, map[string]Check{"postgres": ok})())
	require.False(t, Readiness(time.Second, map[string]Check{"postgres": ok, "redis": fail})())
}

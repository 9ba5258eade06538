package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "DEBUG", want: zapcore.DebugLevel},
		{in: " warn ", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("docker defaults to json", func(t *testing.T) {
		logger, err := New(Config{ServiceName: "storefront", Env: "docker"})
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := New(Config{ServiceName: "storefront", Env: "local", Format: "xml"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log format")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(Config{ServiceName: "storefront", Level: "loud"})
		require.Error(t, err)
	})
}

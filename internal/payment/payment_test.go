package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Cancellable(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusApproved, true},
		{StatusDenied, false},
		{StatusCancelled, false},
		{StatusRefunded, false},
		{Status("UNKNOWN"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Cancellable())
		})
	}
}

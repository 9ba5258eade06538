package authctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	_, ok := SessionIDFromContext(ctx)
	assert.False(t, ok)
	_, ok = UserIDFromContext(ctx)
	assert.False(t, ok)

	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithUserID(ctx, "user-1")

	sid, ok := SessionIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sess-1", sid)

	uid, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", uid)

	_, ok = UserIDFromContext(WithUserID(context.Background(), ""))
	assert.False(t, ok, "empty user id is not an identity")
}

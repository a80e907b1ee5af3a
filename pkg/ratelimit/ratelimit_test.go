package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "third request in the window is limited")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "other keys have their own window")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "new window resets the count")
}

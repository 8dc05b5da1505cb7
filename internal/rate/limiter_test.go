package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	base := time.Date(2024, 5, 1, 10, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	r, err := l.Allow(ctx, "send:user_1")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
	assert.EqualValues(t, 1, r.Remaining)

	r, _ = l.Allow(ctx, "send:user_1")
	assert.True(t, r.Allowed)
	assert.EqualValues(t, 0, r.Remaining)

	r, _ = l.Allow(ctx, "send:user_1")
	assert.False(t, r.Allowed)
	assert.EqualValues(t, 3, r.CurrentHits)
	assert.Equal(t, 55*time.Second, r.RetryAfter)

	// otra key no se ve afectada
	r, _ = l.Allow(ctx, "send:user_2")
	assert.True(t, r.Allowed)

	// ventana nueva
	l.now = func() time.Time { return base.Add(time.Minute) }
	r, _ = l.Allow(ctx, "send:user_1")
	assert.True(t, r.Allowed)
	assert.EqualValues(t, 1, r.CurrentHits)
}

func TestNoop(t *testing.T) {
	r, err := Noop{}.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
}

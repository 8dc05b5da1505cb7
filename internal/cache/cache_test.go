package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Config{Driver: "memory", Prefix: "emailez"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "ws:abc")
	assert.True(t, IsNotFound(err))

	val := []byte(`[{"workspaceId":"ws-1"}]`)
	require.NoError(t, c.Set(ctx, "ws:abc", val, 0))
	val[0] = 'X' // el cache guarda su propia copia

	got, err := c.Get(ctx, "ws:abc")
	require.NoError(t, err)
	assert.Equal(t, `[{"workspaceId":"ws-1"}]`, string(got))

	require.NoError(t, c.Delete(ctx, "ws:abc"))
	_, err = c.Get(ctx, "ws:abc")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Driver)
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 2, st.Misses)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", time.Minute)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.True(t, IsNotFound(err))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "memcached"})
	assert.Error(t, err)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "k", prefixed("", "k"))
	assert.Equal(t, "emailez:k", prefixed("emailez", "k"))
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	var c NoopCache

	require.NoError(t, c.SetObject(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	found, err := c.GetObject(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	release, err := c.Obtain(ctx, "lock", time.Second)
	require.NoError(t, err)
	assert.NotPanics(t, release)
}

func TestNoopCache_SatisfiesInterfaces(t *testing.T) {
	var _ Cache = NoopCache{}
	var _ Locker = NoopCache{}
	var _ Cache = (*RedisCache)(nil)
	var _ Locker = (*RedisCache)(nil)
}

package history

import (
	"context"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakpolisen/dedem/lib/testhelpers"
)

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()

	seen, err := client.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, client.Record(ctx, Entry{ThreadID: "abc", CommentID: "c1", Created: strfmt.DateTime(time.Now())}))
	seen, err = client.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = client.Seen(ctx, "xyz")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNoopClient(t *testing.T) {
	ctx := context.Background()
	client := NewNoopClient()
	require.NoError(t, client.Record(ctx, Entry{ThreadID: "abc"}))
	seen, err := client.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisClient(t *testing.T) {
	prefix := "test:" + testhelpers.RandomLowercaseString(8) + ":"
	client := NewRedisClient(RedisConfig{Host: "localhost", Port: 6379, KeyPrefix: prefix, TTL: time.Minute})
	if !client.Ready() {
		t.Skip("redis is not available")
	}
	ctx := context.Background()
	defer client.Del(prefix + "abc")

	seen, err := client.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, client.Record(ctx, Entry{ThreadID: "abc"}))
	seen, err = client.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, seen)
}

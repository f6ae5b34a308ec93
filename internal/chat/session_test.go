package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paintquotepro/quote-platform/internal/intake"
)

func sampleSession() *Session {
	return &Session{
		State: intake.State{
			CurrentStep: "surfaces",
			Collected:   map[string]any{"spaceType": "whole house"},
			FieldOrder:  []string{"spaceType"},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Stop()
	ctx := context.Background()

	key := SessionKey("acme", "s1")

	missing, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Save(ctx, key, sampleSession()))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "surfaces", got.State.CurrentStep)
	assert.Equal(t, "whole house", got.State.Collected["spaceType"])

	require.NoError(t, store.Delete(ctx, key))
	gone, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	defer store.Stop()
	ctx := context.Background()

	key := SessionKey("acme", "s1")
	require.NoError(t, store.Save(ctx, key, sampleSession()))

	time.Sleep(10 * time.Millisecond)

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	key := SessionKey("acme", "s1")

	missing, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Save(ctx, key, sampleSession()))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "surfaces", got.State.CurrentStep)

	// TTL is applied on write.
	assert.Positive(t, mr.TTL(key))

	require.NoError(t, store.Delete(ctx, key))
	gone, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestSessionKeyIsolatesCompanies(t *testing.T) {
	assert.NotEqual(t, SessionKey("acme", "s1"), SessionKey("other", "s1"))
}

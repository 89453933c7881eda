package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingKey(t *testing.T) {
	owner := uuid.MustParse("6f1c3a52-9e4b-4f7d-8a1e-2b3c4d5e6f70")

	assert.Equal(t, "tasks:6f1c3a52-9e4b-4f7d-8a1e-2b3c4d5e6f70:", OwnerPrefix(owner))
	assert.Equal(t, "tasks:6f1c3a52-9e4b-4f7d-8a1e-2b3c4d5e6f70:2:25", ListingKey(owner, 2, 25))
}

func TestMemoryGateway_GetSet(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(time.Minute)
	key := ListingKey(uuid.New(), 1, 10)

	_, ok, err := g.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Set(ctx, key, []byte(`{"items":[]}`), time.Minute))

	value, ok, err := g.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"items":[]}`, string(value))
}

func TestMemoryGateway_Expiry(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(time.Minute)
	key := ListingKey(uuid.New(), 1, 10)

	require.NoError(t, g.Set(ctx, key, []byte("x"), 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, ok, err := g.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryGateway_RemoveByOwner(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(time.Minute)
	owner, other := uuid.New(), uuid.New()

	for page := 1; page <= 3; page++ {
		require.NoError(t, g.Set(ctx, ListingKey(owner, page, 10), []byte("owner"), time.Minute))
	}
	require.NoError(t, g.Set(ctx, ListingKey(other, 1, 10), []byte("other"), time.Minute))

	removed, err := g.RemoveByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	for page := 1; page <= 3; page++ {
		_, ok, err := g.Get(ctx, ListingKey(owner, page, 10))
		require.NoError(t, err)
		assert.False(t, ok, "page %d should be gone", page)
	}

	_, ok, err := g.Get(ctx, ListingKey(other, 1, 10))
	require.NoError(t, err)
	assert.True(t, ok, "other owner's entries must survive")

	removed, err = g.RemoveByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMemoryGateway_RemovePrefix(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(time.Minute)
	owner := uuid.New()

	require.NoError(t, g.Set(ctx, UserListingKey(1, 10), []byte("users"), time.Minute))
	require.NoError(t, g.Set(ctx, UserListingKey(2, 10), []byte("users"), time.Minute))
	require.NoError(t, g.Set(ctx, ListingKey(owner, 1, 10), []byte("tasks"), time.Minute))

	removed, err := g.RemovePrefix(ctx, UserListingPrefix)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err := g.Get(ctx, UserListingKey(1, 10))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = g.Get(ctx, ListingKey(owner, 1, 10))
	require.NoError(t, err)
	assert.True(t, ok, "task listings are not under the users prefix")
}

func TestUserListingKey(t *testing.T) {
	assert.Equal(t, "users:1:2", UserListingKey(1, 2))
}

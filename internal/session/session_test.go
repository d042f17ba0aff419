package session

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/inkwell/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:          7,
		Username:    "alice",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Role:        models.RoleUser,
	}
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", IdentityFromUser(testUser()), time.Hour))
	assert.True(t, mr.Exists("session:tok"))

	identity, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, uint(7), identity.ID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "Alice", identity.DisplayName)
	assert.Equal(t, models.RoleUser, identity.Role)

	require.NoError(t, store.Delete(ctx, "tok"))
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore_ExpiresWithTTL(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", IdentityFromUser(testUser()), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, store.Expire(ctx, "tok", 7, time.Minute), ErrNoSession)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store, err := NewMemoryStore(10)
	require.NoError(t, err)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", IdentityFromUser(testUser()), time.Hour))

	identity, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	// Extend, then jump past the original deadline
	now = now.Add(50 * time.Minute)
	require.NoError(t, store.Expire(ctx, "tok", 7, time.Hour))
	now = now.Add(30 * time.Minute)
	_, err = store.Get(ctx, "tok")
	require.NoError(t, err, "extended session should still be valid")

	now = now.Add(time.Hour)
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store, err := NewMemoryStore(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", Identity{ID: 1}, time.Hour))
	require.NoError(t, store.Set(ctx, "b", Identity{ID: 2}, time.Hour))
	require.NoError(t, store.Set(ctx, "c", Identity{ID: 3}, time.Hour))

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestRedisStore_DeleteUser(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	alice := IdentityFromUser(testUser())
	require.NoError(t, store.Set(ctx, "a1", alice, time.Hour))
	require.NoError(t, store.Set(ctx, "a2", alice, time.Hour))
	require.NoError(t, store.Set(ctx, "b1", Identity{ID: 8, Username: "bob"}, time.Hour))

	members, err := mr.SMembers("session:user:7")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, members)

	require.NoError(t, store.DeleteUser(ctx, 7))

	_, err = store.Get(ctx, "a1")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.Get(ctx, "a2")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, mr.Exists("session:user:7"))

	_, err = store.Get(ctx, "b1")
	assert.NoError(t, err, "other users keep their sessions")

	// Nothing left to drop
	assert.NoError(t, store.DeleteUser(ctx, 7))
}

func TestRedisStore_UserIndexFollowsSlidingExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", IdentityFromUser(testUser()), time.Hour))

	mr.FastForward(50 * time.Minute)
	require.NoError(t, store.Expire(ctx, "tok", 7, time.Hour))
	mr.FastForward(50 * time.Minute)

	assert.True(t, mr.Exists("session:user:7"))
	require.NoError(t, store.DeleteUser(ctx, 7))
	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_DeleteUser(t *testing.T) {
	store, err := NewMemoryStore(10)
	require.NoError(t, err)
	ctx := context.Background()

	alice := IdentityFromUser(testUser())
	require.NoError(t, store.Set(ctx, "a1", alice, time.Hour))
	require.NoError(t, store.Set(ctx, "a2", alice, time.Hour))
	require.NoError(t, store.Set(ctx, "b1", Identity{ID: 8}, time.Hour))

	require.NoError(t, store.DeleteUser(ctx, 7))

	_, err = store.Get(ctx, "a1")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.Get(ctx, "a2")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.Get(ctx, "b1")
	assert.NoError(t, err)
	assert.NotContains(t, store.byUser, uint(7))
}

func TestMemoryStore_IndexDropsEvictedTokens(t *testing.T) {
	store, err := NewMemoryStore(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", Identity{ID: 1}, time.Hour))
	require.NoError(t, store.Set(ctx, "b", Identity{ID: 2}, time.Hour))
	require.NoError(t, store.Set(ctx, "c", Identity{ID: 2}, time.Hour))

	assert.NotContains(t, store.byUser, uint(1))
	assert.Len(t, store.byUser[2], 2)

	require.NoError(t, store.Delete(ctx, "b"))
	assert.Len(t, store.byUser[2], 1)
}

func TestManager_Lifecycle(t *testing.T) {
	store, _ := setupRedisStore(t)
	manager := NewManager(store, 24*time.Hour, false)
	ctx := context.Background()

	token, err := manager.Create(ctx, testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	identity := manager.Resolve(ctx, token)
	require.NotNil(t, identity)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.False(t, identity.IsAdmin())

	require.NoError(t, manager.Destroy(ctx, token))
	assert.Nil(t, manager.Resolve(ctx, token))

	// Destroying twice is fine
	assert.NoError(t, manager.Destroy(ctx, token))
}

func TestManager_UnknownAndEmptyTokens(t *testing.T) {
	store, err := NewMemoryStore(10)
	require.NoError(t, err)
	manager := NewManager(store, time.Hour, false)
	ctx := context.Background()

	assert.Nil(t, manager.Resolve(ctx, ""))
	assert.Nil(t, manager.Resolve(ctx, "does-not-exist"))
	assert.NoError(t, manager.Destroy(ctx, ""))
}

func TestManager_ExpiredSessionResolvesToNobody(t *testing.T) {
	store, mr := setupRedisStore(t)
	manager := NewManager(store, time.Hour, false)
	ctx := context.Background()

	token, err := manager.Create(ctx, testUser())
	require.NoError(t, err)

	mr.FastForward(61 * time.Minute)

	assert.Nil(t, manager.Resolve(ctx, token))
}

func TestManager_SlidingExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	manager := NewManager(store, time.Hour, true)
	ctx := context.Background()

	token, err := manager.Create(ctx, testUser())
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	require.NotNil(t, manager.Resolve(ctx, token))

	mr.FastForward(50 * time.Minute)
	assert.NotNil(t, manager.Resolve(ctx, token), "resolve should have extended the session")
}

func TestManager_DestroyUser(t *testing.T) {
	store, _ := setupRedisStore(t)
	manager := NewManager(store, time.Hour, false)
	ctx := context.Background()

	first, err := manager.Create(ctx, testUser())
	require.NoError(t, err)
	second, err := manager.Create(ctx, testUser())
	require.NoError(t, err)

	require.NoError(t, manager.DestroyUser(ctx, testUser().ID))

	assert.Nil(t, manager.Resolve(ctx, first))
	assert.Nil(t, manager.Resolve(ctx, second))
}

func TestManager_StoreFailureIsAnonymous(t *testing.T) {
	store, mr := setupRedisStore(t)
	manager := NewManager(store, time.Hour, false)
	ctx := context.Background()

	token, err := manager.Create(ctx, testUser())
	require.NoError(t, err)

	mr.Close()

	assert.Nil(t, manager.Resolve(ctx, token))
}

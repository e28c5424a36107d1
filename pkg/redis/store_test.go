package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2b-grocery/storefront/pkg/storage"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestStore_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewStore(client, "storefront")
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, storage.KeyDeviceID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, storage.KeyDeviceID, []byte("abc")))
	assert.True(t, mr.Exists("storefront:device_id"))
	assert.Equal(t, 0, int(mr.TTL("storefront:device_id")))

	got, err := s.Get(ctx, storage.KeyDeviceID)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestStore_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewStore(client, "sf")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, storage.KeySession, []byte(`{}`)))
	require.NoError(t, s.Set(ctx, storage.KeyCart, []byte(`[]`)))

	require.NoError(t, s.Delete(ctx, storage.KeySession, storage.KeyCart, "never-set"))
	assert.False(t, mr.Exists("sf:user"))
	assert.False(t, mr.Exists("sf:cart"))

	require.NoError(t, s.Delete(ctx))
}

func TestStore_JSONHelpers(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewStore(client, "")
	ctx := context.Background()

	require.NoError(t, storage.SetJSON(ctx, s, storage.KeyLanguage, "ar"))
	var lang string
	require.NoError(t, storage.GetJSON(ctx, s, storage.KeyLanguage, &lang))
	assert.Equal(t, "ar", lang)
}

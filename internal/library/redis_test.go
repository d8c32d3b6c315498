package library

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaysari11/Final-supernova/internal/book"
)

func setupRedisStore(t *testing.T, opts ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, opts...), mr
}

func TestRedisStore_LoadEmpty(t *testing.T) {
	store, _ := setupRedisStore(t)

	books, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, books)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, mr := setupRedisStore(t, WithPrefix("test"))
	ctx := context.Background()

	b, err := book.New("Kulliyat", "Mir", book.VoiceZephyr, []string{"a", "b"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, []book.Book{b}))

	assert.True(t, mr.Exists("test:library"))

	books, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b.ID, books[0].ID)
	assert.Equal(t, book.VoiceZephyr, books[0].Voice)
	assert.Equal(t, "b", books[0].Paragraphs[1].Text)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := setupRedisStore(t, WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, nil))
	assert.Equal(t, time.Hour, mr.TTL("supernova:library"))

	mr.FastForward(2 * time.Hour)
	books, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, books)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupRedisStore(t)
	require.NoError(t, mr.Set("supernova:library", "{"))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), nil))
}

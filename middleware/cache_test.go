package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ejay02/lms-backend/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory cache.Store for middleware tests.
type memoryStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, cache.ErrMiss
}

func (m *memoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memoryStore) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (m *memoryStore) Close() error                                            { return nil }

func newCachedApp(store cache.Store, hits *atomic.Int64) *fiber.App {
	app := fiber.New()
	app.Use(CacheResponse(store, time.Minute))
	app.Get("/api/courses", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.JSON(fiber.Map{"status": true, "hit": hits.Load()})
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": false})
	})
	app.Post("/api/courses", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.JSON(fiber.Map{"status": true})
	})
	return app
}

func TestCacheResponseServesSecondReadFromCache(t *testing.T) {
	store := newMemoryStore()
	var hits atomic.Int64
	app := newCachedApp(store, &hits)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/courses?page=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	first, _ := io.ReadAll(resp.Body)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/courses?page=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))
	second, _ := io.ReadAll(resp.Body)

	// The handler ran once; the replay is byte-identical
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, first, second)
	assert.Contains(t, store.data, cache.KeyPrefix+"/api/courses?page=1")
}

func TestCacheResponseKeysIncludeQueryString(t *testing.T) {
	store := newMemoryStore()
	var hits atomic.Int64
	app := newCachedApp(store, &hits)

	for _, url := range []string{"/api/courses?page=1", "/api/courses?page=2"} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.EqualValues(t, 2, hits.Load())
	assert.Len(t, store.data, 2)
}

func TestCacheResponseSkipsNonGet(t *testing.T) {
	store := newMemoryStore()
	var hits atomic.Int64
	app := newCachedApp(store, &hits)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/courses", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.EqualValues(t, 2, hits.Load())
	assert.Empty(t, store.data)
}

func TestCacheResponseSkipsNon200(t *testing.T) {
	store := newMemoryStore()
	var hits atomic.Int64
	app := newCachedApp(store, &hits)

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Empty(t, store.data)
}

func TestCacheResponseToleratesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("redis timeout")
	store.setErr = errors.New("redis timeout")
	var hits atomic.Int64
	app := newCachedApp(store, &hits)

	// A broken cache degrades to pass-through, never a failed request
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/courses", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.EqualValues(t, 2, hits.Load())
}

package middleware

import (
	"log"
	"time"

	"github.com/Ejay02/lms-backend/cache"

	"github.com/gofiber/fiber/v2"
)

// CacheResponse caches successful GET responses in the given store, keyed by
// the full request URL so every pagination/search variant gets its own entry.
// The store is advisory: on any cache error the request proceeds normally and
// the error is only logged.
func CacheResponse(store cache.Store, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip caching for non-GET requests
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		key := cache.KeyPrefix + c.OriginalURL()

		if body, err := store.Get(c.UserContext(), key); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		} else if err != cache.ErrMiss {
			log.Printf("Cache read error for %q: %v", key, err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			// fasthttp reuses response buffers, so store a copy
			body := append([]byte(nil), c.Response().Body()...)
			if err := store.SetWithTTL(c.UserContext(), key, body, ttl); err != nil {
				log.Printf("Cache write error for %q: %v", key, err)
			}
		}

		return nil
	}
}

package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/tripcraft/planner/internal/pkg/cache"
	"github.com/tripcraft/planner/internal/pkg/env"
)

// UserIDKey holds the id of the logged-in user. It is written by the
// account service that shares the session store.
const UserIDKey = "user_id"

var sessionStore *session.Store

func NewSessionStore() *session.Store {
	// Get Redis client configuration from existing cache setup
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		// Prefer password from the underlying client if present
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	// Create Redis storage for sessions using database 1 (cache uses DB 0)
	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // Separate database for sessions
		Reset:    false,
	})

	return NewStore(storage)
}

// NewStore creates the session store on top of storage and makes it the
// package default. A nil storage keeps sessions in memory.
func NewStore(storage fiber.Storage) *session.Store {
	sessionStore = session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		// CookieSecure:   true, // Enable in production with HTTPS
		Expiration: time.Hour * 1,
		KeyLookup:  "cookie:session_id",
	})
	return sessionStore
}

// SetSessionValue stores a key-value pair in the user's individual session
func SetSessionValue(c *fiber.Ctx, key string, value interface{}) error {
	if sessionStore == nil {
		return fmt.Errorf("session store not initialized")
	}

	sess, err := sessionStore.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %v", err)
	}

	sess.Set(key, value)
	return sess.Save()
}

// UserID returns the logged-in user of the request, or nil for anonymous requests
func UserID(c *fiber.Ctx) *uint {
	if sessionStore == nil {
		return nil
	}

	sess, err := sessionStore.Get(c)
	if err != nil {
		log.Warnf("[Session] Failed to load session: %v", err)
		return nil
	}

	var id uint
	switch v := sess.Get(UserIDKey).(type) {
	case uint:
		id = v
	case int:
		if v <= 0 {
			return nil
		}
		id = uint(v)
	case int64:
		if v <= 0 {
			return nil
		}
		id = uint(v)
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil
		}
		id = uint(n)
	default:
		return nil
	}
	if id == 0 {
		return nil
	}
	return &id
}

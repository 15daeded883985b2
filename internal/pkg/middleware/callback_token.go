package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// CallbackTokenHeader carries the shared secret of the planning backend
const CallbackTokenHeader = "X-Callback-Token"

// CallbackTokenMiddleware authenticates calls from the planning backend.
// With an empty token every request is rejected.
func CallbackTokenMiddleware(token string) fiber.Handler {
	token = strings.TrimSpace(token)
	if token == "" {
		log.Warn("[Callback] BACKEND_CALLBACK_TOKEN is not set, callback API is disabled")
	}

	return func(c *fiber.Ctx) error {
		got := extractCallbackToken(c)
		if token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid callback token",
			})
		}
		return c.Next()
	}
}

func extractCallbackToken(c *fiber.Ctx) string {
	tok := strings.TrimSpace(c.Get(CallbackTokenHeader))
	if tok != "" {
		return tok
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

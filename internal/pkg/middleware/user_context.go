package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripcraft/planner/internal/pkg/session"
)

// KeyUserID is the locals key of the owning user id (uint)
const KeyUserID = "USER_ID"

// UserContextMiddleware resolves the session user once per request.
// Anonymous requests get no KeyUserID local.
func UserContextMiddleware(c *fiber.Ctx) error {
	if id := session.UserID(c); id != nil {
		c.Locals(KeyUserID, *id)
	}
	return c.Next()
}

// UserID returns the user resolved by UserContextMiddleware, or nil
func UserID(c *fiber.Ctx) *uint {
	if id, ok := c.Locals(KeyUserID).(uint); ok {
		return &id
	}
	return nil
}

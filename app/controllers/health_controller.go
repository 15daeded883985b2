package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/tripcraft/planner/internal/pkg/statistics"
)

// HandleHealth reports whether the service and its database are reachable
func HandleHealth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "database": "unavailable"})
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Errorf("[API] Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "database": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	}
}

// StatisticsProvider returns planner counters
type StatisticsProvider interface {
	Get(ctx context.Context) (*statistics.StatisticsData, error)
}

// HandleStatistics serves plan and task counters
func HandleStatistics(stats StatisticsProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := stats.Get(c.UserContext())
		if err != nil {
			return respondError(c, err, "")
		}
		return c.JSON(Envelope{Success: true, Message: MsgOK, Response: data})
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tripcraft/planner/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.TripPlan{},
		&models.TripPlanStatus{},
		&models.PlanTask{},
		&models.TripPlanOutput{},
	))
	return db
}

func newTestPlan() *models.TripPlan {
	plan := &models.TripPlan{
		Name:             "Trip1",
		Destination:      "Tokyo",
		StartingLocation: "NYC",
		TravelDateStart:  "2024-07-01",
		Adults:           2,
		Rooms:            1,
	}
	plan.ApplyDefaults()
	return plan
}

func seedPlan(t *testing.T, db *gorm.DB) *models.TripPlan {
	t.Helper()
	plan := newTestPlan()
	require.NoError(t, NewTripPlanRepository(db).CreateWithStatus(context.Background(), plan, models.PlanStatusQueued, "queued"))
	return plan
}

var errCacheMiss = errors.New("cache miss")

type memoryCache struct {
	mu      sync.Mutex
	data    map[string]string
	gets    int
	failSet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache down")
	}
	c.data[key] = value
	return nil
}

func (c *memoryCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return false, errors.New("cache down")
	}
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = value
	return true, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

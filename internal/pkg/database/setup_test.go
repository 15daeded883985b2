package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	t.Setenv("DB_USER", "planner")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "tripcraft")

	assert.Equal(t, "planner:secret@tcp(db:3307)/tripcraft?charset=utf8mb4&parseTime=True&loc=Local", DSN())
}

func TestAutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"trip_plans", "trip_plan_statuses", "plan_tasks", "trip_plan_outputs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

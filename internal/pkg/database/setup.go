package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tripcraft/planner/app/models"
	"github.com/tripcraft/planner/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// DB is the shared connection opened by SetupDatabase
var DB *gorm.DB

// DSN builds the MySQL data source name from DB_* variables
func DSN() string {
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

func SetupDatabase() {
	var err error
	dsn := DSN()

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,   // data source name
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), &gorm.Config{})
		if err == nil {
			configurePool(DB)
			// versioned migrations in migrations/ are authoritative outside dev
			if env.IsDev() {
				if err := AutoMigrate(DB); err != nil {
					log.Errorf("[Database] AutoMigrate failed: %v", err)
				}
			}
			log.Info("[Database] Connected")
			return
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// AutoMigrate creates or updates the planner tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TripPlan{},
		&models.TripPlanStatus{},
		&models.PlanTask{},
		&models.TripPlanOutput{},
	)
}

func configurePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warnf("[Database] Could not configure pool: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

// GetDB returns the shared connection
func GetDB() *gorm.DB {
	return DB
}

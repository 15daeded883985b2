package main

import (
	"fmt"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tripcraft/planner/app/repository"
	"github.com/tripcraft/planner/internal/pkg/backend"
	"github.com/tripcraft/planner/internal/pkg/cache"
	"github.com/tripcraft/planner/internal/pkg/constants"
	"github.com/tripcraft/planner/internal/pkg/database"
	"github.com/tripcraft/planner/internal/pkg/env"
	"github.com/tripcraft/planner/internal/pkg/planner"
	"github.com/tripcraft/planner/internal/pkg/router"
	"github.com/tripcraft/planner/internal/pkg/session"
	"github.com/tripcraft/planner/internal/pkg/statistics"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	backendCfg, err := backend.ConfigFromEnv()
	if err != nil {
		log.Fatalf("[Backend] %v", err)
	}

	database.SetupDatabase()
	cache.SetupCache()
	session.NewSessionStore()

	store := cache.NewStore(cache.GetClient())
	repository.InitializeFactory(database.GetDB(), store)
	repos := repository.GetGlobalRepositories()
	svc := planner.NewService(repos, backend.NewClient(backendCfg))

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/tripcraft to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:   "tripcraft-planner",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics, only with credentials
	if pw := env.GetEnv("METRICS_PASSWORD", ""); pw != "" {
		app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): pw,
			},
		}), monitor.New(monitor.Config{Title: "TripCraft Planner Metrics"}))
	} else {
		log.Warn("[App] METRICS_PASSWORD is not set, /metrics is disabled")
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: constants.DocsBasePath,
		FilePath: basePath + constants.OpenAPIFile,
		Path:     constants.DocsVersion,
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Planner:       svc,
		Stats:         statistics.NewCollector(repos, store),
		DB:            database.GetDB(),
		CallbackToken: backendCfg.CallbackToken,
	})

	return app
}

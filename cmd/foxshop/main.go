package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/FoxShop/app/controllers"
	"github.com/ManuelReschke/FoxShop/internal/pkg/cache"
	"github.com/ManuelReschke/FoxShop/internal/pkg/constants"
	"github.com/ManuelReschke/FoxShop/internal/pkg/database"
	"github.com/ManuelReschke/FoxShop/internal/pkg/entitlements"
	"github.com/ManuelReschke/FoxShop/internal/pkg/env"
	"github.com/ManuelReschke/FoxShop/internal/pkg/jobqueue"
	"github.com/ManuelReschke/FoxShop/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/FoxShop/internal/pkg/payment"
	"github.com/ManuelReschke/FoxShop/internal/pkg/router"
)

// Application holds the HTTP app and the background workers it owns.
type Application struct {
	App        *fiber.App
	Queue      *jobqueue.Queue
	Reconciler *entitlements.Reconciler
}

func main() {
	application := NewApplication()
	application.Queue.Start()
	application.Reconciler.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		if err := application.App.Shutdown(); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	err := application.App.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	application.Reconciler.Stop()
	application.Queue.Stop()
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *Application {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/foxshop to project root
		"../../../", // Fallback
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + constants.OpenAPIFile); err == nil {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	db := database.GetDB()
	redisClient := cache.GetClient()

	// entitlement retries
	queue := jobqueue.NewQueue(redisClient, env.GetEnvInt("JOBQUEUE_WORKERS", 3),
		jobqueue.WithRetryBackoff(env.GetEnvDuration("JOBQUEUE_RETRY_BACKOFF", jobqueue.DefaultRetryBackoff)),
	)
	wardrobe := entitlements.NewWardrobeGranter(db)
	entitlements.RegisterJobs(queue, wardrobe)
	granter := entitlements.NewRetryingGranter(wardrobe, entitlements.NewQueueScheduler(queue))
	reconciler := entitlements.NewReconciler(db, wardrobe,
		env.GetEnvDuration("ENTITLEMENT_RECONCILE_INTERVAL", entitlements.DefaultReconcileInterval),
		env.GetEnvDuration("ENTITLEMENT_RECONCILE_LOOKBACK", entitlements.DefaultReconcileLookback),
	)

	paymentCfg := payment.ConfigFromEnv()
	if paymentCfg.WebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is not set, all webhooks will be rejected")
	}
	webhookCounter := counter.NewWebhookCounter(redisClient)
	service := payment.NewService(payment.NewStore(db), granter)

	// rate limiter counters live in their own Redis database (cache uses DB 0)
	host, port := cache.Endpoint(redisClient)
	limiterStorage := redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: redisClient.Options().Password,
		Database: 2,
		Reset:    false,
	})

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // provider events are small
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: constants.DocsBasePath,
		FilePath: basePath + constants.OpenAPIFile,
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Payment: controllers.NewPaymentController(payment.NewVerifier(paymentCfg), service, webhookCounter),
		Stats:   controllers.NewStatsController(webhookCounter, queue),
		Storage: limiterStorage,
	})

	return &Application{App: app, Queue: queue, Reconciler: reconciler}
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/contapp-relay/app/controllers"
	"github.com/ManuelReschke/contapp-relay/app/repository"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/cache"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/constants"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/database"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/env"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/firebase"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/openai"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/paypal"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/router"
)

// bodyLimit caps JSON request bodies at 1 MiB.
const bodyLimit = 1 << 20

func main() {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app, cleanup, err := NewApplication(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("contapp relay listening on %s", cfg.ListenAddr())
	if err := app.Listen(cfg.ListenAddr()); err != nil {
		cleanup()
		log.Fatal(err)
	}
	cleanup()
}

// NewApplication connects the configured backends and returns the wired app
// and a function releasing its clients.
func NewApplication(ctx context.Context, cfg *config.Config) (*fiber.App, func(), error) {
	fb, err := firebase.Setup(ctx, cfg.Firebase, cfg.Store.Driver == config.StoreFirestore)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	if cfg.Store.Driver == config.StoreMySQL {
		if db, err = database.SetupDatabase(cfg.Database); err != nil {
			fb.Close()
			return nil, nil, err
		}
	}

	repo, err := repository.NewFactory(cfg.Store.Driver, db, fb.Firestore).GetUserSubscriptionRepository()
	if err != nil {
		fb.Close()
		return nil, nil, err
	}

	var journal billing.DeliveryJournal
	redisClient := cache.SetupCache(cfg.Cache)
	if redisClient != nil {
		journal = cache.NewDeliveryJournal(redisClient, cfg.Cache.DedupTTL)
	}

	chat := openai.NewClient(cfg.Chat, cfg.RequestTimeout)
	if chat.Configured() {
		log.Printf("chat relay enabled, default model %s", chat.DefaultModel())
	} else {
		log.Println("OPENAI_API_KEY not set, /chat answers 400")
	}

	plans := billing.NewPlanCatalog(cfg.PayPal.PlanIDPro, cfg.PayPal.PlanIDPlus)
	service := billing.NewService(repo, billing.NewMapper(plans, cfg.PayPal.StampMissingIDs), journal)

	app := buildApp(cfg, router.Dependencies{
		Verifier:       fb.Auth,
		Chat:           controllers.NewChatController(chat, cfg.RequestTimeout),
		Billing:        controllers.NewBillingController(service, paypal.NewClient(cfg.PayPal), plans, cfg.AppBaseURL),
		AllowOrigins:   cfg.AllowOrigins(),
		ChatRateLimit:  cfg.Chat.RateLimitMax,
		LimiterStorage: cache.NewLimiterStorage(cfg.Cache),
	})

	cleanup := func() {
		fb.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}
	return app, cleanup, nil
}

func buildApp(cfg *config.Config, deps router.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:         bodyLimit,
		EnablePrintRoutes: env.IsDev(),
	})

	// recovery and logging
	app.Use(recover.New(), requestid.New(), logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// fiber metrics
	if cfg.Metrics.User != "" {
		app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
			Users: map[string]string{
				cfg.Metrics.User: cfg.Metrics.Password,
			},
		}), monitor.New())
	}

	// SWAGGER / OPENAPI
	if docs := findDocsFile(); docs != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: constants.DocsBasePath,
			FilePath: docs,
			Path:     "v1",
		}))
	} else {
		log.Println("openapi.yml not found, API docs disabled")
	}

	// ROUTER
	router.InstallRouter(app, deps)

	return app
}

// findDocsFile looks for the OpenAPI document from the working directory
// and from cmd/contapp.
func findDocsFile() string {
	for _, base := range []string{"./", "../../", "../../../"} {
		path := base + constants.DocsFilePath
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

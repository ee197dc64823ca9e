package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/points-hub/points_hub/internal/card"
	"github.com/points-hub/points_hub/internal/cash"
	"github.com/points-hub/points_hub/internal/config"
	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/middleware"
	"github.com/points-hub/points_hub/internal/notification"
	"github.com/points-hub/points_hub/internal/order"
	"github.com/points-hub/points_hub/internal/user"
	"github.com/points-hub/points_hub/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories
	var users user.Repository
	var pointLog ledger.Log
	var cards card.Repository
	var orders order.Repository
	var cashRequests cash.Repository
	if d.DB != nil {
		users = user.NewPostgresRepository(d.DB)
		pointLog = ledger.NewPostgresLog(d.DB)
		cards = card.NewPostgresRepository(d.DB)
		orders = order.NewPostgresRepository(d.DB)
		cashRequests = cash.NewPostgresRepository(d.DB)
	} else {
		users = user.NewMemoryRepository()
		pointLog = ledger.NewInMemory()
		cards = card.NewMemoryRepository()
		orders = order.NewMemoryRepository()
		cashRequests = cash.NewMemoryRepository()
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(users, pointLog, d.Logger)
	cardSvc := card.NewService(cards, walletSvc, d.Logger)
	orderSvc := order.NewService(orders, users, walletSvc, nil, notifier, d.Logger)
	cashSvc := cash.NewService(cashRequests, walletSvc, cash.Policy{
		Enabled:       d.Cfg.WithdrawalsEnabled,
		MinAmount:     d.Cfg.MinWithdrawal,
		ExchangeRatio: d.Cfg.ExchangeRatio,
	}, notifier, d.Logger)

	walletHandler := wallet.NewHandler(walletSvc)
	cardHandler := card.NewHandler(cardSvc)
	orderHandler := order.NewHandler(orderSvc)
	cashHandler := cash.NewHandler(cashSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	redeemLimiter := middleware.RedeemRateLimit(d.Cache, 5)
	RegisterCardRoutes(api, cardHandler, redeemLimiter)
	RegisterOrderRoutes(api, orderHandler)
	RegisterCashRoutes(api, cashHandler)
	RegisterWalletRoutes(api, walletHandler)
	RegisterLedgerRoutes(api, pointLog)

	return nil
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/application/auth"
	"github.com/jhoicas/pos-inventario/internal/application/pos"
	"github.com/jhoicas/pos-inventario/internal/application/realtime"
	"github.com/jhoicas/pos-inventario/internal/application/usecase"
	"github.com/jhoicas/pos-inventario/internal/domain/tax"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/pos-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/pos-inventario/internal/interfaces/http"
	"github.com/jhoicas/pos-inventario/pkg/config"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
	}
	defer rdb.Close()

	productRepo := postgres.NewProductRepository(pool)
	variantRepo := postgres.NewVariantRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	tabRepo := postgres.NewTabRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	cartStore := redisstore.NewCartStore(rdb, time.Duration(cfg.Redis.CartTTLMinutes)*time.Minute)

	fallback, err := decimal.NewFromString(cfg.Tax.DefaultRate)
	if err != nil {
		log.Warn().Str("rate", cfg.Tax.DefaultRate).Msg("TAX_DEFAULT_RATE inválida, se usa 0")
		fallback = decimal.Zero
	}
	fallback = tax.NormalizeRate(fallback)
	rawRules := make([]tax.RawRule, 0)
	for _, r := range cfg.Tax.RawRules() {
		rawRules = append(rawRules, tax.RawRule{Category: r[0], Rate: r[1]})
	}
	taxes := pos.TaxSettings{Rules: tax.FormatTaxRulesFromSettings(rawRules, fallback), Fallback: fallback}

	// Kafka: sin brokers configurados las ventas no se publican
	publisher := pos.NopPublisher()
	if cfg.Kafka.Enabled() {
		kp := messaging.NewTransactionPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Component("kafka"))
		defer kp.Close()
		publisher = kp
	}

	lowStock := cfg.POS.LowStockThreshold
	gateway := pos.NewStockGateway(stockRepo)
	cartUC := pos.NewCartUseCase(cartStore, productRepo, variantRepo, customerRepo, gateway, taxes, lowStock, log.Component("cart"))
	checkoutUC := pos.NewCheckoutUseCase(cartStore, gateway, txRunner, transactionRepo, customerRepo,
		publisher, infrapdf.NewReceiptGenerator(cfg.App.Name), taxes, log.Component("checkout"))
	tabUC := pos.NewTabUseCase(cartStore, tabRepo, customerRepo, gateway, taxes, lowStock, log.Component("tabs"))

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Sincronización de stock en tiempo real: una sola suscripción LISTEN por proceso
	hub := realtime.NewHub(32)
	listener := postgres.NewChangeListener(pool, cfg.Realtime.ProductsChannel, cfg.Realtime.VariantsChannel, log.Component("listener"))
	synchronizer := realtime.NewSynchronizer(listener, cartStore, hub, log.Component("realtime"))
	go func() {
		if err := synchronizer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("sincronización de stock detenida")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "POS Inventario API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		UserUC:     usecase.NewUserUseCase(userRepo),
		ProductUC:  usecase.NewProductUseCase(productRepo, variantRepo, lowStock),
		VariantUC:  usecase.NewVariantUseCase(variantRepo, productRepo, lowStock),
		StockUC:    usecase.NewStockUseCase(txRunner, variantRepo, movementRepo, log.Component("stock")),
		CategoryUC: usecase.NewCategoryUseCase(categoryRepo),
		CustomerUC: usecase.NewCustomerUseCase(customerRepo),
		CartUC:     cartUC,
		CheckoutUC: checkoutUC,
		TabUC:      tabUC,
		Realtime:   httpRouter.NewRealtimeHandler(hub, ctx.Done(), log.Component("sse")),
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

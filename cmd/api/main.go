package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"lumiere/internal/cart"
	"lumiere/internal/config"
	"lumiere/internal/handler"
	"lumiere/internal/infra/ai"
	"lumiere/internal/infra/cache"
	"lumiere/internal/infra/db"
	"lumiere/internal/infra/payment"
	infraRepo "lumiere/internal/infra/repository"
	"lumiere/internal/infra/storage"
	"lumiere/internal/logger"
	"lumiere/internal/server"
	"lumiere/internal/usecase"
	auth "lumiere/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .env は無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "lumiere-api",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	ctx := context.Background()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	contactRepo := infraRepo.NewContactMessageGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Redis（任意）：カート保存と注文イベント
	var (
		cartStorage cart.Storage = cart.NewMemoryStorage()
		publisher   usecase.OrderEventPublisher
		eventSource handler.OrderEventSource
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Error("redis connect", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		events := cache.NewOrderEvents(rdb, log)
		cartStorage = cache.NewRedisCartStorage(rdb, cache.DefaultCartTTL)
		publisher = events
		eventSource = events
	} else {
		log.Warn("REDIS_ADDR not set: carts are kept in memory and order events are disabled")
	}

	//MongoDB GridFS（任意）：商品画像
	var objects usecase.ObjectStorage
	if cfg.MongoURI != "" {
		mc, err := storage.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Error("mongo connect", "err", err)
			os.Exit(1)
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		objects = storage.NewGridFSStorage(mc.Database(cfg.MongoDB))
	} else {
		log.Warn("MONGO_URI not set: image upload disabled")
	}

	//Stripe（任意）
	var gateway usecase.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set: checkout disabled")
	}
	webhookParser := payment.NewWebhookParser(cfg.StripeWebhookSecret)

	//OpenAI（任意）
	var completer usecase.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = ai.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		log.Warn("OPENAI_API_KEY not set: stylist returns default recommendations")
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, auth.AccessTokenTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	sessionUC := auth.NewSessionUsecase(userRepo)

	productUC := usecase.NewProductUsecase(productRepo, auditRepo, log)
	cartUC := usecase.NewCartUsecase(productRepo, cartStorage, log)
	checkoutUC := usecase.NewCheckoutUsecase(txm, orderRepo, gateway, cfg.FEURL, cfg.Currency, log)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, publisher, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, publisher, log)
	stylistUC := usecase.NewStylistUsecase(productRepo, completer, log)
	emailUC := usecase.NewEmailCopyUsecase(completer, log)
	uploadUC := usecase.NewUploadUsecase(objects, cfg.PublicBaseURL, log)
	contactUC := usecase.NewContactUsecase(contactRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//管理者の初期投入
	if cfg.AdminEmail != "" {
		created, err := registerUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Error("seed admin", "err", err)
			os.Exit(1)
		}
		if created {
			log.Info("admin account created", "email", auth.NormalizeEmail(cfg.AdminEmail))
		}
	}

	//Handler生成
	h := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, sessionUC, log),
		AdminUser:    handler.NewAdminUserHandler(sessionUC, log),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC, cfg.IsProd()),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, cartUC),
		Order:        handler.NewOrderHandler(orderUC, eventSource, log),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Webhook:      handler.NewWebhookHandler(webhookParser, orderUC, log),
		Stylist:      handler.NewStylistHandler(stylistUC, emailUC),
		Media:        handler.NewMediaHandler(uploadUC),
		Contact:      handler.NewContactHandler(contactUC),
		AuditLog:     handler.NewAuditLogHandler(auditUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, userRepo, h, log)
	if err := server.Start(ctx, e, addr, log); err != nil {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"idea-feedback-system/handlers"
	"idea-feedback-system/middleware"
	"idea-feedback-system/models"
	"idea-feedback-system/services"
	"idea-feedback-system/solana"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger, _ := zap.NewProduction()
	if os.Getenv("APP_ENV") != "production" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		log.Info("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "idea-feedback-system",
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Info("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	// CORS must run before the access gate: preflight OPTIONS requests carry
	// neither the access header nor cookies and are answered here.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Access-Code",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// 🔐 GLOBAL: access-code gate in front of everything but /api/access and /api/health
	app.Use(middleware.AccessMiddleware())

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	// TranslateError maps unique-constraint violations to gorm.ErrDuplicatedKey,
	// which the rank/tip conflict paths depend on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Wallet{},
		&models.Post{},
		&models.Comment{},
		&models.PrizePool{},
		&models.Ranking{},
		&models.Tip{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	solanaCfg := solana.ConfigFromEnv()
	attestor := solana.NewClient(solanaCfg)

	walletService := services.NewWalletService(db, []byte(jwtSecret))
	postService := services.NewPostService(db)
	prizeService := services.NewPrizeService(db)
	tipService := services.NewTipService(db, attestor)

	prizeService.StartPoolSweeper()

	walletAuth := middleware.WalletAuthMiddleware(db, []byte(jwtSecret))

	handlers.SetupAccessRoutes(app)
	handlers.SetupWalletRoutes(app, walletService, walletAuth)
	handlers.SetupPostRoutes(app, postService, prizeService, walletAuth)
	handlers.SetupPrizeRoutes(app, prizeService, walletAuth)
	handlers.SetupTipRoutes(app, tipService, walletAuth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Errorf("Server error: %v", err)
		}
	}()

	log.Infof("✅ Server running on http://localhost:%s", port)
	log.Info("✅ Pool sweeper running (every minute)")
	log.Infof("✅ CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}
}

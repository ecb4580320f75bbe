package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"league-management-system/handlers"
	"league-management-system/middleware"
	"league-management-system/models"
	"league-management-system/services"
	"league-management-system/utils"
	"league-management-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // 50MB, document scans only
	})

	// Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	if !utils.R2Enabled() {
		log.Println("R2 not configured — storing document scans on local disk")
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.County{},
		&models.SubCounty{},
		&models.Ward{},
		&models.Player{},
		&models.PlayerDocument{},
		&models.PlayerConsent{},
		&models.Tournament{},
		&models.EligibilityRule{},
		&models.EligibilityOverride{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	playerService := services.NewPlayerService(db)
	tournamentService := services.NewTournamentService(db)
	eligibilityService := services.NewEligibilityService(db)
	ruleService := services.NewRuleService(db)
	geographyService := services.NewGeographyService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Player registry sync (contact details from the national registry) ---
	registryURL := os.Getenv("REGISTRY_SERVICE_URL")
	if registryURL != "" {
		serviceToken := os.Getenv("LEAGUE_SERVICE_TOKEN")
		syncWorker := workers.NewPlayerRegistrySyncWorker(db, registryURL, "/api/v1/public/players", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("REGISTRY_SERVICE_URL not set — player registry sync disabled")
	}

	playerService.StartMedicalExpiryScheduler()

	handlers.SetupPlayerRoutes(app, playerService)
	handlers.SetupTournamentRoutes(app, tournamentService)
	handlers.SetupEligibilityRoutes(app, eligibilityService, ruleService)
	handlers.SetupGeographyRoutes(app, geographyService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("Server running on http://localhost:5300")
	log.Println("Medical expiry scheduler running (every 1m)")
	log.Println("GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

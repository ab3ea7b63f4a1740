package main

import (
	"context"
	"log"
	"os"

	_ "estate-backend/api/swagger" // swagger docs
	"estate-backend/internal/database"
	"estate-backend/internal/handler"
	"estate-backend/internal/middleware"
	"estate-backend/internal/repository"
	"estate-backend/internal/service"
	"estate-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Real Estate Sales API
// @version         1.0
// @description     Back office for unit sales: contracts, installments, partners, brokers and treasury.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	contractRepo := repository.NewContractRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	safeRepo := repository.NewSafeRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	brokerRepo := repository.NewBrokerRepository(db)
	debtRepo := repository.NewPartnerDebtRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, txManager)
	customerService := service.NewCustomerService(customerRepo, contractRepo, auditRepo, txManager)
	partnerService := service.NewPartnerService(partnerRepo, auditRepo, txManager)
	unitService := service.NewUnitService(unitRepo, partnerRepo, contractRepo, auditRepo, txManager)
	contractService := service.NewContractService(contractRepo, installmentRepo, unitRepo, customerRepo, partnerRepo, brokerRepo, voucherRepo, auditRepo, txManager)
	paymentService := service.NewPaymentService(installmentRepo, contractRepo, unitRepo, safeRepo, voucherRepo, auditRepo, txManager, wsHub)
	treasuryService := service.NewTreasuryService(safeRepo, voucherRepo, auditRepo, txManager, wsHub)
	returnService := service.NewReturnService(unitRepo, partnerRepo, contractRepo, installmentRepo, debtRepo, safeRepo, voucherRepo, brokerRepo, auditRepo, txManager)
	brokerService := service.NewBrokerService(brokerRepo, safeRepo, voucherRepo, auditRepo, txManager)
	statisticsService := service.NewStatisticsService(db, unitRepo, installmentRepo)
	auditService := service.NewAuditService(auditRepo)
	backupService := service.NewBackupService(db, auditRepo, txManager)

	if err := userService.SeedAdmin(context.Background()); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	customerHandler := handler.NewCustomerHandler(customerService)
	partnerHandler := handler.NewPartnerHandler(partnerService, returnService)
	unitHandler := handler.NewUnitHandler(unitService, contractService, paymentService, returnService)
	contractHandler := handler.NewContractHandler(contractService)
	paymentHandler := handler.NewPaymentHandler(paymentService, returnService)
	treasuryHandler := handler.NewTreasuryHandler(treasuryService)
	brokerHandler := handler.NewBrokerHandler(brokerService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditService)
	systemHandler := handler.NewSystemHandler(backupService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Admin-Key"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	partnerHandler.RegisterRoutes(router.Group(""))
	unitHandler.RegisterRoutes(router.Group(""))
	contractHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	treasuryHandler.RegisterRoutes(router.Group(""))
	brokerHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	systemHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

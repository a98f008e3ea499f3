package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Vehicle Acquisition API
// @version         1.0
// @description     Backend for the vehicle acquisition platform: case pipeline, instant-offer funnel, inspections and reporting.
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

	// Set up WebSocket Hub for dashboard events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	inspectionRepo := repository.NewInspectionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	codeRepo := repository.NewDiagnosticCodeRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	verificationProvider := service.NewHTTPVerificationProvider(os.Getenv("IDV_API_URL"), os.Getenv("IDV_API_KEY"))

	userService := service.NewUserService(userRepo)
	caseService := service.NewCaseService(caseRepo, inspectionRepo, auditRepo, txManager, wsHub)
	inspectionService := service.NewInspectionService(inspectionRepo, caseRepo, auditRepo, txManager)
	submissionService := service.NewSubmissionService(submissionRepo, auditRepo, txManager, wsHub)
	verificationService := service.NewVerificationService(verificationProvider, submissionRepo)
	codeService := service.NewDiagnosticCodeService(codeRepo)
	reportService := service.NewReportService(caseRepo)
	auditService := service.NewAuditService(auditRepo)
	imageSearchService := service.NewImageSearchService(os.Getenv("GOOGLE_SEARCH_API_KEY"), os.Getenv("GOOGLE_SEARCH_ENGINE_ID"))

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	caseHandler := handler.NewCaseHandler(caseService)
	inspectionHandler := handler.NewInspectionHandler(inspectionService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, verificationService)
	codeHandler := handler.NewDiagnosticCodeHandler(codeService)
	reportHandler := handler.NewReportHandler(reportService, auditService)
	imageSearchHandler := handler.NewImageSearchHandler(imageSearchService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
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
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	caseHandler.RegisterRoutes(root)
	inspectionHandler.RegisterRoutes(root)
	submissionHandler.RegisterRoutes(router.Group(""), root)
	codeHandler.RegisterRoutes(root)
	reportHandler.RegisterRoutes(root)
	imageSearchHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

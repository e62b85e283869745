package main

import (
	stdlog "log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "evidence-backend/api/swagger" // swagger docs
	"evidence-backend/internal/database"
	"evidence-backend/internal/handler"
	"evidence-backend/internal/middleware"
	"evidence-backend/internal/repository"
	"evidence-backend/internal/service"
	"evidence-backend/internal/websocket"
	"evidence-backend/pkg/logger"
)

// @title           Evidence Management API
// @version         1.0
// @description     Records-management backend for physical evidence tracking: cases, material evidence, chain-of-custody events and role-scoped access.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional, environment variables win either way
	if err := godotenv.Load("configs/.env"); err != nil {
		stdlog.Println("No configs/.env file found or error loading it")
	}

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

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
		log.Fatal("database connection failed", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")

	// Custody event notifications fan out over the hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	cameraRepo := repository.NewCameraRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo)
	deptService := service.NewDepartmentService(deptRepo)
	caseService := service.NewCaseService(caseRepo, auditService, txManager)
	evidenceService := service.NewEvidenceService(evidenceRepo, caseRepo, auditService, txManager, wsHub)
	sessionService := service.NewSessionService(sessionRepo)
	cameraService := service.NewCameraService(cameraRepo)
	authService := service.NewAuthService(userRepo, sessionRepo)

	authHandler := handler.NewAuthHandler(authService, db)
	userHandler := handler.NewUserHandler(userService)
	deptHandler := handler.NewDepartmentHandler(deptService)
	caseHandler := handler.NewCaseHandler(caseService)
	evidenceHandler := handler.NewEvidenceHandler(evidenceService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	cameraHandler := handler.NewCameraHandler(cameraService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-CSRF-Token"}
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

	// Auth endpoints handle their own CSRF exemptions
	authHandler.RegisterRoutes(router.Group(""))

	// Everything else requires a valid token and a CSRF pair on writes
	api := router.Group("", middleware.CSRFProtect(), middleware.Authenticate(db))
	userHandler.RegisterRoutes(api)
	deptHandler.RegisterRoutes(api)
	caseHandler.RegisterRoutes(api)
	evidenceHandler.RegisterRoutes(api)
	sessionHandler.RegisterRoutes(api)
	cameraHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

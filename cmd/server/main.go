package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/config"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/handlers"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/middleware"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/services"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/jwt"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/sms"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Visitor Management Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Resolve the default tenant for gate-initiated requests
	var defaultClientID uuid.UUID
	if cfg.Tenant.DefaultClientID != "" {
		defaultClientID, err = uuid.Parse(cfg.Tenant.DefaultClientID)
		if err != nil {
			logger.Fatalf("Invalid DEFAULT_CLIENT_ID: %v", err)
		}
	}

	// Initialize repositories
	clientRepository := database.NewClientRepository(db)
	endUserRepository := database.NewEndUserRepository(db)
	passRepository := database.NewPassRepository(db)
	alertRepository := database.NewAlertRepository(db)

	// Initialize SMS gateway
	var smsGateway sms.Gateway
	if cfg.SMS.Mode == "production" {
		logger.Info("Initializing SMS gateway in production mode")
		smsGateway = sms.NewHTTPGateway(sms.Config{
			APIURL:   cfg.SMS.APIURL,
			Username: cfg.SMS.Username,
			Password: cfg.SMS.Password,
			Mask:     cfg.SMS.Mask,
		})
	} else {
		logger.Info("SMS gateway in development mode (codes are logged, not sent)")
		smsGateway = sms.NewDevGateway(logger)
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	phoneValidator := validator.NewPhoneValidator()
	auditService := services.NewAuditService(db)
	alertService := services.NewAlertService(alertRepository, passRepository, logger, cfg.Gate.AlertLimit)
	passService := services.NewPassService(
		passRepository,
		endUserRepository,
		alertService,
		smsGateway,
		logger,
		defaultClientID,
		cfg.Gate.CodeLength,
		cfg.Gate.DefaultCodeTTL,
	)
	gateService := services.NewGateService(passRepository, alertService)
	accountService := services.NewAccountService(clientRepository, endUserRepository, cfg.Security.BcryptCost)
	logger.Info("Services initialized")

	// Start the background overstay sweep
	cronService := services.NewCronService(alertService, logger, cfg.Gate.SweepSchedule)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, auditService, jwtService, phoneValidator, cfg)
	clientHandler := handlers.NewClientHandler(passService, alertService, accountService, auditService)
	endUserHandler := handlers.NewEndUserHandler(passService, alertService, auditService)
	guardHandler := handlers.NewGuardHandler(passService, gateService, auditService, phoneValidator, cfg)

	// Initialize Gin router
	router := gin.New()

	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/client/sign-up", authHandler.SignUpClient)
			auth.POST("/client/sign-in", authHandler.SignInClient)
			auth.POST("/end-user/sign-in", authHandler.SignInEndUser)
			auth.POST("/guard/session", authHandler.GuardSession)
		}

		// Client dashboard routes
		client := v1.Group("/client")
		client.Use(middleware.AuthMiddleware(jwtService))
		client.Use(middleware.RequireRole(jwt.RoleClient))
		{
			client.GET("/requests", clientHandler.GetPendingRequests)
			client.POST("/requests/:id/approve", clientHandler.ApproveRequest)
			client.POST("/requests/:id/deny", clientHandler.DenyRequest)

			client.POST("/visitors", clientHandler.AddVisitor)
			client.POST("/contractors", clientHandler.AddContractor)
			client.GET("/records", clientHandler.GetVisitorRecords)
			client.GET("/contractor-records", clientHandler.GetContractorRecords)

			client.POST("/end-users", clientHandler.CreateEndUser)
			client.GET("/end-users", clientHandler.GetEndUsers)
			client.PUT("/end-users/:id", clientHandler.UpdateEndUserCredentials)
			client.DELETE("/end-users/:id", clientHandler.DeleteEndUser)

			client.GET("/alerts", clientHandler.GetAlerts)
			client.DELETE("/alerts/:id", clientHandler.DismissAlert)
		}

		// End-user dashboard routes
		endUser := v1.Group("/end-user")
		endUser.Use(middleware.AuthMiddleware(jwtService))
		endUser.Use(middleware.RequireRole(jwt.RoleEndUser))
		{
			endUser.GET("/requests", endUserHandler.GetPendingRequests)
			endUser.POST("/requests/:id/approve", endUserHandler.ApproveRequest)
			endUser.POST("/requests/:id/deny", endUserHandler.DenyRequest)

			endUser.POST("/visitors", endUserHandler.AddVisitor)
			endUser.GET("/records", endUserHandler.GetRecords)
			endUser.GET("/alerts", endUserHandler.GetAlerts)
		}

		// Gate station routes
		gate := v1.Group("/gate")
		gate.Use(middleware.AuthMiddleware(jwtService))
		gate.Use(middleware.RequireRole(jwt.RoleGuard))
		{
			gate.POST("/requests", guardHandler.CreateRequest)
			gate.GET("/logs", guardHandler.GetLogs)
			gate.GET("/scheduled", guardHandler.GetScheduled)
			gate.GET("/checked-in", guardHandler.GetCheckedIn)

			gate.POST("/check-in/otp", guardHandler.CheckInByOTP)
			gate.POST("/check-in/qr", guardHandler.CheckInByQR)
			gate.POST("/check-out", guardHandler.CheckOut)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

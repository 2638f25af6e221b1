package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"creator-market/internal/auth"
	"creator-market/internal/config"
	"creator-market/internal/database"
	"creator-market/internal/handlers"
	"creator-market/internal/jobs"
	"creator-market/internal/models"
	"creator-market/internal/services"
	"creator-market/internal/tiktok"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	defaultReferralPct, err := decimal.NewFromString(cfg.App.DefaultReferralPercentage)
	if err != nil {
		log.Fatalf("Invalid DEFAULT_REFERRAL_PERCENTAGE: %v", err)
	}

	// Initialize the TikTok open API client
	tiktokClient := tiktok.NewClient(cfg.TikTok.ClientKey, cfg.TikTok.ClientSecret, cfg.TikTok.BaseURL)

	// Initialize services
	notificationService := services.NewNotificationService(db)
	userService := services.NewUserService(db, defaultReferralPct)
	campaignService := services.NewCampaignService(db)
	submissionService := services.NewSubmissionService(db, notificationService)
	rewardService := services.NewRewardService(db)
	commissionService := services.NewCommissionService(db, notificationService)
	invoiceService := services.NewInvoiceService(db, rewardService, commissionService, notificationService)
	statsRefreshService := services.NewStatsRefreshService(db, tiktokClient, notificationService)

	// Start the stats refresh job
	jobCtx, jobCancel := context.WithCancel(context.Background())
	refreshJob := jobs.NewStatsRefreshJob(statsRefreshService, cfg.Scheduler.RefreshInterval)
	refreshJob.Start(jobCtx)
	log.Println("Stats refresh job started")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	campaignHandler := handlers.NewCampaignHandler(campaignService, rewardService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	referralHandler := handlers.NewReferralHandler(commissionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(refreshJob)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public campaign routes
	router.GET("/api/campaigns", campaignHandler.ListCampaigns)
	router.GET("/api/campaigns/:id", campaignHandler.GetCampaign)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/tiktok-accounts", userHandler.GetTikTokAccounts)
			userRoutes.POST("/tiktok-accounts", userHandler.LinkTikTokAccount)
		}

		// Creator endpoints
		api.GET("/campaigns/:id/rewards", campaignHandler.GetRewardStatus)
		api.POST("/submissions", submissionHandler.CreateSubmission)
		api.GET("/submissions", submissionHandler.GetMySubmissions)
		api.DELETE("/submissions/:id", submissionHandler.DeleteSubmission)
		api.POST("/submissions/:id/ads-code", submissionHandler.SetAdsCode)
		api.POST("/invoices", invoiceHandler.CreateInvoice)
		api.GET("/invoices/:id", invoiceHandler.GetInvoice)

		// Referral endpoints
		api.GET("/referral/balance", referralHandler.GetBalance)
		api.GET("/referral/commissions", referralHandler.GetCommissions)
		api.GET("/referral/withdrawals", referralHandler.GetWithdrawals)
		api.POST("/referral/withdrawals", referralHandler.RequestWithdrawal)

		// Notification inbox
		api.GET("/notifications", notificationHandler.GetNotifications)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)

		// Brand endpoints
		brand := api.Group("")
		brand.Use(auth.RequireRole(models.RoleBrand, models.RoleAdmin))
		{
			brand.POST("/campaigns", campaignHandler.CreateCampaign)
			brand.GET("/brand/campaigns", campaignHandler.ListBrandCampaigns)
			brand.PUT("/campaigns/:id/status", campaignHandler.UpdateCampaignStatus)
			brand.POST("/campaigns/:id/rewards", campaignHandler.AddRewardTier)
			brand.DELETE("/campaigns/rewards/:tier_id", campaignHandler.DeleteRewardTier)
			brand.GET("/campaigns/:id/submissions", submissionHandler.GetCampaignSubmissions)
			brand.POST("/submissions/:id/validate", submissionHandler.ValidateSubmission)
			brand.POST("/submissions/:id/refuse", submissionHandler.RefuseSubmission)
			brand.POST("/invoices/:id/pay", invoiceHandler.PayInvoice)
			brand.POST("/referral/withdrawals/:id/pay", referralHandler.MarkWithdrawalPaid)
		}
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/refresh", adminHandler.TriggerRefresh)
		admin.GET("/refresh/report", adminHandler.GetRefreshReport)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop the refresh job: the cycle in progress finishes, no new one starts
	refreshJob.Stop()
	jobCancel()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// Drain pending notifications before exit
	notificationService.Close()

	log.Println("Server exited")
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/nicawallet/wallet-api/config"
	"github.com/nicawallet/wallet-api/handlers"
	"github.com/nicawallet/wallet-api/middleware"
	"github.com/nicawallet/wallet-api/routes"
	"github.com/nicawallet/wallet-api/services"
	"github.com/nicawallet/wallet-api/storage"
	"github.com/nicawallet/wallet-api/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	defer store.Close()

	log.Printf("✅ Storage ready (backend: %s)", cfg.DataBackend)

	go scheduleSessionPurge(store)

	ledger := services.NewLedgerService(store)
	currency := services.NewCurrencyFormatter(cfg.BaseCurrency, cfg.ExchangeRate)
	wsHandler := handlers.NewWSHandler(ledger)

	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Print(utils.MaskSensitive(
			"📨 " + c.Request.Method + " " + c.Request.URL.Path +
				" from " + c.ClientIP() +
				" - " + time.Since(start).String()))
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, store, ledger)
		v1.GET("/ws/transactions", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupSessionRoutes(protected, store, ledger)
			routes.SetupTransactionRoutes(protected, ledger, currency)
			routes.SetupUserRoutes(protected, store, ledger)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// scheduleSessionPurge drops expired refresh-token sessions once a day.
func scheduleSessionPurge(store storage.Store) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	purgeSessions(store)
	for range ticker.C {
		purgeSessions(store)
	}
}

func purgeSessions(store storage.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	purged, err := store.PurgeExpiredSessions(ctx)
	if err != nil {
		log.Printf("❌ Session purge failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("🧹 Purged %d expired sessions", purged)
	}
}

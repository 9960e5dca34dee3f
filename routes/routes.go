package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nicawallet/wallet-api/handlers"
	"github.com/nicawallet/wallet-api/services"
	"github.com/nicawallet/wallet-api/storage"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, store storage.Store, ledger *services.LedgerService) {
	authHandler := &handlers.AuthHandler{Store: store, Ledger: ledger}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
}

// SetupSessionRoutes sets up authenticated session management routes.
func SetupSessionRoutes(rg *gin.RouterGroup, store storage.Store, ledger *services.LedgerService) {
	authHandler := &handlers.AuthHandler{Store: store, Ledger: ledger}

	rg.POST("/auth/logout", authHandler.Logout)
}

// SetupTransactionRoutes sets up the protected ledger routes.
func SetupTransactionRoutes(rg *gin.RouterGroup, ledger *services.LedgerService, currency *services.CurrencyFormatter) {
	h := &handlers.TransactionHandler{Ledger: ledger, Currency: currency}

	rg.GET("/transactions", h.List)
	rg.POST("/transactions", h.Add)
	rg.DELETE("/transactions/:id", h.Delete)
	rg.GET("/transactions/summary", h.Summary)
	rg.GET("/categories", h.Categories)
}

// SetupUserRoutes sets up protected user self-service routes.
func SetupUserRoutes(rg *gin.RouterGroup, store storage.Store, ledger *services.LedgerService) {
	userHandler := &handlers.UserHandler{Store: store, Ledger: ledger}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.DELETE("/user/account", userHandler.DeleteAccount)
}

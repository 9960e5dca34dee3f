package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicawallet/wallet-api/middleware"
	"github.com/nicawallet/wallet-api/models"
	"github.com/nicawallet/wallet-api/services"
	"github.com/nicawallet/wallet-api/storage"
)

type TransactionHandler struct {
	Ledger   *services.LedgerService
	Currency *services.CurrencyFormatter
}

// List returns the caller's full snapshot, newest first.
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txs, err := h.Ledger.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *TransactionHandler) Add(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.Ledger.Add(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save transaction"})
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.Ledger.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary aggregates the snapshot and renders the totals in the requested
// display currency (?currency=USD converts through the fixed rate).
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	currency := c.DefaultQuery("currency", h.Currency.BaseCurrency())
	if !h.Currency.Supported(currency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported currency"})
		return
	}

	summary, err := h.Ledger.Summary(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":       summary.Balance,
		"total_income":  summary.TotalIncome,
		"total_expense": summary.TotalExpense,
		"currency":      currency,
		"formatted": gin.H{
			"balance":       h.Currency.Format(int64(summary.Balance), currency),
			"total_income":  h.Currency.Format(int64(summary.TotalIncome), currency),
			"total_expense": h.Currency.Format(int64(summary.TotalExpense), currency),
		},
	})
}

// Categories returns the closed category set. Static configuration, but kept
// behind auth like the rest of the API surface.
func (h *TransactionHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, services.Categories())
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/core/services"
	"github.com/kantorly/currency_exchange_app/internal/dto"
	"github.com/kantorly/currency_exchange_app/internal/middleware"
)

// ledgerHandler handles the balance-mutating and history endpoints.
type ledgerHandler struct {
	ledgerService *services.LedgerService
}

func newLedgerHandler(ls *services.LedgerService) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// adjustBalance godoc
// @Summary Adjust one currency balance
// @Description Applies a signed amount to the account's balance in one currency and returns the new balance
// @Tags ledger
// @Accept json
// @Produce json
// @Param accountID path string true "Account ID"
// @Param adjustment body dto.AdjustBalanceRequest true "Currency and signed amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Invalid input or insufficient balance"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to adjust balance"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [patch]
func (h *ledgerHandler) adjustBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for adjustBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.AdjustBalance(c.Request.Context(), accountID, req.Currency, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrInsufficientBalance), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to adjust balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Currency: req.Currency, Balance: newBalance})
}

// getBalance godoc
// @Summary Get one currency balance
// @Description Returns the balance in the requested currency; an untouched currency reads as zero
// @Tags ledger
// @Produce json
// @Param accountID path string true "Account ID"
// @Param currency query string true "Currency code, e.g. USD"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency query parameter is required"})
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Currency: currency, Balance: balance})
}

// exchange godoc
// @Summary Exchange between two currencies on one account
// @Description Debits fromAmount of fromCurrency and credits toAmount of toCurrency atomically, recording a transaction
// @Tags ledger
// @Accept json
// @Produce json
// @Param accountID path string true "Account ID"
// @Param exchange body dto.ExchangeRequest true "Exchange legs"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid input or insufficient balance"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to exchange"
// @Security BearerAuth
// @Router /accounts/{accountID}/exchange [post]
func (h *ledgerHandler) exchange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for exchange", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	err := h.ledgerService.Exchange(c.Request.Context(), accountID, req.FromCurrency, req.ToCurrency, req.FromAmount, req.ToAmount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrInsufficientBalance), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to exchange", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exchange successful"})
}

// getTransactionHistory godoc
// @Summary Get the account's transaction history
// @Description Returns every recorded exchange for the account, oldest first
// @Tags ledger
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {array} dto.TransactionResponse
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [get]
func (h *ledgerHandler) getTransactionHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	transactions, err := h.ledgerService.GetTransactionHistory(c.Request.Context(), accountID)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionResponse(transactions))
}

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

// exchangeRateHandler proxies NBP exchange-rate lookups.
type exchangeRateHandler struct {
	rateService *services.ExchangeRateService
}

func newExchangeRateHandler(rs *services.ExchangeRateService) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService *services.ExchangeRateService) {
	h := newExchangeRateHandler(rateService)

	currencies := rg.Group("/currencies")
	{
		currencies.GET("/rates", h.getCurrentRates)
		currencies.GET("/rates/history", h.getHistoricalRates)
	}
}

// getCurrentRates godoc
// @Summary Get current exchange rates
// @Description Returns the current NBP table-A mid rates against PLN
// @Tags currencies
// @Produce json
// @Success 200 {array} dto.NBPRate
// @Failure 500 {object} map[string]string "Failed to fetch exchange rates"
// @Security BearerAuth
// @Router /currencies/rates [get]
func (h *exchangeRateHandler) getCurrentRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rates, err := h.rateService.FetchCurrentRates(c.Request.Context())
	if err != nil {
		logger.Error("Failed to fetch current rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch exchange rates"})
		return
	}

	c.JSON(http.StatusOK, rates)
}

// getHistoricalRates godoc
// @Summary Get historical exchange rates
// @Description Returns the NBP table-A mid rates for one currency over a date range
// @Tags currencies
// @Produce json
// @Param currency query string true "Currency code, e.g. USD"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} dto.NBPHistoricalRate
// @Failure 404 {object} map[string]string "No data for the given parameters"
// @Failure 500 {object} map[string]string "Failed to fetch exchange rates"
// @Security BearerAuth
// @Router /currencies/rates/history [get]
func (h *exchangeRateHandler) getHistoricalRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.HistoricalRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rates, err := h.rateService.FetchHistoricalRates(c.Request.Context(), params.Currency, params.StartDate, params.EndDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No data found for the given parameters"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to fetch historical rates", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch exchange rates"})
		}
		return
	}

	c.JSON(http.StatusOK, rates)
}

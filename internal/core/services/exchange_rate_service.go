package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/dto"
	"github.com/kantorly/currency_exchange_app/internal/middleware"
)

// DefaultNBPBaseURL is the National Bank of Poland exchange-rate API.
const DefaultNBPBaseURL = "https://api.nbp.pl/api/exchangerates"

// ExchangeRateService proxies exchange-rate lookups to the NBP API.
// It is a read-only collaborator of the ledger: the ledger itself never
// consults rates, pricing an exchange is the caller's responsibility.
type ExchangeRateService struct {
	baseURL string
	client  *http.Client
}

// NewExchangeRateService creates a new ExchangeRateService. An empty baseURL
// uses the public NBP API; a nil client uses a default with a sane timeout.
func NewExchangeRateService(baseURL string, client *http.Client) *ExchangeRateService {
	if baseURL == "" {
		baseURL = DefaultNBPBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExchangeRateService{baseURL: baseURL, client: client}
}

type nbpTable struct {
	Table         string        `json:"table"`
	No            string        `json:"no"`
	EffectiveDate string        `json:"effectiveDate"`
	Rates         []dto.NBPRate `json:"rates"`
}

type nbpRateSeries struct {
	Table    string                  `json:"table"`
	Currency string                  `json:"currency"`
	Code     string                  `json:"code"`
	Rates    []dto.NBPHistoricalRate `json:"rates"`
}

// FetchCurrentRates returns the current table-A mid rates against PLN.
func (s *ExchangeRateService) FetchCurrentRates(ctx context.Context) ([]dto.NBPRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	url := fmt.Sprintf("%s/tables/A?format=json", s.baseURL)
	var tables []nbpTable
	if err := s.getJSON(ctx, url, &tables); err != nil {
		logger.Error("Failed to fetch current exchange rates", slog.String("error", err.Error()))
		return nil, err
	}
	if len(tables) == 0 || len(tables[0].Rates) == 0 {
		return nil, fmt.Errorf("%w: no exchange rate data available", apperrors.ErrNotFound)
	}
	return tables[0].Rates, nil
}

// FetchHistoricalRates returns the table-A mid rates for one currency over a
// date range (dates formatted YYYY-MM-DD).
func (s *ExchangeRateService) FetchHistoricalRates(ctx context.Context, currency, startDate, endDate string) ([]dto.NBPHistoricalRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if currency == "" || startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: currency, startDate and endDate are required", apperrors.ErrValidation)
	}

	url := fmt.Sprintf("%s/rates/A/%s/%s/%s/?format=json", s.baseURL, currency, startDate, endDate)
	var series nbpRateSeries
	if err := s.getJSON(ctx, url, &series); err != nil {
		logger.Error("Failed to fetch historical exchange rates", slog.String("error", err.Error()), slog.String("currency", currency))
		return nil, err
	}
	if len(series.Rates) == 0 {
		return nil, fmt.Errorf("%w: no rates found for the given parameters", apperrors.ErrNotFound)
	}
	return series.Rates, nil
}

func (s *ExchangeRateService) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build NBP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call NBP API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: NBP has no data for the request", apperrors.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("NBP API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode NBP response: %w", err)
	}
	return nil
}

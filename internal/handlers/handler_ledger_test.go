package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kantorly/currency_exchange_app/internal/core/services"
	"github.com/kantorly/currency_exchange_app/internal/dto"
	"github.com/kantorly/currency_exchange_app/internal/handlers"
	"github.com/kantorly/currency_exchange_app/internal/repositories/memory"
	"github.com/kantorly/currency_exchange_app/internal/utils"
	"github.com/kantorly/currency_exchange_app/pkg/config"
)

const testJWTSecret = "test-secret-key"

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type LedgerHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	cfg    *config.Config
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.cfg = &config.Config{
		JWTSecret:         testJWTSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "currency-exchange-app-test",
		AuthRateLimit:     "1000-M",
	}

	store := memory.NewStore()
	svcs := handlers.Services{
		Ledger:       services.NewLedgerService(store, store),
		Users:        services.NewUserService(store),
		ExchangeRate: services.NewExchangeRateService("", nil),
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, suite.cfg, svcs)
}

func (suite *LedgerHandlerTestSuite) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a user through the API and returns their token and
// account ID.
func (suite *LedgerHandlerTestSuite) registerAndLogin() (token, accountID string) {
	w := suite.doJSON(http.MethodPost, "/auth/register", "", gin.H{
		"firstName": "alice",
		"email":     "alice@example.com",
		"password":  "correct-horse",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.doJSON(http.MethodPost, "/auth/login", "", gin.H{
		"firstName": "alice",
		"password":  "correct-horse",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var login dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))
	suite.Require().NotEmpty(login.Token)

	w = suite.doJSON(http.MethodGet, "/api/v1/accounts/me", login.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var account dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &account))
	suite.Require().NotEmpty(account.AccountID)

	return login.Token, account.AccountID
}

func (suite *LedgerHandlerTestSuite) TestRegisterSeedsAccount() {
	_, accountID := suite.registerAndLogin()
	suite.NotEmpty(accountID)
}

func (suite *LedgerHandlerTestSuite) TestRequestsWithoutTokenAreRejected() {
	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/me", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestRequestsWithForgedTokenAreRejected() {
	forged, err := utils.GenerateJWT("someone", "wrong-secret", time.Hour, "evil")
	suite.Require().NoError(err)

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/me", forged, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestAdjustBalance() {
	token, accountID := suite.registerAndLogin()

	w := suite.doJSON(http.MethodPatch, "/api/v1/accounts/"+accountID+"/balance", token, gin.H{
		"currency": "PLN",
		"amount":   "100",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("PLN", resp.Currency)
	suite.True(resp.Balance.Equal(dec("100")), resp.Balance.String())
}

func (suite *LedgerHandlerTestSuite) TestAdjustBalance_Overdraft() {
	token, accountID := suite.registerAndLogin()

	w := suite.doJSON(http.MethodPatch, "/api/v1/accounts/"+accountID+"/balance", token, gin.H{
		"currency": "PLN",
		"amount":   "-5",
	})
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (suite *LedgerHandlerTestSuite) TestAdjustBalance_InvalidCurrencyCode() {
	token, accountID := suite.registerAndLogin()

	w := suite.doJSON(http.MethodPatch, "/api/v1/accounts/"+accountID+"/balance", token, gin.H{
		"currency": "pl",
		"amount":   "10",
	})
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (suite *LedgerHandlerTestSuite) TestAdjustBalance_UnknownAccount() {
	token, _ := suite.registerAndLogin()

	w := suite.doJSON(http.MethodPatch, "/api/v1/accounts/no-such-account/balance", token, gin.H{
		"currency": "PLN",
		"amount":   "10",
	})
	suite.Equal(http.StatusNotFound, w.Code, w.Body.String())
}

func (suite *LedgerHandlerTestSuite) TestExchangeFlow() {
	token, accountID := suite.registerAndLogin()

	w := suite.doJSON(http.MethodPatch, "/api/v1/accounts/"+accountID+"/balance", token, gin.H{
		"currency": "PLN",
		"amount":   "100",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.doJSON(http.MethodPost, "/api/v1/accounts/"+accountID+"/exchange", token, gin.H{
		"fromCurrency": "PLN",
		"toCurrency":   "USD",
		"fromAmount":   "40",
		"toAmount":     "10",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.doJSON(http.MethodGet, "/api/v1/accounts/"+accountID+"/balance?currency=PLN", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var pln dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &pln))
	suite.True(pln.Balance.Equal(dec("60")), pln.Balance.String())

	w = suite.doJSON(http.MethodGet, "/api/v1/accounts/"+accountID+"/balance?currency=USD", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var usd dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &usd))
	suite.True(usd.Balance.Equal(dec("10")), usd.Balance.String())

	w = suite.doJSON(http.MethodGet, "/api/v1/accounts/"+accountID+"/transactions", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var history []dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &history))
	suite.Require().Len(history, 1)
	suite.Equal("PLN", history[0].FromCurrency)
	suite.Equal("USD", history[0].ToCurrency)
}

func (suite *LedgerHandlerTestSuite) TestExchange_InsufficientBalance() {
	token, accountID := suite.registerAndLogin()

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts/"+accountID+"/exchange", token, gin.H{
		"fromCurrency": "PLN",
		"toCurrency":   "USD",
		"fromAmount":   "1000",
		"toAmount":     "1",
	})
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	// nothing was recorded
	w = suite.doJSON(http.MethodGet, "/api/v1/accounts/"+accountID+"/transactions", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var history []dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &history))
	suite.Empty(history)
}

func (suite *LedgerHandlerTestSuite) TestGetBalance_RequiresCurrencyParam() {
	token, accountID := suite.registerAndLogin()

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/"+accountID+"/balance", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (suite *LedgerHandlerTestSuite) TestLogin_BadCredentials() {
	suite.registerAndLogin()

	w := suite.doJSON(http.MethodPost, "/auth/login", "", gin.H{
		"firstName": "alice",
		"password":  "battery-staple",
	})
	suite.Equal(http.StatusUnauthorized, w.Code, w.Body.String())
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/quotecart-backend/api/controllers"
	"github.com/angelmondragon/quotecart-backend/internal/orders"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	pkgAuth "github.com/angelmondragon/quotecart-backend/pkg/auth"
	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubQuoteService struct {
	quotes.Service
	quote      *models.Quote
	lastCaller quotes.Caller
}

func (s *stubQuoteService) Resolve(_ context.Context, caller quotes.Caller, _ string) (*models.Quote, error) {
	s.lastCaller = caller
	return s.quote, nil
}

func (s *stubQuoteService) Get(_ context.Context, quoteID uuid.UUID) (*quotes.Detail, error) {
	return &quotes.Detail{Quote: s.quote, Pricing: quotes.Price(s.quote)}, nil
}

type stubOrderService struct{}

func (stubOrderService) CreateOrder(context.Context, orders.CreateOrderInput) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", CORSOrigins: []string{"https://shop.example.com"}},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Cart: config.CartConfig{CookieName: "quote_id", CookieTTL: time.Hour},
	}
}

func newTestRouter(cfg *config.Config, quoteSvc quotes.Service, readiness map[string]controllers.Pinger) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	metrics.NewQuoteMetrics(reg)
	return NewRouter(cfg, logg, readiness, quoteSvc, stubOrderService{}, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func buildToken(t *testing.T, cfg *config.Config, customerID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{CustomerID: customerID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), &stubQuoteService{}, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	router := newTestRouter(testConfig(), &stubQuoteService{}, map[string]controllers.Pinger{
		"db":    stubPinger{},
		"redis": stubPinger{err: errors.New("connection refused")},
	})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestGuestFetchRendersEmptyCart(t *testing.T) {
	svc := &stubQuoteService{}
	router := newTestRouter(testConfig(), svc, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/quote", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastCaller.Authenticated {
		t.Fatalf("guest request resolved as authenticated")
	}
	if !strings.Contains(resp.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty items, got %s", resp.Body.String())
	}
}

func TestInvalidTokenIsRejected(t *testing.T) {
	router := newTestRouter(testConfig(), &stubQuoteService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthenticatedFetchResolvesCustomerQuote(t *testing.T) {
	cfg := testConfig()
	customerID := uuid.New()
	quote := &models.Quote{ID: uuid.New(), CustomerID: &customerID, IsOpen: true}
	svc := &stubQuoteService{quote: quote}
	router := newTestRouter(cfg, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, customerID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.lastCaller.Authenticated || svc.lastCaller.CustomerID == nil || *svc.lastCaller.CustomerID != customerID {
		t.Fatalf("unexpected caller %+v", svc.lastCaller)
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != quote.ID.String() {
		t.Fatalf("expected cart cookie for resolved quote, got %+v", cookies)
	}
	if !strings.Contains(resp.Body.String(), quote.ID.String()) {
		t.Fatalf("expected quote id in body, got %s", resp.Body.String())
	}
}

func TestCheckoutWithoutQuoteIsNotFound(t *testing.T) {
	router := newTestRouter(testConfig(), &stubQuoteService{}, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/quote/checkout", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(testConfig(), &stubQuoteService{}, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(testConfig(), &stubQuoteService{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/quote/items", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

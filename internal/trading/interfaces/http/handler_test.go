package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	marketdomain "github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/internal/trading/application"
	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/middleware"
)

// memRepos 单用户内存仓储，够 handler 测试用
type memRepos struct {
	user      *domain.User
	positions map[string]*domain.Position
	txns      []*domain.Transaction
	saveErr   error
}

func (m *memRepos) Get(ctx context.Context, userID string) (*domain.User, error) {
	if m.user != nil && m.user.UserID == userID {
		u := *m.user
		return &u, nil
	}
	return nil, nil
}

func (m *memRepos) Save(ctx context.Context, user *domain.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	u := *user
	m.user = &u
	return nil
}

func (m *memRepos) GetPosition(ctx context.Context, userID, ticker string) (*domain.Position, error) {
	if p, ok := m.positions[ticker]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (m *memRepos) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type posAdapter struct{ m *memRepos }

func (a *posAdapter) Get(ctx context.Context, userID, ticker string) (*domain.Position, error) {
	return a.m.GetPosition(ctx, userID, ticker)
}

func (a *posAdapter) ListByUser(ctx context.Context, userID string) ([]*domain.Position, error) {
	var out []*domain.Position
	for _, p := range a.m.positions {
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

func (a *posAdapter) Save(ctx context.Context, position *domain.Position) error {
	c := *position
	a.m.positions[position.Ticker] = &c
	return nil
}

func (a *posAdapter) Delete(ctx context.Context, position *domain.Position) error {
	delete(a.m.positions, position.Ticker)
	return nil
}

type txnAdapter struct{ m *memRepos }

func (a *txnAdapter) Save(ctx context.Context, transaction *domain.Transaction) error {
	c := *transaction
	a.m.txns = append(a.m.txns, &c)
	return nil
}

func (a *txnAdapter) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for i := len(a.m.txns) - 1; i >= 0 && len(out) < limit; i-- {
		c := *a.m.txns[i]
		out = append(out, &c)
	}
	return out, nil
}

type fixedPrices struct{ prices map[string]string }

func (f *fixedPrices) GetPrice(ctx context.Context, symbol string) (*marketdomain.Quote, error) {
	p, ok := f.prices[symbol]
	if !ok {
		return nil, nil
	}
	price, _ := decimal.NewFromString(p)
	return &marketdomain.Quote{Symbol: symbol, Price: price}, nil
}

func newTestRouter(repos *memRepos, prices map[string]string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := application.NewTradingService(
		repos,
		&posAdapter{m: repos},
		&txnAdapter{m: repos},
		repos,
		&fixedPrices{prices: prices},
		nil, nil,
	)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.Identity())
	NewTradeHandler(svc).RegisterRoutes(api)
	return r
}

func doRequest(r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuyEndpoint(t *testing.T) {
	balance, _ := decimal.NewFromString("10000")
	repos := &memRepos{
		user:      &domain.User{UserID: "u1", Balance: balance},
		positions: make(map[string]*domain.Position),
	}
	r := newTestRouter(repos, map[string]string{"AAPL": "150"})

	w := doRequest(r, http.MethodPost, "/api/portfolio/buy", "u1", `{"ticker":"AAPL","quantity":"10"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["transaction_id"] == "" {
		t.Error("transaction_id missing from response")
	}
	if resp["total_cost"] != "1500" {
		t.Errorf("total_cost = %v, want 1500", resp["total_cost"])
	}
}

func TestTradeEndpointStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		userID     string
		body       string
		wantStatus int
	}{
		{"missing identity", "/api/portfolio/buy", "", `{"ticker":"AAPL","quantity":"1"}`, http.StatusUnauthorized},
		{"malformed body", "/api/portfolio/buy", "u1", `{`, http.StatusBadRequest},
		{"zero quantity", "/api/portfolio/buy", "u1", `{"ticker":"AAPL","quantity":"0"}`, http.StatusBadRequest},
		{"unknown symbol", "/api/portfolio/buy", "u1", `{"ticker":"NOPE","quantity":"1"}`, http.StatusNotFound},
		{"insufficient funds", "/api/portfolio/buy", "u1", `{"ticker":"AAPL","quantity":"1000"}`, http.StatusUnprocessableEntity},
		{"insufficient shares", "/api/portfolio/sell", "u1", `{"ticker":"AAPL","quantity":"1"}`, http.StatusUnprocessableEntity},
		{"unknown user", "/api/portfolio/buy", "ghost", `{"ticker":"AAPL","quantity":"1"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, _ := decimal.NewFromString("100")
			repos := &memRepos{
				user:      &domain.User{UserID: "u1", Balance: balance},
				positions: make(map[string]*domain.Position),
			}
			r := newTestRouter(repos, map[string]string{"AAPL": "150"})

			w := doRequest(r, http.MethodPost, tt.path, tt.userID, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestTradeConflictMapsToConflictStatus(t *testing.T) {
	balance, _ := decimal.NewFromString("10000")
	repos := &memRepos{
		user:      &domain.User{UserID: "u1", Balance: balance},
		positions: make(map[string]*domain.Position),
		saveErr:   domain.ErrConcurrencyConflict,
	}
	r := newTestRouter(repos, map[string]string{"AAPL": "150"})

	w := doRequest(r, http.MethodPost, "/api/portfolio/buy", "u1", `{"ticker":"AAPL","quantity":"1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body = %s", w.Code, w.Body.String())
	}
}

func TestRecentTradesEndpoint(t *testing.T) {
	balance, _ := decimal.NewFromString("100000")
	repos := &memRepos{
		user:      &domain.User{UserID: "u1", Balance: balance},
		positions: make(map[string]*domain.Position),
	}
	r := newTestRouter(repos, map[string]string{"AAPL": "100"})

	for i := 0; i < 3; i++ {
		if w := doRequest(r, http.MethodPost, "/api/portfolio/buy", "u1", `{"ticker":"AAPL","quantity":"1"}`); w.Code != http.StatusOK {
			t.Fatalf("seed buy failed: %d %s", w.Code, w.Body.String())
		}
	}

	w := doRequest(r, http.MethodGet, "/api/user/trades", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Trades []struct {
			Type string `json:"type"`
		} `json:"trades"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Trades) != 3 {
		t.Errorf("trades = %d, want 3", len(resp.Trades))
	}
	for _, trade := range resp.Trades {
		if trade.Type != "BUY" {
			t.Errorf("trade type = %q, want BUY", trade.Type)
		}
	}
}

package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	marketdomain "github.com/wyfcoding/brokerage/internal/marketdata/domain"
	tradingdomain "github.com/wyfcoding/brokerage/internal/trading/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type stubUserRepo struct {
	user *tradingdomain.User
}

func (r *stubUserRepo) Get(ctx context.Context, userID string) (*tradingdomain.User, error) {
	if r.user != nil && r.user.UserID == userID {
		return r.user, nil
	}
	return nil, nil
}

func (r *stubUserRepo) Save(ctx context.Context, user *tradingdomain.User) error {
	return errors.New("read only")
}

type stubPositionRepo struct {
	positions []*tradingdomain.Position
}

func (r *stubPositionRepo) Get(ctx context.Context, userID, ticker string) (*tradingdomain.Position, error) {
	return nil, nil
}

func (r *stubPositionRepo) ListByUser(ctx context.Context, userID string) ([]*tradingdomain.Position, error) {
	return r.positions, nil
}

func (r *stubPositionRepo) Save(ctx context.Context, position *tradingdomain.Position) error {
	return errors.New("read only")
}

func (r *stubPositionRepo) Delete(ctx context.Context, position *tradingdomain.Position) error {
	return errors.New("read only")
}

type stubBatchPrices struct {
	quotes map[string]*marketdomain.Quote
}

func (s *stubBatchPrices) GetPrices(ctx context.Context, symbols []string) map[string]*marketdomain.Quote {
	out := make(map[string]*marketdomain.Quote)
	for _, sym := range symbols {
		if q, ok := s.quotes[sym]; ok {
			out[sym] = q
		}
	}
	return out
}

func quote(symbol, price string) *marketdomain.Quote {
	return &marketdomain.Quote{Symbol: symbol, Price: d(price)}
}

func richQuote(symbol, name, price, change, changePercent string) *marketdomain.Quote {
	return &marketdomain.Quote{
		Symbol:        symbol,
		Name:          name,
		Price:         d(price),
		Change:        d(change),
		ChangePercent: d(changePercent),
	}
}

func TestValuateEmptyPortfolio(t *testing.T) {
	svc := NewPortfolioService(
		&stubUserRepo{user: &tradingdomain.User{UserID: "u1", Balance: d("5000")}},
		&stubPositionRepo{},
		&stubBatchPrices{},
	)

	view, err := svc.Valuate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("valuate failed: %v", err)
	}
	if !view.Balance.Equal(d("5000")) || !view.TotalValue.Equal(d("5000")) {
		t.Errorf("balance = %s, total = %s, want 5000/5000", view.Balance, view.TotalValue)
	}
	if view.Positions == nil || len(view.Positions) != 0 {
		t.Errorf("positions should be an empty slice, got %v", view.Positions)
	}
}

func TestValuateWithLiveQuotes(t *testing.T) {
	svc := NewPortfolioService(
		&stubUserRepo{user: &tradingdomain.User{UserID: "u1", Balance: d("1000")}},
		&stubPositionRepo{positions: []*tradingdomain.Position{
			{UserID: "u1", Ticker: "AAPL", Quantity: d("10"), AvgBuyPrice: d("100")},
			{UserID: "u1", Ticker: "MSFT", Quantity: d("2"), AvgBuyPrice: d("300")},
		}},
		&stubBatchPrices{quotes: map[string]*marketdomain.Quote{
			"AAPL": richQuote("AAPL", "Apple Inc.", "120", "2.4", "2.04"),
			"MSFT": quote("MSFT", "250"),
		}},
	)

	view, err := svc.Valuate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("valuate failed: %v", err)
	}

	// 1000 现金 + 10*120 + 2*250
	if !view.TotalValue.Equal(d("2700")) {
		t.Errorf("total value = %s, want 2700", view.TotalValue)
	}
	if !view.TotalUnrealizedPnL.Equal(d("100")) {
		t.Errorf("total pnl = %s, want 100", view.TotalUnrealizedPnL)
	}

	aapl := view.Positions[0]
	if !aapl.UnrealizedPnL.Equal(d("200")) {
		t.Errorf("AAPL pnl = %s, want 200", aapl.UnrealizedPnL)
	}
	if !aapl.UnrealizedPnLPercent.Equal(d("20")) {
		t.Errorf("AAPL pnl percent = %s, want 20", aapl.UnrealizedPnLPercent)
	}
	if aapl.Name != "Apple Inc." {
		t.Errorf("AAPL name = %q, want Apple Inc.", aapl.Name)
	}
	if !aapl.Change.Equal(d("2.4")) || !aapl.ChangePercent.Equal(d("2.04")) {
		t.Errorf("AAPL change = %s / %s%%, want 2.4 / 2.04%%", aapl.Change, aapl.ChangePercent)
	}
	msft := view.Positions[1]
	if !msft.UnrealizedPnL.Equal(d("-100")) {
		t.Errorf("MSFT pnl = %s, want -100", msft.UnrealizedPnL)
	}
	// 行情没带公司名时退回标的代码
	if msft.Name != "MSFT" {
		t.Errorf("MSFT name = %q, want ticker fallback", msft.Name)
	}
}

func TestValuateFallsBackToCostOnMissingQuote(t *testing.T) {
	svc := NewPortfolioService(
		&stubUserRepo{user: &tradingdomain.User{UserID: "u1", Balance: d("0")}},
		&stubPositionRepo{positions: []*tradingdomain.Position{
			{UserID: "u1", Ticker: "AAPL", Quantity: d("10"), AvgBuyPrice: d("100")},
			{UserID: "u1", Ticker: "DARK", Quantity: d("5"), AvgBuyPrice: d("40")},
		}},
		&stubBatchPrices{quotes: map[string]*marketdomain.Quote{
			"AAPL": quote("AAPL", "120"),
		}},
	)

	view, err := svc.Valuate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("partial quote outage must not fail the valuation: %v", err)
	}

	var dark *PositionView
	for _, pv := range view.Positions {
		if pv.Ticker == "DARK" {
			dark = pv
		}
	}
	if dark == nil {
		t.Fatal("DARK position missing from view")
	}
	if !dark.CurrentPrice.Equal(d("40")) {
		t.Errorf("fallback price = %s, want avg buy price 40", dark.CurrentPrice)
	}
	if !dark.UnrealizedPnL.IsZero() {
		t.Errorf("fallback pnl = %s, want 0", dark.UnrealizedPnL)
	}
	if dark.Name != "DARK" {
		t.Errorf("fallback name = %q, want ticker", dark.Name)
	}
	if !dark.Change.IsZero() || !dark.ChangePercent.IsZero() {
		t.Errorf("fallback change = %s / %s%%, want zero", dark.Change, dark.ChangePercent)
	}
	// 1200 按市价 + 200 按成本
	if !view.TotalValue.Equal(d("1400")) {
		t.Errorf("total value = %s, want 1400", view.TotalValue)
	}
}

func TestValuateUnknownUser(t *testing.T) {
	svc := NewPortfolioService(&stubUserRepo{}, &stubPositionRepo{}, &stubBatchPrices{})

	_, err := svc.Valuate(context.Background(), "ghost")
	if !errors.Is(err, tradingdomain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}

	_, err = svc.Valuate(context.Background(), "")
	if !errors.Is(err, tradingdomain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

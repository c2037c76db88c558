// Package application 投资组合估值服务：聚合余额、持仓与实时行情
package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	marketdomain "github.com/wyfcoding/brokerage/internal/marketdata/domain"
	tradingdomain "github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/logger"
)

// BatchPriceResolver 批量解析行情，结果只含解析成功的标的
type BatchPriceResolver interface {
	GetPrices(ctx context.Context, symbols []string) map[string]*marketdomain.Quote
}

// PortfolioService 组合估值只读服务。
// 估值是当前账本状态加当前行情的一次快照，不落库。
type PortfolioService struct {
	users     tradingdomain.UserRepository
	positions tradingdomain.PositionRepository
	prices    BatchPriceResolver
}

// NewPortfolioService 创建估值服务
func NewPortfolioService(
	users tradingdomain.UserRepository,
	positions tradingdomain.PositionRepository,
	prices BatchPriceResolver,
) *PortfolioService {
	return &PortfolioService{users: users, positions: positions, prices: prices}
}

// Valuate 估值整个组合。行情解析失败的持仓退回成本价估值，
// 部分行情故障绝不让整个接口失败。
func (s *PortfolioService) Valuate(ctx context.Context, userID string) (*PortfolioView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", tradingdomain.ErrInvalidInput)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, tradingdomain.ErrUserNotFound
	}

	positions, err := s.positions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{
		Balance:    user.Balance,
		TotalValue: user.Balance,
		Positions:  make([]*PositionView, 0, len(positions)),
	}
	if len(positions) == 0 {
		return view, nil
	}

	tickers := make([]string, len(positions))
	for i, pos := range positions {
		tickers[i] = pos.Ticker
	}
	quotes := s.prices.GetPrices(ctx, tickers)

	for _, pos := range positions {
		quote := quotes[pos.Ticker]
		if quote == nil || !quote.Price.IsPositive() {
			logger.Warn(ctx, "quote missing, valuing position at cost", "ticker", pos.Ticker)
		}
		view.Positions = append(view.Positions, newPositionView(pos, quote))
	}

	for _, pv := range view.Positions {
		view.TotalValue = view.TotalValue.Add(pv.CurrentValue)
		view.TotalUnrealizedPnL = view.TotalUnrealizedPnL.Add(pv.UnrealizedPnL)
	}
	return view, nil
}

func newPositionView(pos *tradingdomain.Position, quote *marketdomain.Quote) *PositionView {
	name := pos.Ticker
	currentPrice := pos.AvgBuyPrice
	change := decimal.Zero
	changePercent := decimal.Zero
	if quote != nil && quote.Price.IsPositive() {
		currentPrice = quote.Price
		change = quote.Change
		changePercent = quote.ChangePercent
		if quote.Name != "" {
			name = quote.Name
		}
	}

	costBasis := pos.AvgBuyPrice.Mul(pos.Quantity)
	currentValue := currentPrice.Mul(pos.Quantity)
	pnl := pos.UnrealizedPnL(currentPrice)

	// 成本为零时收益率无意义，报 0 而不是除零
	pnlPercent := decimal.Zero
	if !costBasis.IsZero() {
		pnlPercent = pnl.Div(costBasis).Mul(decimal.NewFromInt(100))
	}

	return &PositionView{
		Ticker:               pos.Ticker,
		Name:                 name,
		Quantity:             pos.Quantity,
		AvgBuyPrice:          pos.AvgBuyPrice,
		CurrentPrice:         currentPrice,
		Change:               change,
		ChangePercent:        changePercent,
		CurrentValue:         currentValue,
		UnrealizedPnL:        pnl,
		UnrealizedPnLPercent: pnlPercent,
	}
}

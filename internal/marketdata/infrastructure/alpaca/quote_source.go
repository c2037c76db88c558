// Package alpaca 实现基于 Alpaca Market Data API 的行情源
package alpaca

import (
	"context"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/brokerage/internal/marketdata/domain"
)

// QuoteSource Alpaca 行情源，用快照接口拼装报价
type QuoteSource struct {
	client *marketdata.Client
}

// New 创建 Alpaca 行情源
func New(apiKey, apiSecret string) *QuoteSource {
	return &QuoteSource{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

// GetQuote 解析单个标的的当前报价。未知标的返回 (nil, nil)。
// Alpaca 快照不含公司名，Name 回退为标的代码。
func (s *QuoteSource) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = domain.NormalizeSymbol(symbol)

	snapshot, err := s.client.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, err
	}
	if snapshot == nil || snapshot.LatestTrade == nil {
		return nil, nil
	}

	price := decimal.NewFromFloat(snapshot.LatestTrade.Price)

	prevClose := decimal.Zero
	if snapshot.PrevDailyBar != nil {
		prevClose = decimal.NewFromFloat(snapshot.PrevDailyBar.Close)
	}

	change := price.Sub(prevClose)
	changePercent := decimal.Zero
	if !prevClose.IsZero() {
		changePercent = change.Div(prevClose).Mul(decimal.NewFromInt(100))
	}

	quote := &domain.Quote{
		Symbol:        symbol,
		Name:          symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		PreviousClose: prevClose,
	}

	if bar := snapshot.DailyBar; bar != nil {
		quote.Open = decimal.NewFromFloat(bar.Open)
		quote.High = decimal.NewFromFloat(bar.High)
		quote.Low = decimal.NewFromFloat(bar.Low)
		quote.Volume = int64(bar.Volume)
	}

	return quote, nil
}

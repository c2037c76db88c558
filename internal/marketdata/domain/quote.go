// Package domain 行情数据的领域模型：报价快照、搜索结果与行情源接口
package domain

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote 单个标的的即时报价快照。仅在请求期间存在，不落库。
type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        int64           `json:"volume"`
	// MarketCap 上游可能缺失，零值表示未知
	MarketCap decimal.Decimal `json:"marketCap,omitempty"`
}

// SearchResult 标的搜索结果
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange"`
}

// QuoteSource 行情源：一次调用解析一个标的的当前报价。
// 标的不存在时返回 (nil, nil)；上游故障返回错误。
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// SymbolSearcher 标的搜索，部分行情源支持
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// NormalizeSymbol 规范化标的代码：去空白并统一大写
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

package application

import "github.com/shopspring/decimal"

// PortfolioView 组合估值快照
type PortfolioView struct {
	Balance            decimal.Decimal `json:"balance"`
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalUnrealizedPnL decimal.Decimal `json:"total_unrealized_pnl"`
	Positions          []*PositionView `json:"positions"`
}

// PositionView 单个持仓的估值视图。Name、Change、ChangePercent 来自行情快照，
// 行情缺失时 Name 退回标的代码，涨跌字段为零。
type PositionView struct {
	Ticker               string          `json:"ticker"`
	Name                 string          `json:"name"`
	Quantity             decimal.Decimal `json:"quantity"`
	AvgBuyPrice          decimal.Decimal `json:"avg_buy_price"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	Change               decimal.Decimal `json:"change"`
	ChangePercent        decimal.Decimal `json:"change_percent"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	UnrealizedPnL        decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealized_pnl_percent"`
}

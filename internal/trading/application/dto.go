package application

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/brokerage/internal/trading/domain"
)

// BuyResult 买入成交回执
type BuyResult struct {
	TransactionID string          `json:"transaction_id"`
	Ticker        string          `json:"ticker"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// SellResult 卖出成交回执。RealizedPnL 按卖出时刻的成本价计算。
type SellResult struct {
	TransactionID string          `json:"transaction_id"`
	Ticker        string          `json:"ticker"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalValue    decimal.Decimal `json:"total_value"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
}

// TradeDTO 流水查询的响应项
type TradeDTO struct {
	TransactionID string          `json:"transaction_id"`
	Ticker        string          `json:"ticker"`
	Type          domain.Side     `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toTradeDTO(txn *domain.Transaction) *TradeDTO {
	return &TradeDTO{
		TransactionID: txn.TransactionID,
		Ticker:        txn.Ticker,
		Type:          txn.Side,
		Quantity:      txn.Quantity,
		Price:         txn.Price,
		TotalAmount:   txn.TotalAmount,
		CreatedAt:     txn.CreatedAt,
	}
}

func isInsufficientFunds(err error) bool {
	var target *domain.InsufficientFundsError
	return errors.As(err, &target)
}

func isInsufficientShares(err error) bool {
	var target *domain.InsufficientSharesError
	return errors.As(err, &target)
}

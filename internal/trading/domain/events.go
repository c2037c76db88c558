package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradeExecutedEvent 成交后的集成事件，供下游（风控、通知）消费
type TradeExecutedEvent struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Ticker        string          `json:"ticker"`
	Side          Side            `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

// EventPublisher 发布集成事件。发布失败不影响已提交的订单。
type EventPublisher interface {
	PublishTradeExecuted(ctx context.Context, event TradeExecutedEvent) error
}

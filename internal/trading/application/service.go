// Package application 交易引擎的应用服务：买卖执行与流水查询
package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	marketdomain "github.com/wyfcoding/brokerage/internal/marketdata/domain"
	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/logger"
	"github.com/wyfcoding/brokerage/pkg/metrics"
)

// PriceResolver 按标的解析当前成交价，未知标的返回 (nil, nil)
type PriceResolver interface {
	GetPrice(ctx context.Context, symbol string) (*marketdomain.Quote, error)
}

// TradingService 执行买卖订单：校验入参、解析行情，并在一个事务作用域内
// 完成余额、持仓与流水三者的一致更新。
type TradingService struct {
	users        domain.UserRepository
	positions    domain.PositionRepository
	transactions domain.TransactionRepository
	tx           domain.TxManager
	prices       PriceResolver
	publisher    domain.EventPublisher
	metrics      *metrics.Metrics
}

// NewTradingService 创建交易服务。publisher 与 m 可为 nil。
func NewTradingService(
	users domain.UserRepository,
	positions domain.PositionRepository,
	transactions domain.TransactionRepository,
	tx domain.TxManager,
	prices PriceResolver,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *TradingService {
	return &TradingService{
		users:        users,
		positions:    positions,
		transactions: transactions,
		tx:           tx,
		prices:       prices,
		publisher:    publisher,
		metrics:      m,
	}
}

// Buy 以当前市价买入。余额、持仓与流水在同一事务内更新，
// 任一步失败则全部回滚，不会留下部分状态。
func (s *TradingService) Buy(ctx context.Context, userID, ticker string, quantity decimal.Decimal) (*BuyResult, error) {
	ticker, err := s.validate(userID, ticker, quantity)
	if err != nil {
		s.recordFailure("invalid_input")
		return nil, err
	}

	price, err := s.resolvePrice(ctx, ticker)
	if err != nil {
		return nil, err
	}

	totalCost := price.Mul(quantity)
	transaction := s.newTransaction(userID, ticker, domain.SideBuy, quantity, price, totalCost)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		if !user.CanAfford(totalCost) {
			return &domain.InsufficientFundsError{Required: totalCost, Available: user.Balance}
		}

		position, err := s.positions.Get(ctx, userID, ticker)
		if err != nil {
			return err
		}
		if position == nil {
			position = domain.NewPosition(userID, ticker, quantity, price)
		} else {
			position.ApplyBuy(quantity, price)
		}
		if err := s.positions.Save(ctx, position); err != nil {
			return err
		}

		if err := s.transactions.Save(ctx, transaction); err != nil {
			return err
		}

		user.Debit(totalCost)
		return s.users.Save(ctx, user)
	})
	if err != nil {
		s.recordTradeError(err)
		return nil, err
	}

	s.afterCommit(ctx, transaction)

	return &BuyResult{
		TransactionID: transaction.TransactionID,
		Ticker:        ticker,
		Quantity:      quantity,
		Price:         price,
		TotalCost:     totalCost,
	}, nil
}

// Sell 以当前市价卖出。行情在进入事务作用域之前解析完毕，
// 锁内绝不等待外部调用。清零的持仓整条删除，部分卖出不改变成本价。
func (s *TradingService) Sell(ctx context.Context, userID, ticker string, quantity decimal.Decimal) (*SellResult, error) {
	ticker, err := s.validate(userID, ticker, quantity)
	if err != nil {
		s.recordFailure("invalid_input")
		return nil, err
	}

	price, err := s.resolvePrice(ctx, ticker)
	if err != nil {
		return nil, err
	}

	totalValue := price.Mul(quantity)
	transaction := s.newTransaction(userID, ticker, domain.SideSell, quantity, price, totalValue)

	var realizedPnL decimal.Decimal
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		position, err := s.positions.Get(ctx, userID, ticker)
		if err != nil {
			return err
		}
		if position == nil {
			return &domain.InsufficientSharesError{Requested: quantity, Owned: decimal.Zero}
		}
		if position.Quantity.LessThan(quantity) {
			return &domain.InsufficientSharesError{Requested: quantity, Owned: position.Quantity}
		}

		// 已实现盈亏按卖出时刻的成本价计算，返回给调用方但不单独落库：
		// 由流水与成本价可随时推导
		realizedPnL = price.Sub(position.AvgBuyPrice).Mul(quantity)

		if closed := position.Reduce(quantity); closed {
			if err := s.positions.Delete(ctx, position); err != nil {
				return err
			}
		} else if err := s.positions.Save(ctx, position); err != nil {
			return err
		}

		if err := s.transactions.Save(ctx, transaction); err != nil {
			return err
		}

		user, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		user.Credit(totalValue)
		return s.users.Save(ctx, user)
	})
	if err != nil {
		s.recordTradeError(err)
		return nil, err
	}

	s.afterCommit(ctx, transaction)

	return &SellResult{
		TransactionID: transaction.TransactionID,
		Ticker:        ticker,
		Quantity:      quantity,
		Price:         price,
		TotalValue:    totalValue,
		RealizedPnL:   realizedPnL,
	}, nil
}

// RecentTrades 按时间倒序返回最近的成交流水
func (s *TradingService) RecentTrades(ctx context.Context, userID string, limit int) ([]*TradeDTO, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}

	transactions, err := s.transactions.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	trades := make([]*TradeDTO, len(transactions))
	for i, txn := range transactions {
		trades[i] = toTradeDTO(txn)
	}
	return trades, nil
}

func (s *TradingService) validate(userID, ticker string, quantity decimal.Decimal) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	normalized := marketdomain.NormalizeSymbol(ticker)
	if normalized == "" {
		return "", fmt.Errorf("%w: ticker is required", domain.ErrInvalidInput)
	}
	if !quantity.IsPositive() {
		return "", fmt.Errorf("%w: quantity must be positive, got %s", domain.ErrInvalidInput, quantity)
	}
	return normalized, nil
}

// resolvePrice 解析当前成交价。未知标的与上游故障是两类不同的错误。
func (s *TradingService) resolvePrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	quote, err := s.prices.GetPrice(ctx, ticker)
	if err != nil {
		s.recordFailure("quote_unavailable")
		return decimal.Zero, fmt.Errorf("%w: %s: %v", domain.ErrQuoteUnavailable, ticker, err)
	}
	if quote == nil || !quote.Price.IsPositive() {
		s.recordFailure("symbol_not_found")
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, ticker)
	}
	return quote.Price, nil
}

func (s *TradingService) newTransaction(userID, ticker string, side domain.Side, quantity, price, total decimal.Decimal) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: uuid.New().String(),
		UserID:        userID,
		Ticker:        ticker,
		Side:          side,
		Quantity:      quantity,
		Price:         price,
		TotalAmount:   total,
	}
}

// afterCommit 提交后的副作用：指标与集成事件，都不影响订单结果
func (s *TradingService) afterCommit(ctx context.Context, txn *domain.Transaction) {
	if s.metrics != nil {
		s.metrics.TradesTotal.WithLabelValues(string(txn.Side)).Inc()
	}
	if s.publisher == nil {
		return
	}

	event := domain.TradeExecutedEvent{
		TransactionID: txn.TransactionID,
		UserID:        txn.UserID,
		Ticker:        txn.Ticker,
		Side:          txn.Side,
		Quantity:      txn.Quantity,
		Price:         txn.Price,
		TotalAmount:   txn.TotalAmount,
		ExecutedAt:    txn.CreatedAt,
	}
	if err := s.publisher.PublishTradeExecuted(ctx, event); err != nil {
		logger.Warn(ctx, "failed to publish trade event", "transaction_id", txn.TransactionID, "error", err)
	}
}

func (s *TradingService) recordTradeError(err error) {
	switch {
	case isInsufficientFunds(err):
		s.recordFailure("insufficient_funds")
	case isInsufficientShares(err):
		s.recordFailure("insufficient_shares")
	default:
		s.recordFailure("internal")
	}
}

func (s *TradingService) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.TradeFailuresTotal.WithLabelValues(reason).Inc()
	}
}

package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Side 买卖方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Transaction 成交流水。只追加，绝不更新或删除：
// 完整的流水按序回放即可从空账户重建余额与持仓。
type Transaction struct {
	gorm.Model
	// 流水 ID（业务主键）
	TransactionID string `gorm:"column:transaction_id;type:varchar(36);uniqueIndex;not null" json:"transaction_id"`
	UserID        string `gorm:"column:user_id;type:varchar(32);index;not null" json:"user_id"`
	Ticker        string `gorm:"column:ticker;type:varchar(20);index;not null" json:"ticker"`
	Side          Side   `gorm:"column:side;type:varchar(4);not null" json:"type"`
	// 成交数量
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	// 成交价
	Price decimal.Decimal `gorm:"column:price;type:decimal(32,18);not null" json:"price"`
	// 成交总额 = 成交价 × 数量
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(32,18);not null" json:"total_amount"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Replay 从空仓开始按序回放流水，重建现金变动与持仓。
// 用于对账：回放结果必须与当前的 users/positions 表一致。
func Replay(transactions []*Transaction) (cashDelta decimal.Decimal, positions map[string]*Position) {
	cashDelta = decimal.Zero
	positions = make(map[string]*Position)

	for _, txn := range transactions {
		switch txn.Side {
		case SideBuy:
			cashDelta = cashDelta.Sub(txn.TotalAmount)
			pos, ok := positions[txn.Ticker]
			if !ok {
				positions[txn.Ticker] = NewPosition(txn.UserID, txn.Ticker, txn.Quantity, txn.Price)
				continue
			}
			pos.ApplyBuy(txn.Quantity, txn.Price)
		case SideSell:
			cashDelta = cashDelta.Add(txn.TotalAmount)
			if pos, ok := positions[txn.Ticker]; ok {
				if closed := pos.Reduce(txn.Quantity); closed {
					delete(positions, txn.Ticker)
				}
			}
		}
	}
	return cashDelta, positions
}

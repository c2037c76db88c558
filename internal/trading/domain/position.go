package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position 用户在单一标的上的持仓。记录存在则数量必为正：
// 数量减到零的持仓整条删除，不留零值行。
type Position struct {
	gorm.Model
	UserID string `gorm:"column:user_id;type:varchar(32);index;uniqueIndex:idx_user_ticker;not null" json:"user_id"`
	Ticker string `gorm:"column:ticker;type:varchar(20);index;uniqueIndex:idx_user_ticker;not null" json:"ticker"`
	// 持仓数量
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	// 加权平均成本价。只有买入会改变它，部分卖出保持不变。
	AvgBuyPrice decimal.Decimal `gorm:"column:avg_buy_price;type:decimal(32,18);not null" json:"avg_buy_price"`
	// 乐观锁版本号
	Version int64 `gorm:"column:version;default:0;not null" json:"-"`
}

func (Position) TableName() string {
	return "positions"
}

// NewPosition 首次买入时开仓
func NewPosition(userID, ticker string, quantity, price decimal.Decimal) *Position {
	return &Position{
		UserID:      userID,
		Ticker:      ticker,
		Quantity:    quantity,
		AvgBuyPrice: price,
	}
}

// ApplyBuy 按成交价加仓并重算加权平均成本：
// newAvg = (oldAvg*oldQty + price*qty) / (oldQty+qty)
func (p *Position) ApplyBuy(quantity, price decimal.Decimal) {
	newQuantity := p.Quantity.Add(quantity)
	totalCost := p.AvgBuyPrice.Mul(p.Quantity).Add(price.Mul(quantity))
	p.AvgBuyPrice = totalCost.Div(newQuantity)
	p.Quantity = newQuantity
}

// Reduce 减仓。返回 true 表示持仓已清零，调用方应删除记录。
// 卖出不改变剩余持仓的平均成本。
func (p *Position) Reduce(quantity decimal.Decimal) (closed bool) {
	p.Quantity = p.Quantity.Sub(quantity)
	return p.Quantity.IsZero()
}

// UnrealizedPnL 按当前价计算浮动盈亏
func (p *Position) UnrealizedPnL(currentPrice decimal.Decimal) decimal.Decimal {
	return currentPrice.Sub(p.AvgBuyPrice).Mul(p.Quantity)
}

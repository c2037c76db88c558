// Package domain 交易引擎的领域模型：用户资金、持仓、成交流水与仓储接口
package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User 用户资金账户。余额只由交易引擎在买卖结算中变动，开户在上游完成。
type User struct {
	gorm.Model
	// 用户 ID（业务主键），由身份系统分配
	UserID string `gorm:"column:user_id;type:varchar(32);uniqueIndex;not null" json:"user_id"`
	// 现金余额，任何已提交状态下都不为负
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(32,18);default:0;not null" json:"balance"`
	// 乐观锁版本号
	Version int64 `gorm:"column:version;default:0;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CanAfford 判断余额是否足以支付 amount
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Debit 扣减余额。余额不足时不做任何变更并返回 false。
func (u *User) Debit(amount decimal.Decimal) bool {
	if !u.CanAfford(amount) {
		return false
	}
	u.Balance = u.Balance.Sub(amount)
	return true
}

// Credit 增加余额
func (u *User) Credit(amount decimal.Decimal) {
	u.Balance = u.Balance.Add(amount)
}

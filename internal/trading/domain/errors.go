package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// 交易引擎的错误分类。所有引擎错误都是类型化结果，调用方据此决定
// 是否可安全重试（ErrConcurrencyConflict 重试安全：失败的作用域不留任何痕迹）。
var (
	// ErrInvalidInput 非法入参：数量非正、标的为空等，在任何查询或事务之前拒绝
	ErrInvalidInput = errors.New("invalid input")
	// ErrSymbolNotFound 上游无法识别该标的
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrQuoteUnavailable 上游行情故障或超时，订单中止且无任何状态变更
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrUserNotFound 用户账户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrConcurrencyConflict 乐观锁冲突，整个作用域已回滚
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
)

// InsufficientFundsError 买入金额超过可用余额
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s", e.Required, e.Available)
}

// InsufficientSharesError 卖出数量超过持有数量（含零持仓）
type InsufficientSharesError struct {
	Requested decimal.Decimal
	Owned     decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares: requested %s, owned %s", e.Requested, e.Owned)
}

package domain

import "context"

// UserRepository 用户资金仓储。实现需用版本号做乐观并发控制：
// Save 检测到并发修改时返回 ErrConcurrencyConflict。
type UserRepository interface {
	// Get 按用户 ID 读取账户，不存在时返回 (nil, nil)
	Get(ctx context.Context, userID string) (*User, error)
	// Save 保存账户（新建或版本检查更新）
	Save(ctx context.Context, user *User) error
}

// PositionRepository 持仓仓储，(userID, ticker) 唯一
type PositionRepository interface {
	// Get 读取单个持仓，不存在时返回 (nil, nil)
	Get(ctx context.Context, userID, ticker string) (*Position, error)
	// ListByUser 列出用户全部持仓
	ListByUser(ctx context.Context, userID string) ([]*Position, error)
	// Save 保存持仓（新建或版本检查更新）
	Save(ctx context.Context, position *Position) error
	// Delete 删除已清零的持仓
	Delete(ctx context.Context, position *Position) error
}

// TransactionRepository 成交流水仓储，只追加
type TransactionRepository interface {
	// Save 追加一条流水
	Save(ctx context.Context, transaction *Transaction) error
	// ListRecent 按时间倒序返回最近的流水
	ListRecent(ctx context.Context, userID string, limit int) ([]*Transaction, error)
}

// TxManager 有界事务作用域：fn 内的所有仓储写入要么全部提交，要么全部回滚。
// 事务句柄通过 context 传递，作用域内的仓储调用自动复用同一事务。
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

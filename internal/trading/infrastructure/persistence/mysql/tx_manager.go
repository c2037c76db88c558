package mysql

import (
	"context"

	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/db"
)

type txManager struct {
	db *db.DB
}

// NewTxManager 创建基于数据库事务的事务管理器
func NewTxManager(database *db.DB) domain.TxManager {
	return &txManager{db: database}
}

func (m *txManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithTx(ctx, fn)
}

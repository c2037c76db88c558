package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/db"
)

type transactionRepository struct {
	db *db.DB
}

// NewTransactionRepository 创建成交流水仓储
func NewTransactionRepository(database *db.DB) domain.TransactionRepository {
	return &transactionRepository{db: database}
}

// Save 追加一条流水。流水表只插入，业务上绝不更新或删除。
func (r *transactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	if err := db.Session(ctx, r.db.DB).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", transaction.TransactionID, err)
	}
	return nil
}

func (r *transactionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	err := db.Session(ctx, r.db.DB).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	return transactions, nil
}

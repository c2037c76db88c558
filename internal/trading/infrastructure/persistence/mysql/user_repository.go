// Package mysql 交易引擎的 MySQL 仓储实现。
// 所有写操作在 context 携带事务时自动加入该事务。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/db"
)

type userRepository struct {
	db *db.DB
}

// NewUserRepository 创建用户资金仓储
func NewUserRepository(database *db.DB) domain.UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := db.Session(ctx, r.db.DB).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}

// Save 带版本检查写回。并发事务先提交者赢，后写者拿到 ErrConcurrencyConflict。
func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	session := db.Session(ctx, r.db.DB)

	if user.ID == 0 {
		if err := session.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.UserID, err)
		}
		return nil
	}

	currentVersion := user.Version
	user.Version++
	result := session.Model(&domain.User{}).
		Where("id = ? AND version = ?", user.ID, currentVersion).
		Updates(map[string]interface{}{
			"balance": user.Balance,
			"version": user.Version,
		})
	if result.Error != nil {
		user.Version = currentVersion
		return fmt.Errorf("failed to save user %s: %w", user.UserID, result.Error)
	}
	if result.RowsAffected == 0 {
		user.Version = currentVersion
		return fmt.Errorf("user %s: %w", user.UserID, domain.ErrConcurrencyConflict)
	}
	return nil
}

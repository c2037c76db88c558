package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/db"
)

type positionRepository struct {
	db *db.DB
}

// NewPositionRepository 创建持仓仓储
func NewPositionRepository(database *db.DB) domain.PositionRepository {
	return &positionRepository{db: database}
}

func (r *positionRepository) Get(ctx context.Context, userID, ticker string) (*domain.Position, error) {
	var position domain.Position
	err := db.Session(ctx, r.db.DB).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position %s/%s: %w", userID, ticker, err)
	}
	return &position, nil
}

func (r *positionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Position, error) {
	var positions []*domain.Position
	err := db.Session(ctx, r.db.DB).
		Where("user_id = ?", userID).
		Order("ticker ASC").
		Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list positions for user %s: %w", userID, err)
	}
	return positions, nil
}

// Save 带版本检查写回，同 userRepository.Save 的并发语义
func (r *positionRepository) Save(ctx context.Context, position *domain.Position) error {
	session := db.Session(ctx, r.db.DB)

	if position.ID == 0 {
		if err := session.Create(position).Error; err != nil {
			return fmt.Errorf("failed to create position %s/%s: %w", position.UserID, position.Ticker, err)
		}
		return nil
	}

	currentVersion := position.Version
	position.Version++
	result := session.Model(&domain.Position{}).
		Where("id = ? AND version = ?", position.ID, currentVersion).
		Updates(map[string]interface{}{
			"quantity":      position.Quantity,
			"avg_buy_price": position.AvgBuyPrice,
			"version":       position.Version,
		})
	if result.Error != nil {
		position.Version = currentVersion
		return fmt.Errorf("failed to save position %s/%s: %w", position.UserID, position.Ticker, result.Error)
	}
	if result.RowsAffected == 0 {
		position.Version = currentVersion
		return fmt.Errorf("position %s/%s: %w", position.UserID, position.Ticker, domain.ErrConcurrencyConflict)
	}
	return nil
}

// Delete 删除已清零的持仓，同样带版本检查防止删掉并发加仓后的记录
func (r *positionRepository) Delete(ctx context.Context, position *domain.Position) error {
	result := db.Session(ctx, r.db.DB).
		Where("id = ? AND version = ?", position.ID, position.Version).
		Delete(&domain.Position{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete position %s/%s: %w", position.UserID, position.Ticker, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("position %s/%s: %w", position.UserID, position.Ticker, domain.ErrConcurrencyConflict)
	}
	return nil
}

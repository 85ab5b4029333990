package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// ActivityRepository records and lists the audit trail of a board.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListByCard(ctx context.Context, cardID uint) ([]domain.Activity, error)
	// ListByBoard returns the newest entries first; limit <= 0 means all.
	ListByBoard(ctx context.Context, boardID uint, limit int) ([]domain.Activity, error)
}

type gormActivityRepository struct {
	db *gorm.DB
}

func NewGormActivityRepository(db *gorm.DB) ActivityRepository {
	return &gormActivityRepository{db: db}
}

func (r *gormActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return translate(r.db.WithContext(ctx).Omit("Board").Create(activity).Error)
}

func (r *gormActivityRepository) ListByCard(ctx context.Context, cardID uint) ([]domain.Activity, error) {
	var activities []domain.Activity
	if err := r.db.WithContext(ctx).Scopes(newestFirst).Where("card_id = ?", cardID).Find(&activities).Error; err != nil {
		return nil, translate(err)
	}
	return activities, nil
}

func (r *gormActivityRepository) ListByBoard(ctx context.Context, boardID uint, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	q := r.db.WithContext(ctx).Scopes(newestFirst).Where("board_id = ?", boardID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&activities).Error; err != nil {
		return nil, translate(err)
	}
	return activities, nil
}

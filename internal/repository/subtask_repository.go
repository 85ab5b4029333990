package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// SubtaskRepository defines the data operations for card checklists.
type SubtaskRepository interface {
	Create(ctx context.Context, subtask *domain.Subtask) error
	FindByID(ctx context.Context, id uint) (*domain.Subtask, error)
	ListByCard(ctx context.Context, cardID uint) ([]domain.Subtask, error)
	Update(ctx context.Context, subtask *domain.Subtask) error
	Delete(ctx context.Context, subtask *domain.Subtask) error
}

type gormSubtaskRepository struct {
	db *gorm.DB
}

func NewGormSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &gormSubtaskRepository{db: db}
}

func (r *gormSubtaskRepository) Create(ctx context.Context, subtask *domain.Subtask) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &domain.Subtask{}, "card_id", subtask.CardID)
		if err != nil {
			return err
		}
		subtask.Position = pos
		return tx.Create(subtask).Error
	}))
}

func (r *gormSubtaskRepository) FindByID(ctx context.Context, id uint) (*domain.Subtask, error) {
	var subtask domain.Subtask
	if err := r.db.WithContext(ctx).First(&subtask, id).Error; err != nil {
		return nil, translate(err)
	}
	return &subtask, nil
}

func (r *gormSubtaskRepository) ListByCard(ctx context.Context, cardID uint) ([]domain.Subtask, error) {
	var subtasks []domain.Subtask
	if err := r.db.WithContext(ctx).Scopes(byPosition).Where("card_id = ?", cardID).Find(&subtasks).Error; err != nil {
		return nil, translate(err)
	}
	return subtasks, nil
}

func (r *gormSubtaskRepository) Update(ctx context.Context, subtask *domain.Subtask) error {
	return translate(r.db.WithContext(ctx).Save(subtask).Error)
}

func (r *gormSubtaskRepository) Delete(ctx context.Context, subtask *domain.Subtask) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Subtask{}, subtask.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		ids, err := siblingIDs(tx, &domain.Subtask{}, "card_id", subtask.CardID, subtask.ID)
		if err != nil {
			return err
		}
		return renumber(tx, &domain.Subtask{}, ids)
	}))
}

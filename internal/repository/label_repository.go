package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// LabelRepository defines the data operations for board labels.
type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	FindByID(ctx context.Context, id uint) (*domain.Label, error)
	ListByBoard(ctx context.Context, boardID uint) ([]domain.Label, error)
	Update(ctx context.Context, label *domain.Label) error
	Delete(ctx context.Context, id uint) error
}

type gormLabelRepository struct {
	db *gorm.DB
}

func NewGormLabelRepository(db *gorm.DB) LabelRepository {
	return &gormLabelRepository{db: db}
}

func (r *gormLabelRepository) Create(ctx context.Context, label *domain.Label) error {
	return translate(r.db.WithContext(ctx).Create(label).Error)
}

func (r *gormLabelRepository) FindByID(ctx context.Context, id uint) (*domain.Label, error) {
	var label domain.Label
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		return nil, translate(err)
	}
	return &label, nil
}

func (r *gormLabelRepository) ListByBoard(ctx context.Context, boardID uint) ([]domain.Label, error) {
	var labels []domain.Label
	if err := r.db.WithContext(ctx).Scopes(byID).Where("board_id = ?", boardID).Find(&labels).Error; err != nil {
		return nil, translate(err)
	}
	return labels, nil
}

func (r *gormLabelRepository) Update(ctx context.Context, label *domain.Label) error {
	return translate(r.db.WithContext(ctx).Save(label).Error)
}

func (r *gormLabelRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Label{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

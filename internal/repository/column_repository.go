package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// ColumnRepository defines the data operations for board columns.
type ColumnRepository interface {
	// Create appends the column after the board's existing columns.
	Create(ctx context.Context, column *domain.Column) error
	FindByID(ctx context.Context, id uint) (*domain.Column, error)
	ListByBoard(ctx context.Context, boardID uint) ([]domain.Column, error)
	Update(ctx context.Context, column *domain.Column) error
	// Move places the column at position and renumbers its siblings.
	Move(ctx context.Context, column *domain.Column, position int) error
	// Delete removes the column with its cards and closes the position gap.
	Delete(ctx context.Context, column *domain.Column) error
}

type gormColumnRepository struct {
	db *gorm.DB
}

func NewGormColumnRepository(db *gorm.DB) ColumnRepository {
	return &gormColumnRepository{db: db}
}

func (r *gormColumnRepository) Create(ctx context.Context, column *domain.Column) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &domain.Column{}, "board_id", column.BoardID)
		if err != nil {
			return err
		}
		column.Position = pos
		return tx.Omit(clause.Associations).Create(column).Error
	}))
}

func (r *gormColumnRepository) FindByID(ctx context.Context, id uint) (*domain.Column, error) {
	var column domain.Column
	if err := r.db.WithContext(ctx).First(&column, id).Error; err != nil {
		return nil, translate(err)
	}
	return &column, nil
}

func (r *gormColumnRepository) ListByBoard(ctx context.Context, boardID uint) ([]domain.Column, error) {
	var columns []domain.Column
	err := r.db.WithContext(ctx).Scopes(byPosition).Where("board_id = ?", boardID).Find(&columns).Error
	if err != nil {
		return nil, translate(err)
	}
	return columns, nil
}

func (r *gormColumnRepository) Update(ctx context.Context, column *domain.Column) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(column).Error)
}

func (r *gormColumnRepository) Move(ctx context.Context, column *domain.Column, position int) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := siblingIDs(tx, &domain.Column{}, "board_id", column.BoardID, column.ID)
		if err != nil {
			return err
		}
		ids = insertAt(ids, column.ID, position)
		if err := renumber(tx, &domain.Column{}, ids); err != nil {
			return err
		}
		column.Position = indexOf(ids, column.ID)
		return nil
	}))
}

func (r *gormColumnRepository) Delete(ctx context.Context, column *domain.Column) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Column{}, column.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		ids, err := siblingIDs(tx, &domain.Column{}, "board_id", column.BoardID, column.ID)
		if err != nil {
			return err
		}
		return renumber(tx, &domain.Column{}, ids)
	}))
}

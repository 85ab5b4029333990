package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uint) (*domain.Comment, error)
	ListByCard(ctx context.Context, cardID uint) ([]domain.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type gormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

// Create inserts the comment and loads its author for the response.
func (r *gormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("User").Create(comment).Error; err != nil {
		return translate(err)
	}
	return translate(db.First(&comment.User, comment.UserID).Error)
}

func (r *gormCommentRepository) FindByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *gormCommentRepository) ListByCard(ctx context.Context, cardID uint) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(oldestFirst).
		Where("card_id = ?", cardID).
		Find(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

func (r *gormCommentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

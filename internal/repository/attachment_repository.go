package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	FindByID(ctx context.Context, id uint) (*domain.Attachment, error)
	FindByPath(ctx context.Context, path string) (*domain.Attachment, error)
	ListByCard(ctx context.Context, cardID uint) ([]domain.Attachment, error)
	Delete(ctx context.Context, id uint) error
	// PathsByCard, PathsByColumn and PathsByBoard return the storage keys
	// that a cascading delete of that row would orphan.
	PathsByCard(ctx context.Context, cardID uint) ([]string, error)
	PathsByColumn(ctx context.Context, columnID uint) ([]string, error)
	PathsByBoard(ctx context.Context, boardID uint) ([]string, error)
}

type gormAttachmentRepository struct {
	db *gorm.DB
}

func NewGormAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &gormAttachmentRepository{db: db}
}

func (r *gormAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	return translate(r.db.WithContext(ctx).Create(attachment).Error)
}

func (r *gormAttachmentRepository) FindByID(ctx context.Context, id uint) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &attachment, nil
}

func (r *gormAttachmentRepository) FindByPath(ctx context.Context, path string) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).Where("file_path = ?", path).First(&attachment).Error; err != nil {
		return nil, translate(err)
	}
	return &attachment, nil
}

func (r *gormAttachmentRepository) ListByCard(ctx context.Context, cardID uint) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	if err := r.db.WithContext(ctx).Scopes(oldestFirst).Where("card_id = ?", cardID).Find(&attachments).Error; err != nil {
		return nil, translate(err)
	}
	return attachments, nil
}

func (r *gormAttachmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Attachment{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormAttachmentRepository) PathsByCard(ctx context.Context, cardID uint) ([]string, error) {
	return r.paths(r.db.WithContext(ctx).Where("attachments.card_id = ?", cardID))
}

func (r *gormAttachmentRepository) PathsByColumn(ctx context.Context, columnID uint) ([]string, error) {
	return r.paths(r.db.WithContext(ctx).
		Joins("JOIN cards ON cards.id = attachments.card_id").
		Where("cards.column_id = ?", columnID))
}

func (r *gormAttachmentRepository) PathsByBoard(ctx context.Context, boardID uint) ([]string, error) {
	return r.paths(r.db.WithContext(ctx).
		Joins("JOIN cards ON cards.id = attachments.card_id").
		Joins("JOIN columns ON columns.id = cards.column_id").
		Where("columns.board_id = ?", boardID))
}

func (r *gormAttachmentRepository) paths(q *gorm.DB) ([]string, error) {
	var paths []string
	if err := q.Model(&domain.Attachment{}).Pluck("attachments.file_path", &paths).Error; err != nil {
		return nil, translate(err)
	}
	return paths, nil
}

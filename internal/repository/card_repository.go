package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// CardRepository defines the data operations for cards and their labels.
type CardRepository interface {
	// Create appends the card to the end of its column.
	Create(ctx context.Context, card *domain.Card) error
	// FindByID loads the card with its column, which carries the board ID.
	FindByID(ctx context.Context, id uint) (*domain.Card, error)
	// FindDetail loads the card with every child collection.
	FindDetail(ctx context.Context, id uint) (*domain.Card, error)
	CountInColumn(ctx context.Context, columnID uint) (int64, error)
	Update(ctx context.Context, card *domain.Card) error
	// Move places the card at position inside toColumnID, renumbering both
	// the source and the target column in one transaction.
	Move(ctx context.Context, card *domain.Card, toColumnID uint, position int) error
	Delete(ctx context.Context, card *domain.Card) error

	AddLabel(ctx context.Context, cardID, labelID uint) error
	RemoveLabel(ctx context.Context, cardID, labelID uint) error
}

type gormCardRepository struct {
	db *gorm.DB
}

func NewGormCardRepository(db *gorm.DB) CardRepository {
	return &gormCardRepository{db: db}
}

func (r *gormCardRepository) Create(ctx context.Context, card *domain.Card) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &domain.Card{}, "column_id", card.ColumnID)
		if err != nil {
			return err
		}
		card.Position = pos
		return tx.Omit(clause.Associations).Create(card).Error
	}))
}

func (r *gormCardRepository) FindByID(ctx context.Context, id uint) (*domain.Card, error) {
	var card domain.Card
	if err := r.db.WithContext(ctx).Preload("Column").First(&card, id).Error; err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *gormCardRepository) FindDetail(ctx context.Context, id uint) (*domain.Card, error) {
	var card domain.Card
	err := r.db.WithContext(ctx).
		Preload("Column").
		Preload("Assignee").
		Preload("Labels", byID).
		Preload("Subtasks", byPosition).
		Preload("Attachments", oldestFirst).
		Preload("Comments", oldestFirst).
		Preload("Comments.User").
		Preload("Activities", newestFirst).
		First(&card, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *gormCardRepository) CountInColumn(ctx context.Context, columnID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Card{}).Where("column_id = ?", columnID).Count(&count).Error
	return count, translate(err)
}

// Update saves the card's own columns. Position and column changes go
// through Move so sibling ordering stays consistent.
func (r *gormCardRepository) Update(ctx context.Context, card *domain.Card) error {
	err := r.db.WithContext(ctx).
		Model(card).
		Select("title", "description", "due_date", "priority", "assignee_id").
		Updates(card).Error
	return translate(err)
}

func (r *gormCardRepository) Move(ctx context.Context, card *domain.Card, toColumnID uint, position int) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fromColumnID := card.ColumnID

		target, err := siblingIDs(tx, &domain.Card{}, "column_id", toColumnID, card.ID)
		if err != nil {
			return err
		}
		target = insertAt(target, card.ID, position)

		if err := tx.Model(&domain.Card{}).Where("id = ?", card.ID).Update("column_id", toColumnID).Error; err != nil {
			return err
		}
		if err := renumber(tx, &domain.Card{}, target); err != nil {
			return err
		}

		if fromColumnID != toColumnID {
			source, err := siblingIDs(tx, &domain.Card{}, "column_id", fromColumnID, card.ID)
			if err != nil {
				return err
			}
			if err := renumber(tx, &domain.Card{}, source); err != nil {
				return err
			}
		}

		card.ColumnID = toColumnID
		card.Position = indexOf(target, card.ID)
		return nil
	}))
}

func (r *gormCardRepository) Delete(ctx context.Context, card *domain.Card) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Card{}, card.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		ids, err := siblingIDs(tx, &domain.Card{}, "column_id", card.ColumnID, card.ID)
		if err != nil {
			return err
		}
		return renumber(tx, &domain.Card{}, ids)
	}))
}

// AddLabel is idempotent: attaching a label twice leaves one join row.
func (r *gormCardRepository) AddLabel(ctx context.Context, cardID, labelID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.CardLabel{CardID: cardID, LabelID: labelID}).Error
	return translate(err)
}

func (r *gormCardRepository) RemoveLabel(ctx context.Context, cardID, labelID uint) error {
	err := r.db.WithContext(ctx).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Delete(&domain.CardLabel{}).Error
	return translate(err)
}

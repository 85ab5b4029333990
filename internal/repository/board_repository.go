package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// BoardRepository defines the data operations for boards.
type BoardRepository interface {
	// Create inserts the board and one column per title, in order.
	Create(ctx context.Context, board *domain.Board, columnTitles []string) error
	FindByID(ctx context.Context, id uint) (*domain.Board, error)
	// ListForUser returns every board owned by userID and the boards of the
	// given organizations, newest first.
	ListForUser(ctx context.Context, userID uint, orgIDs []uint) ([]domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error
	Delete(ctx context.Context, id uint) error
	// LoadTree fetches the board with every nested child the board view needs.
	LoadTree(ctx context.Context, id uint) (*domain.Board, error)
}

type gormBoardRepository struct {
	db *gorm.DB
}

func NewGormBoardRepository(db *gorm.DB) BoardRepository {
	return &gormBoardRepository{db: db}
}

func (r *gormBoardRepository) Create(ctx context.Context, board *domain.Board, columnTitles []string) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(board).Error; err != nil {
			return err
		}
		if len(columnTitles) == 0 {
			return nil
		}
		columns := make([]domain.Column, 0, len(columnTitles))
		for i, title := range columnTitles {
			columns = append(columns, domain.Column{BoardID: board.ID, Title: title, Position: i})
		}
		if err := tx.Omit(clause.Associations).Create(&columns).Error; err != nil {
			return err
		}
		board.Columns = columns
		return nil
	}))
}

func (r *gormBoardRepository) FindByID(ctx context.Context, id uint) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

func (r *gormBoardRepository) ListForUser(ctx context.Context, userID uint, orgIDs []uint) ([]domain.Board, error) {
	var boards []domain.Board
	q := r.db.WithContext(ctx).Preload("Organization")
	// Owners keep their team boards even after leaving the organization.
	if len(orgIDs) > 0 {
		q = q.Where("owner_id = ? OR organization_id IN ?", userID, orgIDs)
	} else {
		q = q.Where("owner_id = ?", userID)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&boards).Error; err != nil {
		return nil, translate(err)
	}
	return boards, nil
}

func (r *gormBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(board).Error)
}

// Delete removes the board; columns, cards and their children go with it
// through ON DELETE CASCADE.
func (r *gormBoardRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Board{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormBoardRepository) LoadTree(ctx context.Context, id uint) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Organization").
		Preload("Labels", byID).
		Preload("Columns", byPosition).
		Preload("Columns.Cards", byPosition).
		Preload("Columns.Cards.Assignee").
		Preload("Columns.Cards.Labels", byID).
		Preload("Columns.Cards.Subtasks", byPosition).
		Preload("Columns.Cards.Attachments", oldestFirst).
		Preload("Columns.Cards.Comments", oldestFirst).
		Preload("Columns.Cards.Comments.User").
		Preload("Columns.Cards.Activities", newestFirst).
		First(&board, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

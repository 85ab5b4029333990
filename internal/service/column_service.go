package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

// ColumnService manages the columns of a board.
type ColumnService interface {
	CreateColumn(ctx context.Context, userID, boardID uint, req CreateColumnRequest) (*ColumnResponse, error)
	UpdateColumn(ctx context.Context, userID, columnID uint, req UpdateColumnRequest) (*ColumnResponse, error)
	MoveColumn(ctx context.Context, userID, columnID uint, req MoveColumnRequest) (*ColumnResponse, error)
	DeleteColumn(ctx context.Context, userID, columnID uint) error
}

type columnService struct {
	base
}

func NewColumnService(repos *repository.Repositories, store storage.ObjectStore, notifier Notifier, log *zap.Logger) ColumnService {
	svc := &columnService{base: newBase(repos, notifier, log.Named("columns"))}
	svc.store = store
	return svc
}

func validateWIPLimit(limit *int) (*int, error) {
	if limit == nil {
		return nil, nil
	}
	if *limit < 0 {
		return nil, fmt.Errorf("%w: wip_limit cannot be negative", ErrInvalidInput)
	}
	if *limit == 0 {
		return nil, nil
	}
	v := *limit
	return &v, nil
}

func (s *columnService) CreateColumn(ctx context.Context, userID, boardID uint, req CreateColumnRequest) (*ColumnResponse, error) {
	if _, err := s.accessBoard(ctx, userID, boardID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: column title cannot be empty", ErrInvalidInput)
	}
	limit, err := validateWIPLimit(req.WIPLimit)
	if err != nil {
		return nil, err
	}

	column := &domain.Column{BoardID: boardID, Title: title, WIPLimit: limit}
	if err := s.repos.Columns.Create(ctx, column); err != nil {
		return nil, s.internal(err, "create column", zap.Uint("board_id", boardID))
	}
	s.record(ctx, boardID, nil, userID, domain.ActionColumnCreated, column.Title)
	s.publish("columns", realtime.EventInsert, boardID, column.ID, userID)

	resp := toColumnResponse(*column)
	return &resp, nil
}

func (s *columnService) UpdateColumn(ctx context.Context, userID, columnID uint, req UpdateColumnRequest) (*ColumnResponse, error) {
	column, _, err := s.accessColumn(ctx, userID, columnID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: column title cannot be empty", ErrInvalidInput)
		}
		column.Title = title
	}
	switch {
	case req.ClearWIPLimit:
		column.WIPLimit = nil
	case req.WIPLimit != nil:
		limit, err := validateWIPLimit(req.WIPLimit)
		if err != nil {
			return nil, err
		}
		column.WIPLimit = limit
	}

	if err := s.repos.Columns.Update(ctx, column); err != nil {
		return nil, s.internal(err, "update column", zap.Uint("column_id", columnID))
	}
	s.publish("columns", realtime.EventUpdate, column.BoardID, column.ID, userID)

	resp := toColumnResponse(*column)
	return &resp, nil
}

func (s *columnService) MoveColumn(ctx context.Context, userID, columnID uint, req MoveColumnRequest) (*ColumnResponse, error) {
	column, _, err := s.accessColumn(ctx, userID, columnID)
	if err != nil {
		return nil, err
	}
	position := req.Position
	if position < 0 {
		position = 0
	}
	if err := s.repos.Columns.Move(ctx, column, position); err != nil {
		return nil, s.internal(err, "move column", zap.Uint("column_id", columnID))
	}
	s.publish("columns", realtime.EventUpdate, column.BoardID, column.ID, userID)

	resp := toColumnResponse(*column)
	return &resp, nil
}

func (s *columnService) DeleteColumn(ctx context.Context, userID, columnID uint) error {
	column, _, err := s.accessColumn(ctx, userID, columnID)
	if err != nil {
		return err
	}
	keys := s.attachmentKeys(func() ([]string, error) { return s.repos.Attachments.PathsByColumn(ctx, column.ID) })
	if err := s.repos.Columns.Delete(ctx, column); err != nil {
		return s.lookup(err, "column", columnID)
	}
	s.removeObjects(keys...)
	s.record(ctx, column.BoardID, nil, userID, domain.ActionColumnDeleted, column.Title)
	s.publish("columns", realtime.EventDelete, column.BoardID, column.ID, userID)
	return nil
}

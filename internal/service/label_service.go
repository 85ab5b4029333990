package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// LabelService manages the label palette of a board.
type LabelService interface {
	CreateLabel(ctx context.Context, userID, boardID uint, req CreateLabelRequest) (*LabelResponse, error)
	UpdateLabel(ctx context.Context, userID, labelID uint, req UpdateLabelRequest) (*LabelResponse, error)
	DeleteLabel(ctx context.Context, userID, labelID uint) error
}

type labelService struct {
	base
}

func NewLabelService(repos *repository.Repositories, notifier Notifier, log *zap.Logger) LabelService {
	return &labelService{base: newBase(repos, notifier, log.Named("labels"))}
}

func validateLabel(text, color string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", fmt.Errorf("%w: label text cannot be empty", ErrInvalidInput)
	}
	color = strings.ToLower(strings.TrimSpace(color))
	if !colorPattern.MatchString(color) {
		return "", "", fmt.Errorf("%w: color must look like #rgb or #rrggbb", ErrInvalidInput)
	}
	return text, color, nil
}

func (s *labelService) CreateLabel(ctx context.Context, userID, boardID uint, req CreateLabelRequest) (*LabelResponse, error) {
	if _, err := s.accessBoard(ctx, userID, boardID); err != nil {
		return nil, err
	}
	text, color, err := validateLabel(req.Text, req.Color)
	if err != nil {
		return nil, err
	}

	label := &domain.Label{BoardID: boardID, Text: text, Color: color}
	if err := s.repos.Labels.Create(ctx, label); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: label %q already exists on this board", ErrConflict, text)
		}
		return nil, s.internal(err, "create label", zap.Uint("board_id", boardID))
	}
	s.publish("labels", realtime.EventInsert, boardID, label.ID, userID)

	resp := toLabelResponse(*label)
	return &resp, nil
}

func (s *labelService) UpdateLabel(ctx context.Context, userID, labelID uint, req UpdateLabelRequest) (*LabelResponse, error) {
	label, err := s.repos.Labels.FindByID(ctx, labelID)
	if err != nil {
		return nil, s.lookup(err, "label", labelID)
	}
	if _, err := s.accessBoard(ctx, userID, label.BoardID); err != nil {
		return nil, err
	}

	text, color := label.Text, label.Color
	if req.Text != nil {
		text = *req.Text
	}
	if req.Color != nil {
		color = *req.Color
	}
	if label.Text, label.Color, err = validateLabel(text, color); err != nil {
		return nil, err
	}

	if err := s.repos.Labels.Update(ctx, label); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: label %q already exists on this board", ErrConflict, label.Text)
		}
		return nil, s.internal(err, "update label", zap.Uint("label_id", labelID))
	}
	s.publish("labels", realtime.EventUpdate, label.BoardID, label.ID, userID)

	resp := toLabelResponse(*label)
	return &resp, nil
}

func (s *labelService) DeleteLabel(ctx context.Context, userID, labelID uint) error {
	label, err := s.repos.Labels.FindByID(ctx, labelID)
	if err != nil {
		return s.lookup(err, "label", labelID)
	}
	if _, err := s.accessBoard(ctx, userID, label.BoardID); err != nil {
		return err
	}
	if err := s.repos.Labels.Delete(ctx, labelID); err != nil {
		return s.lookup(err, "label", labelID)
	}
	s.publish("labels", realtime.EventDelete, label.BoardID, label.ID, userID)
	return nil
}

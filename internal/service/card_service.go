package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

// CardService manages cards, their position and their labels.
type CardService interface {
	CreateCard(ctx context.Context, userID, columnID uint, req CreateCardRequest) (*CardResponse, error)
	GetCard(ctx context.Context, userID, cardID uint) (*CardResponse, error)
	UpdateCard(ctx context.Context, userID, cardID uint, req UpdateCardRequest) (*CardResponse, error)
	MoveCard(ctx context.Context, userID, cardID uint, req MoveCardRequest) (*CardResponse, error)
	DeleteCard(ctx context.Context, userID, cardID uint) error
	AddLabel(ctx context.Context, userID, cardID, labelID uint) error
	RemoveLabel(ctx context.Context, userID, cardID, labelID uint) error
	ListCardActivities(ctx context.Context, userID, cardID uint) ([]ActivityResponse, error)
}

type cardService struct {
	base
}

func NewCardService(repos *repository.Repositories, store storage.ObjectStore, notifier Notifier, log *zap.Logger) CardService {
	svc := &cardService{base: newBase(repos, notifier, log.Named("cards"))}
	svc.store = store
	return svc
}

// parseDueDate accepts a calendar date or a full RFC 3339 timestamp.
// An empty string clears the due date.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD or RFC 3339", ErrInvalidInput)
	}
	return &t, nil
}

func parsePriority(raw string) (domain.Priority, error) {
	p := domain.Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return domain.PriorityMedium, nil
	}
	if err := domain.ValidatePriority(p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p, nil
}

// checkAssignee verifies the assignee could open the board themselves.
func (s *cardService) checkAssignee(ctx context.Context, boardID, assigneeID uint) error {
	if _, err := s.accessBoard(ctx, assigneeID, boardID); err != nil {
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: user %d cannot be assigned on this board", ErrInvalidInput, assigneeID)
		}
		return err
	}
	return nil
}

// checkRoom returns ErrWIPLimitReached when one more card does not fit.
func (s *cardService) checkRoom(ctx context.Context, column *domain.Column) error {
	if column.WIPLimit == nil || *column.WIPLimit <= 0 {
		return nil
	}
	count, err := s.repos.Cards.CountInColumn(ctx, column.ID)
	if err != nil {
		return s.internal(err, "count cards", zap.Uint("column_id", column.ID))
	}
	if column.Full(int(count), 1) {
		return fmt.Errorf("%w: column %q allows at most %d cards", ErrWIPLimitReached, column.Title, *column.WIPLimit)
	}
	return nil
}

func (s *cardService) CreateCard(ctx context.Context, userID, columnID uint, req CreateCardRequest) (*CardResponse, error) {
	column, _, err := s.accessColumn(ctx, userID, columnID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: card title cannot be empty", ErrInvalidInput)
	}
	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.AssigneeID != nil {
		if err := s.checkAssignee(ctx, column.BoardID, *req.AssigneeID); err != nil {
			return nil, err
		}
	}
	if err := s.checkRoom(ctx, column); err != nil {
		return nil, err
	}

	card := &domain.Card{
		ColumnID:    column.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		DueDate:     due,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
	}
	if err := s.repos.Cards.Create(ctx, card); err != nil {
		return nil, s.internal(err, "create card", zap.Uint("column_id", columnID))
	}
	s.record(ctx, column.BoardID, uintPtr(card.ID), userID, domain.ActionCardCreated, card.Title)
	s.publish("cards", realtime.EventInsert, column.BoardID, card.ID, userID)

	resp := toCardResponse(*card, column.BoardID, s.now())
	return &resp, nil
}

func (s *cardService) GetCard(ctx context.Context, userID, cardID uint) (*CardResponse, error) {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, cardID, card.Column.BoardID)
}

func (s *cardService) detail(ctx context.Context, cardID, boardID uint) (*CardResponse, error) {
	card, err := s.repos.Cards.FindDetail(ctx, cardID)
	if err != nil {
		return nil, s.lookup(err, "card", cardID)
	}
	resp := toCardResponse(*card, boardID, s.now())
	return &resp, nil
}

func (s *cardService) UpdateCard(ctx context.Context, userID, cardID uint, req UpdateCardRequest) (*CardResponse, error) {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	boardID := card.Column.BoardID

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: card title cannot be empty", ErrInvalidInput)
		}
		card.Title = title
	}
	if req.Description != nil {
		card.Description = strings.TrimSpace(*req.Description)
	}
	switch {
	case req.ClearDueDate:
		card.DueDate = nil
	case req.DueDate != nil:
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		card.DueDate = due
	}
	if req.Priority != nil {
		priority, err := parsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		card.Priority = priority
	}
	switch {
	case req.ClearAssignee:
		card.AssigneeID = nil
	case req.AssigneeID != nil:
		if err := s.checkAssignee(ctx, boardID, *req.AssigneeID); err != nil {
			return nil, err
		}
		card.AssigneeID = req.AssigneeID
	}

	if err := s.repos.Cards.Update(ctx, card); err != nil {
		return nil, s.internal(err, "update card", zap.Uint("card_id", cardID))
	}
	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionCardUpdated, card.Title)
	s.publish("cards", realtime.EventUpdate, boardID, card.ID, userID)

	return s.detail(ctx, cardID, boardID)
}

func (s *cardService) MoveCard(ctx context.Context, userID, cardID uint, req MoveCardRequest) (*CardResponse, error) {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	from := card.Column

	to := &from
	if req.ColumnID != 0 && req.ColumnID != from.ID {
		to, err = s.repos.Columns.FindByID(ctx, req.ColumnID)
		if err != nil {
			return nil, s.lookup(err, "column", req.ColumnID)
		}
		if to.BoardID != from.BoardID {
			return nil, fmt.Errorf("%w: cards can only move within their board", ErrInvalidInput)
		}
		if err := s.checkRoom(ctx, to); err != nil {
			return nil, err
		}
	}

	position := req.Position
	if position < 0 {
		position = 0
	}
	if err := s.repos.Cards.Move(ctx, card, to.ID, position); err != nil {
		return nil, s.internal(err, "move card", zap.Uint("card_id", cardID))
	}

	details := fmt.Sprintf("%s: %s -> %s", card.Title, from.Title, to.Title)
	s.record(ctx, from.BoardID, uintPtr(card.ID), userID, domain.ActionCardMoved, details)
	s.publish("cards", realtime.EventUpdate, from.BoardID, card.ID, userID)

	return s.detail(ctx, cardID, from.BoardID)
}

func (s *cardService) DeleteCard(ctx context.Context, userID, cardID uint) error {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	keys := s.attachmentKeys(func() ([]string, error) { return s.repos.Attachments.PathsByCard(ctx, card.ID) })
	if err := s.repos.Cards.Delete(ctx, card); err != nil {
		return s.lookup(err, "card", cardID)
	}
	s.removeObjects(keys...)
	// The card's own activities cascade away; the deletion is kept at board level.
	s.record(ctx, card.Column.BoardID, nil, userID, domain.ActionCardDeleted, card.Title)
	s.publish("cards", realtime.EventDelete, card.Column.BoardID, card.ID, userID)
	return nil
}

// boardLabel loads a label and checks it belongs to boardID.
func (s *cardService) boardLabel(ctx context.Context, boardID, labelID uint) (*domain.Label, error) {
	label, err := s.repos.Labels.FindByID(ctx, labelID)
	if err != nil {
		return nil, s.lookup(err, "label", labelID)
	}
	if label.BoardID != boardID {
		return nil, fmt.Errorf("%w: label %d belongs to another board", ErrInvalidInput, labelID)
	}
	return label, nil
}

func (s *cardService) AddLabel(ctx context.Context, userID, cardID, labelID uint) error {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	boardID := card.Column.BoardID
	label, err := s.boardLabel(ctx, boardID, labelID)
	if err != nil {
		return err
	}
	if err := s.repos.Cards.AddLabel(ctx, card.ID, label.ID); err != nil {
		return s.internal(err, "add label", zap.Uint("card_id", cardID), zap.Uint("label_id", labelID))
	}
	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionLabelAdded, label.Text)
	s.publish("card_labels", realtime.EventInsert, boardID, card.ID, userID)
	return nil
}

func (s *cardService) RemoveLabel(ctx context.Context, userID, cardID, labelID uint) error {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	boardID := card.Column.BoardID
	label, err := s.boardLabel(ctx, boardID, labelID)
	if err != nil {
		return err
	}
	if err := s.repos.Cards.RemoveLabel(ctx, card.ID, label.ID); err != nil {
		return s.internal(err, "remove label", zap.Uint("card_id", cardID), zap.Uint("label_id", labelID))
	}
	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionLabelRemoved, label.Text)
	s.publish("card_labels", realtime.EventDelete, boardID, card.ID, userID)
	return nil
}

func (s *cardService) ListCardActivities(ctx context.Context, userID, cardID uint) ([]ActivityResponse, error) {
	if _, _, err := s.accessCard(ctx, userID, cardID); err != nil {
		return nil, err
	}
	activities, err := s.repos.Activities.ListByCard(ctx, cardID)
	if err != nil {
		return nil, s.internal(err, "list activities", zap.Uint("card_id", cardID))
	}
	resp := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, toActivityResponse(a))
	}
	return resp, nil
}

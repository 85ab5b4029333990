package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
)

// SubtaskUpdate is the result of UpdateSubtask, including any automatic
// card move the change triggered.
type SubtaskUpdate struct {
	Subtask    SubtaskResponse  `json:"subtask"`
	Automation AutomationResult `json:"automation"`
}

// SubtaskService manages card checklists. Completing the last open subtask
// moves the card to the board's done column.
type SubtaskService interface {
	CreateSubtask(ctx context.Context, userID, cardID uint, req CreateSubtaskRequest) (*SubtaskResponse, error)
	UpdateSubtask(ctx context.Context, userID, subtaskID uint, req UpdateSubtaskRequest) (*SubtaskUpdate, error)
	DeleteSubtask(ctx context.Context, userID, subtaskID uint) error
}

type subtaskService struct {
	base
}

func NewSubtaskService(repos *repository.Repositories, notifier Notifier, log *zap.Logger) SubtaskService {
	return &subtaskService{base: newBase(repos, notifier, log.Named("subtasks"))}
}

func (s *subtaskService) CreateSubtask(ctx context.Context, userID, cardID uint, req CreateSubtaskRequest) (*SubtaskResponse, error) {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: subtask title cannot be empty", ErrInvalidInput)
	}

	subtask := &domain.Subtask{CardID: card.ID, Title: title}
	if err := s.repos.Subtasks.Create(ctx, subtask); err != nil {
		return nil, s.internal(err, "create subtask", zap.Uint("card_id", cardID))
	}
	s.publish("subtasks", realtime.EventInsert, card.Column.BoardID, subtask.ID, userID)

	resp := toSubtaskResponse(*subtask)
	return &resp, nil
}

func (s *subtaskService) load(ctx context.Context, userID, subtaskID uint) (*domain.Subtask, *domain.Card, error) {
	subtask, err := s.repos.Subtasks.FindByID(ctx, subtaskID)
	if err != nil {
		return nil, nil, s.lookup(err, "subtask", subtaskID)
	}
	card, _, err := s.accessCard(ctx, userID, subtask.CardID)
	if err != nil {
		return nil, nil, err
	}
	return subtask, card, nil
}

func (s *subtaskService) UpdateSubtask(ctx context.Context, userID, subtaskID uint, req UpdateSubtaskRequest) (*SubtaskUpdate, error) {
	subtask, card, err := s.load(ctx, userID, subtaskID)
	if err != nil {
		return nil, err
	}
	boardID := card.Column.BoardID

	wasCompleted := subtask.Completed
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: subtask title cannot be empty", ErrInvalidInput)
		}
		subtask.Title = title
	}
	if req.Completed != nil {
		subtask.Completed = *req.Completed
	}

	if err := s.repos.Subtasks.Update(ctx, subtask); err != nil {
		return nil, s.internal(err, "update subtask", zap.Uint("subtask_id", subtaskID))
	}
	s.publish("subtasks", realtime.EventUpdate, boardID, subtask.ID, userID)

	result := &SubtaskUpdate{Subtask: toSubtaskResponse(*subtask)}
	if wasCompleted || !subtask.Completed {
		return result, nil
	}

	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionSubtaskCompleted, subtask.Title)
	automation, err := s.completeCard(ctx, userID, card)
	if err != nil {
		// The subtask change itself succeeded; a failed move only skips the automation.
		s.log.Error("failed to run completion automation", zap.Uint("card_id", card.ID), zap.Error(err))
		return result, nil
	}
	result.Automation = automation
	return result, nil
}

// completeCard moves the card to the front of the board's done column when
// every subtask on it is complete. The WIP limit does not apply.
func (s *subtaskService) completeCard(ctx context.Context, userID uint, card *domain.Card) (AutomationResult, error) {
	var result AutomationResult
	boardID := card.Column.BoardID

	subtasks, err := s.repos.Subtasks.ListByCard(ctx, card.ID)
	if err != nil {
		return result, err
	}
	if !allComplete(subtasks) {
		return result, nil
	}

	columns, err := s.repos.Columns.ListByBoard(ctx, boardID)
	if err != nil {
		return result, err
	}
	done := FindDoneColumn(columns)
	if done == nil || done.ID == card.ColumnID {
		return result, nil
	}

	from := card.ColumnID
	if err := s.repos.Cards.Move(ctx, card, done.ID, 0); err != nil {
		return result, err
	}

	message := fmt.Sprintf("All subtasks of %q are complete. Moved to %s!", card.Title, done.Title)
	result = AutomationResult{
		AutoMoved:      true,
		CardID:         card.ID,
		FromColumnID:   from,
		TargetColumnID: done.ID,
		TargetTitle:    done.Title,
		Celebrate:      true,
		Message:        message,
	}
	s.log.Info("card moved by completion automation",
		zap.Uint("card_id", card.ID), zap.Uint("from_column_id", from), zap.Uint("to_column_id", done.ID))

	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionCardAutoMoved,
		fmt.Sprintf("%s: %s -> %s", card.Title, card.Column.Title, done.Title))
	s.publish("cards", realtime.EventUpdate, boardID, card.ID, userID)
	s.notifier.Publish(realtime.Event{
		Table:    "cards",
		Type:     realtime.EventCelebrate,
		BoardID:  boardID,
		RecordID: card.ID,
		ActorID:  userID,
		Message:  message,
		At:       s.now().UTC(),
	})
	return result, nil
}

func (s *subtaskService) DeleteSubtask(ctx context.Context, userID, subtaskID uint) error {
	subtask, card, err := s.load(ctx, userID, subtaskID)
	if err != nil {
		return err
	}
	if err := s.repos.Subtasks.Delete(ctx, subtask); err != nil {
		return s.lookup(err, "subtask", subtaskID)
	}
	s.publish("subtasks", realtime.EventDelete, card.Column.BoardID, subtask.ID, userID)
	return nil
}

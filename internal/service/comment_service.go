package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
)

const maxCommentLength = 5000

// CommentService manages the discussion on a card.
type CommentService interface {
	AddComment(ctx context.Context, userID, cardID uint, req CreateCommentRequest) (*CommentResponse, error)
	ListComments(ctx context.Context, userID, cardID uint) ([]CommentResponse, error)
	// DeleteComment is allowed for the comment's author only.
	DeleteComment(ctx context.Context, userID, commentID uint) error
}

type commentService struct {
	base
}

func NewCommentService(repos *repository.Repositories, notifier Notifier, log *zap.Logger) CommentService {
	return &commentService{base: newBase(repos, notifier, log.Named("comments"))}
}

func (s *commentService) AddComment(ctx context.Context, userID, cardID uint, req CreateCommentRequest) (*CommentResponse, error) {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, maxCommentLength)
	}

	comment := &domain.Comment{CardID: card.ID, UserID: userID, Content: content}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, s.internal(err, "add comment", zap.Uint("card_id", cardID))
	}
	boardID := card.Column.BoardID
	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionCommentAdded, card.Title)
	s.publish("comments", realtime.EventInsert, boardID, comment.ID, userID)

	resp := toCommentResponse(*comment)
	return &resp, nil
}

func (s *commentService) ListComments(ctx context.Context, userID, cardID uint) ([]CommentResponse, error) {
	if _, _, err := s.accessCard(ctx, userID, cardID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByCard(ctx, cardID)
	if err != nil {
		return nil, s.internal(err, "list comments", zap.Uint("card_id", cardID))
	}
	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toCommentResponse(c))
	}
	return resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.repos.Comments.FindByID(ctx, commentID)
	if err != nil {
		return s.lookup(err, "comment", commentID)
	}
	card, _, err := s.accessCard(ctx, userID, comment.CardID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return fmt.Errorf("%w: only the author can delete a comment", ErrForbidden)
	}
	if err := s.repos.Comments.Delete(ctx, commentID); err != nil {
		return s.lookup(err, "comment", commentID)
	}
	s.publish("comments", realtime.EventDelete, card.Column.BoardID, commentID, userID)
	return nil
}

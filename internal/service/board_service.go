package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// BoardService covers the dashboard and whole-board operations.
type BoardService interface {
	ListBoards(ctx context.Context, userID uint) ([]BoardResponse, error)
	CreateBoard(ctx context.Context, userID uint, req CreateBoardRequest) (*BoardResponse, error)
	UpdateBoard(ctx context.Context, userID, boardID uint, req UpdateBoardRequest) (*BoardResponse, error)
	DeleteBoard(ctx context.Context, userID, boardID uint) error
	// GetBoardView returns the denormalized board, with cards narrowed by filter.
	GetBoardView(ctx context.Context, userID, boardID uint, filter BoardFilter) (*BoardView, error)
	ListBoardActivities(ctx context.Context, userID, boardID uint, limit int) ([]ActivityResponse, error)
	// CanAccess reports nil when userID may subscribe to the board's changes.
	CanAccess(ctx context.Context, userID, boardID uint) error
}

type boardService struct {
	base
}

func NewBoardService(repos *repository.Repositories, store storage.ObjectStore, notifier Notifier, log *zap.Logger) BoardService {
	svc := &boardService{base: newBase(repos, notifier, log.Named("boards"))}
	svc.store = store
	return svc
}

func (s *boardService) ListBoards(ctx context.Context, userID uint) ([]BoardResponse, error) {
	orgIDs, err := s.repos.Organizations.IDsForUser(ctx, userID)
	if err != nil {
		return nil, s.internal(err, "list organizations", zap.Uint("user_id", userID))
	}
	boards, err := s.repos.Boards.ListForUser(ctx, userID, orgIDs)
	if err != nil {
		return nil, s.internal(err, "list boards", zap.Uint("user_id", userID))
	}
	resp := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		resp = append(resp, toBoardResponse(b))
	}
	return resp, nil
}

func (s *boardService) CreateBoard(ctx context.Context, userID uint, req CreateBoardRequest) (*BoardResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: board title cannot be empty", ErrInvalidInput)
	}

	boardType := domain.BoardType(req.Type)
	if boardType == "" {
		boardType = domain.BoardTypePersonal
		if req.OrganizationID != nil {
			boardType = domain.BoardTypeTeam
		}
	}
	if err := domain.ValidateBoardType(boardType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	board := &domain.Board{Title: title, OwnerID: userID, Type: boardType}
	switch {
	case boardType == domain.BoardTypeTeam && req.OrganizationID == nil:
		return nil, fmt.Errorf("%w: team boards need an organization_id", ErrInvalidInput)
	case boardType == domain.BoardTypePersonal && req.OrganizationID != nil:
		return nil, fmt.Errorf("%w: personal boards cannot belong to an organization", ErrInvalidInput)
	case req.OrganizationID != nil:
		if _, err := s.repos.Organizations.FindMember(ctx, *req.OrganizationID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: not a member of organization %d", ErrForbidden, *req.OrganizationID)
			}
			return nil, s.internal(err, "check membership", zap.Uint("org_id", *req.OrganizationID))
		}
		board.OrganizationID = req.OrganizationID
	}

	columns := domain.DefaultColumns
	if len(req.Columns) > 0 {
		columns = make([]string, 0, len(req.Columns))
		for _, c := range req.Columns {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}

	if err := s.repos.Boards.Create(ctx, board, columns); err != nil {
		return nil, s.internal(err, "create board", zap.Uint("user_id", userID))
	}
	s.log.Info("board created", zap.Uint("board_id", board.ID), zap.Uint("user_id", userID))
	s.record(ctx, board.ID, nil, userID, domain.ActionBoardCreated, board.Title)
	s.publish("boards", realtime.EventInsert, board.ID, board.ID, userID)

	resp := toBoardResponse(*board)
	return &resp, nil
}

func (s *boardService) UpdateBoard(ctx context.Context, userID, boardID uint, req UpdateBoardRequest) (*BoardResponse, error) {
	access, err := s.accessBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	if !access.canManage {
		return nil, fmt.Errorf("%w: only the owner or an organization admin can edit the board", ErrForbidden)
	}

	board := access.board
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: board title cannot be empty", ErrInvalidInput)
		}
		board.Title = title
	}
	if err := s.repos.Boards.Update(ctx, board); err != nil {
		return nil, s.internal(err, "update board", zap.Uint("board_id", boardID))
	}
	s.publish("boards", realtime.EventUpdate, board.ID, board.ID, userID)

	resp := toBoardResponse(*board)
	return &resp, nil
}

func (s *boardService) DeleteBoard(ctx context.Context, userID, boardID uint) error {
	access, err := s.accessBoard(ctx, userID, boardID)
	if err != nil {
		return err
	}
	if !access.canManage {
		return fmt.Errorf("%w: only the owner or an organization admin can delete the board", ErrForbidden)
	}
	keys := s.attachmentKeys(func() ([]string, error) { return s.repos.Attachments.PathsByBoard(ctx, boardID) })
	if err := s.repos.Boards.Delete(ctx, boardID); err != nil {
		return s.lookup(err, "board", boardID)
	}
	s.removeObjects(keys...)
	s.log.Info("board deleted", zap.Uint("board_id", boardID), zap.Uint("user_id", userID))
	s.publish("boards", realtime.EventDelete, boardID, boardID, userID)
	return nil
}

func (s *boardService) GetBoardView(ctx context.Context, userID, boardID uint, filter BoardFilter) (*BoardView, error) {
	access, err := s.accessBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	var (
		tree    *domain.Board
		members []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tree, err = s.repos.Boards.LoadTree(gctx, boardID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.boardMembers(gctx, access.board)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.lookup(err, "board", boardID)
	}

	return BuildBoardView(tree, members, filter, s.now()), nil
}

// boardMembers lists everyone who can work on the board: the owner first,
// then the organization's members.
func (s *boardService) boardMembers(ctx context.Context, board *domain.Board) ([]domain.User, error) {
	owner, err := s.repos.Users.FindByID(ctx, board.OwnerID)
	if err != nil {
		return nil, err
	}
	members := []domain.User{*owner}
	if board.OrganizationID == nil {
		return members, nil
	}
	org, err := s.repos.Organizations.FindByID(ctx, *board.OrganizationID)
	if err != nil {
		return nil, err
	}
	for _, m := range org.Members {
		if m.UserID != owner.ID {
			members = append(members, m.User)
		}
	}
	return members, nil
}

func (s *boardService) ListBoardActivities(ctx context.Context, userID, boardID uint, limit int) ([]ActivityResponse, error) {
	if _, err := s.accessBoard(ctx, userID, boardID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activities, err := s.repos.Activities.ListByBoard(ctx, boardID, limit)
	if err != nil {
		return nil, s.internal(err, "list activities", zap.Uint("board_id", boardID))
	}
	resp := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, toActivityResponse(a))
	}
	return resp, nil
}

func (s *boardService) CanAccess(ctx context.Context, userID, boardID uint) error {
	_, err := s.accessBoard(ctx, userID, boardID)
	return err
}

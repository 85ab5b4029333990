package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

// Notifier receives change events after successful mutations.
// *realtime.Hub satisfies it.
type Notifier interface {
	Publish(ev realtime.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(realtime.Event) {}

// base carries the dependencies shared by every service.
type base struct {
	repos    *repository.Repositories
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	// store is set on services whose deletes can orphan attachment objects.
	store storage.ObjectStore
}

func newBase(repos *repository.Repositories, notifier Notifier, log *zap.Logger) base {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return base{repos: repos, notifier: notifier, log: log, now: time.Now}
}

// internal logs an unexpected repository failure and returns a generic
// error that is safe to show to clients. A write that lost a race with the
// deletion of a row it references is reported as a conflict.
func (b *base) internal(err error, op string, fields ...zap.Field) error {
	if errors.Is(err, repository.ErrMissingReference) {
		b.log.Warn("failed to "+op, append(fields, zap.Error(err))...)
		return fmt.Errorf("%w: cannot %s, a referenced record no longer exists", ErrConflict, op)
	}
	b.log.Error("failed to "+op, append(fields, zap.Error(err))...)
	return fmt.Errorf("failed to %s", op)
}

// lookup converts a repository lookup failure into ErrNotFound or an
// internal error.
func (b *base) lookup(err error, entity string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d not found", ErrNotFound, entity, id)
	}
	return b.internal(err, "load "+entity, zap.Uint("id", id))
}

// attachmentKeys collects the storage keys a cascading delete is about to
// orphan. Lookup failures are logged and the delete goes ahead.
func (b *base) attachmentKeys(list func() ([]string, error)) []string {
	if b.store == nil {
		return nil
	}
	keys, err := list()
	if err != nil {
		b.log.Warn("failed to list attachment objects", zap.Error(err))
		return nil
	}
	return keys
}

// removeObjects deletes stored objects on a fresh context so a cancelled
// request still cleans up.
func (b *base) removeObjects(keys ...string) {
	if b.store == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.store.Remove(ctx, keys...); err != nil {
		b.log.Warn("failed to remove attachment objects", zap.Strings("keys", keys), zap.Error(err))
	}
}

// boardAccess is the result of an access check on a board.
type boardAccess struct {
	board     *domain.Board
	canManage bool
}

// accessBoard loads the board and verifies userID may work on it. Owners and
// organization admins may also manage (rename, delete) it.
func (b *base) accessBoard(ctx context.Context, userID, boardID uint) (*boardAccess, error) {
	board, err := b.repos.Boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, b.lookup(err, "board", boardID)
	}
	if board.OwnerID == userID {
		return &boardAccess{board: board, canManage: true}, nil
	}
	if board.OrganizationID != nil {
		member, err := b.repos.Organizations.FindMember(ctx, *board.OrganizationID, userID)
		if err == nil {
			return &boardAccess{board: board, canManage: member.Role == domain.RoleAdmin}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, b.internal(err, "check board access", zap.Uint("board_id", boardID))
		}
	}
	return nil, fmt.Errorf("%w: no access to board %d", ErrForbidden, boardID)
}

// accessColumn loads the column and checks access to its board.
func (b *base) accessColumn(ctx context.Context, userID, columnID uint) (*domain.Column, *boardAccess, error) {
	column, err := b.repos.Columns.FindByID(ctx, columnID)
	if err != nil {
		return nil, nil, b.lookup(err, "column", columnID)
	}
	access, err := b.accessBoard(ctx, userID, column.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return column, access, nil
}

// accessCard loads the card (with its column) and checks access to its board.
func (b *base) accessCard(ctx context.Context, userID, cardID uint) (*domain.Card, *boardAccess, error) {
	card, err := b.repos.Cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, nil, b.lookup(err, "card", cardID)
	}
	access, err := b.accessBoard(ctx, userID, card.Column.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return card, access, nil
}

// record appends to the activity trail. Failures are logged, not returned:
// the mutation the activity describes has already been committed.
func (b *base) record(ctx context.Context, boardID uint, cardID *uint, userID uint, action domain.ActivityAction, details string) {
	activity := &domain.Activity{
		BoardID: boardID,
		CardID:  cardID,
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if err := b.repos.Activities.Create(ctx, activity); err != nil {
		b.log.Warn("failed to record activity",
			zap.Uint("board_id", boardID), zap.String("action", string(action)), zap.Error(err))
	}
}

func (b *base) publish(table string, typ realtime.EventType, boardID, recordID, actorID uint) {
	b.notifier.Publish(realtime.Event{
		Table:    table,
		Type:     typ,
		BoardID:  boardID,
		RecordID: recordID,
		ActorID:  actorID,
		At:       b.now().UTC(),
	})
}

func uintPtr(v uint) *uint {
	return &v
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
)

func TestCreateBoardSeedsDefaultColumns(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")

	view := e.board(t, owner)

	titles := make([]string, 0, len(view.Columns))
	for i, c := range view.Columns {
		assert.Equal(t, i, c.Position)
		titles = append(titles, c.Title)
	}
	assert.Equal(t, domain.DefaultColumns, titles)
	assert.Equal(t, "personal", view.Board.Type)
	require.Len(t, view.Members, 1)
	assert.Equal(t, owner.ID, view.Members[0].ID)

	activities, err := e.svc.Boards.ListBoardActivities(e.ctx, owner.ID, view.Board.ID, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, string(domain.ActionBoardCreated), activities[0].Action)
	assert.NotEmpty(t, e.events.ofType(realtime.EventInsert))
}

func TestCreateBoardValidation(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")

	_, err := e.svc.Boards.CreateBoard(e.ctx, owner.ID, CreateBoardRequest{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.Boards.CreateBoard(e.ctx, owner.ID, CreateBoardRequest{Title: "Team", Type: "team"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.Boards.CreateBoard(e.ctx, owner.ID, CreateBoardRequest{Title: "x", Type: "kanban"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	b, err := e.svc.Boards.CreateBoard(e.ctx, owner.ID, CreateBoardRequest{Title: "Custom", Columns: []string{"Ideas", " ", "Shipped"}})
	require.NoError(t, err)
	view, err := e.svc.Boards.GetBoardView(e.ctx, owner.ID, b.ID, BoardFilter{})
	require.NoError(t, err)
	require.Len(t, view.Columns, 2)
	assert.Equal(t, "Shipped", view.Columns[1].Title)
}

func TestTeamBoardAccess(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "admin@example.com")
	member := e.user(t, "member@example.com")
	stranger := e.user(t, "stranger@example.com")

	org, err := e.svc.Organizations.CreateOrganization(e.ctx, admin.ID, CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	_, err = e.svc.Organizations.AddMember(e.ctx, admin.ID, org.ID, AddMemberRequest{Email: member.Email})
	require.NoError(t, err)

	_, err = e.svc.Boards.CreateBoard(e.ctx, stranger.ID, CreateBoardRequest{Title: "Nope", OrganizationID: &org.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	board, err := e.svc.Boards.CreateBoard(e.ctx, member.ID, CreateBoardRequest{Title: "Team board", OrganizationID: &org.ID})
	require.NoError(t, err)
	assert.Equal(t, "team", board.Type)

	boards, err := e.svc.Boards.ListBoards(e.ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "Acme", boards[0].OrganizationName)

	view, err := e.svc.Boards.GetBoardView(e.ctx, admin.ID, board.ID, BoardFilter{})
	require.NoError(t, err)
	assert.Len(t, view.Members, 2)

	_, err = e.svc.Boards.GetBoardView(e.ctx, stranger.ID, board.ID, BoardFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	// The creator owns the board; an org admin may manage it too.
	title := "Renamed"
	_, err = e.svc.Boards.UpdateBoard(e.ctx, admin.ID, board.ID, UpdateBoardRequest{Title: &title})
	require.NoError(t, err)

	require.NoError(t, e.svc.Boards.DeleteBoard(e.ctx, admin.ID, board.ID))
	_, err = e.svc.Boards.GetBoardView(e.ctx, member.ID, board.ID, BoardFilter{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberCannotManageOthersBoard(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "admin@example.com")
	member := e.user(t, "member@example.com")

	org, err := e.svc.Organizations.CreateOrganization(e.ctx, admin.ID, CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	_, err = e.svc.Organizations.AddMember(e.ctx, admin.ID, org.ID, AddMemberRequest{Email: member.Email})
	require.NoError(t, err)

	board, err := e.svc.Boards.CreateBoard(e.ctx, admin.ID, CreateBoardRequest{Title: "Admin's", OrganizationID: &org.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, e.svc.Boards.DeleteBoard(e.ctx, member.ID, board.ID), ErrForbidden)
	assert.NoError(t, e.svc.Boards.CanAccess(e.ctx, member.ID, board.ID))
}

func TestOrganizationKeepsAnAdmin(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "admin@example.com")
	member := e.user(t, "member@example.com")

	org, err := e.svc.Organizations.CreateOrganization(e.ctx, admin.ID, CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "admin", org.Role)

	_, err = e.svc.Organizations.AddMember(e.ctx, admin.ID, org.ID, AddMemberRequest{Email: member.Email})
	require.NoError(t, err)
	_, err = e.svc.Organizations.AddMember(e.ctx, admin.ID, org.ID, AddMemberRequest{Email: member.Email})
	assert.ErrorIs(t, err, ErrConflict)

	err = e.svc.Organizations.UpdateMemberRole(e.ctx, admin.ID, org.ID, admin.ID, UpdateMemberRequest{Role: "member"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, e.svc.Organizations.RemoveMember(e.ctx, admin.ID, org.ID, admin.ID), ErrConflict)

	_, err = e.svc.Organizations.AddMember(e.ctx, member.ID, org.ID, AddMemberRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, e.svc.Organizations.UpdateMemberRole(e.ctx, admin.ID, org.ID, member.ID, UpdateMemberRequest{Role: "admin"}))
	require.NoError(t, e.svc.Organizations.UpdateMemberRole(e.ctx, member.ID, org.ID, admin.ID, UpdateMemberRequest{Role: "member"}))

	got, err := e.svc.Organizations.GetOrganization(e.ctx, admin.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "member", got.Role)
	assert.Len(t, got.Members, 2)

	team, err := e.svc.Boards.CreateBoard(e.ctx, admin.ID, CreateBoardRequest{Title: "Launch", OrganizationID: &org.ID})
	require.NoError(t, err)

	require.NoError(t, e.svc.Organizations.RemoveMember(e.ctx, admin.ID, org.ID, admin.ID), "members may leave")
	_, err = e.svc.Organizations.GetOrganization(e.ctx, admin.ID, org.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The board they own stays on their dashboard.
	boards, err := e.svc.Boards.ListBoards(e.ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, team.ID, boards[0].ID)
}

func TestColumnLifecycle(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	view := e.board(t, owner)

	negative := -1
	_, err := e.svc.Columns.CreateColumn(e.ctx, owner.ID, view.Board.ID, CreateColumnRequest{Title: "Review", WIPLimit: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)

	limit := 2
	review, err := e.svc.Columns.CreateColumn(e.ctx, owner.ID, view.Board.ID, CreateColumnRequest{Title: "Review", WIPLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 3, review.Position)

	moved, err := e.svc.Columns.MoveColumn(e.ctx, owner.ID, review.ID, MoveColumnRequest{Position: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)

	moved, err = e.svc.Columns.MoveColumn(e.ctx, owner.ID, review.ID, MoveColumnRequest{Position: -3})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position, "negative positions are clamped to the front")
	moved, err = e.svc.Columns.MoveColumn(e.ctx, owner.ID, review.ID, MoveColumnRequest{Position: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)

	updated, err := e.svc.Columns.UpdateColumn(e.ctx, owner.ID, review.ID, UpdateColumnRequest{ClearWIPLimit: true})
	require.NoError(t, err)
	assert.Nil(t, updated.WIPLimit)

	require.NoError(t, e.svc.Columns.DeleteColumn(e.ctx, owner.ID, view.Columns[0].ID))
	after, err := e.svc.Boards.GetBoardView(e.ctx, owner.ID, view.Board.ID, BoardFilter{})
	require.NoError(t, err)
	require.Len(t, after.Columns, 3)
	assert.Equal(t, "Review", after.Columns[0].Title)
	for i, c := range after.Columns {
		assert.Equal(t, i, c.Position)
	}
}

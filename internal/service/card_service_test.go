package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
)

func TestCreateCardDefaultsAndValidation(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	todo := e.board(t, owner).Columns[0]

	card, err := e.svc.Cards.CreateCard(e.ctx, owner.ID, todo.ID, CreateCardRequest{Title: " Draft ", DueDate: strPtr("2025-04-01")})
	require.NoError(t, err)
	assert.Equal(t, "Draft", card.Title)
	assert.Equal(t, "medium", card.Priority)
	require.NotNil(t, card.DueDate)
	assert.Equal(t, "2025-04-01T00:00:00Z", *card.DueDate)

	_, err = e.svc.Cards.CreateCard(e.ctx, owner.ID, todo.ID, CreateCardRequest{Title: "x", Priority: "critical"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.svc.Cards.CreateCard(e.ctx, owner.ID, todo.ID, CreateCardRequest{Title: "x", DueDate: strPtr("next week")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	stranger := e.user(t, "stranger@example.com")
	_, err = e.svc.Cards.CreateCard(e.ctx, owner.ID, todo.ID, CreateCardRequest{Title: "x", AssigneeID: &stranger.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.svc.Cards.CreateCard(e.ctx, stranger.ID, todo.ID, CreateCardRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func strPtr(s string) *string { return &s }

func TestWIPLimit(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	view := e.board(t, owner)
	todo, doing := view.Columns[0], view.Columns[1]

	limit := 1
	_, err := e.svc.Columns.UpdateColumn(e.ctx, owner.ID, doing.ID, UpdateColumnRequest{WIPLimit: &limit})
	require.NoError(t, err)

	first := e.card(t, owner.ID, doing.ID, "in flight")
	_, err = e.svc.Cards.CreateCard(e.ctx, owner.ID, doing.ID, CreateCardRequest{Title: "one too many"})
	assert.ErrorIs(t, err, ErrWIPLimitReached)

	waiting := e.card(t, owner.ID, todo.ID, "waiting")
	_, err = e.svc.Cards.MoveCard(e.ctx, owner.ID, waiting.ID, MoveCardRequest{ColumnID: doing.ID})
	assert.ErrorIs(t, err, ErrWIPLimitReached)

	// Reordering inside a full column is still allowed.
	_, err = e.svc.Cards.MoveCard(e.ctx, owner.ID, first.ID, MoveCardRequest{ColumnID: doing.ID, Position: 0})
	assert.NoError(t, err)
}

func TestMoveCard(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	view := e.board(t, owner)
	todo, done := view.Columns[0], view.Columns[2]

	a := e.card(t, owner.ID, todo.ID, "a")
	b := e.card(t, owner.ID, todo.ID, "b")
	e.card(t, owner.ID, done.ID, "c")

	moved, err := e.svc.Cards.MoveCard(e.ctx, owner.ID, b.ID, MoveCardRequest{ColumnID: done.ID, Position: 99})
	require.NoError(t, err)
	assert.Equal(t, done.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Position, "position is clamped to the end")

	after, err := e.svc.Cards.GetCard(e.ctx, owner.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Position)

	activities, err := e.svc.Cards.ListCardActivities(e.ctx, owner.ID, b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, activities)
	assert.Equal(t, string(domain.ActionCardMoved), activities[0].Action)
	assert.Equal(t, "b: To Do -> Done", activities[0].Details)

	other := e.board(t, owner)
	_, err = e.svc.Cards.MoveCard(e.ctx, owner.ID, a.ID, MoveCardRequest{ColumnID: other.Columns[0].ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateCardClearsFields(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	todo := e.board(t, owner).Columns[0]

	card, err := e.svc.Cards.CreateCard(e.ctx, owner.ID, todo.ID, CreateCardRequest{
		Title:      "Plan",
		DueDate:    strPtr("2025-05-01T10:00:00Z"),
		AssigneeID: &owner.ID,
		Priority:   "high",
	})
	require.NoError(t, err)
	require.NotNil(t, card.Assignee)

	updated, err := e.svc.Cards.UpdateCard(e.ctx, owner.ID, card.ID, UpdateCardRequest{
		Description:   strPtr("details"),
		ClearDueDate:  true,
		ClearAssignee: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.Assignee)
	assert.Equal(t, "details", updated.Description)
	assert.Equal(t, "high", updated.Priority)
}

func TestCardLabels(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	view := e.board(t, owner)
	card := e.card(t, owner.ID, view.Columns[0].ID, "labelled")

	_, err := e.svc.Labels.CreateLabel(e.ctx, owner.ID, view.Board.ID, CreateLabelRequest{Text: "bug", Color: "red"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bug, err := e.svc.Labels.CreateLabel(e.ctx, owner.ID, view.Board.ID, CreateLabelRequest{Text: "bug", Color: "#F00"})
	require.NoError(t, err)
	assert.Equal(t, "#f00", bug.Color)
	_, err = e.svc.Labels.CreateLabel(e.ctx, owner.ID, view.Board.ID, CreateLabelRequest{Text: "bug", Color: "#00ff00"})
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, e.svc.Cards.AddLabel(e.ctx, owner.ID, card.ID, bug.ID))
	require.NoError(t, e.svc.Cards.AddLabel(e.ctx, owner.ID, card.ID, bug.ID))

	detail, err := e.svc.Cards.GetCard(e.ctx, owner.ID, card.ID)
	require.NoError(t, err)
	require.Len(t, detail.Labels, 1)

	filtered, err := e.svc.Boards.GetBoardView(e.ctx, owner.ID, view.Board.ID, BoardFilter{LabelIDs: []uint{bug.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Columns[0].CardCount)

	other := e.board(t, owner)
	foreign, err := e.svc.Labels.CreateLabel(e.ctx, owner.ID, other.Board.ID, CreateLabelRequest{Text: "bug", Color: "#000"})
	require.NoError(t, err)
	assert.ErrorIs(t, e.svc.Cards.AddLabel(e.ctx, owner.ID, card.ID, foreign.ID), ErrInvalidInput)

	require.NoError(t, e.svc.Cards.RemoveLabel(e.ctx, owner.ID, card.ID, bug.ID))
	detail, err = e.svc.Cards.GetCard(e.ctx, owner.ID, card.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Labels)

	require.NoError(t, e.svc.Labels.DeleteLabel(e.ctx, owner.ID, bug.ID))
}

func TestSubtaskCompletionMovesCardToDone(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	view := e.board(t, owner)
	todo, done := view.Columns[0], view.Columns[2]

	// A WIP limit on the done column does not stop the automation.
	limit := 1
	_, err := e.svc.Columns.UpdateColumn(e.ctx, owner.ID, done.ID, UpdateColumnRequest{WIPLimit: &limit})
	require.NoError(t, err)
	e.card(t, owner.ID, done.ID, "already done")

	card := e.card(t, owner.ID, todo.ID, "release")
	first, err := e.svc.Subtasks.CreateSubtask(e.ctx, owner.ID, card.ID, CreateSubtaskRequest{Title: "tag"})
	require.NoError(t, err)
	second, err := e.svc.Subtasks.CreateSubtask(e.ctx, owner.ID, card.ID, CreateSubtaskRequest{Title: "publish"})
	require.NoError(t, err)

	yes := true
	res, err := e.svc.Subtasks.UpdateSubtask(e.ctx, owner.ID, first.ID, UpdateSubtaskRequest{Completed: &yes})
	require.NoError(t, err)
	assert.True(t, res.Subtask.Completed)
	assert.False(t, res.Automation.AutoMoved, "one subtask is still open")

	res, err = e.svc.Subtasks.UpdateSubtask(e.ctx, owner.ID, second.ID, UpdateSubtaskRequest{Completed: &yes})
	require.NoError(t, err)
	assert.True(t, res.Automation.AutoMoved)
	assert.True(t, res.Automation.Celebrate)
	assert.Equal(t, done.ID, res.Automation.TargetColumnID)
	assert.Equal(t, todo.ID, res.Automation.FromColumnID)

	detail, err := e.svc.Cards.GetCard(e.ctx, owner.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, done.ID, detail.ColumnID)
	assert.Equal(t, 0, detail.Position)
	assert.Equal(t, SubtaskProgress{Done: 2, Total: 2}, detail.SubtaskProgress)

	var actions []string
	for _, a := range detail.Activities {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, string(domain.ActionCardAutoMoved))
	assert.Contains(t, actions, string(domain.ActionSubtaskCompleted))

	celebrations := e.events.ofType(realtime.EventCelebrate)
	require.Len(t, celebrations, 1)
	assert.Equal(t, card.ID, celebrations[0].RecordID)
	assert.NotEmpty(t, celebrations[0].Message)

	// Re-completing in the done column does nothing further.
	no := false
	_, err = e.svc.Subtasks.UpdateSubtask(e.ctx, owner.ID, second.ID, UpdateSubtaskRequest{Completed: &no})
	require.NoError(t, err)
	res, err = e.svc.Subtasks.UpdateSubtask(e.ctx, owner.ID, second.ID, UpdateSubtaskRequest{Completed: &yes})
	require.NoError(t, err)
	assert.False(t, res.Automation.AutoMoved)
	assert.Len(t, e.events.ofType(realtime.EventCelebrate), 1)
}

func TestSubtaskCompletionWithoutDoneColumn(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	b, err := e.svc.Boards.CreateBoard(e.ctx, owner.ID, CreateBoardRequest{Title: "No finish", Columns: []string{"Open", "Review"}})
	require.NoError(t, err)
	view, err := e.svc.Boards.GetBoardView(e.ctx, owner.ID, b.ID, BoardFilter{})
	require.NoError(t, err)

	card := e.card(t, owner.ID, view.Columns[0].ID, "lonely")
	sub, err := e.svc.Subtasks.CreateSubtask(e.ctx, owner.ID, card.ID, CreateSubtaskRequest{Title: "only"})
	require.NoError(t, err)

	yes := true
	res, err := e.svc.Subtasks.UpdateSubtask(e.ctx, owner.ID, sub.ID, UpdateSubtaskRequest{Completed: &yes})
	require.NoError(t, err)
	assert.False(t, res.Automation.AutoMoved)
	assert.Empty(t, e.events.ofType(realtime.EventCelebrate))

	require.NoError(t, e.svc.Subtasks.DeleteSubtask(e.ctx, owner.ID, sub.ID))
}

func TestComments(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	card := e.card(t, owner.ID, e.board(t, owner).Columns[0].ID, "discussed")

	_, err := e.svc.Comments.AddComment(e.ctx, owner.ID, card.ID, CreateCommentRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := e.svc.Comments.AddComment(e.ctx, owner.ID, card.ID, CreateCommentRequest{Content: " looks good "})
	require.NoError(t, err)
	assert.Equal(t, "looks good", c.Content)
	assert.Equal(t, owner.Email, c.Author.Email)

	// The cap counts characters, not bytes.
	turkish := strings.Repeat("ş", 2600)
	_, err = e.svc.Comments.AddComment(e.ctx, owner.ID, card.ID, CreateCommentRequest{Content: turkish})
	require.NoError(t, err)
	_, err = e.svc.Comments.AddComment(e.ctx, owner.ID, card.ID, CreateCommentRequest{Content: strings.Repeat("ş", maxCommentLength+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := e.svc.Comments.ListComments(e.ctx, owner.ID, card.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, e.svc.Comments.DeleteComment(e.ctx, owner.ID, c.ID))
	assert.ErrorIs(t, e.svc.Comments.DeleteComment(e.ctx, owner.ID, c.ID), ErrNotFound)
}

func TestDeleteCardRenumbersColumn(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	todo := e.board(t, owner).Columns[0]

	a := e.card(t, owner.ID, todo.ID, "a")
	b := e.card(t, owner.ID, todo.ID, "b")

	require.NoError(t, e.svc.Cards.DeleteCard(e.ctx, owner.ID, a.ID))
	_, err := e.svc.Cards.GetCard(e.ctx, owner.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := e.svc.Cards.GetCard(e.ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Position)
	assert.NotEmpty(t, e.events.ofType(realtime.EventDelete))
}

func TestActivityTrail(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	view := e.board(t, owner)
	todo, doing := view.Columns[0], view.Columns[1]

	card := e.card(t, owner.ID, todo.ID, "tracked")
	_, err := e.svc.Cards.UpdateCard(e.ctx, owner.ID, card.ID, UpdateCardRequest{Title: strPtr("tracked card")})
	require.NoError(t, err)
	_, err = e.svc.Cards.MoveCard(e.ctx, owner.ID, card.ID, MoveCardRequest{ColumnID: doing.ID})
	require.NoError(t, err)
	_, err = e.svc.Comments.AddComment(e.ctx, owner.ID, card.ID, CreateCommentRequest{Content: "on it"})
	require.NoError(t, err)

	trail, err := e.svc.Cards.ListCardActivities(e.ctx, owner.ID, card.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(trail))
	for _, a := range trail {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{"comment_added", "card_moved", "card_updated", "card_created"}, actions)
	assert.Equal(t, "tracked card: To Do -> In Progress", trail[1].Details)

	recent, err := e.svc.Boards.ListBoardActivities(e.ctx, owner.ID, view.Board.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "comment_added", recent[0].Action)

	all, err := e.svc.Boards.ListBoardActivities(e.ctx, owner.ID, view.Board.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "board_created", all[len(all)-1].Action)

	stranger := e.user(t, "stranger@example.com")
	_, err = e.svc.Cards.ListCardActivities(e.ctx, stranger.ID, card.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

func TestCardCreateAppends(t *testing.T) {
	f := newFixture(t)
	todo := f.column(0).ID

	a := f.addCard(t, todo, "a")
	b := f.addCard(t, todo, "b")

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
}

func TestCardMoveAcrossColumnsRenumbersBoth(t *testing.T) {
	f := newFixture(t)
	todo, done := f.column(0).ID, f.column(2).ID

	f.addCard(t, todo, "a")
	b := f.addCard(t, todo, "b")
	f.addCard(t, todo, "c")
	f.addCard(t, done, "x")

	require.NoError(t, f.repos.Cards.Move(f.ctx, b, done, 0))

	assert.Equal(t, done, b.ColumnID)
	assert.Equal(t, 0, b.Position)
	assert.Equal(t, []string{"a", "c"}, f.cardTitles(t, todo))
	assert.Equal(t, []string{"b", "x"}, f.cardTitles(t, done))
}

func TestCardMoveWithinColumn(t *testing.T) {
	f := newFixture(t)
	todo := f.column(0).ID

	a := f.addCard(t, todo, "a")
	f.addCard(t, todo, "b")
	f.addCard(t, todo, "c")

	require.NoError(t, f.repos.Cards.Move(f.ctx, a, todo, 99))

	assert.Equal(t, 2, a.Position)
	assert.Equal(t, []string{"b", "c", "a"}, f.cardTitles(t, todo))
}

func TestCardDeleteClosesGap(t *testing.T) {
	f := newFixture(t)
	todo := f.column(0).ID

	f.addCard(t, todo, "a")
	b := f.addCard(t, todo, "b")
	f.addCard(t, todo, "c")

	require.NoError(t, f.repos.Cards.Delete(f.ctx, b))
	assert.Equal(t, []string{"a", "c"}, f.cardTitles(t, todo))

	assert.ErrorIs(t, f.repos.Cards.Delete(f.ctx, b), ErrNotFound)
}

func TestCardUpdateClearsNullableFields(t *testing.T) {
	f := newFixture(t)
	card := f.addCard(t, f.column(0).ID, "a")
	card.AssigneeID = &f.user.ID
	require.NoError(t, f.repos.Cards.Update(f.ctx, card))

	card.AssigneeID = nil
	card.Priority = domain.PriorityUrgent
	require.NoError(t, f.repos.Cards.Update(f.ctx, card))

	got, err := f.repos.Cards.FindByID(f.ctx, card.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssigneeID)
	assert.Equal(t, domain.PriorityUrgent, got.Priority)
	assert.Equal(t, f.board.ID, got.Column.BoardID)
}

func TestCardLabelsAreIdempotent(t *testing.T) {
	f := newFixture(t)
	card := f.addCard(t, f.column(0).ID, "a")
	label := &domain.Label{BoardID: f.board.ID, Text: "bug", Color: "#ff0000"}
	require.NoError(t, f.repos.Labels.Create(f.ctx, label))

	require.NoError(t, f.repos.Cards.AddLabel(f.ctx, card.ID, label.ID))
	require.NoError(t, f.repos.Cards.AddLabel(f.ctx, card.ID, label.ID))

	detail, err := f.repos.Cards.FindDetail(f.ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, detail.Labels, 1)
	assert.Equal(t, "bug", detail.Labels[0].Text)

	require.NoError(t, f.repos.Cards.RemoveLabel(f.ctx, card.ID, label.ID))
	detail, err = f.repos.Cards.FindDetail(f.ctx, card.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Labels)
}

func TestDuplicateLabelText(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Labels.Create(f.ctx, &domain.Label{BoardID: f.board.ID, Text: "bug", Color: "#f00"}))

	err := f.repos.Labels.Create(f.ctx, &domain.Label{BoardID: f.board.ID, Text: "bug", Color: "#0f0"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAttachmentPathsByScope(t *testing.T) {
	f := newFixture(t)
	todo, done := f.column(0).ID, f.column(2).ID

	a := f.addCard(t, todo, "a")
	b := f.addCard(t, done, "b")
	for _, att := range []*domain.Attachment{
		{CardID: a.ID, FileName: "one.txt", FilePath: "cards/a/one.txt", FileSize: 1, UploadedBy: f.user.ID},
		{CardID: a.ID, FileName: "two.txt", FilePath: "cards/a/two.txt", FileSize: 1, UploadedBy: f.user.ID},
		{CardID: b.ID, FileName: "three.txt", FilePath: "cards/b/three.txt", FileSize: 1, UploadedBy: f.user.ID},
	} {
		require.NoError(t, f.repos.Attachments.Create(f.ctx, att))
	}

	paths, err := f.repos.Attachments.PathsByCard(f.ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cards/a/one.txt", "cards/a/two.txt"}, paths)

	paths, err = f.repos.Attachments.PathsByColumn(f.ctx, done)
	require.NoError(t, err)
	assert.Equal(t, []string{"cards/b/three.txt"}, paths)

	paths, err = f.repos.Attachments.PathsByBoard(f.ctx, f.board.ID)
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	paths, err = f.repos.Attachments.PathsByColumn(f.ctx, f.column(1).ID)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

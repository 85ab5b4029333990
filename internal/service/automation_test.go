package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

func TestIsDoneColumnTitle(t *testing.T) {
	for _, title := range []string{"Done", "DONE ✅", "Tamamlandı", "Bitenler", "done-ish"} {
		assert.True(t, IsDoneColumnTitle(title), title)
	}
	for _, title := range []string{"To Do", "In Progress", "Review", ""} {
		assert.False(t, IsDoneColumnTitle(title), title)
	}
}

func TestFindDoneColumnPicksFirstInBoardOrder(t *testing.T) {
	columns := []domain.Column{
		{Model: domain.Model{ID: 1}, Title: "Backlog"},
		{Model: domain.Model{ID: 2}, Title: "Tamamlanan"},
		{Model: domain.Model{ID: 3}, Title: "Done"},
	}
	done := FindDoneColumn(columns)
	require.NotNil(t, done)
	assert.Equal(t, uint(2), done.ID)

	assert.Nil(t, FindDoneColumn(columns[:1]))
	assert.Nil(t, FindDoneColumn(nil))
}

func TestAllComplete(t *testing.T) {
	assert.False(t, allComplete(nil), "a card without subtasks is never auto-completed")
	assert.False(t, allComplete([]domain.Subtask{{Completed: true}, {Completed: false}}))
	assert.True(t, allComplete([]domain.Subtask{{Completed: true}, {Completed: true}}))
}

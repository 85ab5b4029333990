package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/testutil"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutil.TerminatePostgres()
	os.Exit(code)
}

type fixture struct {
	db    *gorm.DB
	repos *Repositories
	ctx   context.Context
	user  *domain.User
	board *domain.Board
}

// newFixture creates a user owning a personal board with the default columns.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{db: db, repos: NewGormRepositories(db), ctx: context.Background()}

	f.user = &domain.User{Email: "owner@example.com", FullName: "Owner"}
	require.NoError(t, f.repos.Users.Create(f.ctx, f.user))

	f.board = &domain.Board{Title: "Roadmap", OwnerID: f.user.ID, Type: domain.BoardTypePersonal}
	require.NoError(t, f.repos.Boards.Create(f.ctx, f.board, domain.DefaultColumns))
	return f
}

func (f *fixture) column(i int) domain.Column {
	return f.board.Columns[i]
}

func (f *fixture) addCard(t *testing.T, columnID uint, title string) *domain.Card {
	t.Helper()
	card := &domain.Card{ColumnID: columnID, Title: title, Priority: domain.PriorityMedium}
	require.NoError(t, f.repos.Cards.Create(f.ctx, card))
	return card
}

// cardTitles returns the titles in a column ordered by position.
func (f *fixture) cardTitles(t *testing.T, columnID uint) []string {
	t.Helper()
	var cards []domain.Card
	require.NoError(t, f.db.Where("column_id = ?", columnID).Order("position").Find(&cards).Error)
	titles := make([]string, 0, len(cards))
	for i, c := range cards {
		require.Equal(t, i, c.Position, "positions must be dense")
		titles = append(titles, c.Title)
	}
	return titles
}

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ozcanhakn/kanban-app/internal/repository"
)

func TestInternalErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := newBase(nil, nil, zap.New(core))

	err := b.internal(errors.New("connection reset"), "save card")
	assert.EqualError(t, err, "failed to save card")
	assert.False(t, errors.Is(err, ErrConflict))

	raced := errors.Join(repository.ErrMissingReference, errors.New(`insert on table "cards" violates foreign key constraint`))
	err = b.internal(raced, "save card")
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "conflict: cannot save card, a referenced record no longer exists")

	assert.ErrorIs(t, b.lookup(raced, "card", 4), ErrConflict)
	assert.EqualError(t, b.lookup(repository.ErrNotFound, "card", 4), "not found: card 4 not found")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "failed to load card", entries[2].Message)
}

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertAt(t *testing.T) {
	tests := []struct {
		name  string
		ids   []uint
		index int
		want  []uint
	}{
		{"front", []uint{1, 2, 3}, 0, []uint{9, 1, 2, 3}},
		{"middle", []uint{1, 2, 3}, 1, []uint{1, 9, 2, 3}},
		{"end", []uint{1, 2, 3}, 3, []uint{1, 2, 3, 9}},
		{"past end clamps", []uint{1, 2}, 99, []uint{1, 2, 9}},
		{"negative clamps", []uint{1, 2}, -4, []uint{9, 1, 2}},
		{"empty", nil, 0, []uint{9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insertAt(tt.ids, 9, tt.index))
		})
	}
}

func TestInsertAtDoesNotAliasInput(t *testing.T) {
	ids := make([]uint, 3, 10)
	copy(ids, []uint{1, 2, 3})

	_ = insertAt(ids, 9, 1)

	assert.Equal(t, []uint{1, 2, 3}, ids)
}

func TestIndexOf(t *testing.T) {
	assert.Equal(t, 2, indexOf([]uint{4, 5, 6}, 6))
	assert.Equal(t, -1, indexOf([]uint{4, 5, 6}, 7))
}

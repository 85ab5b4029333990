package service

import (
	"strings"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// doneKeywords mark a column as the completion column, in English and Turkish.
var doneKeywords = []string{"done", "tamam", "biten"}

// IsDoneColumnTitle reports whether title names a completion column.
func IsDoneColumnTitle(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range doneKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// FindDoneColumn returns the first completion column in board order, or nil.
// columns must already be sorted by position.
func FindDoneColumn(columns []domain.Column) *domain.Column {
	for i := range columns {
		if IsDoneColumnTitle(columns[i].Title) {
			return &columns[i]
		}
	}
	return nil
}

// allComplete reports whether the card has subtasks and every one is done.
func allComplete(subtasks []domain.Subtask) bool {
	if len(subtasks) == 0 {
		return false
	}
	for _, s := range subtasks {
		if !s.Completed {
			return false
		}
	}
	return true
}

// AutomationResult describes what happened after a subtask update.
type AutomationResult struct {
	AutoMoved      bool   `json:"auto_moved"`
	CardID         uint   `json:"card_id,omitempty"`
	FromColumnID   uint   `json:"from_column_id,omitempty"`
	TargetColumnID uint   `json:"target_column_id,omitempty"`
	TargetTitle    string `json:"target_column_title,omitempty"`
	Celebrate      bool   `json:"celebrate"`
	Message        string `json:"message,omitempty"`
}

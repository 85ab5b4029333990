package domain

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ValidatePriority returns an error if p is not a recognized priority.
func ValidatePriority(p Priority) error {
	for _, v := range validPriorities {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("invalid priority %q: must be one of %v", p, validPriorities)
}

type Card struct {
	Model
	ColumnID    uint   `gorm:"not null;index"`
	Column      Column `gorm:"constraint:OnDelete:CASCADE"`
	Title       string `gorm:"not null"`
	Description string
	Position    int `gorm:"not null;default:0"`
	DueDate     *time.Time
	Priority    Priority `gorm:"type:varchar(16);not null;default:medium"`
	AssigneeID  *uint    `gorm:"index"`
	Assignee    *User    `gorm:"constraint:OnDelete:SET NULL"`

	Labels      []Label      `gorm:"many2many:card_labels;constraint:OnDelete:CASCADE"`
	Subtasks    []Subtask    `gorm:"constraint:OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"constraint:OnDelete:CASCADE"`
	Comments    []Comment    `gorm:"constraint:OnDelete:CASCADE"`
	Activities  []Activity   `gorm:"constraint:OnDelete:CASCADE"`
}

// Overdue reports whether the card missed its due date. A calendar date
// (stored as UTC midnight) is due by the end of that UTC day; any other
// timestamp is due at that instant.
func (c Card) Overdue(now time.Time) bool {
	if c.DueDate == nil {
		return false
	}
	if c.DueAllDay() {
		return c.DueDate.Before(StartOfDay(now))
	}
	return c.DueDate.Before(now)
}

// DueAllDay reports whether the due date names a whole day rather than a
// moment.
func (c Card) DueAllDay() bool {
	if c.DueDate == nil {
		return false
	}
	return c.DueDate.UTC().Equal(StartOfDay(*c.DueDate))
}

// StartOfDay truncates t to midnight of its UTC calendar day. Due dates are
// stored in UTC, so day windows are computed there as well.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CardLabel is the join row between cards and labels.
type CardLabel struct {
	CardID  uint `gorm:"primaryKey"`
	LabelID uint `gorm:"primaryKey"`
}

type Subtask struct {
	Model
	CardID    uint   `gorm:"not null;index"`
	Title     string `gorm:"not null"`
	Completed bool   `gorm:"not null;default:false"`
	Position  int    `gorm:"not null;default:0"`
}

type Attachment struct {
	Model
	CardID      uint   `gorm:"not null;index"`
	FileName    string `gorm:"not null"`
	FilePath    string `gorm:"not null;uniqueIndex"`
	FileSize    int64  `gorm:"not null"`
	ContentType string
	UploadedBy  uint `gorm:"not null"`
}

type Comment struct {
	Model
	CardID  uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null"`
	User    User   `gorm:"constraint:OnDelete:CASCADE"`
	Content string `gorm:"not null"`
}

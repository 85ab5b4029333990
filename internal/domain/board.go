package domain

import "fmt"

type BoardType string

const (
	BoardTypePersonal BoardType = "personal"
	BoardTypeTeam     BoardType = "team"
)

// ValidateBoardType returns an error if t is not a recognized board type.
func ValidateBoardType(t BoardType) error {
	switch t {
	case BoardTypePersonal, BoardTypeTeam:
		return nil
	}
	return fmt.Errorf("invalid board type %q: must be one of [personal team]", t)
}

type Board struct {
	Model
	Title          string        `gorm:"not null"`
	OwnerID        uint          `gorm:"not null;index"`
	Owner          User          `gorm:"constraint:OnDelete:CASCADE"`
	OrganizationID *uint         `gorm:"index"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE"`
	Type           BoardType     `gorm:"type:varchar(16);not null;default:personal"`
	Columns        []Column      `gorm:"constraint:OnDelete:CASCADE"`
	Labels         []Label       `gorm:"constraint:OnDelete:CASCADE"`
}

// DefaultColumns are created with every new board.
var DefaultColumns = []string{"To Do", "In Progress", "Done"}

type Column struct {
	Model
	BoardID  uint   `gorm:"not null;index"`
	Title    string `gorm:"not null"`
	Position int    `gorm:"not null;default:0"`
	// WIPLimit of nil or 0 means the column is unbounded.
	WIPLimit *int
	Cards    []Card `gorm:"constraint:OnDelete:CASCADE"`
}

// Full reports whether adding count more cards would exceed the WIP limit.
func (c Column) Full(current, count int) bool {
	if c.WIPLimit == nil || *c.WIPLimit <= 0 {
		return false
	}
	return current+count > *c.WIPLimit
}

type Label struct {
	Model
	BoardID uint   `gorm:"not null;uniqueIndex:idx_board_label_text"`
	Text    string `gorm:"not null;uniqueIndex:idx_board_label_text"`
	Color   string `gorm:"type:varchar(7);not null"`
}

package domain

import "time"

// Model is the common primary key and timestamp block for every table.
// Rows are hard-deleted so foreign key cascades do the cleanup.
type Model struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All lists every model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&MagicLink{},
		&Organization{},
		&OrganizationMember{},
		&Board{},
		&Column{},
		&Label{},
		&Card{},
		&CardLabel{},
		&Subtask{},
		&Attachment{},
		&Comment{},
		&Activity{},
	}
}

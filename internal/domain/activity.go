package domain

type ActivityAction string

const (
	ActionBoardCreated     ActivityAction = "board_created"
	ActionColumnCreated    ActivityAction = "column_created"
	ActionColumnDeleted    ActivityAction = "column_deleted"
	ActionCardCreated      ActivityAction = "card_created"
	ActionCardUpdated      ActivityAction = "card_updated"
	ActionCardMoved        ActivityAction = "card_moved"
	ActionCardAutoMoved    ActivityAction = "card_auto_moved"
	ActionCardDeleted      ActivityAction = "card_deleted"
	ActionSubtaskCompleted ActivityAction = "subtask_completed"
	ActionCommentAdded     ActivityAction = "comment_added"
	ActionAttachmentAdded  ActivityAction = "attachment_added"
	ActionLabelAdded       ActivityAction = "label_added"
	ActionLabelRemoved     ActivityAction = "label_removed"
)

// Activity is one entry in a board's audit trail. CardID is nil for
// board-level actions.
type Activity struct {
	Model
	BoardID uint           `gorm:"not null;index"`
	Board   Board          `gorm:"constraint:OnDelete:CASCADE"`
	CardID  *uint          `gorm:"index"`
	UserID  uint           `gorm:"not null"`
	Action  ActivityAction `gorm:"type:varchar(32);not null"`
	Details string
}

package repository

import "gorm.io/gorm"

// Repositories bundles every repository so services can be wired from one value.
type Repositories struct {
	Users         UserRepository
	Sessions      SessionRepository
	Organizations OrganizationRepository
	Boards        BoardRepository
	Columns       ColumnRepository
	Cards         CardRepository
	Labels        LabelRepository
	Subtasks      SubtaskRepository
	Comments      CommentRepository
	Attachments   AttachmentRepository
	Activities    ActivityRepository
}

// NewGormRepositories builds every repository on the same gorm handle.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewGormUserRepository(db),
		Sessions:      NewGormSessionRepository(db),
		Organizations: NewGormOrganizationRepository(db),
		Boards:        NewGormBoardRepository(db),
		Columns:       NewGormColumnRepository(db),
		Cards:         NewGormCardRepository(db),
		Labels:        NewGormLabelRepository(db),
		Subtasks:      NewGormSubtaskRepository(db),
		Comments:      NewGormCommentRepository(db),
		Attachments:   NewGormAttachmentRepository(db),
		Activities:    NewGormActivityRepository(db),
	}
}

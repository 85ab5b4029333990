package service

import (
	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

// Services is every service the HTTP layer depends on.
type Services struct {
	Auth          AuthService
	Profile       ProfileService
	Organizations OrganizationService
	Boards        BoardService
	Columns       ColumnService
	Cards         CardService
	Labels        LabelService
	Subtasks      SubtaskService
	Comments      CommentService
	Attachments   AttachmentService
}

// Options gathers the settings of the services that need any.
type Options struct {
	Auth        AuthOptions
	Attachments AttachmentOptions
}

// New wires every service onto the same repositories, store and notifier.
func New(repos *repository.Repositories, store storage.ObjectStore, notifier Notifier, log *zap.Logger, opts Options) *Services {
	return &Services{
		Auth:          NewAuthService(repos, log, opts.Auth),
		Profile:       NewProfileService(repos, log),
		Organizations: NewOrganizationService(repos, log),
		Boards:        NewBoardService(repos, store, notifier, log),
		Columns:       NewColumnService(repos, store, notifier, log),
		Cards:         NewCardService(repos, store, notifier, log),
		Labels:        NewLabelService(repos, notifier, log),
		Subtasks:      NewSubtaskService(repos, notifier, log),
		Comments:      NewCommentService(repos, notifier, log),
		Attachments:   NewAttachmentService(repos, store, notifier, log, opts.Attachments),
	}
}

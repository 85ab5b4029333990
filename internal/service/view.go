package service

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// Response DTOs. Timestamps are RFC3339 strings in UTC.

type UserSummary struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type UserResponse struct {
	UserSummary
	ProfileCompleted bool   `json:"profile_completed"`
	CreatedAt        string `json:"created_at"`
}

type BoardResponse struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	OwnerID          uint   `json:"owner_id"`
	OrganizationID   *uint  `json:"organization_id,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type LabelResponse struct {
	ID      uint   `json:"id"`
	BoardID uint   `json:"board_id"`
	Text    string `json:"text"`
	Color   string `json:"color"`
}

type SubtaskResponse struct {
	ID        uint   `json:"id"`
	CardID    uint   `json:"card_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

type SubtaskProgress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type AttachmentResponse struct {
	ID          uint   `json:"id"`
	CardID      uint   `json:"card_id"`
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	FileSize    int64  `json:"file_size"`
	SizeHuman   string `json:"size_human"`
	ContentType string `json:"content_type,omitempty"`
	UploadedBy  uint   `json:"uploaded_by"`
	CreatedAt   string `json:"created_at"`
}

type CommentResponse struct {
	ID        uint        `json:"id"`
	CardID    uint        `json:"card_id"`
	Content   string      `json:"content"`
	Author    UserSummary `json:"author"`
	CreatedAt string      `json:"created_at"`
}

type ActivityResponse struct {
	ID        uint   `json:"id"`
	BoardID   uint   `json:"board_id"`
	CardID    *uint  `json:"card_id,omitempty"`
	UserID    uint   `json:"user_id"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

type CardResponse struct {
	ID              uint                 `json:"id"`
	ColumnID        uint                 `json:"column_id"`
	BoardID         uint                 `json:"board_id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Position        int                  `json:"position"`
	DueDate         *string              `json:"due_date"`
	Overdue         bool                 `json:"overdue"`
	Priority        string               `json:"priority"`
	Assignee        *UserSummary         `json:"assignee"`
	Labels          []LabelResponse      `json:"labels"`
	Subtasks        []SubtaskResponse    `json:"subtasks"`
	SubtaskProgress SubtaskProgress      `json:"subtask_progress"`
	Attachments     []AttachmentResponse `json:"attachments"`
	Comments        []CommentResponse    `json:"comments"`
	Activities      []ActivityResponse   `json:"activities"`
	CreatedAt       string               `json:"created_at"`
	UpdatedAt       string               `json:"updated_at"`
}

type ColumnResponse struct {
	ID        uint           `json:"id"`
	BoardID   uint           `json:"board_id"`
	Title     string         `json:"title"`
	Position  int            `json:"position"`
	WIPLimit  *int           `json:"wip_limit"`
	CardCount int            `json:"card_count"`
	OverLimit bool           `json:"over_limit"`
	Cards     []CardResponse `json:"cards"`
}

// BoardView is the denormalized board the client renders in one pass.
type BoardView struct {
	Board   BoardResponse    `json:"board"`
	Columns []ColumnResponse `json:"columns"`
	Labels  []LabelResponse  `json:"labels"`
	Members []UserSummary    `json:"members"`
	// Filtered is set when some cards may be hidden by the request filter.
	Filtered bool `json:"filtered"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserSummary(u domain.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, FullName: u.FullName, AvatarURL: u.AvatarURL}
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		UserSummary:      toUserSummary(u),
		ProfileCompleted: u.ProfileCompleted,
		CreatedAt:        formatTime(u.CreatedAt),
	}
}

func toBoardResponse(b domain.Board) BoardResponse {
	resp := BoardResponse{
		ID:             b.ID,
		Title:          b.Title,
		Type:           string(b.Type),
		OwnerID:        b.OwnerID,
		OrganizationID: b.OrganizationID,
		CreatedAt:      formatTime(b.CreatedAt),
		UpdatedAt:      formatTime(b.UpdatedAt),
	}
	if b.Organization != nil {
		resp.OrganizationName = b.Organization.Name
	}
	return resp
}

func toLabelResponse(l domain.Label) LabelResponse {
	return LabelResponse{ID: l.ID, BoardID: l.BoardID, Text: l.Text, Color: l.Color}
}

func toSubtaskResponse(s domain.Subtask) SubtaskResponse {
	return SubtaskResponse{ID: s.ID, CardID: s.CardID, Title: s.Title, Completed: s.Completed, Position: s.Position}
}

func toAttachmentResponse(a domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		CardID:      a.CardID,
		FileName:    a.FileName,
		FilePath:    a.FilePath,
		FileSize:    a.FileSize,
		SizeHuman:   humanize.IBytes(uint64(a.FileSize)),
		ContentType: a.ContentType,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   formatTime(a.CreatedAt),
	}
}

func toCommentResponse(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		CardID:    c.CardID,
		Content:   c.Content,
		Author:    toUserSummary(c.User),
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func toActivityResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		BoardID:   a.BoardID,
		CardID:    a.CardID,
		UserID:    a.UserID,
		Action:    string(a.Action),
		Details:   a.Details,
		CreatedAt: formatTime(a.CreatedAt),
	}
}

// toCardResponse maps a card and whatever children were preloaded on it.
// Child slices are never nil so clients can iterate without checks.
func toCardResponse(c domain.Card, boardID uint, now time.Time) CardResponse {
	resp := CardResponse{
		ID:          c.ID,
		ColumnID:    c.ColumnID,
		BoardID:     boardID,
		Title:       c.Title,
		Description: c.Description,
		Position:    c.Position,
		Overdue:     c.Overdue(now),
		Priority:    string(c.Priority),
		Labels:      make([]LabelResponse, 0, len(c.Labels)),
		Subtasks:    make([]SubtaskResponse, 0, len(c.Subtasks)),
		Attachments: make([]AttachmentResponse, 0, len(c.Attachments)),
		Comments:    make([]CommentResponse, 0, len(c.Comments)),
		Activities:  make([]ActivityResponse, 0, len(c.Activities)),
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
	if c.DueDate != nil {
		due := formatTime(*c.DueDate)
		resp.DueDate = &due
	}
	if c.Assignee != nil {
		a := toUserSummary(*c.Assignee)
		resp.Assignee = &a
	}
	for _, l := range c.Labels {
		resp.Labels = append(resp.Labels, toLabelResponse(l))
	}
	for _, s := range c.Subtasks {
		resp.Subtasks = append(resp.Subtasks, toSubtaskResponse(s))
		if s.Completed {
			resp.SubtaskProgress.Done++
		}
	}
	resp.SubtaskProgress.Total = len(c.Subtasks)
	for _, a := range c.Attachments {
		resp.Attachments = append(resp.Attachments, toAttachmentResponse(a))
	}
	for _, cm := range c.Comments {
		resp.Comments = append(resp.Comments, toCommentResponse(cm))
	}
	for _, a := range c.Activities {
		resp.Activities = append(resp.Activities, toActivityResponse(a))
	}
	return resp
}

func toColumnResponse(c domain.Column) ColumnResponse {
	return ColumnResponse{
		ID:       c.ID,
		BoardID:  c.BoardID,
		Title:    c.Title,
		Position: c.Position,
		WIPLimit: c.WIPLimit,
		Cards:    []CardResponse{},
	}
}

// BuildBoardView composes the nested board tree into the view model,
// keeping only cards that match filter. Columns are always present.
func BuildBoardView(board *domain.Board, members []domain.User, filter BoardFilter, now time.Time) *BoardView {
	view := &BoardView{
		Board:    toBoardResponse(*board),
		Columns:  make([]ColumnResponse, 0, len(board.Columns)),
		Labels:   make([]LabelResponse, 0, len(board.Labels)),
		Members:  make([]UserSummary, 0, len(members)),
		Filtered: filter.Active(),
	}
	for _, l := range board.Labels {
		view.Labels = append(view.Labels, toLabelResponse(l))
	}
	for _, m := range members {
		view.Members = append(view.Members, toUserSummary(m))
	}

	for _, col := range board.Columns {
		cv := toColumnResponse(col)
		cv.OverLimit = col.Full(len(col.Cards), 0)
		for _, card := range col.Cards {
			if view.Filtered && !filter.Match(card, now) {
				continue
			}
			cv.Cards = append(cv.Cards, toCardResponse(card, board.ID, now))
		}
		cv.CardCount = len(cv.Cards)
		view.Columns = append(view.Columns, cv)
	}
	return view
}

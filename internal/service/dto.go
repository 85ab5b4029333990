package service

// Request DTOs. Pointer fields distinguish "omitted" from "set to zero value".

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type MagicLinkRequest struct {
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateMemberRequest struct {
	Role string `json:"role"`
}

type CreateBoardRequest struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	OrganizationID *uint  `json:"organization_id"`
	// Columns overrides the default column set when non-empty.
	Columns []string `json:"columns"`
}

type UpdateBoardRequest struct {
	Title *string `json:"title"`
}

type CreateColumnRequest struct {
	Title    string `json:"title"`
	WIPLimit *int   `json:"wip_limit"`
}

type UpdateColumnRequest struct {
	Title         *string `json:"title"`
	WIPLimit      *int    `json:"wip_limit"`
	ClearWIPLimit bool    `json:"clear_wip_limit"`
}

type MoveColumnRequest struct {
	Position int `json:"position"`
}

type CreateCardRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
	AssigneeID  *uint   `json:"assignee_id"`
}

type UpdateCardRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	DueDate       *string `json:"due_date"`
	ClearDueDate  bool    `json:"clear_due_date"`
	Priority      *string `json:"priority"`
	AssigneeID    *uint   `json:"assignee_id"`
	ClearAssignee bool    `json:"clear_assignee"`
}

type MoveCardRequest struct {
	ColumnID uint `json:"column_id"`
	Position int  `json:"position"`
}

type CreateLabelRequest struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type UpdateLabelRequest struct {
	Text  *string `json:"text"`
	Color *string `json:"color"`
}

type CreateSubtaskRequest struct {
	Title string `json:"title"`
}

type UpdateSubtaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

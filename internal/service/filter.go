package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

type DueFilter string

const (
	DueAny     DueFilter = ""
	DueOverdue DueFilter = "overdue"
	DueToday   DueFilter = "today"
	DueWeek    DueFilter = "week"
	DueNone    DueFilter = "none"
)

// BoardFilter narrows the cards shown in a board view. The zero value
// matches every card. Within one criterion any value may match; across
// criteria every criterion must match.
type BoardFilter struct {
	Search     string
	Priorities []domain.Priority
	LabelIDs   []uint
	AssigneeID *uint
	Unassigned bool
	Due        DueFilter
}

// ParseBoardFilter reads a filter from query parameters:
//
//	search=text  priority=high,urgent  label=1,2  assignee=7|none  due=overdue|today|week|none
//
// List parameters may be repeated or comma separated.
func ParseBoardFilter(q url.Values) (BoardFilter, error) {
	var f BoardFilter
	f.Search = strings.TrimSpace(q.Get("search"))

	for _, p := range splitList(q["priority"]) {
		priority := domain.Priority(strings.ToLower(p))
		if err := domain.ValidatePriority(priority); err != nil {
			return BoardFilter{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		f.Priorities = append(f.Priorities, priority)
	}

	for _, raw := range splitList(q["label"]) {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return BoardFilter{}, fmt.Errorf("%w: invalid label id %q", ErrInvalidInput, raw)
		}
		f.LabelIDs = append(f.LabelIDs, uint(id))
	}

	switch assignee := strings.TrimSpace(q.Get("assignee")); assignee {
	case "":
	case "none", "unassigned":
		f.Unassigned = true
	default:
		id, err := strconv.ParseUint(assignee, 10, 64)
		if err != nil {
			return BoardFilter{}, fmt.Errorf("%w: invalid assignee %q", ErrInvalidInput, assignee)
		}
		f.AssigneeID = uintPtr(uint(id))
	}

	switch due := DueFilter(strings.ToLower(strings.TrimSpace(q.Get("due")))); due {
	case DueAny, DueOverdue, DueToday, DueWeek, DueNone:
		f.Due = due
	default:
		return BoardFilter{}, fmt.Errorf("%w: invalid due filter %q: must be one of [overdue today week none]", ErrInvalidInput, due)
	}
	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Active reports whether the filter excludes anything.
func (f BoardFilter) Active() bool {
	return f.Search != "" || len(f.Priorities) > 0 || len(f.LabelIDs) > 0 ||
		f.AssigneeID != nil || f.Unassigned || f.Due != DueAny
}

// Match reports whether card passes every criterion of the filter.
func (f BoardFilter) Match(card domain.Card, now time.Time) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(card.Title), needle) &&
			!strings.Contains(strings.ToLower(card.Description), needle) {
			return false
		}
	}

	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, card.Priority) {
		return false
	}

	if len(f.LabelIDs) > 0 && !hasAnyLabel(card.Labels, f.LabelIDs) {
		return false
	}

	if f.Unassigned && card.AssigneeID != nil {
		return false
	}
	if f.AssigneeID != nil && (card.AssigneeID == nil || *card.AssigneeID != *f.AssigneeID) {
		return false
	}

	return f.matchDue(card, now)
}

func (f BoardFilter) matchDue(card domain.Card, now time.Time) bool {
	switch f.Due {
	case DueAny:
		return true
	case DueNone:
		return card.DueDate == nil
	case DueOverdue:
		return card.Overdue(now)
	}
	if card.DueDate == nil {
		return false
	}
	start := domain.StartOfDay(now)
	end := start.AddDate(0, 0, 1)
	if f.Due == DueWeek {
		end = start.AddDate(0, 0, 7)
	}
	due := *card.DueDate
	return !due.Before(start) && due.Before(end)
}

func containsPriority(list []domain.Priority, p domain.Priority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

func hasAnyLabel(labels []domain.Label, ids []uint) bool {
	for _, l := range labels {
		for _, id := range ids {
			if l.ID == id {
				return true
			}
		}
	}
	return false
}

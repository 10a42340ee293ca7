// Package service defines the backend-agnostic types and interfaces for task operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// Priority is a task's priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	for _, v := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid priority: %s", s)
}

// Status is a task's progress state.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus matches s case-insensitively against the known statuses.
// Hyphens and underscores are accepted in place of the space in "In Progress".
func ParseStatus(s string) (Status, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, v := range Statuses {
		if strings.EqualFold(norm, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid status: %s", s)
}

// Category is one of a fixed, closed set of task categories.
type Category string

const (
	CategoryGeneral   Category = "General"
	CategoryWork      Category = "Work"
	CategoryPersonal  Category = "Personal"
	CategoryShopping  Category = "Shopping"
	CategoryHealth    Category = "Health"
	CategoryEducation Category = "Education"
	CategoryFinance   Category = "Finance"
	CategoryTravel    Category = "Travel"
	CategoryHome      Category = "Home"
	CategoryOther     Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryGeneral, CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth,
	CategoryEducation, CategoryFinance, CategoryTravel, CategoryHome, CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	for _, v := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid category: %s", s)
}

// Task represents a single task owned by the remote store.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Status      Status
	Category    Category
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue returns true if the task has a due date before now and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// IsDueSoon returns true if the task is due within the next 24 hours and is not completed.
func (t Task) IsDueSoon(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.After(now) && t.DueDate.Before(now.Add(24*time.Hour))
}

// WasEdited reports whether the task has been updated since creation.
func (t Task) WasEdited() bool {
	return !t.UpdatedAt.Equal(t.CreatedAt)
}

// TaskInput is the full payload for creating a task.
// A nil DueDate means the task has no due date.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Status      Status
	Category    Category
	Tags        []string
}

// Patch converts the input into a patch that sets every field.
func (in TaskInput) Patch() TaskPatch {
	title, desc := in.Title, in.Description
	prio, status, cat := in.Priority, in.Status, in.Category
	tags := append([]string{}, in.Tags...)
	p := TaskPatch{
		Title:       &title,
		Description: &desc,
		Priority:    &prio,
		Status:      &status,
		Category:    &cat,
		Tags:        &tags,
	}
	if in.DueDate != nil {
		d := *in.DueDate
		p.DueDate = &d
	} else {
		p.ClearDueDate = true
	}
	return p
}

// TaskPatch is a partial update. Only non-nil fields are sent.
// ClearDueDate sends an explicit "no due date" and wins over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *Priority
	Status       *Status
	Category     *Category
	Tags         *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Priority == nil && p.Status == nil && p.Category == nil && p.Tags == nil
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	return t
}

// Query carries the optional server-side filters of the task listing endpoint.
type Query struct {
	Status   Status
	Category Category
	Priority Priority
	Search   string
}

// Stats is the server-reported aggregate snapshot over the user's tasks.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	InProgress     int
	Overdue        int
	CompletionRate float64
}

// User identifies the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string
	Password string
}

// Registration are the sign-up inputs.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	AccessToken string
	User        User
}

// Health is the API health check response.
type Health struct {
	Status  string
	Message string
}

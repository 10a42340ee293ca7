package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/service"
)

// flexID accepts an id sent as a JSON number or a JSON string.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = flexID(n.String())
	return nil
}

type wireTask struct {
	ID          flexID   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	DueDate     *string  `json:"due_date"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type tasksResponse struct {
	Tasks []wireTask `json:"tasks"`
}

type taskResponse struct {
	Task wireTask `json:"task"`
}

type statsResponse struct {
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	OverdueTasks    int     `json:"overdue_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
}

type wireUser struct {
	ID    flexID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	AccessToken string   `json:"access_token"`
	User        wireUser `json:"user"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
	Msg   string `json:"msg"` // JWT middleware errors
}

// timestampLayouts are tried in order; naive timestamps are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	service.DateLayout,
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}

func (w wireTask) toTask() (service.Task, error) {
	t := service.Task{
		ID:       string(w.ID),
		Title:    w.Title,
		Priority: service.Priority(w.Priority),
		Status:   service.Status(w.Status),
		Category: service.Category(w.Category),
		Tags:     w.Tags,
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if w.DueDate != nil && *w.DueDate != "" {
		d, err := parseTimestamp(*w.DueDate)
		if err != nil {
			return service.Task{}, fmt.Errorf("task %s due_date: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	var err error
	if w.CreatedAt != "" {
		if t.CreatedAt, err = parseTimestamp(w.CreatedAt); err != nil {
			return service.Task{}, fmt.Errorf("task %s created_at: %w", t.ID, err)
		}
	}
	if w.UpdatedAt != "" {
		if t.UpdatedAt, err = parseTimestamp(w.UpdatedAt); err != nil {
			return service.Task{}, fmt.Errorf("task %s updated_at: %w", t.ID, err)
		}
	}
	return t, nil
}

// createBody is the full payload for POST /api/tasks.
func createBody(in service.TaskInput) map[string]any {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	body := map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"priority":    string(in.Priority),
		"status":      string(in.Status),
		"category":    string(in.Category),
		"tags":        tags,
		"due_date":    nil,
	}
	if in.DueDate != nil {
		body["due_date"] = in.DueDate.Format(service.DateLayout)
	}
	return body
}

// patchBody holds only the fields set in p.
func patchBody(p service.TaskPatch) map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.ClearDueDate {
		body["due_date"] = nil
	} else if p.DueDate != nil {
		body["due_date"] = p.DueDate.Format(service.DateLayout)
	}
	if p.Priority != nil {
		body["priority"] = string(*p.Priority)
	}
	if p.Status != nil {
		body["status"] = string(*p.Status)
	}
	if p.Category != nil {
		body["category"] = string(*p.Category)
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		body["tags"] = tags
	}
	return body
}

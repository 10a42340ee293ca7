// Package tasks holds the client-side task logic: filtering, the task board
// (the cached list plus the active criteria), the create/edit form, and the
// status quick-update path.
package tasks

import (
	"strings"

	"taskdeck/internal/service"
)

// Criteria narrows the displayed task list. A zero field is unconstrained;
// all set fields must match.
type Criteria struct {
	Status   service.Status
	Category service.Category
	Priority service.Priority
	Search   string
}

// Active reports whether any criterion constrains the list.
func (c Criteria) Active() bool {
	return c.Status != "" || c.Category != "" || c.Priority != "" || c.Search != ""
}

// Matches reports whether t satisfies every active criterion.
// Search is a case-insensitive substring match against title or description.
func (c Criteria) Matches(t service.Task) bool {
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	return true
}

// Visible returns the tasks matching c, in input order.
// With no active criteria the result has every input task.
func Visible(all []service.Task, c Criteria) []service.Task {
	out := make([]service.Task, 0, len(all))
	for _, t := range all {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

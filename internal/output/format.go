// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/service"
)

const (
	// MaxTags is how many tags a task line shows before "+N more".
	MaxTags = 3

	// TimestampLayout renders created/updated times.
	TimestampLayout = "2006-01-02 15:04"

	// BadgeOverdue and BadgeDueSoon mark tasks by due date.
	BadgeOverdue = "overdue"
	BadgeDueSoon = "due soon"
)

// FormatTask formats a task line for the list command.
// Format: "{ID:>4}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}[ [badge]][  #tags]\n"
func FormatTask(w io.Writer, task service.Task, now time.Time) {
	line := fmt.Sprintf("%4s  %-11s  %-6s  %s", task.ID, task.Status, task.Priority, normalizeTitle(task.Title))
	if b := Badge(task, now); b != "" {
		line += " [" + b + "]"
	}
	if tags := TagSummary(task.Tags); tags != "" {
		line += "  " + tags
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats every field of a task, one per line.
// Empty description, due date and tags are omitted; Updated only appears
// when the task was edited after creation.
func FormatTaskDetail(w io.Writer, task service.Task, now time.Time) {
	field := func(name, value string) {
		fmt.Fprintf(w, "%-12s %s\n", name+":", value)
	}
	field("ID", task.ID)
	field("Title", normalizeTitle(task.Title))
	if d := strings.TrimSpace(task.Description); d != "" {
		field("Description", d)
	}
	field("Status", string(task.Status))
	field("Priority", string(task.Priority))
	field("Category", string(task.Category))
	if task.DueDate != nil {
		due := task.DueDate.Format(service.DateLayout)
		if b := Badge(task, now); b != "" {
			due += " (" + b + ")"
		}
		field("Due", due)
	}
	if len(task.Tags) > 0 {
		field("Tags", strings.Join(task.Tags, ", "))
	}
	if !task.CreatedAt.IsZero() {
		field("Created", task.CreatedAt.Format(TimestampLayout))
	}
	if task.WasEdited() && !task.UpdatedAt.IsZero() {
		field("Updated", task.UpdatedAt.Format(TimestampLayout))
	}
}

// FormatStats prints the stats cards followed by pending and the rate.
func FormatStats(w io.Writer, s service.Stats) {
	fmt.Fprintf(w, "Total:        %d\n", s.Total)
	fmt.Fprintf(w, "Completed:    %d\n", s.Completed)
	fmt.Fprintf(w, "In Progress:  %d\n", s.InProgress)
	fmt.Fprintf(w, "Overdue:      %d\n", s.Overdue)
	fmt.Fprintf(w, "Pending:      %d\n", s.Pending)
	fmt.Fprintf(w, "Completion:   %s\n", FormatRate(s.CompletionRate))
}

// FormatRate renders a completion percentage with at most two decimals and
// no trailing zeros: 66.67%, 0%, 100%.
func FormatRate(rate float64) string {
	rounded := math.Round(rate*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
}

// Badge returns the due-date badge for a task, or "".
func Badge(task service.Task, now time.Time) string {
	switch {
	case task.IsOverdue(now):
		return BadgeOverdue
	case task.IsDueSoon(now):
		return BadgeDueSoon
	default:
		return ""
	}
}

// VisibleTags returns the tags a task line shows and how many are hidden.
func VisibleTags(tags []string) (shown []string, more int) {
	if len(tags) <= MaxTags {
		return tags, 0
	}
	return tags[:MaxTags], len(tags) - MaxTags
}

// TagSummary renders up to MaxTags tags as "#a #b #c +N more".
func TagSummary(tags []string) string {
	shown, more := VisibleTags(tags)
	parts := make([]string, 0, len(shown)+1)
	for _, t := range shown {
		parts = append(parts, "#"+t)
	}
	if more > 0 {
		parts = append(parts, fmt.Sprintf("+%d more", more))
	}
	return strings.Join(parts, " ")
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

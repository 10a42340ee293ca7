package tasks_test

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

func TestVisible(t *testing.T) {
	all := []service.Task{
		{ID: "1", Title: "Buy milk", Description: "2 litres", Status: service.StatusPending, Category: service.CategoryShopping, Priority: service.PriorityLow},
		{ID: "2", Title: "Write report", Description: "Quarterly numbers", Status: service.StatusInProgress, Category: service.CategoryWork, Priority: service.PriorityHigh},
		{ID: "3", Title: "Dentist", Description: "Book a check-up", Status: service.StatusCompleted, Category: service.CategoryHealth, Priority: service.PriorityMedium},
		{ID: "4", Title: "Pay rent", Description: "", Status: service.StatusPending, Category: service.CategoryFinance, Priority: service.PriorityHigh},
	}

	tests := []struct {
		name     string
		criteria tasks.Criteria
		want     []string
	}{
		{"no criteria", tasks.Criteria{}, []string{"1", "2", "3", "4"}},
		{"status", tasks.Criteria{Status: service.StatusPending}, []string{"1", "4"}},
		{"category", tasks.Criteria{Category: service.CategoryWork}, []string{"2"}},
		{"priority", tasks.Criteria{Priority: service.PriorityHigh}, []string{"2", "4"}},
		{"search title case-insensitive", tasks.Criteria{Search: "MILK"}, []string{"1"}},
		{"search description", tasks.Criteria{Search: "quarterly"}, []string{"2"}},
		{"combined", tasks.Criteria{Status: service.StatusPending, Priority: service.PriorityHigh}, []string{"4"}},
		{"no match", tasks.Criteria{Search: "holiday"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tasks.Visible(all, tt.criteria))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisible_CompletedOnly(t *testing.T) {
	all := []service.Task{
		{ID: "A", Title: "A", Status: service.StatusPending},
		{ID: "B", Title: "B", Status: service.StatusCompleted},
	}
	got := ids(tasks.Visible(all, tasks.Criteria{Status: service.StatusCompleted}))
	if len(got) != 1 || got[0] != "B" {
		t.Errorf("expected [B], got %v", got)
	}
}

func TestCriteria_Active(t *testing.T) {
	if (tasks.Criteria{}).Active() {
		t.Error("zero criteria should be inactive")
	}
	if !(tasks.Criteria{Search: "x"}).Active() {
		t.Error("search should make criteria active")
	}
}

func taskGenerator() *rapid.Generator[service.Task] {
	return rapid.Custom(func(t *rapid.T) service.Task {
		return service.Task{
			ID:          rapid.StringMatching(`[0-9]{1,6}`).Draw(t, "id"),
			Title:       rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(t, "title"),
			Description: rapid.StringMatching(`[A-Za-z ]{0,30}`).Draw(t, "description"),
			Status:      rapid.SampledFrom(service.Statuses).Draw(t, "status"),
			Category:    rapid.SampledFrom(service.Categories).Draw(t, "category"),
			Priority:    rapid.SampledFrom(service.Priorities).Draw(t, "priority"),
		}
	})
}

func criteriaGenerator() *rapid.Generator[tasks.Criteria] {
	return rapid.Custom(func(t *rapid.T) tasks.Criteria {
		var c tasks.Criteria
		if rapid.Bool().Draw(t, "hasStatus") {
			c.Status = rapid.SampledFrom(service.Statuses).Draw(t, "status")
		}
		if rapid.Bool().Draw(t, "hasCategory") {
			c.Category = rapid.SampledFrom(service.Categories).Draw(t, "category")
		}
		if rapid.Bool().Draw(t, "hasPriority") {
			c.Priority = rapid.SampledFrom(service.Priorities).Draw(t, "priority")
		}
		c.Search = rapid.StringMatching(`[a-z]{0,3}`).Draw(t, "search")
		return c
	})
}

func testVisible_Properties(t *rapid.T) {
	all := rapid.SliceOf(taskGenerator()).Draw(t, "tasks")
	c := criteriaGenerator().Draw(t, "criteria")

	got := tasks.Visible(all, c)

	// Every visible task satisfies every criterion.
	for _, task := range got {
		if !c.Matches(task) {
			t.Fatalf("visible task %+v does not match %+v", task, c)
		}
	}

	// Subset of the input, in input order.
	j := 0
	for _, task := range got {
		for j < len(all) && all[j].ID != task.ID {
			j++
		}
		if j == len(all) {
			t.Fatalf("visible task %s out of order or not in input", task.ID)
		}
		j++
	}

	// Nothing matching is dropped.
	matching := 0
	for _, task := range all {
		if c.Matches(task) {
			matching++
		}
	}
	if matching != len(got) {
		t.Fatalf("expected %d visible tasks, got %d", matching, len(got))
	}

	// Cleared criteria restore the full list.
	if n := len(tasks.Visible(all, tasks.Criteria{})); n != len(all) {
		t.Fatalf("cleared criteria show %d of %d tasks", n, len(all))
	}
}

func TestVisible_Properties(t *testing.T) {
	rapid.Check(t, testVisible_Properties)
}

func ids(in []service.Task) []string {
	var out []string
	for _, t := range in {
		out = append(out, t.ID)
	}
	return out
}

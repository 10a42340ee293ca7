package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/testutil"
)

func newConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	return &config.Config{Dir: t.TempDir(), Quiet: quiet}
}

func loggedIn() *session.Context {
	return session.New(service.AuthResult{
		AccessToken: "token-1",
		User:        service.User{ID: "1", Name: "Sam", Email: "sam@example.com"},
	}, time.Now())
}

// runCommand is a helper to run a command with FakeService. Flags in args
// are parsed the way the dispatcher parses them.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runWith(t, cmd, newConfig(t, quiet), loggedIn(), svc, args)
}

func runWith(t *testing.T, cmd commands.Command, cfg *config.Config, sess *session.Context, svc *testutil.FakeService, args []string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var s service.Service
	if svc != nil {
		s = svc
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, sess, s, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{ID: "1", Title: "Buy milk", Category: service.CategoryShopping})
	svc.AddTask(service.Task{ID: "2", Title: "Write report", Status: service.StatusCompleted, Category: service.CategoryWork})
	return svc
}

func expectCode(t *testing.T, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d", want, got)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdeck 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code)
	if !strings.Contains(stdout, "Usage:") || !strings.Contains(stdout, "taskdeck export") {
		t.Errorf("unexpected help output %q", stdout)
	}
}

func TestHelpCommand_ForCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"add"}, false)

	expectCode(t, exitcode.Success, code)
	if !strings.HasPrefix(stdout, "Create a task\n") {
		t.Errorf("unexpected output %q", stdout)
	}

	_, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"nope"}, false)
	expectCode(t, exitcode.UserError, code)
	if stderr != "error: unknown command: nope\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_Tasks(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, seeded(), nil, false)

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   2  Completed    Medium  Write report\n   1  Pending      Medium  Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, false)
	expectCode(t, exitcode.Success, code)
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, true)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_Filters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"status", []string{"--status", "completed"}, "   2  Completed    Medium  Write report\n"},
		{"category", []string{"--category", "shopping"}, "   1  Pending      Medium  Buy milk\n"},
		{"search", []string{"--search", "MILK"}, "   1  Pending      Medium  Buy milk\n"},
		{"combined", []string{"--status", "pending", "--category", "work"}, "no tasks match the current filters\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := runCommand(t, &commands.ListCmd{}, seeded(), tt.args, false)
			expectCode(t, exitcode.Success, code)
			if stdout != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--priority", "urgent"}, false)

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: invalid priority: urgent\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("ListTasks") != 0 {
		t.Error("invalid filters must not reach the API")
	}
}

func TestListCommand_Long(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, seeded(), []string{"--long", "--status", "pending"}, false)
	expectCode(t, exitcode.Success, code)
	if !strings.Contains(stdout, "Title:       Buy milk\n") || !strings.Contains(stdout, "Category:    Shopping\n") {
		t.Errorf("unexpected detail output %q", stdout)
	}
}

func TestListCommand_Cached(t *testing.T) {
	cfg := newConfig(t, true)
	svc := seeded()

	if _, _, code := runWith(t, &commands.ListCmd{}, cfg, loggedIn(), svc, nil); code != exitcode.Success {
		t.Fatalf("initial list failed with %d", code)
	}

	svc.ListTasksErr = errors.New("connection refused")
	stdout, stderr, code := runWith(t, &commands.ListCmd{}, cfg, loggedIn(), svc, []string{"--cached"})

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   2  Completed    Medium  Write report\n   1  Pending      Medium  Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_CachedEmpty(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ListCmd{}, seeded(), []string{"--cached"}, false)

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: no cached tasks (run: taskdeck list)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.ListTasksErr = errors.New("boom")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, exitcode.BackendError, code)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: Failed to fetch tasks\nerror: backend error: fetch tasks: boom\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListCommand_Unauthorized(t *testing.T) {
	svc := seeded()
	svc.ListTasksErr = fmt.Errorf("Token has expired: %w", service.ErrUnauthorized)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, exitcode.AuthError, code)
	if !strings.HasSuffix(stderr, "error: session expired or revoked (run: taskdeck login)\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	args := []string{"--priority", "high", "--category", "work", "--tag", "q1", "--tag", "q1,report", "--due", "2030-01-02", "Write", "report"}

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "Task created successfully!\n   1  Pending      High    Write report  #q1 #report\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	got, ok := svc.Stored("1")
	if !ok {
		t.Fatal("task was not created")
	}
	if got.Category != service.CategoryWork || got.DueDate == nil || got.DueDate.Format(service.DateLayout) != "2030-01-02" {
		t.Errorf("unexpected stored task %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "q1" || got.Tags[1] != "report" {
		t.Errorf("expected tags [q1 report], got %v", got.Tags)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.AddCmd{}, testutil.NewFakeService(), []string{"Buy", "milk"}, true)
	expectCode(t, exitcode.Success, code)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no title", nil, "error: Task title is required\n"},
		{"blank title", []string{"   "}, "error: Task title is required\n"},
		{"bad date", []string{"--due", "tomorrow", "Buy milk"}, "error: invalid due date: tomorrow\n"},
		{"bad priority", []string{"--priority", "urgent", "Buy milk"}, "error: invalid priority: urgent\n"},
		{"bad category", []string{"--category", "chores", "Buy milk"}, "error: invalid category: chores\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, tt.args, false)
			expectCode(t, exitcode.UserError, code)
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
			if svc.Calls("CreateTask") != 0 {
				t.Error("invalid input must not reach the API")
			}
		})
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy milk"}, false)

	expectCode(t, exitcode.BackendError, code)
	expected := "error: Failed to create task\nerror: backend error: create task: boom\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestEditCommand(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "Buy oat milk", "--no-due", "1"}, false)

	expectCode(t, exitcode.Success, code)
	expected := "Task updated successfully!\n   1  Pending      Medium  Buy oat milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	p := svc.LastPatch
	if p.Title == nil || *p.Title != "Buy oat milk" || !p.ClearDueDate {
		t.Errorf("unexpected patch %+v", p)
	}
	if p.Description != nil || p.Status != nil || p.Priority != nil || p.Category != nil || p.Tags != nil {
		t.Errorf("only the given fields should be sent, got %+v", p)
	}
}

func TestEditCommand_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no id", []string{"--title", "x"}, "error: task id required\n"},
		{"nothing", []string{"1"}, "error: nothing to update\n"},
		{"blank title", []string{"--title", "  ", "1"}, "error: Task title is required\n"},
		{"due conflict", []string{"--due", "2030-01-01", "--no-due", "1"}, "error: cannot use both --due and --no-due\n"},
		{"tag conflict", []string{"--tag", "a", "--no-tags", "1"}, "error: cannot use both --tag and --no-tags\n"},
		{"bad status", []string{"--status", "blocked", "1"}, "error: invalid status: blocked\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seeded()
			_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, tt.args, false)
			expectCode(t, exitcode.UserError, code)
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
			if svc.Calls("UpdateTask") != 0 {
				t.Error("invalid input must not reach the API")
			}
		})
	}
}

func TestEditCommand_NotFound(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.EditCmd{}, seeded(), []string{"--priority", "low", "99"}, false)

	expectCode(t, exitcode.UserError, code)
	expected := "error: Failed to update task\nerror: task not found\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestStatusCommand(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.StatusCmd{}, svc, []string{"1", "in", "progress"}, false)

	expectCode(t, exitcode.Success, code)
	expected := "Task updated successfully!\n   1  In Progress  Medium  Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	p := svc.LastPatch
	if p.Status == nil || *p.Status != service.StatusInProgress {
		t.Fatalf("expected status patch, got %+v", p)
	}
	if p.Title != nil || p.Description != nil || p.Tags != nil || p.DueDate != nil || p.ClearDueDate {
		t.Errorf("expected a status-only patch, got %+v", p)
	}
}

func TestStatusCommand_AlreadySet(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.StatusCmd{}, svc, []string{"2", "completed"}, false)

	expectCode(t, exitcode.Success, code)
	if stdout != "task 2 is already Completed\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if svc.Calls("UpdateTask") != 0 {
		t.Error("an unchanged status must not be sent")
	}
}

func TestStatusCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"no id", nil, exitcode.UserError, "error: task id required\n"},
		{"no status", []string{"1"}, exitcode.UserError, "error: status required\n"},
		{"bad status", []string{"1", "blocked"}, exitcode.UserError, "error: invalid status: blocked\n"},
		{"unknown task", []string{"99", "pending"}, exitcode.UserError, "error: task not found: 99\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCommand(t, &commands.StatusCmd{}, seeded(), tt.args, false)
			expectCode(t, tt.code, code)
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestStatusCommand_Failure(t *testing.T) {
	svc := seeded()
	svc.UpdateTaskErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.StatusCmd{}, svc, []string{"1", "completed"}, false)

	expectCode(t, exitcode.BackendError, code)
	expected := "error: Failed to update task\nerror: backend error: update status of task 1: boom\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDoneCommand(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)

	expectCode(t, exitcode.Success, code)
	expected := "Task updated successfully!\n   1  Completed    Medium  Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestRmCommand_Force(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.RmCmd{}, svc, []string{"--force", "1"}, false)

	expectCode(t, exitcode.Success, code)
	if stdout != "Task deleted successfully!\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if _, ok := svc.Stored("1"); ok {
		t.Error("task should be deleted")
	}
}

func TestRmCommand_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		deleted bool
		stdout  string
	}{
		{"yes", "y\n", true, "Task deleted successfully!\n"},
		{"no", "n\n", false, "cancelled\n"},
		{"eof", "", false, "cancelled\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seeded()
			cmd := &commands.RmCmd{}
			cmd.SetInput(strings.NewReader(tt.input))

			stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

			expectCode(t, exitcode.Success, code)
			if stdout != tt.stdout {
				t.Errorf("expected %q, got %q", tt.stdout, stdout)
			}
			if stderr != `Delete "Buy milk"? [y/N] ` {
				t.Errorf("unexpected prompt %q", stderr)
			}
			if _, ok := svc.Stored("1"); ok == tt.deleted {
				t.Errorf("expected deleted=%v", tt.deleted)
			}
		})
	}
}

func TestRmCommand_NotFound(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, seeded(), []string{"--force", "99"}, false)

	expectCode(t, exitcode.UserError, code)
	expected := "error: Failed to delete task\nerror: task not found\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestStatsCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.StatsCmd{}, seeded(), nil, false)

	expectCode(t, exitcode.Success, code)
	expected := "Total:        2\n" +
		"Completed:    1\n" +
		"In Progress:  0\n" +
		"Overdue:      0\n" +
		"Pending:      1\n" +
		"Completion:   50%\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestStatsCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.StatsErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.StatsCmd{}, svc, nil, false)
	expectCode(t, exitcode.BackendError, code)
	if stderr != "error: backend error: boom\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExportCommand_JSON(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ExportCmd{}, seeded(), []string{"--format", "json", "--status", "completed"}, false)
	expectCode(t, exitcode.Success, code)

	var report struct {
		Stats struct {
			Total int `json:"total_tasks"`
		} `json:"stats"`
		Tasks []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if report.Stats.Total != 2 {
		t.Errorf("stats should cover every task, got %d", report.Stats.Total)
	}
	if len(report.Tasks) != 1 || report.Tasks[0].ID != "2" {
		t.Errorf("expected only task 2, got %+v", report.Tasks)
	}
}

func TestExportCommand_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	stdout, _, code := runCommand(t, &commands.ExportCmd{}, seeded(), []string{"--out", path}, false)

	expectCode(t, exitcode.Success, code)
	if stdout != "exported 2 tasks to "+path+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "id,title,description,status") {
		t.Errorf("unexpected CSV %q", data)
	}
}

func TestExportCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"--format", "xml"}, "error: unknown format xml (want csv, json or pdf)\n"},
		{"pdf to stdout", []string{"--format", "pdf"}, "error: pdf export needs --out\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCommand(t, &commands.ExportCmd{}, seeded(), tt.args, false)
			expectCode(t, exitcode.UserError, code)
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

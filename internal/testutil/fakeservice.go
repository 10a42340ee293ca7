// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/service"
)

// FakeNow is the fixed clock FakeService stamps records with.
var FakeNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// FakeService is an in-memory implementation of service.Service for testing.
// Stats are computed from the stored tasks the way the API does.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task // newest first
	nextID int
	calls  map[string]int

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	StatsErr      error

	// BeforeUpdate runs before UpdateTask touches the store; tests use it to
	// hold a call in flight.
	BeforeUpdate func(ctx context.Context, id string, p service.TaskPatch)

	// LastQuery and LastPatch record the most recent arguments.
	LastQuery service.Query
	LastPatch service.TaskPatch

	// Now is the clock for created and updated timestamps.
	Now func() time.Time
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		calls:  make(map[string]int),
		Now:    func() time.Time { return FakeNow },
	}
}

// AddTask stores a task as if created on the server and returns it. Missing
// metadata gets the API defaults; an empty ID is assigned.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = strconv.Itoa(f.nextID)
	}
	if n, err := strconv.Atoi(t.ID); err == nil && n >= f.nextID {
		f.nextID = n + 1
	}
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	if t.Status == "" {
		t.Status = service.StatusPending
	}
	if t.Category == "" {
		t.Category = service.CategoryGeneral
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = f.Now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t
}

// Calls returns how many times the named method was called.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// Stored returns a copy of the stored task.
func (f *FakeService) Stored(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, q service.Query) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	f.LastQuery = q
	f.mu.Unlock()

	f.mu.RLock()
	defer f.mu.RUnlock()
	search := strings.ToLower(q.Search)
	result := make([]service.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	return f.AddTask(service.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		Category:    in.Category,
		Tags:        append([]string{}, in.Tags...),
	}), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, p service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.BeforeUpdate != nil {
		f.BeforeUpdate(ctx, id, p)
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPatch = p

	for i, t := range f.tasks {
		if t.ID == id {
			t = p.Apply(t)
			t.UpdatedAt = f.Now().Add(time.Minute)
			f.tasks[i] = t
			return t, nil
		}
	}
	return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// Stats implements service.Service.
func (f *FakeService) Stats(ctx context.Context) (service.Stats, error) {
	f.record("Stats")
	if f.StatsErr != nil {
		return service.Stats{}, f.StatsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	now := f.Now()
	var s service.Stats
	for _, t := range f.tasks {
		s.Total++
		switch t.Status {
		case service.StatusCompleted:
			s.Completed++
		case service.StatusPending:
			s.Pending++
		case service.StatusInProgress:
			s.InProgress++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = math.Round(float64(s.Completed)/float64(s.Total)*10000) / 100
	}
	return s, nil
}

// FakeAuthenticator is an in-memory implementation of service.Authenticator.
type FakeAuthenticator struct {
	mu    sync.Mutex
	users map[string]fakeUser // email -> user

	LoginErr    error
	RegisterErr error
	HealthErr   error
}

type fakeUser struct {
	user     service.User
	password string
}

// NewFakeAuthenticator creates a FakeAuthenticator with no accounts.
func NewFakeAuthenticator() *FakeAuthenticator {
	return &FakeAuthenticator{users: make(map[string]fakeUser)}
}

// AddUser registers an account directly.
func (a *FakeAuthenticator) AddUser(name, email, password string) service.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := service.User{ID: strconv.Itoa(len(a.users) + 1), Name: name, Email: email}
	a.users[email] = fakeUser{user: u, password: password}
	return u
}

// Login implements service.Authenticator.
func (a *FakeAuthenticator) Login(ctx context.Context, c service.Credentials) (service.AuthResult, error) {
	if a.LoginErr != nil {
		return service.AuthResult{}, a.LoginErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[c.Email]
	if !ok || u.password != c.Password {
		return service.AuthResult{}, fmt.Errorf("invalid email or password: %w", service.ErrUnauthorized)
	}
	return service.AuthResult{AccessToken: "token-" + u.user.ID, User: u.user}, nil
}

// Register implements service.Authenticator.
func (a *FakeAuthenticator) Register(ctx context.Context, r service.Registration) (service.AuthResult, error) {
	if a.RegisterErr != nil {
		return service.AuthResult{}, a.RegisterErr
	}
	a.mu.Lock()
	_, exists := a.users[r.Email]
	a.mu.Unlock()
	if exists {
		return service.AuthResult{}, fmt.Errorf("user with this email already exists: %w", service.ErrRejected)
	}
	u := a.AddUser(r.Name, r.Email, r.Password)
	return service.AuthResult{AccessToken: "token-" + u.ID, User: u}, nil
}

// Health implements service.Authenticator.
func (a *FakeAuthenticator) Health(ctx context.Context) (service.Health, error) {
	if a.HealthErr != nil {
		return service.Health{}, a.HealthErr
	}
	return service.Health{Status: "healthy", Message: "ToDo API is running"}, nil
}

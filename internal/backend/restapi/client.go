// Package restapi implements service.Service and service.Authenticator over
// the task API's JSON REST surface.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/logging"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

const (
	tasksPath    = "/api/tasks"
	statsPath    = "/api/stats"
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	healthPath   = "/api/health"

	// RequestIDHeader carries a per-request UUID for correlating logs.
	RequestIDHeader = "X-Request-ID"
)

// Client implements service.Service and service.Authenticator.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

var (
	_ service.Service       = (*Client)(nil)
	_ service.Authenticator = (*Client)(nil)
)

// New creates a client authenticated with the session's bearer token.
func New(cfg *config.Config, sess *session.Context) (*Client, error) {
	if !sess.Authenticated() {
		return nil, fmt.Errorf("%w (run: taskdeck login)", service.ErrUnauthorized)
	}
	return NewWithToken(cfg.APIURL(), sess.Token, cfg.Timeout()), nil
}

// NewAnonymous creates a client for the unauthenticated endpoints.
func NewAnonymous(cfg *config.Config) *Client {
	return NewWithHTTPClient(cfg.APIURL(), http.DefaultClient, cfg.Timeout())
}

// NewWithToken creates a client that sends tok as a bearer token.
func NewWithToken(baseURL string, tok *oauth2.Token, timeout time.Duration) *Client {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(tok))
	return NewWithHTTPClient(baseURL, httpClient, timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, q service.Query) ([]service.Task, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if q.Category != "" {
		params.Set("category", string(q.Category))
	}
	if q.Priority != "" {
		params.Set("priority", string(q.Priority))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var resp tasksResponse
	if err := c.do(ctx, http.MethodGet, tasksPath, params, nil, &resp); err != nil {
		return nil, err
	}

	result := make([]service.Task, 0, len(resp.Tasks))
	for _, w := range resp.Tasks {
		t, err := w.toTask()
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPost, tasksPath, nil, createBody(in), &resp); err != nil {
		return service.Task{}, err
	}
	return resp.Task.toTask()
}

// UpdateTask implements service.Service. Only the fields set in p are sent.
func (c *Client) UpdateTask(ctx context.Context, id string, p service.TaskPatch) (service.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, patchBody(p), &resp); err != nil {
		return service.Task{}, err
	}
	return resp.Task.toTask()
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// Stats implements service.Service.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	var resp statsResponse
	if err := c.do(ctx, http.MethodGet, statsPath, nil, nil, &resp); err != nil {
		return service.Stats{}, err
	}
	return service.Stats{
		Total:          resp.TotalTasks,
		Completed:      resp.CompletedTasks,
		Pending:        resp.PendingTasks,
		InProgress:     resp.InProgressTasks,
		Overdue:        resp.OverdueTasks,
		CompletionRate: resp.CompletionRate,
	}, nil
}

// Login implements service.Authenticator.
func (c *Client) Login(ctx context.Context, cred service.Credentials) (service.AuthResult, error) {
	body := map[string]string{"email": cred.Email, "password": cred.Password}
	return c.auth(ctx, loginPath, body)
}

// Register implements service.Authenticator.
func (c *Client) Register(ctx context.Context, r service.Registration) (service.AuthResult, error) {
	body := map[string]string{"name": r.Name, "email": r.Email, "password": r.Password}
	return c.auth(ctx, registerPath, body)
}

// Health implements service.Authenticator.
func (c *Client) Health(ctx context.Context) (service.Health, error) {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, healthPath, nil, nil, &resp); err != nil {
		return service.Health{}, err
	}
	return service.Health{Status: resp.Status, Message: resp.Message}, nil
}

func (c *Client) auth(ctx context.Context, path string, body any) (service.AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return service.AuthResult{}, err
	}
	if resp.AccessToken == "" {
		return service.AuthResult{}, errors.New("response has no access token")
	}
	return service.AuthResult{
		AccessToken: resp.AccessToken,
		User: service.User{
			ID:    string(resp.User.ID),
			Name:  resp.User.Name,
			Email: resp.User.Email,
		},
	}, nil
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

// do sends one request under the per-call timeout and decodes a 2xx JSON
// body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	logger := logging.From(ctx)
	logger.Debug("api request", "method", method, "path", path, "request_id", reqID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(ctx, err)
	}
	defer resp.Body.Close()

	logger.Debug("api response", "status", resp.StatusCode, "request_id", reqID, "elapsed", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"taskdeck/internal/service"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap classifies the response so callers can use errors.Is with the
// service sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return service.ErrUnauthorized
	case http.StatusNotFound:
		return service.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict:
		return service.ErrRejected
	default:
		return nil
	}
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		e.Message = er.Error
		if e.Message == "" {
			e.Message = er.Msg
		}
	}
	return e
}

// wrapError maps transport failures to the service sentinels.
func wrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return service.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return fmt.Errorf("cannot reach the API: %w", err)
	}
	return err
}

// Package session holds the process-wide session context: the signed-in
// user, their access token, and the display theme.
//
// The context is loaded explicitly at startup, passed to the components that
// need it, and torn down on logout. Nothing looks it up ambiently.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
)

// TokenLifetime is how long the API honours an issued access token.
const TokenLifetime = 7 * 24 * time.Hour

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Context is the session state shared by the CLI commands and the dashboard.
type Context struct {
	User  service.User
	Token *oauth2.Token
	Theme string
}

// stored is the on-disk form of a session.
type stored struct {
	User  service.User  `json:"user"`
	Token *oauth2.Token `json:"token"`
}

// New builds a session from a successful login or registration.
// The token is stamped with the API's token lifetime starting at now.
func New(res service.AuthResult, now time.Time) *Context {
	return &Context{
		User: res.User,
		Token: &oauth2.Token{
			AccessToken: res.AccessToken,
			TokenType:   "Bearer",
			Expiry:      now.Add(TokenLifetime),
		},
	}
}

// Authenticated reports whether the session carries a usable token.
func (c *Context) Authenticated() bool {
	return c != nil && c.Token != nil && c.Token.Valid()
}

// Load reads the session for cfg. The theme always comes from settings, so a
// context is returned even when ErrNoSession is.
func Load(cfg *config.Config) (*Context, error) {
	ctx := &Context{Theme: cfg.Theme()}

	data, err := os.ReadFile(cfg.SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return ctx, ErrNoSession
	}
	if err != nil {
		return ctx, fmt.Errorf("failed to read %s: %w", config.SessionFile, err)
	}

	var s stored
	if err := json.Unmarshal(data, &s); err != nil {
		return ctx, fmt.Errorf("invalid %s: %w", config.SessionFile, err)
	}
	ctx.User = s.User
	ctx.Token = s.Token
	return ctx, nil
}

// Save writes the session for cfg with mode 0600.
func Save(cfg *config.Config, c *Context) error {
	if c == nil || c.Token == nil {
		return errors.New("session has no token")
	}
	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(stored{User: c.User, Token: c.Token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.SessionPath(), data, 0600)
}

// Clear tears the session down. Clearing an absent session is not an error.
func Clear(cfg *config.Config) error {
	if err := cfg.RemoveSession(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

package commands_test

import (
	"errors"
	"os"
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

func anonymous() *session.Context {
	return &session.Context{Theme: config.ThemeLight}
}

func TestLoginCommand(t *testing.T) {
	auth := testutil.NewFakeAuthenticator()
	auth.AddUser("Sam", "sam@example.com", "secret")

	cfg := newConfig(t, false)
	sess := anonymous()
	cmd := &commands.LoginCmd{}
	cmd.SetAuthenticator(auth)

	stdout, stderr, code := runWith(t, cmd, cfg, sess, nil, []string{"--email", "sam@example.com", "--password", "secret"})

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "Logged in as Sam <sam@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if !sess.Authenticated() || sess.Token.AccessToken != "token-1" {
		t.Errorf("session should be replaced in place, got %+v", sess)
	}

	loaded, err := session.Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.User.Email != "sam@example.com" || !loaded.Authenticated() {
		t.Errorf("unexpected stored session %+v", loaded)
	}
	if d := time.Until(loaded.Token.Expiry); d < session.TokenLifetime-time.Minute || d > session.TokenLifetime {
		t.Errorf("expected the token to expire in %s, got %s", session.TokenLifetime, d)
	}

	info, err := os.Stat(cfg.SessionPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected session mode 0600, got %o", info.Mode().Perm())
	}
}

func TestLoginCommand_PromptsForMissing(t *testing.T) {
	auth := testutil.NewFakeAuthenticator()
	auth.AddUser("Sam", "sam@example.com", "secret")

	cmd := &commands.LoginCmd{}
	cmd.SetAuthenticator(auth)
	cmd.SetInput(strings.NewReader("secret\n"))

	stdout, stderr, code := runWith(t, cmd, newConfig(t, false), anonymous(), nil, []string{"--email", "sam@example.com"})

	expectCode(t, exitcode.Success, code)
	if stderr != "Password: " {
		t.Errorf("expected a password prompt, got %q", stderr)
	}
	if stdout != "Logged in as Sam <sam@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestLoginCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		code  int
		want  string
	}{
		{"wrong password", []string{"--email", "sam@example.com", "--password", "nope"}, "", exitcode.AuthError, "error: invalid email or password\n"},
		{"unknown user", []string{"--email", "kim@example.com", "--password", "secret"}, "", exitcode.AuthError, "error: invalid email or password\n"},
		{"blank email", nil, "  \nsecret\n", exitcode.UserError, "Email: Password: error: email and password are required\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := testutil.NewFakeAuthenticator()
			auth.AddUser("Sam", "sam@example.com", "secret")

			cfg := newConfig(t, false)
			cmd := &commands.LoginCmd{}
			cmd.SetAuthenticator(auth)
			cmd.SetInput(strings.NewReader(tt.input))

			_, stderr, code := runWith(t, cmd, cfg, anonymous(), nil, tt.args)

			expectCode(t, tt.code, code)
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
			if cfg.HasSession() {
				t.Error("a failed login must not store a session")
			}
		})
	}
}

func TestLoginCommand_BackendDown(t *testing.T) {
	auth := testutil.NewFakeAuthenticator()
	auth.LoginErr = errors.New("connection refused")

	cmd := &commands.LoginCmd{}
	cmd.SetAuthenticator(auth)

	_, stderr, code := runWith(t, cmd, newConfig(t, false), anonymous(), nil, []string{"--email", "a@b.c", "--password", "x"})

	expectCode(t, exitcode.BackendError, code)
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	cmd := &commands.LoginCmd{}
	cmd.SetAuthenticator(testutil.NewFakeAuthenticator())

	stdout, _, code := runWith(t, cmd, newConfig(t, false), loggedIn(), nil, nil)

	expectCode(t, exitcode.Success, code)
	if stdout != "already logged in as Sam <sam@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestLoginCommand_NoAuthenticator(t *testing.T) {
	_, stderr, code := runWith(t, &commands.LoginCmd{}, newConfig(t, false), anonymous(), nil, nil)

	expectCode(t, exitcode.AuthError, code)
	if stderr != "error: no authenticator configured\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand(t *testing.T) {
	auth := testutil.NewFakeAuthenticator()
	cfg := newConfig(t, false)
	sess := anonymous()
	cmd := &commands.RegisterCmd{}
	cmd.SetAuthenticator(auth)

	stdout, _, code := runWith(t, cmd, cfg, sess, nil, []string{"--name", "Kim", "--email", "kim@example.com", "--password", "pw"})

	expectCode(t, exitcode.Success, code)
	if stdout != "Account created. Logged in as Kim <kim@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if !sess.Authenticated() || !cfg.HasSession() {
		t.Error("registering should start a session")
	}
}

func TestRegisterCommand_Duplicate(t *testing.T) {
	auth := testutil.NewFakeAuthenticator()
	auth.AddUser("Sam", "sam@example.com", "secret")

	cfg := newConfig(t, false)
	cmd := &commands.RegisterCmd{}
	cmd.SetAuthenticator(auth)

	_, stderr, code := runWith(t, cmd, cfg, anonymous(), nil, []string{"--name", "Sam", "--email", "sam@example.com", "--password", "x"})

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: user with this email already exists: request rejected\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if cfg.HasSession() {
		t.Error("a rejected registration must not store a session")
	}
}

func TestRegisterCommand_MissingFields(t *testing.T) {
	cmd := &commands.RegisterCmd{}
	cmd.SetAuthenticator(testutil.NewFakeAuthenticator())
	cmd.SetInput(strings.NewReader("\n"))

	_, stderr, code := runWith(t, cmd, newConfig(t, false), anonymous(), nil, []string{"--email", "kim@example.com", "--password", "pw"})

	expectCode(t, exitcode.UserError, code)
	if stderr != "Name: error: name, email and password are required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLogoutCommand(t *testing.T) {
	cfg := newConfig(t, false)
	sess := loggedIn()
	if err := session.Save(cfg, sess); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runWith(t, &commands.LogoutCmd{}, cfg, sess, nil, nil)

	expectCode(t, exitcode.Success, code)
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if cfg.HasSession() {
		t.Error("session file should be removed")
	}
	if sess.Authenticated() || sess.User != (service.User{}) {
		t.Errorf("in-memory session should be torn down, got %+v", sess)
	}
	if _, err := session.Load(cfg); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession after logout, got %v", err)
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	stdout, _, code := runWith(t, &commands.LogoutCmd{}, newConfig(t, false), anonymous(), nil, nil)

	expectCode(t, exitcode.Success, code)
	if stdout != "not logged in\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestWhoamiCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code)
	if stdout != "Sam <sam@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestThemeCommand(t *testing.T) {
	cfg := newConfig(t, false)
	sess := anonymous()

	stdout, _, _ := runWith(t, &commands.ThemeCmd{}, cfg, sess, nil, nil)
	if stdout != "light\n" {
		t.Errorf("expected default theme light, got %q", stdout)
	}

	stdout, _, code := runWith(t, &commands.ThemeCmd{}, cfg, sess, nil, []string{"toggle"})
	expectCode(t, exitcode.Success, code)
	if stdout != "theme set to dark\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if sess.Theme != config.ThemeDark {
		t.Errorf("session theme should follow, got %q", sess.Theme)
	}

	reloaded, err := config.New(cfg.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Theme() != config.ThemeDark {
		t.Errorf("theme should persist, got %q", reloaded.Theme())
	}
}

func TestThemeCommand_Unknown(t *testing.T) {
	_, stderr, code := runWith(t, &commands.ThemeCmd{}, newConfig(t, false), anonymous(), nil, []string{"blue"})

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: unknown theme: blue (want light or dark)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestHealthCommand(t *testing.T) {
	t.Setenv(config.APIURLEnv, "http://api.test/api")
	cmd := &commands.HealthCmd{}
	cmd.SetAuthenticator(testutil.NewFakeAuthenticator())

	stdout, _, code := runWith(t, cmd, newConfig(t, false), anonymous(), nil, nil)

	expectCode(t, exitcode.Success, code)
	if stdout != "healthy: ToDo API is running (http://api.test/api)\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestHealthCommand_Down(t *testing.T) {
	auth := testutil.NewFakeAuthenticator()
	auth.HealthErr = errors.New("connection refused")
	cmd := &commands.HealthCmd{}
	cmd.SetAuthenticator(auth)

	_, stderr, code := runWith(t, cmd, newConfig(t, false), anonymous(), nil, nil)

	expectCode(t, exitcode.BackendError, code)
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

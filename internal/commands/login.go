package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/logging"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/ui"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
	auth     service.Authenticator
	in       io.Reader
}

// SetAuthenticator implements AuthenticatorUser.
func (c *LoginCmd) SetAuthenticator(a service.Authenticator) { c.auth = a }

// SetInput reads missing credentials line by line from r instead of the
// interactive prompt (for testing).
func (c *LoginCmd) SetInput(r io.Reader) { c.in = r }

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in to the task API" }
func (c *LoginCmd) Usage() string     { return "taskdeck login [--email e] [--password p]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.auth == nil {
		fmt.Fprintln(errOut, "error: no authenticator configured")
		return exitcode.AuthError
	}
	if sess.Authenticated() && c.email == "" {
		if !cfg.Quiet {
			fmt.Fprintf(out, "already logged in as %s\n", describeUser(sess.User))
		}
		return exitcode.Success
	}

	vals, err := readFields(ctx, c.in, errOut, "Log in to taskdeck", []ui.PromptField{
		{Label: "Email", Value: c.email},
		{Label: "Password", Value: c.password, Secret: true},
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	creds := service.Credentials{Email: strings.TrimSpace(vals[0]), Password: vals[1]}
	if creds.Email == "" || creds.Password == "" {
		fmt.Fprintln(errOut, "error: email and password are required")
		return exitcode.UserError
	}

	res, err := c.auth.Login(ctx, creds)
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintln(errOut, "error: invalid email or password")
		return exitcode.AuthError
	}
	if err != nil {
		return fail(errOut, err)
	}
	if code := startSession(ctx, cfg, sess, res, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "Logged in as %s\n", describeUser(res.User))
	}
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	email    string
	password string
	auth     service.Authenticator
	in       io.Reader
}

// SetAuthenticator implements AuthenticatorUser.
func (c *RegisterCmd) SetAuthenticator(a service.Authenticator) { c.auth = a }

// SetInput reads missing fields line by line from r (for testing).
func (c *RegisterCmd) SetInput(r io.Reader) { c.in = r }

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "taskdeck register [--name n] [--email e] [--password p]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.auth == nil {
		fmt.Fprintln(errOut, "error: no authenticator configured")
		return exitcode.AuthError
	}

	vals, err := readFields(ctx, c.in, errOut, "Create a taskdeck account", []ui.PromptField{
		{Label: "Name", Value: c.name},
		{Label: "Email", Value: c.email},
		{Label: "Password", Value: c.password, Secret: true},
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	reg := service.Registration{
		Name:     strings.TrimSpace(vals[0]),
		Email:    strings.TrimSpace(vals[1]),
		Password: vals[2],
	}
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		fmt.Fprintln(errOut, "error: name, email and password are required")
		return exitcode.UserError
	}

	res, err := c.auth.Register(ctx, reg)
	if err != nil {
		return fail(errOut, err)
	}
	if code := startSession(ctx, cfg, sess, res, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "Account created. Logged in as %s\n", describeUser(res.User))
	}
	return exitcode.Success
}

// startSession stores the new session and replaces sess in place.
func startSession(ctx context.Context, cfg *config.Config, sess *session.Context, res service.AuthResult, errOut io.Writer) int {
	next := session.New(res, time.Now())
	next.Theme = sess.Theme
	if err := session.Save(cfg, next); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	*sess = *next
	logging.From(ctx).Debug("session started", "user", res.User.ID, "expires", next.Token.Expiry)
	return exitcode.Success
}

// readFields fills the empty fields: line by line from in when set,
// with the interactive prompt otherwise.
func readFields(ctx context.Context, in io.Reader, errOut io.Writer, title string, fields []ui.PromptField) ([]string, error) {
	vals := make([]string, len(fields))
	var missing []int
	for i, f := range fields {
		vals[i] = f.Value
		if f.Value == "" {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return vals, nil
	}

	if in != nil {
		r := bufio.NewReader(in)
		for _, i := range missing {
			fmt.Fprintf(errOut, "%s: ", fields[i].Label)
			line, err := r.ReadString('\n')
			if err != nil && line == "" {
				return nil, fmt.Errorf("%s required", strings.ToLower(fields[i].Label))
			}
			vals[i] = strings.TrimRight(line, "\r\n")
		}
		return vals, nil
	}

	ask := make([]ui.PromptField, len(missing))
	for j, i := range missing {
		ask[j] = fields[i]
	}
	got, err := ui.Prompt(ctx, title, ask, tea.WithOutput(errOut))
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		vals[i] = got[j]
	}
	return vals, nil
}

func describeUser(u service.User) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Email != "":
		return u.Email
	default:
		return u.Name
	}
}

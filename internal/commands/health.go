package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&HealthCmd{})
}

// HealthCmd checks that the API is reachable.
type HealthCmd struct {
	auth service.Authenticator
}

// SetAuthenticator implements AuthenticatorUser.
func (c *HealthCmd) SetAuthenticator(a service.Authenticator) { c.auth = a }

func (c *HealthCmd) Name() string      { return "health" }
func (c *HealthCmd) Aliases() []string { return []string{"ping"} }
func (c *HealthCmd) Synopsis() string  { return "Check that the API is reachable" }
func (c *HealthCmd) Usage() string     { return "taskdeck health" }
func (c *HealthCmd) NeedsAuth() bool   { return false }

func (c *HealthCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HealthCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.auth == nil {
		fmt.Fprintln(errOut, "error: no authenticator configured")
		return exitcode.AuthError
	}
	h, err := c.auth.Health(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", h.Status, h.Message, cfg.APIURL())
	return exitcode.Success
}

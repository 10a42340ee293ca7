package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/logging"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// ServiceFactory creates a Service for an authenticated session.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, sess *session.Context) (service.Service, error)

// AuthFactory creates the client for the unauthenticated endpoints.
type AuthFactory func(cfg *config.Config) service.Authenticator

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	auth     AuthFactory
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, auth AuthFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		auth:     auth,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	level := logging.ParseLevel(cfg.Settings.LogLevel)
	if debug {
		level = log.DebugLevel
	}
	logger := logging.New(errOut, logging.Options{Level: level})
	ctx = logging.WithLogger(ctx, logger)

	// The session always exists; it is unauthenticated when nobody is logged in.
	sess, err := session.Load(cfg)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.Warn("ignoring stored session", "err", err)
	}

	if a, ok := cmd.(commands.AuthenticatorUser); ok && d.auth != nil {
		a.SetAuthenticator(d.auth(cfg))
	}

	var svc service.Service
	if cmd.NeedsAuth() {
		if !sess.Authenticated() {
			if sess.Token != nil {
				fmt.Fprintln(errOut, "error: session expired (run: taskdeck login)")
			} else {
				fmt.Fprintln(errOut, "error: not logged in (run: taskdeck login)")
			}
			return exitcode.AuthError
		}
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.BackendError
		}
		svc, err = d.factory(ctx, cfg, sess)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	logger.Debug("dispatch", "command", cmd.Name(), "args", positionalArgs, "api", cfg.APIURL())
	return cmd.Run(ctx, cfg, sess, svc, positionalArgs, out, errOut)
}

// flagError rewrites a flag package parse error into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		return errStr
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		return "unknown flag: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
	default:
		return errStr
	}
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&ThemeCmd{})
}

// ThemeCmd shows or sets the dashboard theme.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string      { return "theme" }
func (c *ThemeCmd) Aliases() []string { return nil }
func (c *ThemeCmd) Synopsis() string  { return "Show or set the theme" }
func (c *ThemeCmd) Usage() string     { return "taskdeck theme [light|dark|toggle]" }
func (c *ThemeCmd) NeedsAuth() bool   { return false }

func (c *ThemeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(out, cfg.Theme())
		return exitcode.Success
	}

	var theme string
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case config.ThemeLight:
		theme = config.ThemeLight
	case config.ThemeDark:
		theme = config.ThemeDark
	case "toggle":
		theme = config.ThemeDark
		if cfg.Theme() == config.ThemeDark {
			theme = config.ThemeLight
		}
	default:
		fmt.Fprintf(errOut, "error: unknown theme: %s (want light or dark)\n", args[0])
		return exitcode.UserError
	}

	cfg.Settings.Theme = theme
	if err := cfg.SaveSettings(); err != nil {
		fmt.Fprintf(errOut, "error: failed to save settings: %v\n", err)
		return exitcode.UserError
	}
	if sess != nil {
		sess.Theme = theme
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "theme set to %s\n", theme)
	}
	return exitcode.Success
}

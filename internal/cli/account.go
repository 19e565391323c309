package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type changePasswordCmd struct{ app *App }

func (*changePasswordCmd) Name() string     { return "change-password" }
func (*changePasswordCmd) Synopsis() string { return "Change the account password." }
func (*changePasswordCmd) Usage() string {
	return `change-password:
  Read the current and the new password from the terminal.
`
}
func (*changePasswordCmd) SetFlags(_ *flag.FlagSet) {}

func (c *changePasswordCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	current, err := c.app.secret("Current password")
	if err != nil {
		return c.app.fail(err)
	}
	next, err := c.app.secret("New password")
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.Client.ChangePassword(ctx, current, next); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, "Password changed")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{ app *App }

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "Check that the stored session is still valid." }
func (*whoamiCmd) Usage() string            { return "whoami\n" }
func (*whoamiCmd) SetFlags(_ *flag.FlagSet) {}

func (c *whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.Client.VerifyToken(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Logged in as %s\n", user.Email)
	return subcommands.ExitSuccess
}

type exportCmd struct{ app *App }

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "Print the account data as JSON." }
func (*exportCmd) Usage() string {
	return `export:
  Print everything stored for the account. Run it before delete-account to keep a copy.
`
}
func (*exportCmd) SetFlags(_ *flag.FlagSet) {}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	export, err := c.app.Client.ExportAccount(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	enc := json.NewEncoder(c.app.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

// Package cli implements the stoxctl subcommands on top of client.Client.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/joshcord99/stoxai/internal/client"
)

// App carries the client and the terminal the commands talk to.
type App struct {
	Client *client.Client
	Out    io.Writer
	Err    io.Writer
	In     *bufio.Reader

	// ReadPassword reads a secret without echo.
	ReadPassword func() ([]byte, error)
	// Render turns markdown into terminal output.
	Render func(markdown string) (string, error)
}

// NewApp wires an App to the process terminal.
func NewApp(c *client.Client) *App {
	return &App{
		Client:       c,
		Out:          os.Stdout,
		Err:          os.Stderr,
		In:           bufio.NewReader(os.Stdin),
		ReadPassword: func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) },
		Render:       terminalRenderer(),
	}
}

// terminalRenderer renders markdown with glamour when stdout is a terminal
// and passes it through unchanged otherwise.
func terminalRenderer() func(string) (string, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return plainText
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return plainText
	}
	return r.Render
}

func plainText(s string) (string, error) { return s + "\n", nil }

// Register adds every stoxctl command to the commander.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&healthCmd{app: app}, "")

	c.Register(&registerCmd{app: app}, "session")
	c.Register(&loginCmd{app: app}, "session")
	c.Register(&logoutCmd{app: app}, "session")
	c.Register(&whoamiCmd{app: app}, "session")

	c.Register(&profileCmd{app: app}, "account")
	c.Register(&setNameCmd{app: app}, "account")
	c.Register(&changePasswordCmd{app: app}, "account")
	c.Register(&exportCmd{app: app}, "account")
	c.Register(&deleteAccountCmd{app: app}, "account")

	c.Register(&watchlistCmd{app: app}, "watchlist")
	c.Register(&addCmd{app: app}, "watchlist")
	c.Register(&removeCmd{app: app}, "watchlist")
	c.Register(&setWatchlistCmd{app: app}, "watchlist")
	c.Register(&assetsCmd{app: app, stocks: false}, "watchlist")
	c.Register(&assetsCmd{app: app, stocks: true}, "watchlist")

	c.Register(&chatCmd{app: app}, "assistant")
}

// prompt prints label and reads one trimmed line.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.Out, "%s: ", label)
	line, err := a.In.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) password() (string, error) {
	return a.secret("Password")
}

// secret reads a value from the terminal without echo.
func (a *App) secret(label string) (string, error) {
	fmt.Fprintf(a.Out, "%s: ", label)
	pw, err := a.ReadPassword()
	fmt.Fprintln(a.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// fail reports err and returns the failure status.
func (a *App) fail(err error) subcommands.ExitStatus {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNotAuthenticated):
		fmt.Fprintln(a.Err, "Not logged in. Run 'stoxctl login' first.")
	case errors.Is(err, client.ErrSessionExpired):
		fmt.Fprintln(a.Err, "Session expired. Run 'stoxctl login' again.")
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.Err, "Error: %s (%s)\n", apiErr.Message, apiErr.Code)
	default:
		fmt.Fprintln(a.Err, "Error:", err)
	}
	return subcommands.ExitFailure
}

func (a *App) printUser(u *client.User) {
	name := u.FullName
	if name == "" {
		name = "(no name)"
	}
	fmt.Fprintf(a.Out, "%s <%s>\n", name, u.Email)
	a.printWatchlist(u.Watchlist)
}

func (a *App) printWatchlist(list []string) {
	if len(list) == 0 {
		fmt.Fprintln(a.Out, "Watchlist: (empty)")
		return
	}
	fmt.Fprintln(a.Out, "Watchlist:", strings.Join(list, ", "))
}

// optional maps "" to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

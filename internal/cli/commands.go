package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/joshcord99/stoxai/internal/client"
)

type healthCmd struct{ app *App }

func (*healthCmd) Name() string             { return "health" }
func (*healthCmd) Synopsis() string         { return "Check that the API is reachable." }
func (*healthCmd) Usage() string            { return "health\n" }
func (*healthCmd) SetFlags(_ *flag.FlagSet) {}

func (c *healthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status, err := c.app.Client.Health(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, status)
	return subcommands.ExitSuccess
}

type registerCmd struct {
	app       *App
	email     string
	firstName string
	lastName  string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "Create an account and log in." }
func (*registerCmd) Usage() string {
	return `register [-email addr] [-first name] [-last name]:
  Create an account. The password is read from the terminal.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email")
	f.StringVar(&c.firstName, "first", "", "first name")
	f.StringVar(&c.lastName, "last", "", "last name")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	email := c.email
	if email == "" {
		var err error
		if email, err = c.app.prompt("Email"); err != nil {
			return c.app.fail(err)
		}
	}
	password, err := c.app.password()
	if err != nil {
		return c.app.fail(err)
	}

	user, err := c.app.Client.Register(ctx, client.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: optional(c.firstName),
		LastName:  optional(c.lastName),
	})
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Registered and logged in as %s\n", user.Email)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	app   *App
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "Log in and store the session." }
func (*loginCmd) Usage() string {
	return `login [-email addr]:
  Log in. The password is read from the terminal.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	email := c.email
	if email == "" {
		var err error
		if email, err = c.app.prompt("Email"); err != nil {
			return c.app.fail(err)
		}
	}
	password, err := c.app.password()
	if err != nil {
		return c.app.fail(err)
	}

	user, err := c.app.Client.Login(ctx, email, password)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Logged in as %s\n", user.Email)
	return subcommands.ExitSuccess
}

type logoutCmd struct{ app *App }

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "Forget the stored session." }
func (*logoutCmd) Usage() string            { return "logout\n" }
func (*logoutCmd) SetFlags(_ *flag.FlagSet) {}

func (c *logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Client.Logout(); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, "Logged out")
	return subcommands.ExitSuccess
}

type profileCmd struct{ app *App }

func (*profileCmd) Name() string             { return "profile" }
func (*profileCmd) Synopsis() string         { return "Show the current user." }
func (*profileCmd) Usage() string            { return "profile\n" }
func (*profileCmd) SetFlags(_ *flag.FlagSet) {}

func (c *profileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.Client.Profile(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.printUser(user)
	return subcommands.ExitSuccess
}

type setNameCmd struct {
	app       *App
	firstName string
	lastName  string
}

func (*setNameCmd) Name() string     { return "set-name" }
func (*setNameCmd) Synopsis() string { return "Overwrite first and last name." }
func (*setNameCmd) Usage() string {
	return `set-name [-first name] [-last name]:
  Overwrite both names. An omitted name is cleared.
`
}

func (c *setNameCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.firstName, "first", "", "first name")
	f.StringVar(&c.lastName, "last", "", "last name")
}

func (c *setNameCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Client.UpdateProfile(ctx, optional(c.firstName), optional(c.lastName)); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, "Profile updated")
	return subcommands.ExitSuccess
}

type deleteAccountCmd struct {
	app *App
	yes bool
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "Permanently delete the account." }
func (*deleteAccountCmd) Usage() string {
	return `delete-account [-yes]:
  Permanently delete the account and end the session.
`
}

func (c *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "skip the confirmation prompt")
}

func (c *deleteAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		answer, err := c.app.prompt("Type 'delete' to confirm")
		if err != nil {
			return c.app.fail(err)
		}
		if answer != "delete" {
			fmt.Fprintln(c.app.Out, "Aborted")
			return subcommands.ExitFailure
		}
	}
	if err := c.app.Client.DeleteAccount(ctx); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, "Account deleted")
	return subcommands.ExitSuccess
}

type watchlistCmd struct{ app *App }

func (*watchlistCmd) Name() string             { return "watchlist" }
func (*watchlistCmd) Synopsis() string         { return "Show the watchlist." }
func (*watchlistCmd) Usage() string            { return "watchlist\n" }
func (*watchlistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *watchlistCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.Client.Profile(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.printWatchlist(user.Watchlist)
	return subcommands.ExitSuccess
}

type addCmd struct{ app *App }

func (*addCmd) Name() string             { return "add" }
func (*addCmd) Synopsis() string         { return "Add tickers to the watchlist." }
func (*addCmd) Usage() string            { return "add TICKER...\n" }
func (*addCmd) SetFlags(_ *flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(c.app.Err, c.Usage())
		return subcommands.ExitUsageError
	}
	var list []string
	for _, t := range f.Args() {
		var err error
		if list, err = c.app.Client.AddTicker(ctx, t); err != nil {
			return c.app.fail(err)
		}
	}
	c.app.printWatchlist(list)
	return subcommands.ExitSuccess
}

type removeCmd struct{ app *App }

func (*removeCmd) Name() string             { return "remove" }
func (*removeCmd) Synopsis() string         { return "Remove tickers from the watchlist." }
func (*removeCmd) Usage() string            { return "remove TICKER...\n" }
func (*removeCmd) SetFlags(_ *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(c.app.Err, c.Usage())
		return subcommands.ExitUsageError
	}
	var list []string
	for _, t := range f.Args() {
		var err error
		if list, err = c.app.Client.RemoveTicker(ctx, t); err != nil {
			return c.app.fail(err)
		}
	}
	c.app.printWatchlist(list)
	return subcommands.ExitSuccess
}

type setWatchlistCmd struct{ app *App }

func (*setWatchlistCmd) Name() string     { return "set-watchlist" }
func (*setWatchlistCmd) Synopsis() string { return "Replace the whole watchlist." }
func (*setWatchlistCmd) Usage() string {
	return `set-watchlist [TICKER...]:
  Replace the watchlist with exactly the given tickers. No arguments clears it.
`
}
func (*setWatchlistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *setWatchlistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers := make([]string, 0, f.NArg())
	for _, t := range f.Args() {
		if t = client.NormalizeTicker(t); t != "" {
			tickers = append(tickers, t)
		}
	}
	list, err := c.app.Client.SetWatchlist(ctx, tickers)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.printWatchlist(list)
	return subcommands.ExitSuccess
}

// assetsCmd lists either every available asset or only stocks.
type assetsCmd struct {
	app    *App
	stocks bool
}

func (c *assetsCmd) Name() string {
	if c.stocks {
		return "stocks"
	}
	return "assets"
}

func (c *assetsCmd) Synopsis() string {
	if c.stocks {
		return "List the stocks that can be tracked."
	}
	return "List every asset that can be tracked."
}

func (c *assetsCmd) Usage() string          { return c.Name() + "\n" }
func (*assetsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	list := c.app.Client.AvailableAssets
	if c.stocks {
		list = c.app.Client.AvailableStocks
	}
	items, err := list(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, strings.Join(items, "\n"))
	return subcommands.ExitSuccess
}

type chatCmd struct{ app *App }

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "Ask the assistant about your watchlist." }
func (*chatCmd) Usage() string {
	return `chat QUESTION...:
  Ask a question. The answer is rendered as markdown.
`
}
func (*chatCmd) SetFlags(_ *flag.FlagSet) {}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	question := strings.Join(f.Args(), " ")
	if strings.TrimSpace(question) == "" {
		fmt.Fprint(c.app.Err, c.Usage())
		return subcommands.ExitUsageError
	}

	reply, err := c.app.Client.Chat(ctx, question)
	if err != nil {
		return c.app.fail(err)
	}
	out, err := c.app.Render(reply.Response)
	if err != nil {
		out = reply.Response + "\n"
	}
	fmt.Fprint(c.app.Out, out)
	if !reply.AIEnabled {
		fmt.Fprintln(c.app.Err, "(assistant unavailable, showing a basic reply)")
	}
	return subcommands.ExitSuccess
}

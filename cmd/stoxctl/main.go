// Command stoxctl is a terminal client for the stoxai API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"

	"github.com/joshcord99/stoxai/internal/cli"
	"github.com/joshcord99/stoxai/internal/client"
	"github.com/joshcord99/stoxai/internal/config"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		os.Exit(1)
	}

	c, err := client.New(cfg.BaseURL, client.NewFileStore(cfg.SessionFile), client.WithTimeout(cfg.Timeout))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing client:", err)
		os.Exit(1)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, cli.NewApp(c))

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// Command caixactl inspects and maintains the shift stored by the caixa
// backend from a terminal, using the same configuration as the server.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"

	"caixa/backend/internal/app"
	"caixa/backend/internal/config"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	openBackend = func(ctx context.Context) (*app.Backend, error) {
		return app.Open(ctx, config.Load())
	}
)

func commands() []subcommands.Command {
	return []subcommands.Command{
		&summaryCmd{},
		&validateCmd{},
		&resetCmd{},
		&floatCmd{},
		&cashbackBalanceCmd{},
		&cashbackGrantCmd{},
	}
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands() {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

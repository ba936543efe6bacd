// Command pulsectl runs the dashboard's data pipeline on local workbooks:
// expanding them to per-day observations, summarizing a selection, building
// chart rows and hashing passwords for the seed user.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(commander *subcommands.Commander) {
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range commands(os.Stdout, os.Stdin) {
		commander.Register(c, "")
	}
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"productpulse/internal/auth"
	"productpulse/internal/config"
)

type hashPasswordCmd struct {
	cost int
	out  io.Writer
	in   io.Reader
}

func (*hashPasswordCmd) Name() string     { return "hash-password" }
func (*hashPasswordCmd) Synopsis() string { return "hash a password for the seed user" }
func (*hashPasswordCmd) Usage() string {
	return `pulsectl hash-password [-cost n] < password.txt

  Reads a password from the first line of standard input and prints its
  bcrypt hash, suitable for PULSE_AUTH_SEED_PASSWORD_HASH.
`
}

func (c *hashPasswordCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.cost, "cost", config.DefaultBcryptCost, "bcrypt cost")
}

func (c *hashPasswordCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cost < config.MinBcryptCost || c.cost > config.MaxBcryptCost {
		return fail(fmt.Errorf("cost must be between %d and %d", config.MinBcryptCost, config.MaxBcryptCost))
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fail(fmt.Errorf("failed to read password: %w", err))
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fail(fmt.Errorf("password is empty"))
	}

	hash, err := auth.HashPassword(password, c.cost)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.out, hash)
	return subcommands.ExitSuccess
}

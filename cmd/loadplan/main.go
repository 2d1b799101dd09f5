// LoadPlan builds glass panel piles from a delivery order export and places
// them on the cradles and rear rack of a delivery truck.
//
// Build:
//
//	go build -o loadplan ./cmd/loadplan
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/piwi3910/LoadPlan/cmd/loadplan/commands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, Version, Commit, BuildDate); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

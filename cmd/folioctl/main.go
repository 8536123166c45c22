// folioctl is a small operator CLI against the folio-server API. It talks
// to the same backend the portal relays to, using the same client.
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

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&pairsCmd{}, "portfolio")
	commander.Register(&compareCmd{}, "portfolio")
	commander.Register(&pricesCmd{}, "portfolio")
	commander.Register(&recalcFeesCmd{}, "portfolio")
	commander.Register(&versionCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

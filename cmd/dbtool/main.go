package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dbtool",
		Usage: "Manage the trade-route database and run one-off optimizations",
		Commands: []*cli.Command{
			initCmd,
			seedCmd,
			optimizeCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "jeevan",
		Usage: "Organ donation matching service",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			matchCommand,
			cleanupCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}

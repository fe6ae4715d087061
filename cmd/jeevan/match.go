package main

import (
	"errors"
	"time"

	"jeevan/internal/db"
	"jeevan/internal/matching"
	"jeevan/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var matchCommand = &cli.Command{
	Name:  "match",
	Usage: "Run one matching pass and print the report",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "recipient",
			Usage: "Limit the pass to a single recipient profile ID",
		},
		&cli.StringFlag{
			Name:  "donor",
			Usage: "Limit the pass to a single donor profile ID",
		},
	},
	Action: runMatch,
}

// matchScope builds the pass scope from the CLI flags. Like the HTTP
// surface, a pass is scoped to one profile at most.
func matchScope(recipientID, donorID string) (matching.Scope, error) {
	if recipientID != "" && donorID != "" {
		return matching.Scope{}, errors.New("--recipient and --donor are mutually exclusive")
	}

	return matching.Scope{RecipientID: recipientID, DonorID: donorID}, nil
}

func runMatch(cCtx *cli.Context) error {
	ctx := cCtx.Context

	scope, err := matchScope(cCtx.String("recipient"), cCtx.String("donor"))
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	queryTimeout := time.Duration(config.QueryTimeoutSec) * time.Second

	donorRepo := store.NewDonorRepository(pool, queryTimeout)
	recipientRepo := store.NewRecipientRepository(pool, queryTimeout)
	matchRepo := store.NewMatchRepository(pool, queryTimeout)

	// Diagnostic path: no notifier, no metrics, just the pass and its report.
	engine := matching.New(
		logger,
		profileSource{donors: donorRepo, recipients: recipientRepo},
		matchRepo,
		nil,
		nil,
	)

	report, err := engine.Run(ctx, scope)
	if err != nil {
		return err
	}

	pp.Println(report)
	return nil
}

package main

import (
	"context"
	"time"

	"jeevan/internal/db"
	"jeevan/internal/seed"
	"jeevan/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:   "seed",
	Usage:  "Insert demo users and profiles for local development",
	Action: runSeed,
}

func runSeed(cCtx *cli.Context) error {
	ctx := cCtx.Context

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

	userRepo := store.NewUserRepository(pool, queryTimeout)
	donorRepo := store.NewDonorRepository(pool, queryTimeout)
	recipientRepo := store.NewRecipientRepository(pool, queryTimeout)

	seedCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := seed.SeedFakeUsers(seedCtx, userRepo); err != nil {
		return err
	}

	if err := seed.SeedFakeDonors(seedCtx, donorRepo); err != nil {
		return err
	}

	if err := seed.SeedFakeRecipients(seedCtx, recipientRepo); err != nil {
		return err
	}

	logger.Info("seed complete")
	return nil
}

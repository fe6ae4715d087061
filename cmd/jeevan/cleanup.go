package main

import (
	"fmt"
	"time"

	"jeevan/internal/db"
	"jeevan/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var cleanupCommand = &cli.Command{
	Name:  "cleanup",
	Usage: "Remove matches, notifications, profiles and users for the given user IDs",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "user",
			Usage:    "User ID to clean up (repeatable)",
			Required: true,
		},
	},
	Action: runCleanup,
}

func runCleanup(cCtx *cli.Context) error {
	ctx := cCtx.Context
	userIDs := cCtx.StringSlice("user")

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

	matchRepo := store.NewMatchRepository(pool, queryTimeout)
	notificationRepo := store.NewNotificationRepository(pool, queryTimeout)
	donorRepo := store.NewDonorRepository(pool, queryTimeout)
	recipientRepo := store.NewRecipientRepository(pool, queryTimeout)
	userRepo := store.NewUserRepository(pool, queryTimeout)

	// Foreign-key order: matches and notifications first, then the
	// profiles they reference, then the users.
	if err := matchRepo.DeleteMatchesByUserIDs(ctx, userIDs); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}

	if err := notificationRepo.DeleteNotificationsByUserIDs(ctx, userIDs); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}

	if err := donorRepo.DeleteDonorsByUserIDs(ctx, userIDs); err != nil {
		return fmt.Errorf("delete donor profiles: %w", err)
	}

	if err := recipientRepo.DeleteRecipientsByUserIDs(ctx, userIDs); err != nil {
		return fmt.Errorf("delete recipient profiles: %w", err)
	}

	if err := userRepo.DeleteUsersByIDs(ctx, userIDs); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}

	logger.WithField("user_ids", userIDs).Info("cleanup complete")
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jeevan/internal/db"
	"jeevan/internal/matching"
	"jeevan/internal/metrics"
	"jeevan/internal/notify"
	"jeevan/internal/server"
	"jeevan/internal/store"
	"jeevan/internal/trigger"
	"jeevan/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the matching service",
	Action: serve,
}

// profileSource presents the donor and recipient repositories as the
// engine's single load interface.
type profileSource struct {
	donors     *store.DonorRepository
	recipients *store.RecipientRepository
}

func (s profileSource) VerifiedDonors(ctx context.Context, donorID string) ([]*types.DonorProfile, error) {
	return s.donors.VerifiedDonors(ctx, donorID)
}

func (s profileSource) VerifiedRecipients(ctx context.Context, recipientID string) ([]*types.RecipientProfile, error) {
	return s.recipients.VerifiedRecipients(ctx, recipientID)
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	notificationRepo := store.NewNotificationRepository(pool, queryTimeout)
	userRepo := store.NewUserRepository(pool, queryTimeout)

	m := metrics.New()

	notifier := notify.New(
		logger,
		notificationRepo,
		m,
		config.NotifyRetryMax,
		time.Duration(config.NotifyRetryDelaySec)*time.Second,
	)

	engine := matching.New(
		logger,
		profileSource{donors: donorRepo, recipients: recipientRepo},
		matchRepo,
		notifier,
		m,
	)

	dispatcher := trigger.NewDispatcher(logger, engine, config.DispatchBuffer)
	listener := trigger.NewListener(logger, pool, config.ListenChannel, dispatcher)

	srv, err := server.New(
		config,
		logger,
		donorRepo,
		recipientRepo,
		matchRepo,
		notificationRepo,
		userRepo,
		engine,
		dispatcher,
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(dispatcher.Run(gctx))
	})

	g.Go(func() error {
		return ignoreCanceled(notifier.Run(gctx))
	})

	g.Go(func() error {
		return ignoreCanceled(listener.Run(gctx))
	})

	g.Go(func() error {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jeevan/internal/matching"
	"jeevan/internal/trigger"
	"jeevan/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Store slices the handlers depend on. The pgx repositories satisfy them;
// tests swap in fixtures.
type DonorStore interface {
	Donor(ctx context.Context, donorID string) (*types.DonorProfile, error)
	VerifyDonor(ctx context.Context, donorID string) (*types.DonorProfile, error)
	MarkDonorMatched(ctx context.Context, donorID string) error
	DeleteDonorsByUserIDs(ctx context.Context, userIDs []string) error
}

type RecipientStore interface {
	Recipient(ctx context.Context, recipientID string) (*types.RecipientProfile, error)
	VerifyRecipient(ctx context.Context, recipientID string) (*types.RecipientProfile, error)
	MarkRecipientMatched(ctx context.Context, recipientID string) error
	DeleteRecipientsByUserIDs(ctx context.Context, userIDs []string) error
}

type UserStore interface {
	DeleteUsersByIDs(ctx context.Context, userIDs []string) error
}

type MatchStore interface {
	Matches(ctx context.Context, recipientID, donorID string) ([]*types.Match, error)
	MatchesForUser(ctx context.Context, userID string) ([]*types.Match, error)
	DecideMatch(ctx context.Context, matchID string, status types.MatchStatus) (*types.Match, error)
	DeleteMatchesByUserIDs(ctx context.Context, userIDs []string) error
}

type NotificationStore interface {
	NotificationsForUser(ctx context.Context, userID string, unreadOnly bool) ([]*types.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	DeleteNotificationsByUserIDs(ctx context.Context, userIDs []string) error
}

type PassRunner interface {
	Run(ctx context.Context, scope matching.Scope) (*matching.Report, error)
}

type EventQueue interface {
	Enqueue(ctx context.Context, event trigger.Event) error
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	donors        DonorStore
	recipients    RecipientStore
	matches       MatchStore
	notifications NotificationStore
	users         UserStore

	engine     PassRunner
	dispatcher EventQueue

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	donors DonorStore,
	recipients RecipientStore,
	matches MatchStore,
	notifications NotificationStore,
	users UserStore,
	engine PassRunner,
	dispatcher EventQueue,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,

		donors:        donors,
		recipients:    recipients,
		matches:       matches,
		notifications: notifications,
		users:         users,

		engine:     engine,
		dispatcher: dispatcher,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdminToken)

		// Manual/diagnostic re-run of the matching pass
		r.HandleFunc("/api/matching/run", s.handleRunMatching, http.MethodPost)

		r.HandleFunc("/api/matches", s.handleListMatches, http.MethodGet)
		r.HandleFunc("/api/matches/:matchID/decision", s.handleMatchDecision, http.MethodPost)

		// Verification transitions: the matching trigger input
		r.HandleFunc("/api/profiles/donors/:donorID/verify", s.handleVerifyDonor, http.MethodPost)
		r.HandleFunc("/api/profiles/recipients/:recipientID/verify", s.handleVerifyRecipient, http.MethodPost)

		r.HandleFunc("/api/notifications", s.handleListNotifications, http.MethodGet)
		r.HandleFunc("/api/notifications/:notificationID/read", s.handleMarkNotificationRead, http.MethodPost)

		// Test/admin teardown
		r.HandleFunc("/api/admin/cleanup", s.handleCleanup, http.MethodDelete)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

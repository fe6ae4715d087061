package trigger

import (
	"context"

	"jeevan/internal/matching"

	"github.com/sirupsen/logrus"
)

type ProfileKind string

const (
	KindDonor     ProfileKind = "donor"
	KindRecipient ProfileKind = "recipient"
)

// Event records that a profile transitioned to verified. Delivery is
// at-least-once; duplicates are harmless because the match upsert is
// idempotent.
type Event struct {
	Kind      ProfileKind `json:"kind"`
	ProfileID string      `json:"id"`
}

// Scope translates the event into a matching pass scope: a verified donor
// is matched against all verified recipients and vice versa.
func (e Event) Scope() matching.Scope {
	if e.Kind == KindDonor {
		return matching.Scope{DonorID: e.ProfileID}
	}
	return matching.Scope{RecipientID: e.ProfileID}
}

// PassRunner is the slice of the engine the dispatcher drives.
type PassRunner interface {
	Run(ctx context.Context, scope matching.Scope) (*matching.Report, error)
}

// Dispatcher decouples verification events from pass execution: producers
// enqueue, a worker drains the inbox and runs one pass per event.
type Dispatcher struct {
	logger *logrus.Logger
	engine PassRunner
	inbox  chan Event
}

func NewDispatcher(logger *logrus.Logger, engine PassRunner, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}

	return &Dispatcher{
		logger: logger,
		engine: engine,
		inbox:  make(chan Event, buffer),
	}
}

// Enqueue hands a verification event to the worker. It blocks when the
// inbox is full rather than dropping the event.
func (d *Dispatcher) Enqueue(ctx context.Context, event Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case d.inbox <- event:
		return nil
	}
}

// Run drains the inbox until the context ends. A failed pass is logged and
// the worker moves on; the caller may re-verify or re-run manually.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-d.inbox:
			d.logger.WithFields(logrus.Fields{
				"kind":       string(event.Kind),
				"profile_id": event.ProfileID,
			}).Info("verification event received")

			if _, err := d.engine.Run(ctx, event.Scope()); err != nil {
				d.logger.WithError(err).WithFields(logrus.Fields{
					"kind":       string(event.Kind),
					"profile_id": event.ProfileID,
				}).Error("triggered matching pass failed")
			}
		}
	}
}

package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"jeevan/internal/metrics"
	"jeevan/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scope narrows a pass to one profile. Both fields empty means every
// verified recipient is matched against every verified donor.
type Scope struct {
	RecipientID string `json:"recipient_id,omitempty" form:"recipient_id"`
	DonorID     string `json:"donor_id,omitempty" form:"donor_id"`
}

func (s Scope) String() string {
	switch {
	case s.RecipientID != "":
		return "recipient:" + s.RecipientID
	case s.DonorID != "":
		return "donor:" + s.DonorID
	default:
		return "all"
	}
}

// ProfileSource loads verified profiles. An empty id loads all verified
// rows; a non-empty id restricts the load to that profile.
type ProfileSource interface {
	VerifiedDonors(ctx context.Context, donorID string) ([]*types.DonorProfile, error)
	VerifiedRecipients(ctx context.Context, recipientID string) ([]*types.RecipientProfile, error)
}

type WriteOutcome int

const (
	// WriteUnchanged: the row exists and either left pending under a human
	// decision or already carries identical scores. Nothing was written.
	WriteUnchanged WriteOutcome = iota
	WriteInserted
	WriteUpdated
)

// CandidateSink persists candidates. UpsertCandidate is keyed on
// (recipient_id, donor_id), must never touch rows whose status has left
// pending, and fills the match's ID/Status/CreatedAt from the stored row.
type CandidateSink interface {
	UpsertCandidate(ctx context.Context, match *types.Match) (WriteOutcome, error)
}

// MatchObserver is invoked for every candidate that was actually written.
// Observers own their failure handling; the pass never waits on them to
// roll anything back.
type MatchObserver interface {
	MatchUpserted(ctx context.Context, match *types.Match, donor *types.DonorProfile, recipient *types.RecipientProfile)
}

type SkippedPair struct {
	RecipientID string `json:"recipient_id"`
	DonorID     string `json:"donor_id,omitempty"`
	Reason      string `json:"reason"`
}

// Report is the structured result of one matching pass: the ranked
// candidate list, the pairs skipped over bad data, and write counts.
type Report struct {
	Scope      string         `json:"scope"`
	Candidates []*types.Match `json:"candidates"`
	Skipped    []SkippedPair  `json:"skipped,omitempty"`
	Inserted   int            `json:"inserted"`
	Updated    int            `json:"updated"`
	Unchanged  int            `json:"unchanged"`
	ElapsedMs  int64          `json:"elapsed_ms"`
}

// Engine runs matching passes. It holds no mutable state of its own, so any
// number of engines (or processes) may run concurrently; correctness under
// races rests on the sink's conflict-aware upsert.
type Engine struct {
	logger   *logrus.Logger
	source   ProfileSource
	sink     CandidateSink
	observer MatchObserver
	metrics  *metrics.Metrics
}

// New builds an engine. observer and m may be nil.
func New(logger *logrus.Logger, source ProfileSource, sink CandidateSink, observer MatchObserver, m *metrics.Metrics) *Engine {
	return &Engine{
		logger:   logger,
		source:   source,
		sink:     sink,
		observer: observer,
		metrics:  m,
	}
}

type scoredCandidate struct {
	match     *types.Match
	donor     *types.DonorProfile
	recipient *types.RecipientProfile
}

type recipientResult struct {
	candidates []scoredCandidate
	skipped    []SkippedPair
}

// Run executes one matching pass over the given scope.
func (e *Engine) Run(ctx context.Context, scope Scope) (*Report, error) {
	started := time.Now()

	report, err := e.run(ctx, scope, started)

	e.metrics.ObservePassDuration(time.Since(started))
	if err != nil {
		e.metrics.IncrementPassOutcome("failed")
		e.logger.WithError(err).WithField("scope", scope.String()).Error("matching pass failed")
		return nil, err
	}

	e.metrics.IncrementPassOutcome("completed")
	e.logger.WithFields(logrus.Fields{
		"scope":      scope.String(),
		"candidates": len(report.Candidates),
		"inserted":   report.Inserted,
		"updated":    report.Updated,
		"unchanged":  report.Unchanged,
		"skipped":    len(report.Skipped),
		"elapsed_ms": report.ElapsedMs,
	}).Info("matching pass completed")

	return report, nil
}

func (e *Engine) run(ctx context.Context, scope Scope, now time.Time) (*Report, error) {
	donors, err := e.source.VerifiedDonors(ctx, scope.DonorID)
	if err != nil {
		return nil, fmt.Errorf("load verified donors: %w", err)
	}

	recipients, err := e.source.VerifiedRecipients(ctx, scope.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("load verified recipients: %w", err)
	}

	// Recipients are processed in a fixed order so the report is
	// reproducible regardless of storage iteration order.
	sort.Slice(recipients, func(i, j int) bool {
		if recipients[i].CreatedAt.Equal(recipients[j].CreatedAt) {
			return recipients[i].ID < recipients[j].ID
		}
		return recipients[i].CreatedAt.Before(recipients[j].CreatedAt)
	})

	// Scoring is pure and shares nothing between recipients, so it fans
	// out. Only the store write below is serialized.
	results := make([]recipientResult, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, recipient := range recipients {
		g.Go(func() error {
			results[i] = e.scoreRecipient(recipient, donors, now)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score recipients: %w", err)
	}

	report := &Report{Scope: scope.String(), Candidates: make([]*types.Match, 0)}

	for _, result := range results {
		report.Skipped = append(report.Skipped, result.skipped...)

		for _, candidate := range result.candidates {
			outcome, err := e.sink.UpsertCandidate(ctx, candidate.match)
			if err != nil {
				return nil, fmt.Errorf("upsert candidate recipient=%s donor=%s: %w",
					candidate.match.RecipientID, candidate.match.DonorID, err)
			}

			switch outcome {
			case WriteInserted:
				report.Inserted++
				e.metrics.IncrementCandidateWrite("inserted")
			case WriteUpdated:
				report.Updated++
				e.metrics.IncrementCandidateWrite("updated")
			default:
				report.Unchanged++
				e.metrics.IncrementCandidateWrite("unchanged")
			}

			if outcome != WriteUnchanged && e.observer != nil {
				e.observer.MatchUpserted(ctx, candidate.match, candidate.donor, candidate.recipient)
			}

			report.Candidates = append(report.Candidates, candidate.match)
		}
	}

	e.metrics.AddSkippedPairs(len(report.Skipped))
	report.ElapsedMs = time.Since(now).Milliseconds()

	return report, nil
}

// scoreRecipient evaluates every donor against one recipient: filter by
// compatibility, validate, score, rank. A bad profile skips the pair (or
// the recipient) and is reported, never aborting the pass.
func (e *Engine) scoreRecipient(recipient *types.RecipientProfile, donors []*types.DonorProfile, now time.Time) recipientResult {
	var result recipientResult

	if reason := validateRecipient(recipient); reason != "" {
		result.skipped = append(result.skipped, SkippedPair{
			RecipientID: recipient.ID,
			Reason:      reason,
		})
		return result
	}

	for _, donor := range donors {
		if !IsCompatible(donor, recipient) {
			continue
		}

		if reason := validateDonor(donor); reason != "" {
			result.skipped = append(result.skipped, SkippedPair{
				RecipientID: recipient.ID,
				DonorID:     donor.ID,
				Reason:      reason,
			})
			continue
		}

		score := ScorePair(donor, recipient, now)
		result.candidates = append(result.candidates, scoredCandidate{
			match: &types.Match{
				RecipientID:   recipient.ID,
				DonorID:       donor.ID,
				UrgencyScore:  score.Urgency,
				LocationScore: score.Location,
				WaitTimeScore: score.WaitTime,
				AgeGapScore:   score.AgeGap,
				TotalScore:    score.Total,
				Status:        types.MatchStatusPending,
			},
			donor:     donor,
			recipient: recipient,
		})
	}

	// Rank by total descending; ties go to the donor registered first so
	// ordering never depends on slice iteration order.
	sort.SliceStable(result.candidates, func(i, j int) bool {
		a, b := result.candidates[i], result.candidates[j]
		if a.match.TotalScore != b.match.TotalScore {
			return a.match.TotalScore > b.match.TotalScore
		}
		if !a.donor.CreatedAt.Equal(b.donor.CreatedAt) {
			return a.donor.CreatedAt.Before(b.donor.CreatedAt)
		}
		return a.donor.ID < b.donor.ID
	})

	return result
}

func validateDonor(donor *types.DonorProfile) string {
	if donor.Age <= 0 {
		return "donor age missing or invalid"
	}
	return ""
}

func validateRecipient(recipient *types.RecipientProfile) string {
	if recipient.Age <= 0 {
		return "recipient age missing or invalid"
	}
	if recipient.CreatedAt.IsZero() {
		return "recipient registration time missing"
	}
	return ""
}

package matching

import (
	"time"

	"jeevan/pkg/types"
)

// Scoring weights. They sum to 1, which keeps the total in [0,100].
const (
	weightUrgency  = 0.4
	weightLocation = 0.3
	weightWaitTime = 0.2
	weightAgeGap   = 0.1
)

// Wait time is bucketed in 30-day months since the recipient registered.
const monthDuration = 30 * 24 * time.Hour

// Score holds the four component scores and the weighted total for one
// donor/recipient pair.
type Score struct {
	Urgency  float64
	Location float64
	WaitTime float64
	AgeGap   float64
	Total    float64
}

// ScorePair computes the score for a compatible pair. The now argument is
// captured once per pass so every pair in a pass shares the same wait-time
// reference.
func ScorePair(donor *types.DonorProfile, recipient *types.RecipientProfile, now time.Time) Score {
	s := Score{
		Urgency:  urgencyScore(recipient.UrgencyLevel),
		Location: locationScore(donor.City, donor.State, recipient.City, recipient.State),
		WaitTime: waitTimeScore(recipient.CreatedAt, now),
		AgeGap:   ageGapScore(donor.Age, recipient.Age),
	}

	s.Total = s.Urgency*weightUrgency +
		s.Location*weightLocation +
		s.WaitTime*weightWaitTime +
		s.AgeGap*weightAgeGap

	return s
}

func urgencyScore(level types.UrgencyLevel) float64 {
	switch level {
	case types.UrgencyCritical:
		return 100
	case types.UrgencyHigh:
		return 70
	case types.UrgencyMedium:
		return 40
	default:
		return 10
	}
}

func locationScore(donorCity, donorState, recipientCity, recipientState string) float64 {
	if donorCity == recipientCity {
		return 80
	}
	if donorState == recipientState {
		return 50
	}
	return 20
}

func waitTimeScore(registeredAt, now time.Time) float64 {
	months := now.Sub(registeredAt).Hours() / monthDuration.Hours()

	switch {
	case months >= 12:
		return 100
	case months >= 6:
		return 70
	case months >= 1:
		return 40
	default:
		return 10
	}
}

func ageGapScore(donorAge, recipientAge int) float64 {
	gap := donorAge - recipientAge
	if gap < 0 {
		gap = -gap
	}

	switch {
	case gap <= 10:
		return 100
	case gap <= 20:
		return 70
	case gap <= 30:
		return 40
	default:
		return 10
	}
}

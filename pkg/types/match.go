package types

import "time"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusApproved MatchStatus = "approved"
	MatchStatusRejected MatchStatus = "rejected"
)

// Match is one scored (recipient, donor) candidate pairing. The engine
// creates and refreshes rows while they are pending; approve/reject is a
// human decision and is never reversed by a matching pass.
type Match struct {
	ID            string      `db:"id" json:"id"`
	RecipientID   string      `db:"recipient_id" json:"recipient_id"`
	DonorID       string      `db:"donor_id" json:"donor_id"`
	UrgencyScore  float64     `db:"urgency_score" json:"urgency_score"`
	LocationScore float64     `db:"location_score" json:"location_score"`
	WaitTimeScore float64     `db:"wait_time_score" json:"wait_time_score"`
	AgeGapScore   float64     `db:"age_gap_score" json:"age_gap_score"`
	TotalScore    float64     `db:"total_score" json:"total_score"`
	Status        MatchStatus `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

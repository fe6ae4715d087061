package types

import "time"

type ProfileStatus string

const (
	ProfileStatusIncomplete ProfileStatus = "incomplete"
	ProfileStatusPending    ProfileStatus = "pending"
	ProfileStatusVerified   ProfileStatus = "verified"
	ProfileStatusMatched    ProfileStatus = "matched"
	ProfileStatusRejected   ProfileStatus = "rejected"
)

type AgeGroup string

const (
	AgeGroupPediatric AgeGroup = "pediatric"
	AgeGroupAdult     AgeGroup = "adult"
)

type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyLow      UrgencyLevel = "low"
)

type DonorProfile struct {
	ID         string        `db:"id" json:"id"`
	UserID     string        `db:"user_id" json:"user_id"`
	OrganType  string        `db:"organ_type" json:"organ_type"`
	BloodGroup string        `db:"blood_group" json:"blood_group"`
	Age        int           `db:"age" json:"age"`
	AgeGroup   AgeGroup      `db:"age_group" json:"age_group"`
	City       string        `db:"city" json:"city"`
	State      string        `db:"state" json:"state"`
	Status     ProfileStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
	VerifiedAt *time.Time    `db:"verified_at" json:"verified_at,omitempty"`
}

type RecipientProfile struct {
	ID               string        `db:"id" json:"id"`
	UserID           string        `db:"user_id" json:"user_id"`
	OrganType        string        `db:"organ_type" json:"organ_type"`
	BloodGroup       string        `db:"blood_group" json:"blood_group"`
	Age              int           `db:"age" json:"age"`
	AgeGroup         AgeGroup      `db:"age_group" json:"age_group"`
	City             string        `db:"city" json:"city"`
	State            string        `db:"state" json:"state"`
	UrgencyLevel     UrgencyLevel  `db:"urgency_level" json:"urgency_level"`
	MedicalCondition *string       `db:"medical_condition" json:"medical_condition,omitempty"`
	Status           ProfileStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
	VerifiedAt       *time.Time    `db:"verified_at" json:"verified_at,omitempty"`
}

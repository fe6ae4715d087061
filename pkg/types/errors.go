package types

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDonorNotFound        = errors.New("donor profile not found")
	ErrRecipientNotFound    = errors.New("recipient profile not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNotPending is returned when a status transition expects a pending
	// row and finds one that has already been decided.
	ErrNotPending = errors.New("record is not pending")
)

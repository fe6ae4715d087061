package server

import (
	"errors"
	"net/http"

	"jeevan/internal/trigger"
	"jeevan/pkg/types"
)

// handleVerifyDonor transitions a pending donor profile to verified and
// schedules a matching pass for it against all verified recipients.
func (s *Service) handleVerifyDonor(w http.ResponseWriter, r *http.Request) {
	donorID := r.PathValue("donorID")

	donor, err := s.donors.VerifyDonor(r.Context(), donorID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrDonorNotFound):
			s.respondError(w, http.StatusNotFound, "donor profile not found")
		case errors.Is(err, types.ErrNotPending):
			s.respondError(w, http.StatusConflict, "donor profile is not pending verification")
		default:
			s.logger.WithError(err).Error("failed to verify donor")
			s.respondError(w, http.StatusInternalServerError, "failed to verify donor")
		}
		return
	}

	event := trigger.Event{Kind: trigger.KindDonor, ProfileID: donor.ID}
	if err := s.dispatcher.Enqueue(r.Context(), event); err != nil {
		// The verification is committed; the database trigger delivers the
		// event again through the listener.
		s.logger.WithError(err).WithField("donor_id", donor.ID).Warn("failed to enqueue verification event")
	}

	s.respondJSON(w, http.StatusAccepted, map[string]any{"donor": donor})
}

func (s *Service) handleVerifyRecipient(w http.ResponseWriter, r *http.Request) {
	recipientID := r.PathValue("recipientID")

	recipient, err := s.recipients.VerifyRecipient(r.Context(), recipientID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrRecipientNotFound):
			s.respondError(w, http.StatusNotFound, "recipient profile not found")
		case errors.Is(err, types.ErrNotPending):
			s.respondError(w, http.StatusConflict, "recipient profile is not pending verification")
		default:
			s.logger.WithError(err).Error("failed to verify recipient")
			s.respondError(w, http.StatusInternalServerError, "failed to verify recipient")
		}
		return
	}

	event := trigger.Event{Kind: trigger.KindRecipient, ProfileID: recipient.ID}
	if err := s.dispatcher.Enqueue(r.Context(), event); err != nil {
		s.logger.WithError(err).WithField("recipient_id", recipient.ID).Warn("failed to enqueue verification event")
	}

	s.respondJSON(w, http.StatusAccepted, map[string]any{"recipient": recipient})
}

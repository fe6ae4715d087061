package server

import (
	"encoding/json"
	"net/http"
)

type cleanupRequest struct {
	UserIDs []string `json:"user_ids"`
}

// handleCleanup tears down everything belonging to a set of users: match
// candidates, notifications, both profile kinds, and finally the user rows
// themselves. Deletion order follows the foreign keys.
func (s *Service) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	if len(req.UserIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "user_ids is required")
		return
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"matches", func() error { return s.matches.DeleteMatchesByUserIDs(r.Context(), req.UserIDs) }},
		{"notifications", func() error { return s.notifications.DeleteNotificationsByUserIDs(r.Context(), req.UserIDs) }},
		{"donor profiles", func() error { return s.donors.DeleteDonorsByUserIDs(r.Context(), req.UserIDs) }},
		{"recipient profiles", func() error { return s.recipients.DeleteRecipientsByUserIDs(r.Context(), req.UserIDs) }},
		{"users", func() error { return s.users.DeleteUsersByIDs(r.Context(), req.UserIDs) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			s.logger.WithError(err).WithField("step", step.name).Error("cleanup step failed")
			s.respondError(w, http.StatusInternalServerError, "cleanup failed")
			return
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"status": "cleaned", "user_ids": req.UserIDs})
}

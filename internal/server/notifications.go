package server

import (
	"errors"
	"net/http"

	"jeevan/pkg/types"
)

func (s *Service) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	userID := query.Get("user_id")
	if userID == "" {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	unreadOnly := query.Get("unread") == "true"

	notifications, err := s.notifications.NotificationsForUser(r.Context(), userID, unreadOnly)
	if err != nil {
		s.logger.WithError(err).Error("failed to list notifications")
		s.respondError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *Service) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("notificationID")

	if err := s.notifications.MarkNotificationRead(r.Context(), notificationID); err != nil {
		if errors.Is(err, types.ErrNotificationNotFound) {
			s.respondError(w, http.StatusNotFound, "notification not found")
			return
		}

		s.logger.WithError(err).Error("failed to mark notification read")
		s.respondError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

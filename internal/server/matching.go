package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jeevan/internal/matching"
	"jeevan/pkg/types"
)

type runMatchingRequest struct {
	RecipientID string `form:"recipient_id" json:"recipient_id"`
	DonorID     string `form:"donor_id" json:"donor_id"`
}

// handleRunMatching is the administrative re-run entry point: it executes a
// pass synchronously and returns the full structured report, successes and
// skipped pairs included.
func (s *Service) handleRunMatching(w http.ResponseWriter, r *http.Request) {
	var req runMatchingRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if req.RecipientID != "" && req.DonorID != "" {
		s.respondError(w, http.StatusBadRequest, "scope accepts recipient_id or donor_id, not both")
		return
	}

	report, err := s.engine.Run(r.Context(), matching.Scope{
		RecipientID: req.RecipientID,
		DonorID:     req.DonorID,
	})
	if err != nil {
		s.logger.WithError(err).Error("manual matching pass failed")
		s.respondError(w, http.StatusInternalServerError, "matching pass failed")
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

func (s *Service) handleListMatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		matches []*types.Match
		err     error
	)

	if userID := query.Get("user_id"); userID != "" {
		matches, err = s.matches.MatchesForUser(r.Context(), userID)
	} else {
		matches, err = s.matches.Matches(r.Context(), query.Get("recipient_id"), query.Get("donor_id"))
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to list matches")
		s.respondError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

type matchDecisionRequest struct {
	Decision string `form:"decision" json:"decision"`
}

func (s *Service) handleMatchDecision(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("matchID")

	var req matchDecisionRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	var status types.MatchStatus
	switch req.Decision {
	case "approve":
		status = types.MatchStatusApproved
	case "reject":
		status = types.MatchStatusRejected
	default:
		s.respondError(w, http.StatusBadRequest, "decision must be approve or reject")
		return
	}

	match, err := s.matches.DecideMatch(r.Context(), matchID, status)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrMatchNotFound):
			s.respondError(w, http.StatusNotFound, "match not found")
		case errors.Is(err, types.ErrNotPending):
			s.respondError(w, http.StatusConflict, "match has already been decided")
		default:
			s.logger.WithError(err).Error("failed to decide match")
			s.respondError(w, http.StatusInternalServerError, "failed to decide match")
		}
		return
	}

	// An approved match commits both profiles. Best effort: the decision
	// stands even if a status transition lags.
	if status == types.MatchStatusApproved {
		if err := s.donors.MarkDonorMatched(r.Context(), match.DonorID); err != nil {
			s.logger.WithError(err).WithField("donor_id", match.DonorID).Warn("failed to mark donor matched")
		}
		if err := s.recipients.MarkRecipientMatched(r.Context(), match.RecipientID); err != nil {
			s.logger.WithError(err).WithField("recipient_id", match.RecipientID).Warn("failed to mark recipient matched")
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"match": match})
}

// decodeRequest accepts a JSON body or form/query encoding, in the form
// decoder's terms. Responds with 400 and returns false on a bad payload.
func (s *Service) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid json payload")
			return false
		}
		return true
	}

	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form payload")
		return false
	}

	if err := decoder.Decode(dst, r.Form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request parameters")
		return false
	}

	return true
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jeevan/internal/matching"
	"jeevan/internal/trigger"
	"jeevan/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

type fakeDonorStore struct {
	donors  map[string]*types.DonorProfile
	matched []string
	deleted [][]string
}

func (f *fakeDonorStore) Donor(_ context.Context, donorID string) (*types.DonorProfile, error) {
	donor, ok := f.donors[donorID]
	if !ok {
		return nil, types.ErrDonorNotFound
	}
	return donor, nil
}

func (f *fakeDonorStore) VerifyDonor(_ context.Context, donorID string) (*types.DonorProfile, error) {
	donor, ok := f.donors[donorID]
	if !ok {
		return nil, types.ErrDonorNotFound
	}
	if donor.Status != types.ProfileStatusPending {
		return nil, types.ErrNotPending
	}
	donor.Status = types.ProfileStatusVerified
	return donor, nil
}

func (f *fakeDonorStore) MarkDonorMatched(_ context.Context, donorID string) error {
	f.matched = append(f.matched, donorID)
	return nil
}

func (f *fakeDonorStore) DeleteDonorsByUserIDs(_ context.Context, userIDs []string) error {
	f.deleted = append(f.deleted, userIDs)
	return nil
}

type fakeRecipientStore struct {
	recipients map[string]*types.RecipientProfile
	matched    []string
	deleted    [][]string
}

func (f *fakeRecipientStore) Recipient(_ context.Context, recipientID string) (*types.RecipientProfile, error) {
	recipient, ok := f.recipients[recipientID]
	if !ok {
		return nil, types.ErrRecipientNotFound
	}
	return recipient, nil
}

func (f *fakeRecipientStore) VerifyRecipient(_ context.Context, recipientID string) (*types.RecipientProfile, error) {
	recipient, ok := f.recipients[recipientID]
	if !ok {
		return nil, types.ErrRecipientNotFound
	}
	if recipient.Status != types.ProfileStatusPending {
		return nil, types.ErrNotPending
	}
	recipient.Status = types.ProfileStatusVerified
	return recipient, nil
}

func (f *fakeRecipientStore) MarkRecipientMatched(_ context.Context, recipientID string) error {
	f.matched = append(f.matched, recipientID)
	return nil
}

func (f *fakeRecipientStore) DeleteRecipientsByUserIDs(_ context.Context, userIDs []string) error {
	f.deleted = append(f.deleted, userIDs)
	return nil
}

type fakeUserStore struct {
	deleted [][]string
}

func (f *fakeUserStore) DeleteUsersByIDs(_ context.Context, userIDs []string) error {
	f.deleted = append(f.deleted, userIDs)
	return nil
}

type fakeMatchStore struct {
	matches   map[string]*types.Match
	decideErr error
	deleted   [][]string
}

func (f *fakeMatchStore) Matches(_ context.Context, recipientID, donorID string) ([]*types.Match, error) {
	out := []*types.Match{}
	for _, match := range f.matches {
		if recipientID != "" && match.RecipientID != recipientID {
			continue
		}
		if donorID != "" && match.DonorID != donorID {
			continue
		}
		out = append(out, match)
	}
	return out, nil
}

func (f *fakeMatchStore) MatchesForUser(_ context.Context, _ string) ([]*types.Match, error) {
	out := []*types.Match{}
	for _, match := range f.matches {
		out = append(out, match)
	}
	return out, nil
}

func (f *fakeMatchStore) DecideMatch(_ context.Context, matchID string, status types.MatchStatus) (*types.Match, error) {
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	match, ok := f.matches[matchID]
	if !ok {
		return nil, types.ErrMatchNotFound
	}
	if match.Status != types.MatchStatusPending {
		return nil, types.ErrNotPending
	}
	match.Status = status
	match.UpdatedAt = time.Now()
	return match, nil
}

func (f *fakeMatchStore) DeleteMatchesByUserIDs(_ context.Context, userIDs []string) error {
	f.deleted = append(f.deleted, userIDs)
	return nil
}

type fakeNotificationStore struct {
	notifications map[string]*types.Notification
	deleted       [][]string
}

func (f *fakeNotificationStore) NotificationsForUser(_ context.Context, userID string, unreadOnly bool) ([]*types.Notification, error) {
	out := []*types.Notification{}
	for _, notification := range f.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.IsRead {
			continue
		}
		out = append(out, notification)
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkNotificationRead(_ context.Context, notificationID string) error {
	notification, ok := f.notifications[notificationID]
	if !ok {
		return types.ErrNotificationNotFound
	}
	notification.IsRead = true
	return nil
}

func (f *fakeNotificationStore) DeleteNotificationsByUserIDs(_ context.Context, userIDs []string) error {
	f.deleted = append(f.deleted, userIDs)
	return nil
}

type fakeRunner struct {
	scopes []matching.Scope
	report *matching.Report
	err    error
}

func (f *fakeRunner) Run(_ context.Context, scope matching.Scope) (*matching.Report, error) {
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &matching.Report{Scope: scope.String(), Candidates: []*types.Match{}}, nil
}

type fakeQueue struct {
	events []trigger.Event
	err    error
}

func (f *fakeQueue) Enqueue(_ context.Context, event trigger.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type serviceFixture struct {
	service       *Service
	donors        *fakeDonorStore
	recipients    *fakeRecipientStore
	matches       *fakeMatchStore
	notifications *fakeNotificationStore
	users         *fakeUserStore
	runner        *fakeRunner
	queue         *fakeQueue
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &serviceFixture{
		donors: &fakeDonorStore{donors: map[string]*types.DonorProfile{
			"donor-1": {ID: "donor-1", UserID: "user-d1", Status: types.ProfileStatusPending},
		}},
		recipients: &fakeRecipientStore{recipients: map[string]*types.RecipientProfile{
			"recipient-1": {ID: "recipient-1", UserID: "user-r1", Status: types.ProfileStatusPending},
		}},
		matches: &fakeMatchStore{matches: map[string]*types.Match{
			"match-1": {
				ID:          "match-1",
				RecipientID: "recipient-1",
				DonorID:     "donor-1",
				TotalScore:  76,
				Status:      types.MatchStatusPending,
			},
		}},
		notifications: &fakeNotificationStore{notifications: map[string]*types.Notification{
			"notification-1": {ID: "notification-1", UserID: "user-r1", Type: types.NotificationTypeMatchFound},
			"notification-2": {ID: "notification-2", UserID: "user-r1", Type: types.NotificationTypeMatchFound, IsRead: true},
		}},
		users:  &fakeUserStore{},
		runner: &fakeRunner{},
		queue:  &fakeQueue{},
	}

	config := &types.Config{
		ServerPort:      8080,
		ReadTimeoutSec:  10,
		WriteTimeoutSec: 15,
		AdminToken:      testAdminToken,
	}

	service, err := New(config, logger, f.donors, f.recipients, f.matches, f.notifications, f.users, f.runner, f.queue)
	require.NoError(t, err)
	f.service = service

	return f
}

func (f *serviceFixture) request(t *testing.T, method, target string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}

	recorder := httptest.NewRecorder()
	f.service.server.Handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(dst))
}

func TestHealthEndpointIsOpen(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matching/run", map[string]string{}, false)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	recorder = httptest.NewRecorder()
	f.service.server.Handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAdminEndpointsUnavailableWithoutConfiguredToken(t *testing.T) {
	f := newServiceFixture(t)
	f.service.config.AdminToken = ""

	recorder := f.request(t, http.MethodGet, "/api/matches", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestRunMatchingReturnsReport(t *testing.T) {
	f := newServiceFixture(t)
	f.runner.report = &matching.Report{
		Scope:      "all",
		Candidates: []*types.Match{{ID: "match-1", TotalScore: 76}},
		Inserted:   1,
	}

	recorder := f.request(t, http.MethodPost, "/api/matching/run", map[string]string{}, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	var report matching.Report
	decodeBody(t, recorder, &report)
	assert.Equal(t, "all", report.Scope)
	assert.Equal(t, 1, report.Inserted)
	require.Len(t, f.runner.scopes, 1)
	assert.Equal(t, matching.Scope{}, f.runner.scopes[0])
}

func TestRunMatchingScopedToRecipient(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matching/run",
		map[string]string{"recipient_id": "recipient-1"}, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, f.runner.scopes, 1)
	assert.Equal(t, matching.Scope{RecipientID: "recipient-1"}, f.runner.scopes[0])
}

func TestRunMatchingRejectsDoubleScope(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matching/run",
		map[string]string{"recipient_id": "recipient-1", "donor_id": "donor-1"}, true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, f.runner.scopes)
}

func TestRunMatchingPassFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.runner.err = errors.New("database down")

	recorder := f.request(t, http.MethodPost, "/api/matching/run", map[string]string{}, true)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestVerifyDonorEnqueuesEvent(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/profiles/donors/donor-1/verify", nil, true)
	require.Equal(t, http.StatusAccepted, recorder.Code)

	assert.Equal(t, types.ProfileStatusVerified, f.donors.donors["donor-1"].Status)
	require.Len(t, f.queue.events, 1)
	assert.Equal(t, trigger.Event{Kind: trigger.KindDonor, ProfileID: "donor-1"}, f.queue.events[0])
}

func TestVerifyDonorNotFound(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/profiles/donors/missing/verify", nil, true)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, f.queue.events)
}

func TestVerifyDonorAlreadyVerified(t *testing.T) {
	f := newServiceFixture(t)
	f.donors.donors["donor-1"].Status = types.ProfileStatusVerified

	recorder := f.request(t, http.MethodPost, "/api/profiles/donors/donor-1/verify", nil, true)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Empty(t, f.queue.events)
}

func TestVerifyDonorSucceedsWhenEnqueueFails(t *testing.T) {
	// The database trigger redelivers the event, so a full inbox does not
	// fail the verification itself.
	f := newServiceFixture(t)
	f.queue.err = errors.New("inbox full")

	recorder := f.request(t, http.MethodPost, "/api/profiles/donors/donor-1/verify", nil, true)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, types.ProfileStatusVerified, f.donors.donors["donor-1"].Status)
}

func TestVerifyRecipientEnqueuesEvent(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/profiles/recipients/recipient-1/verify", nil, true)
	require.Equal(t, http.StatusAccepted, recorder.Code)

	require.Len(t, f.queue.events, 1)
	assert.Equal(t, trigger.Event{Kind: trigger.KindRecipient, ProfileID: "recipient-1"}, f.queue.events[0])
}

func TestListMatches(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodGet, "/api/matches?recipient_id=recipient-1", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Matches []*types.Match `json:"matches"`
	}
	decodeBody(t, recorder, &payload)
	require.Len(t, payload.Matches, 1)
	assert.Equal(t, "match-1", payload.Matches[0].ID)
}

func TestMatchDecisionApprove(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matches/match-1/decision",
		map[string]string{"decision": "approve"}, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, types.MatchStatusApproved, f.matches.matches["match-1"].Status)
	assert.Equal(t, []string{"donor-1"}, f.donors.matched)
	assert.Equal(t, []string{"recipient-1"}, f.recipients.matched)
}

func TestMatchDecisionReject(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matches/match-1/decision",
		map[string]string{"decision": "reject"}, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, types.MatchStatusRejected, f.matches.matches["match-1"].Status)
	assert.Empty(t, f.donors.matched)
	assert.Empty(t, f.recipients.matched)
}

func TestMatchDecisionValidation(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matches/match-1/decision",
		map[string]string{"decision": "maybe"}, true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMatchDecisionNotFound(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/matches/missing/decision",
		map[string]string{"decision": "approve"}, true)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestMatchDecisionAlreadyDecided(t *testing.T) {
	f := newServiceFixture(t)
	f.matches.matches["match-1"].Status = types.MatchStatusApproved

	recorder := f.request(t, http.MethodPost, "/api/matches/match-1/decision",
		map[string]string{"decision": "reject"}, true)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestListNotificationsRequiresUserID(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodGet, "/api/notifications", nil, true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListNotificationsUnreadFilter(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodGet, "/api/notifications?user_id=user-r1&unread=true", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Notifications []*types.Notification `json:"notifications"`
	}
	decodeBody(t, recorder, &payload)
	require.Len(t, payload.Notifications, 1)
	assert.Equal(t, "notification-1", payload.Notifications[0].ID)
}

func TestMarkNotificationRead(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/notifications/notification-1/read", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, f.notifications.notifications["notification-1"].IsRead)

	recorder = f.request(t, http.MethodPost, "/api/notifications/missing/read", nil, true)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCleanup(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodDelete, "/api/admin/cleanup",
		map[string][]string{"user_ids": {"user-d1", "user-r1"}}, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	want := []string{"user-d1", "user-r1"}
	require.Len(t, f.matches.deleted, 1)
	assert.Equal(t, want, f.matches.deleted[0])
	require.Len(t, f.notifications.deleted, 1)
	assert.Equal(t, want, f.notifications.deleted[0])
	require.Len(t, f.donors.deleted, 1)
	assert.Equal(t, want, f.donors.deleted[0])
	require.Len(t, f.recipients.deleted, 1)
	assert.Equal(t, want, f.recipients.deleted[0])
	require.Len(t, f.users.deleted, 1)
	assert.Equal(t, want, f.users.deleted[0])
}

func TestCleanupRequiresUserIDs(t *testing.T) {
	f := newServiceFixture(t)

	recorder := f.request(t, http.MethodDelete, "/api/admin/cleanup",
		map[string][]string{"user_ids": {}}, true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

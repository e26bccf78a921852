package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

const testUserID = "me"

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rr.Code, rr.Body.String())
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != message {
		t.Fatalf("expected error %q, got %q", message, resp.Error)
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// fakeSocialAPI satisfies the backend surface a session needs.
type fakeSocialAPI struct {
	mu       sync.Mutex
	calls    []string
	friends  []models.User
	incoming []models.FriendRequest
	outgoing []models.FriendRequest
	isFriend bool
	water    *models.WaterIntake
	err      error

	// When started is set, mutations signal it and wait for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeSocialAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSocialAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeSocialAPI) mutate(call string) error {
	f.record(call)
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	return f.err
}

func (f *fakeSocialAPI) CheckFriendshipStatus(ctx context.Context, viewerID, otherID string) (bool, error) {
	f.record("check")
	return f.isFriend, nil
}

func (f *fakeSocialAPI) GetIncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	f.record("incoming")
	return f.incoming, nil
}

func (f *fakeSocialAPI) GetOutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	f.record("outgoing")
	return f.outgoing, nil
}

func (f *fakeSocialAPI) GetUserFriends(ctx context.Context, userID string) ([]models.User, error) {
	f.record("friends")
	return f.friends, nil
}

func (f *fakeSocialAPI) SendFriendRequest(ctx context.Context, viewerID, targetID string) error {
	return f.mutate("send")
}

func (f *fakeSocialAPI) AcceptFriendRequest(ctx context.Context, viewerID, senderID string) error {
	return f.mutate("accept")
}

func (f *fakeSocialAPI) RejectFriendRequest(ctx context.Context, viewerID, senderID string) error {
	return f.mutate("reject")
}

func (f *fakeSocialAPI) RevokeFriendRequest(ctx context.Context, viewerID, receiverID string) error {
	return f.mutate("revoke")
}

func (f *fakeSocialAPI) RemoveFriend(ctx context.Context, viewerID, friendID string) error {
	return f.mutate("remove")
}

func (f *fakeSocialAPI) GetWaterToday(ctx context.Context, userID string) (*models.WaterIntake, error) {
	f.record("water")
	return f.water, nil
}

func (f *fakeSocialAPI) RecordActivity(ctx context.Context, userID string) error {
	f.record("activity")
	return nil
}

func newTestSession(api *fakeSocialAPI) *services.Session {
	logger := logging.New().SetOutput(io.Discard)
	social := services.NewSocialService(testUserID, api, nil, logger)
	return &services.Session{
		UserID: testUserID,
		Social: social,
		Presence: services.NewPresenceService(testUserID, api, services.PresenceConfig{
			FriendsInterval:            time.Minute,
			RequestsInterval:           30 * time.Second,
			RequestsForegroundInterval: 5 * time.Second,
		}, nil, social, nil, logger),
		Heartbeat: services.NewHeartbeat(testUserID, api, time.Hour, time.Minute, logger),
	}
}

func withSession(req *http.Request, s *services.Session) *http.Request {
	return req.WithContext(SetSessionInContext(req.Context(), s))
}

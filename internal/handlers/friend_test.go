package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kyoolapp/lifestyle-sub000/internal/backend"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

func TestFriendHandler_RequiresSession(t *testing.T) {
	handler := NewFriendHandler()
	for name, fn := range map[string]http.HandlerFunc{
		"list":     handler.List,
		"requests": handler.Requests,
		"send":     handler.SendRequest,
		"accept":   handler.AcceptRequest,
		"reject":   handler.RejectRequest,
		"revoke":   handler.RevokeRequest,
		"remove":   handler.Remove,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/friends", nil)
			rr := httptest.NewRecorder()
			fn(rr, req)
			assertErrorResponse(t, rr, http.StatusUnauthorized, "Authentication required")
		})
	}
}

func TestFriendHandler_SendRequest_Validation(t *testing.T) {
	handler := NewFriendHandler()
	session := newTestSession(&fakeSocialAPI{})

	cases := []struct {
		body    string
		message string
	}{
		{"{", "Invalid request body"},
		{`{"user_id":"  "}`, "user_id is required"},
		{`{"user_id":"me"}`, "Cannot send friend request to yourself"},
	}
	for _, tc := range cases {
		req := withSession(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBufferString(tc.body)), session)
		rr := httptest.NewRecorder()
		handler.SendRequest(rr, req)
		assertErrorResponse(t, rr, http.StatusBadRequest, tc.message)
	}
}

func TestFriendHandler_SendRequest_AddsOutgoing(t *testing.T) {
	api := &fakeSocialAPI{}
	session := newTestSession(api)
	handler := NewFriendHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBufferString(`{"user_id":"u2"}`)), session)
	rr := httptest.NewRecorder()
	handler.SendRequest(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if api.count("send") != 1 {
		t.Fatalf("expected one send call, got %v", api.calls)
	}

	rr = httptest.NewRecorder()
	handler.Requests(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/friends/requests", nil), session))
	var resp FriendRequestsResponse
	decodeBody(t, rr, &resp)
	if len(resp.Outgoing) != 1 || resp.Outgoing[0].ReceiverID != "u2" {
		t.Fatalf("expected outgoing request to u2, got %+v", resp.Outgoing)
	}
}

func TestFriendHandler_SendRequest_PassesBackendDetail(t *testing.T) {
	api := &fakeSocialAPI{err: &backend.RequestError{Op: "send friend request", StatusCode: http.StatusBadRequest, Detail: "Friend request already sent"}}
	session := newTestSession(api)
	handler := NewFriendHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBufferString(`{"user_id":"u2"}`)), session)
	rr := httptest.NewRecorder()
	handler.SendRequest(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "Friend request already sent")
	if got := session.Social.Snapshot().Outgoing; len(got) != 0 {
		t.Fatalf("expected no outgoing change on failure, got %+v", got)
	}
}

func TestFriendHandler_BackendServerErrorIsBadGateway(t *testing.T) {
	api := &fakeSocialAPI{err: &backend.RequestError{Op: "remove friend", StatusCode: http.StatusInternalServerError, Detail: "database down"}}
	session := newTestSession(api)
	handler := NewFriendHandler()

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/friends/u2", nil), session)
	req.SetPathValue("id", "u2")
	rr := httptest.NewRecorder()
	handler.Remove(rr, req)

	assertErrorResponse(t, rr, http.StatusBadGateway, "database down")
}

func TestFriendHandler_AcceptMovesRequestToFriends(t *testing.T) {
	api := &fakeSocialAPI{}
	session := newTestSession(api)
	session.Social.ApplyIncoming([]models.FriendRequest{
		{RequestID: "r1", SenderID: "u2", ReceiverID: testUserID, Sender: &models.User{ID: "u2", Name: "Ana"}},
		{RequestID: "r2", SenderID: "u3", ReceiverID: testUserID},
	})
	handler := NewFriendHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/friends/requests/u2/accept", nil), session)
	req.SetPathValue("id", "u2")
	rr := httptest.NewRecorder()
	handler.AcceptRequest(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.List(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/friends", nil), session))
	var list FriendListResponse
	decodeBody(t, rr, &list)
	if len(list.Friends) != 1 || list.Friends[0].Name != "Ana" {
		t.Fatalf("expected Ana in friends, got %+v", list.Friends)
	}
	if incoming := session.Social.Snapshot().Incoming; len(incoming) != 1 || incoming[0].SenderID != "u3" {
		t.Fatalf("expected only u3 pending, got %+v", incoming)
	}
}

func TestFriendHandler_RejectAndRevoke(t *testing.T) {
	api := &fakeSocialAPI{}
	session := newTestSession(api)
	session.Social.ApplyIncoming([]models.FriendRequest{{RequestID: "r1", SenderID: "u2", ReceiverID: testUserID}})
	handler := NewFriendHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/friends/requests/u2/reject", nil), session)
	req.SetPathValue("id", "u2")
	rr := httptest.NewRecorder()
	handler.RejectRequest(rr, req)
	if rr.Code != http.StatusOK || len(session.Social.Snapshot().Incoming) != 0 {
		t.Fatalf("reject failed: %d %+v", rr.Code, session.Social.Snapshot().Incoming)
	}

	req = withSession(httptest.NewRequest(http.MethodPost, "/api/friends/requests/u4/revoke", nil), session)
	req.SetPathValue("id", "u4")
	rr = httptest.NewRecorder()
	handler.RevokeRequest(rr, req)
	if rr.Code != http.StatusOK || api.count("revoke") != 1 {
		t.Fatalf("revoke failed: %d %v", rr.Code, api.calls)
	}
}

func TestFriendHandler_MissingPathIDIsBadRequest(t *testing.T) {
	session := newTestSession(&fakeSocialAPI{})
	handler := NewFriendHandler()

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/friends/", nil), session)
	rr := httptest.NewRecorder()
	handler.Remove(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "user id is required")
}

func TestFriendHandler_ConcurrentActionIsConflict(t *testing.T) {
	api := &fakeSocialAPI{started: make(chan struct{}), release: make(chan struct{})}
	session := newTestSession(api)
	handler := NewFriendHandler()

	done := make(chan int)
	go func() {
		req := withSession(httptest.NewRequest(http.MethodDelete, "/api/friends/u2", nil), session)
		req.SetPathValue("id", "u2")
		rr := httptest.NewRecorder()
		handler.Remove(rr, req)
		done <- rr.Code
	}()
	<-api.started

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/friends/u2", nil), session)
	req.SetPathValue("id", "u2")
	rr := httptest.NewRecorder()
	handler.Remove(rr, req)
	assertErrorResponse(t, rr, http.StatusConflict, "Action already in progress")

	close(api.release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("expected first call to succeed, got %d", code)
	}
	if api.count("remove") != 1 {
		t.Fatalf("expected one backend call, got %v", api.calls)
	}
}

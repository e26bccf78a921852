package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kyoolapp/lifestyle-sub000/internal/backend"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

type mockUserAPI struct {
	SearchUsersFunc   func(ctx context.Context, query string) ([]models.User, error)
	GetUserFunc       func(ctx context.Context, userID string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

func (m *mockUserAPI) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, query)
	}
	return []models.User{}, nil
}

func (m *mockUserAPI) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return &models.User{ID: userID}, nil
}

func (m *mockUserAPI) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, patch)
	}
	return &models.User{ID: userID}, nil
}

type mockResolver struct {
	mu       sync.Mutex
	states   map[string]models.FriendRequestState
	err      error
	resolved []string
}

func (m *mockResolver) Resolve(ctx context.Context, viewerID, otherID string) (models.FriendRequestState, error) {
	if m.err != nil {
		return models.FriendRequestState{}, m.err
	}
	return m.ResolveOrNone(ctx, viewerID, otherID), nil
}

func (m *mockResolver) ResolveOrNone(ctx context.Context, viewerID, otherID string) models.FriendRequestState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved = append(m.resolved, otherID)
	if st, ok := m.states[otherID]; ok {
		return st
	}
	return models.FriendRequestState{Status: models.FriendshipStatusNone}
}

func TestUserHandler_Me(t *testing.T) {
	handler := NewUserHandler(&mockUserAPI{
		GetUserFunc: func(ctx context.Context, userID string) (*models.User, error) {
			if userID != testUserID {
				t.Fatalf("expected %q, got %q", testUserID, userID)
			}
			return &models.User{ID: userID, Username: "me_user"}, nil
		},
	}, &mockResolver{})

	rr := httptest.NewRecorder()
	handler.Me(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/me", nil), newTestSession(&fakeSocialAPI{})))

	var resp UserResponse
	decodeBody(t, rr, &resp)
	if resp.User == nil || resp.User.Username != "me_user" {
		t.Fatalf("unexpected response %+v", resp.User)
	}
}

func TestUserHandler_Me_RequiresSession(t *testing.T) {
	handler := NewUserHandler(&mockUserAPI{}, &mockResolver{})
	rr := httptest.NewRecorder()
	handler.Me(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assertErrorResponse(t, rr, http.StatusUnauthorized, "Authentication required")
}

func TestUserHandler_UpdateMe_ValidatesUsername(t *testing.T) {
	called := false
	handler := NewUserHandler(&mockUserAPI{
		UpdateProfileFunc: func(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
			called = true
			return nil, nil
		},
	}, &mockResolver{})

	req := withSession(httptest.NewRequest(http.MethodPut, "/api/me", bytes.NewBufferString(`{"username":"ab"}`)), newTestSession(&fakeSocialAPI{}))
	rr := httptest.NewRecorder()
	handler.UpdateMe(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, models.ErrInvalidUsername.Error())
	if called {
		t.Fatal("expected backend not to be called")
	}
}

func TestUserHandler_UpdateMe_ForwardsPatch(t *testing.T) {
	var got models.ProfilePatch
	handler := NewUserHandler(&mockUserAPI{
		UpdateProfileFunc: func(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
			got = patch
			return &models.User{ID: userID, Weight: patch.Weight}, nil
		},
	}, &mockResolver{})

	req := withSession(httptest.NewRequest(http.MethodPut, "/api/me", bytes.NewBufferString(`{"weight":72.5}`)), newTestSession(&fakeSocialAPI{}))
	rr := httptest.NewRecorder()
	handler.UpdateMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.Weight == nil || *got.Weight != 72.5 || got.Name != nil {
		t.Fatalf("unexpected patch %+v", got)
	}
}

func TestUserHandler_Metrics(t *testing.T) {
	h, w, age := 175.0, 70.0, 30
	handler := NewUserHandler(&mockUserAPI{
		GetUserFunc: func(ctx context.Context, userID string) (*models.User, error) {
			return &models.User{ID: userID, Height: &h, Weight: &w, Age: &age, Gender: "male"}, nil
		},
	}, &mockResolver{})

	rr := httptest.NewRecorder()
	handler.Metrics(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/me/metrics", nil), newTestSession(&fakeSocialAPI{})))

	var resp MetricsResponse
	decodeBody(t, rr, &resp)
	if resp.Metrics.BMI == nil || *resp.Metrics.BMI != 22.9 || resp.Metrics.BMICategory != "normal" {
		t.Fatalf("unexpected metrics %+v", resp.Metrics)
	}
}

func TestUserHandler_Metrics_BodyFat(t *testing.T) {
	h, w := 178.0, 80.0
	handler := NewUserHandler(&mockUserAPI{
		GetUserFunc: func(ctx context.Context, userID string) (*models.User, error) {
			return &models.User{ID: userID, Height: &h, Weight: &w, Gender: "male"}, nil
		},
	}, &mockResolver{})
	session := newTestSession(&fakeSocialAPI{})

	rr := httptest.NewRecorder()
	handler.Metrics(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/me/metrics?waist=85&neck=38", nil), session))
	var resp MetricsResponse
	decodeBody(t, rr, &resp)
	if resp.Metrics.BodyFat == nil || resp.Metrics.Imperial.HeightFeet != 5 {
		t.Fatalf("expected body fat and imperial height, got %+v", resp.Metrics)
	}

	rr = httptest.NewRecorder()
	handler.Metrics(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/me/metrics?waist=abc", nil), session))
	assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid waist")

	rr = httptest.NewRecorder()
	handler.Metrics(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/me/metrics?waist=30&neck=38", nil), session))
	assertErrorResponse(t, rr, http.StatusUnprocessableEntity, "measurements must be positive")
}

func TestUserHandler_UpdateMe_ImperialInput(t *testing.T) {
	var got models.ProfilePatch
	handler := NewUserHandler(&mockUserAPI{
		UpdateProfileFunc: func(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
			got = patch
			return &models.User{ID: userID}, nil
		},
	}, &mockResolver{})

	body := `{"weight":1,"weight_lbs":150,"height_ft":6,"height_in":0,"name":"Ada"}`
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/me", bytes.NewBufferString(body)), newTestSession(&fakeSocialAPI{}))
	rr := httptest.NewRecorder()
	handler.UpdateMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.Weight == nil || *got.Weight != 68 {
		t.Fatalf("expected 68kg, got %v", got.Weight)
	}
	if got.Height == nil || *got.Height != 182.9 {
		t.Fatalf("expected 182.9cm, got %v", got.Height)
	}
	if got.Name == nil || *got.Name != "Ada" {
		t.Fatalf("expected name to pass through, got %v", got.Name)
	}
}

func TestUserHandler_Metrics_MissingMeasurements(t *testing.T) {
	handler := NewUserHandler(&mockUserAPI{}, &mockResolver{})
	rr := httptest.NewRecorder()
	handler.Metrics(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/me/metrics", nil), newTestSession(&fakeSocialAPI{})))
	assertErrorResponse(t, rr, http.StatusUnprocessableEntity, "Height and weight are required")
}

func TestUserHandler_Search_EmptyQuerySkipsBackend(t *testing.T) {
	handler := NewUserHandler(&mockUserAPI{
		SearchUsersFunc: func(ctx context.Context, query string) ([]models.User, error) {
			t.Fatal("search should not be called")
			return nil, nil
		},
	}, &mockResolver{})

	rr := httptest.NewRecorder()
	handler.Search(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/users/search?q=+", nil), newTestSession(&fakeSocialAPI{})))

	var resp SearchResponse
	decodeBody(t, rr, &resp)
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Fatalf("expected empty results, got %+v", resp.Results)
	}
}

func TestUserHandler_Search_AnnotatesInBackendOrder(t *testing.T) {
	resolver := &mockResolver{states: map[string]models.FriendRequestState{
		"u1": {Status: models.FriendshipStatusFriends},
		"u3": {Status: models.FriendshipStatusSent, RequestID: "r3"},
	}}
	handler := NewUserHandler(&mockUserAPI{
		SearchUsersFunc: func(ctx context.Context, query string) ([]models.User, error) {
			if query != "an" {
				t.Fatalf("expected trimmed query, got %q", query)
			}
			return []models.User{{ID: "u3"}, {ID: testUserID}, {ID: "u1"}, {ID: "u2"}}, nil
		},
	}, resolver)

	rr := httptest.NewRecorder()
	handler.Search(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/users/search?q=+an+", nil), newTestSession(&fakeSocialAPI{})))

	var resp SearchResponse
	decodeBody(t, rr, &resp)
	want := []struct {
		id     string
		status models.FriendshipStatus
	}{
		{"u3", models.FriendshipStatusSent},
		{"u1", models.FriendshipStatusFriends},
		{"u2", models.FriendshipStatusNone},
	}
	if len(resp.Results) != len(want) {
		t.Fatalf("expected %d results, got %+v", len(want), resp.Results)
	}
	for i, w := range want {
		if resp.Results[i].User.ID != w.id || resp.Results[i].Status != w.status {
			t.Fatalf("result %d: got %+v, want %s/%s", i, resp.Results[i], w.id, w.status)
		}
	}
	if len(resolver.resolved) != 3 {
		t.Fatalf("expected self to be skipped, resolved %v", resolver.resolved)
	}
}

func TestUserHandler_FriendshipStatus(t *testing.T) {
	handler := NewUserHandler(&mockUserAPI{}, &mockResolver{states: map[string]models.FriendRequestState{
		"u2": {Status: models.FriendshipStatusReceived, RequestID: "r9"},
	}})

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/users/u2/friendship-status", nil), newTestSession(&fakeSocialAPI{}))
	req.SetPathValue("id", "u2")
	rr := httptest.NewRecorder()
	handler.FriendshipStatus(rr, req)

	var resp FriendshipStatusResponse
	decodeBody(t, rr, &resp)
	if resp.Status != models.FriendshipStatusReceived || resp.RequestID != "r9" || resp.UserID != "u2" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUserHandler_FriendshipStatus_ErrorsSurface(t *testing.T) {
	handler := NewUserHandler(&mockUserAPI{}, &mockResolver{err: &backend.TransportError{Op: "check friendship", Err: errors.New("connection refused")}})

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/users/u2/friendship-status", nil), newTestSession(&fakeSocialAPI{}))
	req.SetPathValue("id", "u2")
	rr := httptest.NewRecorder()
	handler.FriendshipStatus(rr, req)

	assertErrorResponse(t, rr, http.StatusBadGateway, "Backend unavailable")
}

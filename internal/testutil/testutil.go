// Package testutil holds small request and assertion helpers shared by the
// HTTP-facing package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func NewTestRequest(method, path string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, path, body)
}

func NewTestRequestWithJSON(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func ParseJSONResponse(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("parse json response %q: %v", body, err)
	}
	return out
}

func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// AssertJSONContains checks a top-level key; values compare by their
// formatted form so numbers and strings can be given either way.
func AssertJSONContains(t *testing.T, body []byte, key string, want interface{}) {
	t.Helper()
	got, ok := ParseJSONResponse(t, body)[key]
	if !ok {
		t.Fatalf("expected key %q in %s", key, body)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %q=%v, got %v", key, want, got)
	}
}

func RandomUUID() uuid.UUID {
	return uuid.New()
}

// RandomUserID returns an opaque id shaped like a Firebase UID.
func RandomUserID() string {
	return "uid_" + uuid.NewString()[:8]
}

func RandomEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.NewString()[:8])
}

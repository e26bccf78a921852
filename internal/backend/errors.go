package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingID = errors.New("user id is required")

// RequestError is a non-2xx answer from the backend. Detail carries the
// backend's own message and is what users get to see.
type RequestError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is a RequestError with the given status code.
func IsStatus(err error, code int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == code
}

// Detail returns the user-facing message for err: the backend detail when
// present, otherwise err.Error().
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	return err.Error()
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// parseDetail accepts {"detail": "msg"} and the validation shape
// {"detail": [{"msg": "..."}]}.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return strings.TrimSpace(string(eb.Detail))
}

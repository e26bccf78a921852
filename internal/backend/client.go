package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
)

const maxErrorBody = 64 << 10

// Client is a thin typed wrapper over the backend REST API. It holds no state
// between calls; every call is a single request with no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	events     events.Publisher
	logger     *logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sends the token from ts as a Bearer token on every request.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		if ts == nil {
			return
		}
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &oauth2.Transport{Source: ts, Base: base},
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(c *Client) { c.events = p }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, errors.New("backend url must be absolute")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func userPath(id string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/users/")
	b.WriteString(url.PathEscape(id))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reqErr := &RequestError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
		c.logger.Debug("Backend rejected request", map[string]interface{}{
			"op":     op,
			"status": resp.StatusCode,
			"detail": reqErr.Detail,
		})
		return reqErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

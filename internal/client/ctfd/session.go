// Package ctfd provides the API client for the CTFd REST API.
//
// Purpose:
//
//	A Session ties a CTFd base URL to an admin access token and issues the
//	user and file calls the CLI needs. Each call is one request/response round
//	trip with no retries. Network and decoding failures surface as
//	*client.TransportError; non-2xx statuses are returned as a Response so the
//	caller can print exactly what the server said.
//
// Endpoints:
//   - POST   /api/v1/files
//   - POST   /api/v1/users?notify=<bool>
//   - GET    /api/v1/users?page=<n>
//   - GET    /api/v1/users/{id}
//   - PATCH  /api/v1/users/{id}
//   - DELETE /api/v1/users/{id}
package ctfd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/otherjamesbrown/ctfd-admin/internal/client"
	"github.com/otherjamesbrown/ctfd-admin/internal/logging"
)

const (
	apiPrefix        = "/api/v1"
	defaultUserAgent = "ctfd-admin"
)

// ConfigError reports a missing or invalid URL or token. It is returned before
// any network activity.
type ConfigError struct {
	Field  string // "url" or "token"
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("ctfd: invalid %s: %s", e.Field, e.Reason)
}

// Session holds the base URL and token for a CTFd instance. It is immutable
// once created and safe to reuse for every call in a run.
type Session struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
	userAgent  string
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// NewSession validates rawURL and token and returns a Session. Trailing
// slashes are stripped from the URL so endpoint paths never double up.
func NewSession(rawURL, token string, opts ...Option) (*Session, error) {
	base := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if base == "" {
		return nil, &ConfigError{Field: "url", Reason: "url is required"}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &ConfigError{Field: "token", Reason: "token is required"}
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, &ConfigError{Field: "url", Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &ConfigError{Field: "url", Reason: fmt.Sprintf("must use http or https scheme, got %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return nil, &ConfigError{Field: "url", Reason: "missing host"}
	}

	s := &Session{
		baseURL:    base,
		token:      token,
		httpClient: http.DefaultClient,
		logger:     logging.Nop(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the normalized base URL.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// endpoint builds an absolute API URL for path (relative to /api/v1).
func (s *Session) endpoint(path string, query url.Values) string {
	u := s.baseURL + apiPrefix + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (s *Session) newRequest(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+s.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// doJSON sends payload (when non-nil) as a JSON body and decodes the reply.
func (s *Session) doJSON(ctx context.Context, op, method, path string, query url.Values, payload interface{}) (*Response, error) {
	endpoint := s.endpoint(path, query)

	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &client.TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := s.newRequest(ctx, method, endpoint, body, contentType)
	if err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	return s.send(ctx, op, req)
}

func (s *Session) send(ctx context.Context, op string, req *http.Request) (*Response, error) {
	raw, err := client.Do(ctx, s.httpClient, req, op, s.logger)
	if err != nil {
		return nil, err
	}
	return decodeResponse(op, req.URL.String(), raw)
}

// decodeResponse turns a raw response into a Response. A body that is not
// JSON is a malformed response; an empty body decodes as null.
func decodeResponse(op, endpoint string, raw *client.RawResponse) (*Response, error) {
	body := bytes.TrimSpace(raw.Body)
	if len(body) == 0 {
		body = []byte("null")
	}
	if !json.Valid(body) {
		return nil, &client.TransportError{
			Op:  op,
			URL: endpoint,
			Err: fmt.Errorf("malformed response (status %d): %s", raw.StatusCode, truncate(body, 256)),
		}
	}

	resp := &Response{
		StatusCode: raw.StatusCode,
		RequestID:  raw.RequestID,
		Body:       json.RawMessage(body),
	}
	resp.parseEnvelope()
	return resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

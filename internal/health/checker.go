// Package health probes a CTFd instance for the `status` command.
//
// Purpose:
//
//	GET <base>/healthcheck once and report whether the instance answered with a
//	2xx. The probe is only run on request; other commands go straight to the
//	API so each of them sends exactly the calls it names.
package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/otherjamesbrown/ctfd-admin/internal/client"
	"github.com/otherjamesbrown/ctfd-admin/internal/logging"
)

// Path is CTFd's unauthenticated health endpoint.
const Path = "/healthcheck"

// DefaultTimeout bounds a probe when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Checker probes CTFd instances.
type Checker struct {
	client  *http.Client
	timeout time.Duration
	logger  *logging.Logger
}

// NewChecker creates a checker. A nil client gets a fresh one; a zero timeout
// means DefaultTimeout.
func NewChecker(httpClient *http.Client, timeout time.Duration, logger *logging.Logger) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Checker{
		client:  httpClient,
		timeout: timeout,
		logger:  logger,
	}
}

// Result is the outcome of one probe.
type Result struct {
	URL        string        `json:"url"`
	Healthy    bool          `json:"healthy"`
	StatusCode int           `json:"status_code,omitempty"`
	Body       string        `json:"body,omitempty"`
	Latency    time.Duration `json:"-"`
	LatencyMS  int64         `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	Err        error         `json:"-"`
}

// Check probes baseURL. Trailing slashes on baseURL are ignored.
func (c *Checker) Check(ctx context.Context, baseURL string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	healthURL := strings.TrimRight(strings.TrimSpace(baseURL), "/") + Path
	result := Result{URL: healthURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return result.fail(fmt.Errorf("failed to create request: %w", err))
	}

	start := time.Now()
	raw, err := client.Do(ctx, c.client, req, "health check", c.logger)
	result.Latency = time.Since(start)
	result.LatencyMS = result.Latency.Milliseconds()
	if err != nil {
		return result.fail(fmt.Errorf("instance unreachable: %w", err))
	}

	result.StatusCode = raw.StatusCode
	result.Body = strings.TrimSpace(string(raw.Body))
	if len(result.Body) > 128 {
		result.Body = result.Body[:128] + "..."
	}
	if !client.IsSuccess(raw.StatusCode) {
		return result.fail(fmt.Errorf("instance returned status %d", raw.StatusCode))
	}

	result.Healthy = true
	return result
}

func (r Result) fail(err error) Result {
	r.Healthy = false
	r.Err = err
	r.Error = err.Error()
	return r
}

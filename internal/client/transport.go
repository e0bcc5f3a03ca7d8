// Package client provides the HTTP transport shared by ctfd-admin API clients.
//
// Purpose:
//
//	Execute a single request against the remote API: stamp a request ID, open a
//	client span, read the whole body, and log the exchange at debug level. Calls
//	are never retried; a failed round trip is reported once as a *TransportError.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/ctfd-admin/internal/logging"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const tracerName = "github.com/otherjamesbrown/ctfd-admin/internal/client"

// TransportError reports a round trip that could not be completed: the request
// could not be built or sent, the body could not be read, or the body could not
// be decoded into the expected shape.
type TransportError struct {
	Op  string // e.g. "list users page 2"
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RawResponse is a fully read HTTP response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Do executes req exactly once and reads the full response body.
// A non-2xx status is not an error here; callers decide what it means.
func Do(ctx context.Context, httpClient *http.Client, req *http.Request, op string, logger *logging.Logger) (*RawResponse, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(RequestIDHeader, requestID)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)

	log := logger.WithContext(ctx).With(
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		log.Debug("request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, &TransportError{Op: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, &TransportError{Op: op, URL: req.URL.String(), Err: fmt.Errorf("read response body: %w", err)}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if !IsSuccess(resp.StatusCode) {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}

	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

// IsSuccess checks if an HTTP status code indicates success.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

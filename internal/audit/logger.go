// Package audit provides audit logging for operations that change a CTFd instance.
//
// Purpose:
//
//	Emit one structured JSON entry per mutating command (user create, update,
//	delete, file upload and the bulk variants) with the target instance,
//	parameters (credentials masked), outcome, and duration. Entries go to stderr
//	by default so they never mix with the JSON printed on stdout.
package audit

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"
)

// Outcomes recorded in LogEntry.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
	OutcomeDryRun  = "dry_run"
)

// Logger emits audit logs for mutating operations.
type Logger struct {
	output   *json.Encoder
	maskFunc func(string) string
	now      func() time.Time
}

// NewLogger creates a new audit logger writing to w (stderr when nil).
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		output:   json.NewEncoder(w),
		maskFunc: maskValue,
		now:      time.Now,
	}
}

// Discard returns a logger that drops every entry.
func Discard() *Logger {
	return NewLogger(io.Discard)
}

// maskValue shows only the last 4 characters of a credential.
func maskValue(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}

// LogEntry represents an audit log entry.
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Operation  string                 `json:"operation"`
	Instance   string                 `json:"instance,omitempty"`
	Command    string                 `json:"command"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Outcome    string                 `json:"outcome"`
	Duration   string                 `json:"duration,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Operation represents a mutating operation to be logged.
type Operation struct {
	Type       string                 // user_create, user_update, user_delete, file_upload, ...
	Instance   string                 // CTFd base URL
	Command    string                 // Command line as typed, minus secrets
	Parameters map[string]interface{} // Command parameters (will be masked)
	Outcome    string
	Duration   time.Duration
	Error      error
}

// LogOperation logs an operation with all required fields.
func (l *Logger) LogOperation(op Operation) error {
	entry := LogEntry{
		Timestamp:  l.now().UTC().Format(time.RFC3339),
		Operation:  op.Type,
		Instance:   op.Instance,
		Command:    op.Command,
		Parameters: l.maskParameters(op.Parameters),
		Outcome:    op.Outcome,
	}

	if op.Duration > 0 {
		entry.Duration = op.Duration.String()
	}

	if op.Error != nil {
		entry.Error = op.Error.Error()
	}

	return l.output.Encode(entry)
}

var sensitiveKeys = []string{"token", "password", "secret", "credential", "api_key"}

// maskParameters masks sensitive values in parameters, including values
// nested inside maps such as a PATCH body.
func (l *Logger) maskParameters(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}

	masked := make(map[string]interface{}, len(params))
	for k, v := range params {
		if nested, ok := v.(map[string]interface{}); ok {
			masked[k] = l.maskParameters(nested)
			continue
		}
		if isSensitive(k) && v != nil {
			if str, ok := v.(string); ok {
				masked[k] = l.maskFunc(str)
			} else {
				masked[k] = "***"
			}
			continue
		}
		masked[k] = v
	}

	return masked
}

func isSensitive(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

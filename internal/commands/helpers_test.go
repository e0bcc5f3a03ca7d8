package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
)

// request is what the fake CTFd server saw.
type request struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Auth        string
	Body        string
}

// fakeCTFd records requests and answers them with handler.
type fakeCTFd struct {
	*httptest.Server
	mu       sync.Mutex
	requests []request
}

func newFakeCTFd(t *testing.T, handler http.HandlerFunc) *fakeCTFd {
	t.Helper()
	f := &fakeCTFd{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, request{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Auth:        r.Header.Get("Authorization"),
			Body:        string(raw),
		})
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCTFd) Requests() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

// reply answers every request with status and body.
func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

type result struct {
	stdout string
	stderr string
	code   int
}

// run executes the CLI with an isolated HOME, working directory and
// environment so no real config leaks in.
func run(t *testing.T, args ...string) result {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, key := range []string{
		"CTFD_ADMIN_CTFD_URL", "CTFD_ADMIN_AUTH_TOKEN", "CTFD_ADMIN_DEFAULTS_OUTPUT_FORMAT",
		"CTFD_ADMIN_DEFAULTS_PROGRESS_THRESHOLD", "CTFD_ADMIN_HTTP_TIMEOUT",
		"CTFD_ADMIN_LOGGING_LEVEL", "CTFD_ADMIN_LOGGING_FORMAT",
		"CTFD_ADMIN_TRACING_ENDPOINT", "CTFD_ADMIN_TRACING_HEADERS",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), "test", args, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// jsonDocuments splits a stream of JSON documents.
func jsonDocuments(t *testing.T, s string) []map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	var docs []map[string]interface{}
	for dec.More() {
		var doc map[string]interface{}
		if err := dec.Decode(&doc); err != nil {
			t.Fatalf("decode output %q: %v", s, err)
		}
		docs = append(docs, doc)
	}
	return docs
}

// auditEntries returns the audit lines written to stderr.
func auditEntries(t *testing.T, stderr string) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(stderr, "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if _, ok := entry["outcome"]; ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

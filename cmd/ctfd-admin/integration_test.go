// Integration tests that drive the full command tree against a running CTFd
// instance. They are skipped unless CTFD_ADMIN_IT_URL and CTFD_ADMIN_IT_TOKEN
// point at a disposable instance; the tests create and delete a user.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/ctfd-admin/internal/commands"
)

const testTimeout = 60 * time.Second

// setupTestEnvironment returns the instance under test or skips.
func setupTestEnvironment(t *testing.T) (string, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	url := os.Getenv("CTFD_ADMIN_IT_URL")
	token := os.Getenv("CTFD_ADMIN_IT_TOKEN")
	if url == "" || token == "" {
		t.Skip("set CTFD_ADMIN_IT_URL and CTFD_ADMIN_IT_TOKEN to run against a CTFd instance")
	}

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return url, token
}

func runCLI(ctx context.Context, args ...string) (string, string, int) {
	var stdout, stderr bytes.Buffer
	code := commands.Execute(ctx, "integration", args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "dev (commit unknown, built unknown)", versionString())
}

func TestUserLifecycle(t *testing.T) {
	url, token := setupTestEnvironment(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if _, stderr, code := runCLI(ctx, "--url", url, "status"); code != 0 {
		t.Skipf("skipping test: CTFd not available: %s", stderr)
	}

	suffix := strconv.FormatInt(time.Now().UnixNano(), 36)
	name := "it-" + suffix
	email := name + "@example.com"
	conn := []string{"--url", url, "--token", token}

	var userID int
	t.Run("Create", func(t *testing.T) {
		stdout, stderr, code := runCLI(ctx, append(conn, "user", "create",
			"--name", name, "--email", email, "--password", "it-password-"+suffix, "--notify=false")...)
		require.Equal(t, 0, code, stderr)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				ID int `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
		require.True(t, resp.Success, stdout)
		userID = resp.Data.ID
	})
	require.NotZero(t, userID, "user was not created")

	t.Run("List", func(t *testing.T) {
		stdout, stderr, code := runCLI(ctx, append(conn, "--format", "csv", "user", "list")...)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, email)
	})

	t.Run("Update", func(t *testing.T) {
		stdout, stderr, code := runCLI(ctx, append(conn, "user", "update", strconv.Itoa(userID), "--set", "hidden=true")...)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, `"hidden": true`)
	})

	t.Run("BulkAddRejectsDuplicate", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.csv")
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("name,email,password\n%s,%s,pw\n", name, email)), 0o600))

		_, stderr, code := runCLI(ctx, append(conn, "user", "bulk-add", "--file", path, "--notify=false")...)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stderr, "Created 0 of 1 users (1 failed)")
	})

	t.Run("Delete", func(t *testing.T) {
		stdout, stderr, code := runCLI(ctx, "user", "delete", url, token, strconv.Itoa(userID))
		require.Equal(t, 0, code, stderr)
		assert.True(t, strings.Contains(stdout, `"success": true`), stdout)
	})
}

package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	err := logger.LogOperation(Operation{
		Type:     "user_create",
		Instance: "https://ctf.example.com",
		Command:  "user create --name alice",
		Parameters: map[string]interface{}{
			"name":     "alice",
			"password": "hunter22",
			"patch":    map[string]interface{}{"password": "pw", "website": "https://ctfd.io"},
		},
		Outcome:  OutcomeSuccess,
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "2024-03-01T12:00:00Z", entry["timestamp"])
	assert.Equal(t, "user_create", entry["operation"])
	assert.Equal(t, "1.5s", entry["duration"])

	params := entry["parameters"].(map[string]interface{})
	assert.Equal(t, "alice", params["name"])
	assert.Equal(t, "***er22", params["password"])

	patch := params["patch"].(map[string]interface{})
	assert.Equal(t, "***", patch["password"])
	assert.Equal(t, "https://ctfd.io", patch["website"])
}

func TestLogOperationError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	require.NoError(t, logger.LogOperation(Operation{
		Type:    "user_delete",
		Outcome: OutcomeFailure,
		Error:   errors.New("connection refused"),
	}))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, OutcomeFailure, entry.Outcome)
	assert.Equal(t, "connection refused", entry.Error)
	assert.Empty(t, entry.Duration)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "***", maskValue("abc"))
	assert.Equal(t, "***", maskValue("abcd"))
	assert.Equal(t, "***bcde", maskValue("abcde"))
}

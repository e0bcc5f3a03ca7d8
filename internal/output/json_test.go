// Package output provides tests for JSON output formatting.
package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf)

	data := map[string]interface{}{"success": true, "website": "https://ctfd.io?a=1&b=2"}
	require.NoError(t, formatter.Write(data))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Contains(t, buf.String(), "a=1&b=2", "HTML characters are not escaped")
	assert.Contains(t, buf.String(), "\n  ", "indented by default")
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf).Compact()

	require.NoError(t, formatter.Write(map[string]int{"id": 1}))
	require.NoError(t, formatter.Write(map[string]int{"id": 2}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{`{"id":1}`, `{"id":2}`}, lines)
}

func TestPrintJSONRawMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, json.RawMessage(`{"success":false,"errors":{"email":["taken"]}}`)))

	assert.JSONEq(t, `{"success":false,"errors":{"email":["taken"]}}`, buf.String())
}

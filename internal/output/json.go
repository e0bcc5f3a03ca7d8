// Package output provides JSON output formatting for ctfd-admin.
//
// Purpose:
//
//	Print API responses exactly as decoded so the output can be piped into jq
//	or another script.
package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter that indents its output.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: true}
}

// Compact switches the formatter to one JSON document per line.
func (j *JSONFormatter) Compact() *JSONFormatter {
	j.indent = false
	return j
}

// Write outputs v as a JSON document followed by a newline.
func (j *JSONFormatter) Write(v interface{}) error {
	encoder := json.NewEncoder(j.writer)
	encoder.SetEscapeHTML(false)
	if j.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// PrintJSON is a convenience function to print indented JSON to w.
func PrintJSON(w io.Writer, data interface{}) error {
	return NewJSONFormatter(w).Write(data)
}

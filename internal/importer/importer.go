// Package importer reads user rows for bulk creation.
//
// Purpose:
//
//	Parse the tabular input for `user bulk-add`: a CSV file with a header row
//	(the CTFd users import template: name, email, password, extra columns
//	ignored) or a JSON/YAML document listing the same fields. Each row becomes
//	a fresh ctfd.UserFields with the bulk defaults applied.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
)

// RequiredColumns are the columns every CSV input must carry.
var RequiredColumns = []string{"name", "email", "password"}

// Row is one user read from the input.
type Row struct {
	Line     int    `json:"-" yaml:"-"` // 1-based data row (CSV: header excluded)
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// Fields builds the create-user payload for the row.
func (r Row) Fields() ctfd.UserFields {
	return ctfd.NewUserFields(r.Name, r.Email, r.Password)
}

// document is the JSON/YAML form: either a bare list or {"users": [...]}.
type document struct {
	Users []Row `json:"users" yaml:"users"`
}

// ReadFile reads rows from path, choosing the parser from the extension.
// Files without a .json/.yaml/.yml extension are read as CSV.
func ReadFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return ParseDocument(data)
	default:
		return ParseCSV(bytes.NewReader(data))
	}
}

// ParseCSV reads a header row followed by one user per row.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("users file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV header is missing required column %q", col)
		}
	}

	get := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []Row
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		rows = append(rows, Row{
			Line:     line,
			Name:     get(record, "name"),
			Email:    get(record, "email"),
			Password: get(record, "password"),
		})
	}

	return rows, nil
}

// ParseDocument parses a JSON or YAML document. JSON is tried first, then YAML.
func ParseDocument(data []byte) ([]Row, error) {
	rows, err := parseJSON(data)
	if err != nil {
		rows, err = parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse users file (must be CSV, JSON or YAML): %w", err)
		}
	}

	for i := range rows {
		rows[i].Line = i + 1
	}
	return rows, nil
}

func parseJSON(data []byte) ([]Row, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var rows []Row
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Users, nil
}

func parseYAML(data []byte) ([]Row, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var rows []Row
		if err := root.Decode(&rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Users, nil
}

// Package output provides output formatting for ctfd-admin.
//
// Purpose:
//
//	Format command output in different formats: table (human-readable), JSON
//	(machine-readable), and CSV (for spreadsheets and re-import).
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats output as a human-readable table.
type TableFormatter struct {
	writer *tabwriter.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
	}
}

// WriteHeader writes table headers followed by an underline row.
func (t *TableFormatter) WriteHeader(headers ...string) error {
	if _, err := fmt.Fprintln(t.writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	_, err := fmt.Fprintln(t.writer, strings.Join(rules, "\t"))
	return err
}

// WriteRow writes a table row.
func (t *TableFormatter) WriteRow(values ...string) error {
	_, err := fmt.Fprintln(t.writer, strings.Join(values, "\t"))
	return err
}

// Flush flushes the table output.
func (t *TableFormatter) Flush() error {
	return t.writer.Flush()
}

// PrintTable is a convenience function to print a table to w.
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	formatter := NewTableFormatter(w)
	if err := formatter.WriteHeader(headers...); err != nil {
		return err
	}
	for _, row := range rows {
		if err := formatter.WriteRow(row...); err != nil {
			return err
		}
	}
	return formatter.Flush()
}

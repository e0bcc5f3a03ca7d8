package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
	"github.com/otherjamesbrown/ctfd-admin/internal/output"
)

// userColumns are the listing columns, in the order CTFd's admin panel shows them.
var userColumns = []string{"id", "name", "email", "type", "verified", "hidden", "banned"}

// printResponse prints a decoded response. JSON prints the body verbatim;
// table and csv flatten the "data" object when there is one and fall back to
// JSON otherwise.
func printResponse(w io.Writer, format string, resp *ctfd.Response) error {
	if format == "json" {
		return output.PrintJSON(w, resp)
	}

	keys, values, ok := flattenData(resp)
	if !ok {
		return output.PrintJSON(w, resp)
	}

	if format == "csv" {
		return output.PrintCSV(w, keys, [][]string{values})
	}

	rows := make([][]string, len(keys))
	for i := range keys {
		rows[i] = []string{keys[i], values[i]}
	}
	return output.PrintTable(w, []string{"FIELD", "VALUE"}, rows)
}

// flattenData returns the sorted keys and rendered values of resp's "data"
// object.
func flattenData(resp *ctfd.Response) ([]string, []string, bool) {
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	if !resp.OK() || resp.Into(&body) != nil || body.Data == nil {
		return nil, nil, false
	}

	keys := make([]string, 0, len(body.Data))
	for k := range body.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = cell(body.Data[k])
	}
	return keys, values, true
}

// cell renders a JSON value for a table or CSV cell.
func cell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// printUsers prints a user listing.
func printUsers(w io.Writer, format string, users []ctfd.User) error {
	if format == "json" {
		if users == nil {
			users = []ctfd.User{}
		}
		return output.PrintJSON(w, users)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.Itoa(u.ID),
			u.Name,
			u.Email,
			u.Type,
			strconv.FormatBool(u.Verified),
			strconv.FormatBool(u.Hidden),
			strconv.FormatBool(u.Banned),
		})
	}

	if format == "csv" {
		return output.PrintCSV(w, userColumns, rows)
	}

	headers := make([]string, len(userColumns))
	for i, c := range userColumns {
		headers[i] = strings.ToUpper(c)
	}
	return output.PrintTable(w, headers, rows)
}

// resultColumns are the per-item columns bulk commands print in table/csv mode.
var resultColumns = []string{"item", "target", "status", "result"}

// bulkResult is one line of a bulk run.
type bulkResult struct {
	Item   string
	Target string
	Resp   *ctfd.Response
}

func (r bulkResult) row() []string {
	result := "ok"
	if !r.Resp.OK() {
		result = summarize(r.Resp)
	}
	return []string{r.Item, r.Target, strconv.Itoa(r.Resp.StatusCode), result}
}

// printBulkResults prints the per-item table for table/csv output.
func printBulkResults(w io.Writer, format string, results []bulkResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = r.row()
	}
	if format == "csv" {
		return output.PrintCSV(w, resultColumns, rows)
	}
	headers := make([]string, len(resultColumns))
	for i, c := range resultColumns {
		headers[i] = strings.ToUpper(c)
	}
	return output.PrintTable(w, headers, rows)
}

// summarize renders a failed response in one line.
func summarize(resp *ctfd.Response) string {
	switch {
	case len(resp.Errors) > 0 && string(resp.Errors) != "null":
		return string(resp.Errors)
	case resp.Message != "":
		return resp.Message
	default:
		return "failed"
	}
}

package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/ctfd-admin/internal/audit"
	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
	"github.com/otherjamesbrown/ctfd-admin/internal/errors"
	"github.com/otherjamesbrown/ctfd-admin/internal/importer"
	"github.com/otherjamesbrown/ctfd-admin/internal/output"
	"github.com/otherjamesbrown/ctfd-admin/internal/progress"
)

func userBulkAddCommand(opts *globalOptions) *cobra.Command {
	var (
		flagFile   string
		flagNotify bool
		flagDryRun bool
	)

	cmd := &cobra.Command{
		Use:   "bulk-add",
		Short: "Create users from a CSV file",
		Long: `Create one user per row of a CSV file with a name,email,password header
(JSON and YAML lists of the same fields are also accepted). Every row is sent
as its own request; rows CTFd rejects are counted as failed and the run
continues. With --format json (the default) each decoded response is printed
in full; table and csv print one status line per row instead.`,
		Example: `  ctfd-admin user bulk-add --file users.csv
  ctfd-admin user bulk-add --file users.csv --notify=false --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			notify := e.cfg.Notify
			if cmd.Flags().Changed("notify") {
				notify = flagNotify
			}
			return runUserBulkAdd(cmd, e, flagFile, notify, flagDryRun)
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Users file: CSV with name,email,password columns, or JSON/YAML (required)")
	cmd.Flags().BoolVar(&flagNotify, "notify", true, "Email each user their credentials (default from config)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the payloads without creating users")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runUserBulkAdd(cmd *cobra.Command, e *env, path string, notify, dryRun bool) error {
	startTime := time.Now()

	rows, err := importer.ReadFile(path)
	if err != nil {
		return errors.NewValidationError(err.Error(), "Provide a CSV file with a name,email,password header row.")
	}

	if dryRun {
		logDryRun(e, cmd, e.cfg.URL, "user_bulk_add", startTime, len(rows), map[string]interface{}{"notify": notify})
		return printBulkAddPlan(e, rows, notify)
	}

	session, err := e.session()
	if err != nil {
		return err
	}

	tracker := e.newProgress().Start("bulk-add", len(rows))
	results := make([]bulkResult, 0, len(rows))
	for _, row := range rows {
		resp, err := session.CreateUser(cmd.Context(), row.Fields(), notify)
		if err != nil {
			tracker.Step(false)
			tracker.Done()
			logBulk(e, cmd, session, "user_bulk_add", startTime, tracker, err, nil)
			return apiError(fmt.Sprintf("create user on row %d", row.Line), err)
		}
		tracker.Step(resp.OK())

		if !resp.OK() {
			e.logger.Warn("row rejected",
				zap.Int("row", row.Line),
				zap.String("email", row.Email),
				zap.Int("status", resp.StatusCode),
			)
		}

		if e.cfg.OutputFormat == "json" {
			if err := printResponse(e.out, "json", resp); err != nil {
				return err
			}
			continue
		}
		results = append(results, bulkResult{Item: strconv.Itoa(row.Line), Target: row.Email, Resp: resp})
	}
	tracker.Done()

	if e.cfg.OutputFormat != "json" {
		if err := printBulkResults(e.out, e.cfg.OutputFormat, results); err != nil {
			return err
		}
	}

	logBulk(e, cmd, session, "user_bulk_add", startTime, tracker, nil, nil)
	summary(e, "Created", len(rows), tracker.Failed())
	return nil
}

// printBulkAddPlan prints what bulk-add would send.
func printBulkAddPlan(e *env, rows []importer.Row, notify bool) error {
	e.note("Dry run: would add %d users (notify=%t)", len(rows), notify)

	if e.cfg.OutputFormat == "json" {
		plan := make([]ctfd.UserFields, len(rows))
		for i, row := range rows {
			plan[i] = row.Fields()
			plan[i].Password = "***"
		}
		return output.PrintJSON(e.out, plan)
	}

	table := make([][]string, len(rows))
	for i, row := range rows {
		f := row.Fields()
		table[i] = []string{strconv.Itoa(row.Line), f.Name, f.Email, f.Type, strconv.FormatBool(f.Verified)}
	}
	headers := []string{"row", "name", "email", "type", "verified"}
	if e.cfg.OutputFormat == "csv" {
		return output.PrintCSV(e.out, headers, table)
	}
	return output.PrintTable(e.out, []string{"ROW", "NAME", "EMAIL", "TYPE", "VERIFIED"}, table)
}

func userBulkEditCommand(opts *globalOptions) *cobra.Command {
	var (
		flagSet    []string
		flagDryRun bool
	)

	cmd := &cobra.Command{
		Use:   "bulk-edit",
		Short: "Apply the same change to every user",
		Long: `List every user, then send the same PATCH to each of them. Each --set
key=value becomes a field of the PATCH body.`,
		Example: `  ctfd-admin user bulk-edit --set verified=true
  ctfd-admin user bulk-edit --set hidden=false --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			patch, err := requirePatch(flagSet)
			if err != nil {
				return err
			}
			return runUserBulkEdit(cmd, e, patch, flagDryRun)
		},
	}

	cmd.Flags().StringArrayVar(&flagSet, "set", nil, "Field to change as key=value (repeatable)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "List the users that would be edited without editing them")

	return cmd
}

func runUserBulkEdit(cmd *cobra.Command, e *env, patch ctfd.Patch, dryRun bool) error {
	startTime := time.Now()

	session, err := e.session()
	if err != nil {
		return err
	}

	users, err := session.ListAllUsers(cmd.Context())
	if err != nil {
		return apiError("list users", err)
	}

	if dryRun {
		logDryRun(e, cmd, session.BaseURL(), "user_bulk_edit", startTime, len(users),
			map[string]interface{}{"patch": map[string]interface{}(patch)})
		e.note("Dry run: would edit %d users", len(users))
		return printUsers(e.out, e.cfg.OutputFormat, users)
	}

	e.status("Editing %d users", len(users))

	tracker := e.newProgress().Start("bulk-edit", len(users))
	results := make([]bulkResult, 0, len(users))
	for _, u := range users {
		id := strconv.Itoa(u.ID)
		resp, err := session.UpdateUser(cmd.Context(), id, patch)
		if err != nil {
			tracker.Step(false)
			tracker.Done()
			logBulk(e, cmd, session, "user_bulk_edit", startTime, tracker, err, patch)
			return apiError("update user "+id, err)
		}
		tracker.Step(resp.OK())

		if e.cfg.OutputFormat == "json" {
			if err := printResponse(e.out, "json", resp); err != nil {
				return err
			}
			continue
		}
		results = append(results, bulkResult{Item: id, Target: u.Name, Resp: resp})
	}
	tracker.Done()

	if e.cfg.OutputFormat != "json" {
		if err := printBulkResults(e.out, e.cfg.OutputFormat, results); err != nil {
			return err
		}
	}

	logBulk(e, cmd, session, "user_bulk_edit", startTime, tracker, nil, patch)
	summary(e, "Edited", len(users), tracker.Failed())
	return nil
}

// logBulk writes one audit entry for a whole bulk run. A run stopped by runErr
// has stepped the failing item, so processed < total.
func logBulk(e *env, cmd *cobra.Command, session *ctfd.Session, opType string, start time.Time, tracker *progress.Tracker, runErr error, patch ctfd.Patch) {
	total, failed := tracker.Total(), tracker.Failed()
	params := map[string]interface{}{
		"total":     total,
		"processed": tracker.Processed(),
		"failed":    failed,
	}
	if patch != nil {
		params["patch"] = map[string]interface{}(patch)
	}

	result := audit.OutcomeSuccess
	switch {
	case runErr != nil:
		result = audit.OutcomeFailure
	case failed > 0 && failed < total:
		result = audit.OutcomePartial
	case failed > 0:
		result = audit.OutcomeFailure
	}

	_ = e.audit.LogOperation(audit.Operation{
		Type:       opType,
		Instance:   session.BaseURL(),
		Command:    commandLine(cmd),
		Parameters: params,
		Outcome:    result,
		Duration:   time.Since(start),
		Error:      runErr,
	})
}

// logDryRun records a bulk run that sent nothing.
func logDryRun(e *env, cmd *cobra.Command, instance, opType string, start time.Time, total int, params map[string]interface{}) {
	params["total"] = total
	params["dry_run"] = true
	_ = e.audit.LogOperation(audit.Operation{
		Type:       opType,
		Instance:   instance,
		Command:    commandLine(cmd),
		Parameters: params,
		Outcome:    audit.OutcomeDryRun,
		Duration:   time.Since(start),
	})
}

// summary prints the end-of-run count.
func summary(e *env, verb string, total, failed int) {
	e.note("%s %d of %d users (%d failed)", verb, total-failed, total, failed)
}

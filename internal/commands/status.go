package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
	"github.com/otherjamesbrown/ctfd-admin/internal/errors"
	"github.com/otherjamesbrown/ctfd-admin/internal/health"
	"github.com/otherjamesbrown/ctfd-admin/internal/output"
)

// StatusCommand creates the status command.
func StatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the CTFd instance is up",
		Long:  "Probe the instance's /healthcheck endpoint. Exits 3 when the instance is unavailable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			return runStatus(cmd, e)
		},
	}
}

func runStatus(cmd *cobra.Command, e *env) error {
	if e.cfg.URL == "" {
		return errors.NewConfigError(&ctfd.ConfigError{Field: "url", Reason: "url is required"})
	}

	checker := health.NewChecker(e.httpClient, e.cfg.Timeout, e.logger)
	result := checker.Check(cmd.Context(), e.cfg.URL)

	var err error
	switch e.cfg.OutputFormat {
	case "json":
		err = output.PrintJSON(e.out, result)
	case "csv":
		err = output.PrintCSV(e.out,
			[]string{"url", "healthy", "status_code", "latency_ms", "error"},
			[][]string{statusRow(result)},
		)
	default:
		err = output.PrintTable(e.out,
			[]string{"URL", "HEALTHY", "STATUS", "LATENCY_MS", "ERROR"},
			[][]string{statusRow(result)},
		)
	}
	if err != nil {
		return err
	}

	if !result.Healthy {
		return errors.NewServiceUnavailableError(result.URL, result.Err)
	}
	return nil
}

func statusRow(r health.Result) []string {
	status := ""
	if r.StatusCode != 0 {
		status = strconv.Itoa(r.StatusCode)
	}
	return []string{r.URL, strconv.FormatBool(r.Healthy), status, strconv.FormatInt(r.LatencyMS, 10), r.Error}
}

// Package commands implements the ctfd-admin command tree.
//
// Purpose:
//
//	Wire the cobra commands to the CTFd client: load configuration, build a
//	session, issue the calls each command names and print what CTFd returned.
//	Errors come back as *errors.CLIError so Execute can map them to exit codes.
package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/ctfd-admin/internal/errors"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	url        string
	token      string
	format     string
	configFile string
	envFile    string
	logLevel   string
	verbose    bool
	quiet      bool
}

// NewRootCommand builds the full command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "ctfd-admin",
		Short: "Administer a CTFd instance from the command line",
		Long: `ctfd-admin drives the CTFd admin REST API: upload challenge files,
create users one at a time or in bulk from a CSV file, list, update and
delete users.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.url, "url", "", "CTFd base URL (overrides config)")
	flags.StringVar(&opts.token, "token", "", "CTFd admin access token (overrides config)")
	flags.StringVar(&opts.format, "format", "", "Output format: json, table, csv (default from config)")
	flags.StringVar(&opts.configFile, "config", "", "Config file (default ~/.ctfd-admin/config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", "", "Env file with CTFD_ADMIN_* variables (default ./.env when present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&opts.verbose, "verbose", false, "Log every HTTP request")
	flags.BoolVar(&opts.quiet, "quiet", false, "Suppress progress and status lines")

	cmd.AddCommand(FileCommand(opts))
	cmd.AddCommand(UserCommand(opts))
	cmd.AddCommand(StatusCommand(opts))

	return cmd
}

// Execute runs the command tree with args and returns the process exit code.
// Errors are printed to stderr.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(version)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var cliErr *errors.CLIError
	if stderrors.As(err, &cliErr) && cliErr.Code == errors.ErrCodeUsage {
		fmt.Fprintln(stderr, cliErr.Error())
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return errors.ExitCode(err)
}

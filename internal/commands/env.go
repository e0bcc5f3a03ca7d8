package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/ctfd-admin/internal/audit"
	"github.com/otherjamesbrown/ctfd-admin/internal/client"
	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
	"github.com/otherjamesbrown/ctfd-admin/internal/config"
	"github.com/otherjamesbrown/ctfd-admin/internal/errors"
	"github.com/otherjamesbrown/ctfd-admin/internal/logging"
	"github.com/otherjamesbrown/ctfd-admin/internal/progress"
	"github.com/otherjamesbrown/ctfd-admin/internal/telemetry"
)

// traceFlushTimeout bounds the span flush at the end of a run.
const traceFlushTimeout = 5 * time.Second

// env is the per-invocation runtime shared by a command's steps.
type env struct {
	cfg        *config.Config
	logger     *logging.Logger
	audit      *audit.Logger
	tracing    *telemetry.Provider
	httpClient *http.Client
	out        io.Writer
	errOut     io.Writer
}

// load resolves configuration (flags > env > file > defaults) and builds the
// logger and audit sink for cmd.
func (o *globalOptions) load(cmd *cobra.Command) (*env, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return nil, errors.NewConfigError(err)
	}

	cfg, err := config.LoadWithFlags(o.configFile, config.Overrides{
		URL:          o.url,
		Token:        o.token,
		OutputFormat: o.format,
		LogLevel:     o.logLevel,
		Verbose:      o.verbose,
		Quiet:        o.quiet,
	})
	if err != nil {
		return nil, errors.NewConfigError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error(), "Check --format, --log-level and logging.format.")
	}

	e := &env{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
	}

	logCfg := logging.DefaultConfig().WithLogLevel(cfg.LogLevel).WithOutputPath(cfg.LogOutput)
	logCfg.Console = strings.EqualFold(cfg.LogFormat, "console")
	if cfg.LogOutput == "" || cfg.LogOutput == "stderr" {
		e.logger = logging.NewWithWriter(logCfg, e.errOut)
	} else {
		e.logger, err = logging.New(logCfg)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Errorf("logging.output: %w", err))
		}
	}

	if cfg.AuditEnabled {
		e.audit = audit.NewLogger(e.errOut)
	} else {
		e.audit = audit.Discard()
	}

	if cfg.TraceEndpoint != "" {
		e.tracing, err = telemetry.Init(cmd.Context(), telemetry.Config{
			ServiceName:    "ctfd-admin",
			ServiceVersion: cmd.Root().Version,
			Endpoint:       cfg.TraceEndpoint,
			Headers:        cfg.TraceHeaders,
			Insecure:       cfg.TraceInsecure,
		})
		if err != nil {
			return nil, errors.NewConfigError(fmt.Errorf("tracing.endpoint: %w", err))
		}
		if e.tracing.Fallback() {
			e.logger.Warn("trace export disabled", zap.String("endpoint", cfg.TraceEndpoint))
		}
	}

	e.logger.Debug("configuration loaded",
		zap.String("config_file", cfg.ConfigFile),
		zap.String("url", cfg.URL),
		zap.String("format", cfg.OutputFormat),
	)
	return e, nil
}

// session builds a CTFd session from the resolved URL and token.
func (e *env) session() (*ctfd.Session, error) {
	return e.sessionFor(e.cfg.URL, e.cfg.Token)
}

// sessionFor builds a CTFd session for an explicit URL and token.
func (e *env) sessionFor(url, token string) (*ctfd.Session, error) {
	s, err := ctfd.NewSession(url, token,
		ctfd.WithHTTPClient(e.httpClient),
		ctfd.WithLogger(e.logger),
	)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}
	return s, nil
}

// newProgress returns an indicator for bulk runs, silenced by --quiet.
func (e *env) newProgress() *progress.Indicator {
	p := progress.NewIndicator(e.errOut, e.cfg.OutputFormat).WithThreshold(e.cfg.ProgressThreshold)
	if e.cfg.Quiet {
		p.Disable()
	}
	return p
}

// status prints a status line to stdout unless --quiet is set.
func (e *env) status(format string, args ...interface{}) {
	if e.cfg.Quiet {
		return
	}
	fmt.Fprintf(e.out, format+"\n", args...)
}

// note prints an informational line to stderr unless --quiet is set.
func (e *env) note(format string, args ...interface{}) {
	if e.cfg.Quiet {
		return
	}
	fmt.Fprintf(e.errOut, format+"\n", args...)
}

// close flushes pending spans and the logger.
func (e *env) close() {
	if e.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), traceFlushTimeout)
		if err := e.tracing.Shutdown(ctx); err != nil {
			e.logger.Warn("trace export failed", zap.Error(err))
		}
		cancel()
	}
	_ = e.logger.Sync()
}

// apiError maps a client error to a CLIError.
func apiError(op string, err error) error {
	var cfgErr *ctfd.ConfigError
	if stderrors.As(err, &cfgErr) {
		return errors.NewConfigError(err)
	}
	if stderrors.Is(err, os.ErrNotExist) {
		return errors.NewValidationError(err.Error(), "Check the file path.")
	}
	var transportErr *client.TransportError
	if stderrors.As(err, &transportErr) {
		return errors.NewOperationError(
			fmt.Sprintf("%s: %v", op, err),
			"Check the CTFd URL and that the instance is reachable. Rerun with --verbose to log each request.",
			err,
		)
	}
	return errors.NewOperationError(fmt.Sprintf("%s: %v", op, err), "", err)
}

// commandLine renders the command for audit entries. Callers pass only the
// arguments that are safe to record.
func commandLine(cmd *cobra.Command, args ...string) string {
	return strings.TrimSpace(cmd.CommandPath() + " " + strings.Join(args, " "))
}

// outcome maps a response to an audit outcome.
func outcome(resp *ctfd.Response) string {
	if resp.OK() {
		return audit.OutcomeSuccess
	}
	return audit.OutcomeFailure
}

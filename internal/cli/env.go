package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/config"
	"github.com/roach88/qcform/internal/sheet"
)

// environment is what every remote-facing command needs.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	client *sheet.Client
	out    *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// setupLogger installs a text handler on w: Debug with --verbose, Info otherwise.
func setupLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadEnvironment sets up logging, loads configuration and builds the HTTP
// client. Errors are already reported through the formatter.
func loadEnvironment(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	out := newFormatter(opts, cmd)
	logger := setupLogger(opts, cmd.ErrOrStderr())

	cfg, err := config.NewLoader(logger).Load(opts.Config)
	if err != nil {
		return nil, failWith(out, ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}

	client := sheet.NewClient(sheet.Endpoints{
		Specs:     cfg.Endpoints.Specs,
		Submit:    cfg.Endpoints.Submit,
		Allowlist: cfg.Endpoints.Allowlist,
	}, &http.Client{Timeout: cfg.Endpoints.Timeout}, logger)

	return &environment{cfg: cfg, logger: logger, client: client, out: out}, nil
}

// commandContext derives a context that is cancelled on Ctrl-C or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

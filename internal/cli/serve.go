package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/sheetstore"
)

// ServeSheetOptions holds flags for the serve-sheet command.
type ServeSheetOptions struct {
	*RootOptions
	Database  string
	Addr      string
	Specs     string
	Allowlist string

	// Ready, when set, receives the bound address once the listener is up (for testing).
	Ready chan<- string
}

// NewServeSheetCommand creates the serve-sheet command.
func NewServeSheetCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeSheetCommand(&ServeSheetOptions{RootOptions: rootOpts})
}

func newServeSheetCommand(opts *ServeSheetOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-sheet",
		Short: "Serve a local stand-in for the remote sheet",
		Long: `Serve the specification, submission and allowlist endpoints from a local
SQLite database, with the payload shapes the production scripts use.
Point endpoints.specs, endpoints.submit and endpoints.allowlist at it to
try the CLI without touching the real sheet.

Routes: GET /specs, POST /records, GET /records, GET /allowlist,
GET /health, GET /metrics.

Example:
  qcform serve-sheet --db ./sheet.db --specs specs.json --allowlist allowlist.yaml
  qcform serve-sheet --db ./sheet.db --addr 127.0.0.1:9000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeSheet(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&opts.Specs, "specs", "", "JSON file of specification rows to load on start")
	cmd.Flags().StringVar(&opts.Allowlist, "allowlist", "", "YAML list of allowed emails to load on start")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runServeSheet(opts *ServeSheetOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)
	logger := setupLogger(opts.RootOptions, cmd.ErrOrStderr())

	seed, err := sheetstore.ReadSeed(opts.Specs, opts.Allowlist)
	if err != nil {
		return failWith(out, ErrCodeUsage, ExitCommandError, "failed to read seed", err)
	}

	logger.Info("opening database", "path", opts.Database)
	st, err := sheetstore.Open(opts.Database)
	if err != nil {
		return failWith(out, ErrCodeStore, ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	srv := sheetstore.NewServer(st, sheetstore.NewMetrics(), logger)
	if err := srv.Seed(ctx, seed); err != nil {
		return fail(out, "failed to seed database", err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return failWith(out, ErrCodeUsage, ExitCommandError, "failed to listen", err)
	}
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	addr := ln.Addr().String()
	logger.Info("sheet server listening", slog.String("addr", addr))
	if !out.JSON() {
		fmt.Fprintf(cmd.OutOrStdout(), "Serving sheet on http://%s\n", addr)
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	}
	if opts.Ready != nil {
		opts.Ready <- addr
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return failWith(out, ErrCodeGeneric, ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return failWith(out, ErrCodeGeneric, ExitFailure, "shutdown failed", err)
	}
	logger.Info("sheet server stopped gracefully")
	return nil
}

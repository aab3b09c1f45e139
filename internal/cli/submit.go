package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/access"
	"github.com/roach88/qcform/internal/catalog"
	"github.com/roach88/qcform/internal/form"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	selectionFlags
	Readings string
	Operator string
	DryRun   bool

	// Clock and IDs override the wall clock and UUIDv7 session ids (for testing).
	Clock form.Clock
	IDs   form.IDGenerator
}

// SubmitResult is the output of the submit command.
type SubmitResult struct {
	Session  string        `json:"session"`
	Operator string        `json:"operator"`
	Line     string        `json:"line"`
	Control  string        `json:"control"`
	Records  int           `json:"records"`
	Accepted int           `json:"accepted"`
	DryRun   bool          `json:"dry_run,omitempty"`
	Payload  []form.Record `json:"payload,omitempty"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	return newSubmitCommand(&SubmitOptions{RootOptions: rootOpts})
}

func newSubmitCommand(opts *SubmitOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate readings and send them to the sheet",
		Long: `Load the stations for a line and control type, enter the readings from a
YAML file, validate that the form is complete and append one record per
reading to the remote sheet.

The submission is all or nothing: an incomplete form sends nothing, and a
failed request leaves nothing half written on this side. Run it again with
the same file to retry.

Example:
  qcform submit --line L1 --type Torque --readings torque.yaml
  qcform submit --line L1 --type Prensa --readings - --dry-run < press.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	opts.selectionFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Readings, "readings", "r", "", "YAML readings file, - for stdin (required)")
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "operator email (defaults to the configured operator)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate and print the records without sending them")
	_ = cmd.MarkFlagRequired("readings")

	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	readings, err := readReadings(opts.Readings, cmd.InOrStdin())
	if err != nil {
		return fail(env.out, "failed to read readings", err)
	}

	operator, err := resolveOperator(ctx, env, opts.Operator)
	if err != nil {
		return fail(env.out, "access denied", err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = form.UUIDv7Generator{}
	}
	loader := catalog.NewLoader(env.client, env.logger)
	s, err := loadSession(ctx, loader, form.NewSession(operator, ids), opts.selectionFlags)
	if err != nil {
		return fail(env.out, "failed to load specifications", err)
	}
	env.out.VerboseLog("Loaded %d station(s) for line %s, control %s", s.Len(), s.Line(), s.Control())

	if s, err = readings.apply(s); err != nil {
		return fail(env.out, "invalid reading", err)
	}

	stamp, err := env.cfg.Stamp()
	if err != nil {
		return failWith(env.out, ErrCodeConfig, ExitCommandError, "invalid timestamp config", err)
	}
	submitter := form.NewSubmitter(env.client, opts.Clock, stamp, env.logger)

	result := SubmitResult{
		Session:  s.ID(),
		Operator: s.Operator(),
		Line:     s.Line(),
		Control:  string(s.Control()),
	}

	if opts.DryRun {
		records, err := submitter.Prepare(s)
		if err != nil {
			return fail(env.out, "cannot submit", err)
		}
		result.Records = len(records)
		result.DryRun = true
		result.Payload = records
		text, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return failWith(env.out, ErrCodeGeneric, ExitFailure, "failed to render records", err)
		}
		return env.out.Success(result, string(text)+"\n")
	}

	_, receipt, err := submitter.Submit(ctx, s)
	if err != nil {
		if form.IsValidationError(err) {
			return fail(env.out, "cannot submit", err)
		}
		return fail(env.out, "submission failed", err)
	}
	result.Records = len(receipt.Records)
	result.Accepted = receipt.Accepted

	return env.out.Success(result, fmt.Sprintf("Submitted %d record(s) for line %s (%s).\n",
		receipt.Accepted, result.Line, result.Control))
}

// resolveOperator picks the identity recorded in Usuario. With the access
// gate enabled the candidate must pass it; otherwise the flag or the
// configured default is used as is.
func resolveOperator(ctx context.Context, env *environment, candidate string) (string, error) {
	if !env.cfg.Access.Enabled {
		if candidate != "" {
			return candidate, nil
		}
		return env.cfg.Operator, nil
	}

	list := access.LoadAllowlist(ctx, allowlistSource(env), env.cfg.Access.Fallback, env.logger)
	id, err := list.Gate(env.cfg.Access.Domain).Check(candidate)
	if err != nil {
		return "", err
	}
	return id.Email, nil
}

// allowlistSource is nil when no allowlist endpoint is configured, so the
// static fallback is used without a failed request.
func allowlistSource(env *environment) access.AllowlistSource {
	if env.cfg.Endpoints.Allowlist == "" {
		return nil
	}
	return env.client
}

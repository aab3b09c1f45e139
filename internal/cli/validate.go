package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/catalog"
)

// ValidationResult is the output of the validate command.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Rows   int            `json:"rows"`
	Lines  []string       `json:"lines,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <specs.json>",
		Short: "Check a specification sheet export offline",
		Long: `Check a JSON export of the specification sheet against the same schema
the client applies to the remote payload, without contacting any endpoint.
Useful before seeding serve-sheet or publishing a new sheet revision.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return failWith(formatter, ErrCodeUsage, ExitCommandError, "failed to read specs file", err)
	}

	rows, err := catalog.Decode(data)
	if err != nil {
		var schemaErr *catalog.SchemaError
		if errors.As(err, &schemaErr) {
			return failWith(formatter, ErrCodeSchema, ExitFailure, "invalid specification sheet", err)
		}
		return fail(formatter, "invalid specification sheet", err)
	}

	counts := make(map[string]int)
	unknown := 0
	for _, r := range rows {
		counts[string(r.ControlType)]++
		if !r.ControlType.Known() {
			unknown++
		}
	}
	formatter.VerboseLog("%d row(s) with a control type outside %s", unknown, controlTypeNames())

	result := ValidationResult{Valid: true, Rows: len(rows), Lines: catalog.Lines(rows), Counts: counts}
	return formatter.Success(result, fmt.Sprintf("✓ %d row(s), %d line(s) valid\n", len(rows), len(result.Lines)))
}

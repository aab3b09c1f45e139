package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/catalog"
)

// LinesResult is the output of the lines command.
type LinesResult struct {
	Lines []string `json:"lines"`
}

// NewLinesCommand creates the lines command.
func NewLinesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lines",
		Short: "List the production lines in the specification sheet",
		Long: `Fetch the specification sheet and list every distinct line identifier.

Example:
  qcform lines
  qcform lines --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLines(rootOpts, cmd)
		},
	}
}

func runLines(opts *RootOptions, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts, cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	lines, err := catalog.NewLoader(env.client, env.logger).Lines(ctx)
	if err != nil {
		return fail(env.out, "failed to load lines", err)
	}

	var text strings.Builder
	for _, l := range lines {
		text.WriteString(l)
		text.WriteByte('\n')
	}
	if len(lines) == 0 {
		text.WriteString("No lines found.\n")
	}
	return env.out.Success(LinesResult{Lines: lines}, text.String())
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/catalog"
	"github.com/roach88/qcform/internal/form"
)

// SpecsResult is the output of the specs command.
type SpecsResult struct {
	Line    string    `json:"line"`
	Control string    `json:"control"`
	Rows    []SpecRow `json:"rows"`
}

// NewSpecsCommand creates the specs command.
func NewSpecsCommand(rootOpts *RootOptions) *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "specs",
		Short: "Show the stations to fill for a line and control type",
		Long: `Fetch the specification rows for one line and control type and show
what the operator has to enter for each station.

Example:
  qcform specs --line L1 --type Torque
  qcform specs --line L1 --type Prensa --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpecs(rootOpts, sel, cmd)
		},
	}
	sel.register(cmd)

	return cmd
}

func runSpecs(opts *RootOptions, sel selectionFlags, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts, cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	loader := catalog.NewLoader(env.client, env.logger)
	s, err := loadSession(ctx, loader, form.NewSession(env.cfg.Operator, form.UUIDv7Generator{}), sel)
	if err != nil {
		return fail(env.out, "failed to load specifications", err)
	}

	rows := specRows(s.Rows())
	text := renderSpecRows(s.Control(), rows)
	if len(rows) == 0 {
		text = fmt.Sprintf("No stations for line %s and control %s.\n", s.Line(), s.Control())
	}
	return env.out.Success(SpecsResult{Line: s.Line(), Control: string(s.Control()), Rows: rows}, text)
}

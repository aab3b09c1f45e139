package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/access"
)

// LoginResult is the output of the login command.
type LoginResult struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Allowlist string `json:"allowlist"`
	Message   string `json:"message"`
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Check an operator email against the access allowlist",
		Long: `Run the sign-in check for an operator: the address must be well formed,
belong to the configured domain and appear in the allowlist. The allowlist
is fetched from the configured endpoint; when that fails the built-in list
is used.

There is no session to persist. Pass the same address to submit with
--operator when the access gate is enabled.

Example:
  qcform login joaquin.acevedo@newsan.com.ar`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(rootOpts, args[0], cmd)
		},
	}
}

func runLogin(opts *RootOptions, candidate string, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts, cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	list := access.LoadAllowlist(ctx, allowlistSource(env), env.cfg.Access.Fallback, env.logger)
	env.out.VerboseLog("Allowlist: %d address(es) from %s", len(list.Emails), list.Origin)

	flow, err := access.Flow{}.SignIn(list.Gate(env.cfg.Access.Domain), candidate)
	if err != nil {
		return fail(env.out, "access denied", err)
	}
	welcome := flow.WelcomeMessage()

	if flow, err = flow.Continue(); err != nil {
		return fail(env.out, "sign-in failed", err)
	}

	id := flow.Identity()
	return env.out.Success(LoginResult{
		Email:     id.Email,
		Name:      id.Name,
		State:     flow.State().String(),
		Allowlist: string(list.Origin),
		Message:   welcome,
	}, fmt.Sprintf("%s\nSigned in as %s.\n", welcome, id.Email))
}

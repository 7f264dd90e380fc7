package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/registry"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Prompts bool
}

// PhaseListing is the JSON shape of one listed phase.
type PhaseListing struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Policy string        `json:"policy"`
	Cases  []CaseListing `json:"cases"`
}

// CaseListing is the JSON shape of one listed case.
type CaseListing struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Critical bool   `json:"critical"`
	Prompt   string `json:"prompt,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [phase]",
		Short: "List phases and test cases",
		Long: `List the phases of the built-in suite with their threshold policy and cases.

Pass a phase id to list only that phase. Use --prompts to include the prompt
text an operator should put to the agent.

Examples:
  policycheck list
  policycheck list phase2 --prompts
  policycheck list --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Prompts, "prompts", false, "include prompt text")

	return cmd
}

func runList(opts *ListOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	reg, err := loadRegistry(formatter, nil)
	if err != nil {
		return err
	}

	phases := reg.Phases()
	if len(args) == 1 {
		phase, ok := reg.Phase(args[0])
		if !ok {
			msg := fmt.Sprintf("unknown phase %q", args[0])
			_ = formatter.Error(ErrCodeNotFound, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		phases = []registry.Phase{phase}
	}

	listing := make([]PhaseListing, 0, len(phases))
	for _, p := range phases {
		pl := PhaseListing{ID: p.ID, Name: p.Name, Policy: p.Policy.String(), Cases: []CaseListing{}}
		for _, tc := range p.Cases {
			cl := CaseListing{ID: tc.ID, Name: tc.Name, Critical: tc.Critical}
			if opts.Prompts {
				cl.Prompt = tc.Prompt
			}
			pl.Cases = append(pl.Cases, cl)
		}
		listing = append(listing, pl)
	}

	if opts.Format == "json" {
		return formatter.Success(listing)
	}
	return formatter.Success(strings.TrimSuffix(renderListing(reg, listing), "\n"))
}

func renderListing(reg *registry.Registry, listing []PhaseListing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s (%d cases)\n", reg.Name, reg.Version, reg.CaseCount())
	for _, p := range listing {
		fmt.Fprintf(&sb, "\n%s (%s) %s\n", p.ID, p.Name, p.Policy)

		// Case names line up per phase; prompts sit under the names.
		width := 0
		for _, c := range p.Cases {
			width = max(width, len(c.ID))
		}
		indent := strings.Repeat(" ", width+5)
		for _, c := range p.Cases {
			marker := " "
			if c.Critical {
				marker = "!"
			}
			fmt.Fprintf(&sb, "  %s %-*s %s\n", marker, width, c.ID, c.Name)
			if c.Prompt != "" {
				fmt.Fprintf(&sb, "%s%s\n", indent, c.Prompt)
			}
		}
	}
	return sb.String()
}

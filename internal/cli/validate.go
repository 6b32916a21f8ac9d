package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matflow/matflow/internal/scenario"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Scenario   string `json:"scenario,omitempty"`
	Duration   int64  `json:"duration,omitempty"`
	Facilities int    `json:"facilities,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario without running it",
		Long: `Validate a scenario file without running the simulation.

Checks YAML syntax, the parameter schema, and cross-field consistency
(unique facility names, declared sources). Faster than a full run for
development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sc, err := scenario.Load(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitFailure, "scenario invalid", err)
	}

	result := ValidationResult{
		Valid:      true,
		Scenario:   sc.Name,
		Duration:   sc.Duration,
		Facilities: len(sc.Facilities),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Scenario valid")
	fmt.Fprintf(formatter.Writer, "  name:       %s\n", result.Scenario)
	fmt.Fprintf(formatter.Writer, "  duration:   %d tick(s)\n", result.Duration)
	fmt.Fprintf(formatter.Writer, "  facilities: %d\n", result.Facilities)
	return nil
}

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/recorder"
	"github.com/matflow/matflow/internal/scenario"
	"github.com/matflow/matflow/internal/sim"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Until    int64
}

// RunResult is the payload reported after a successful run.
type RunResult struct {
	RunID      string `json:"run_id"`
	Scenario   string `json:"scenario"`
	Ticks      int64  `json:"ticks"`
	Facilities int    `json:"facilities"`
	Database   string `json:"database"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and record results",
		Long: `Run a fuel cycle scenario.

The scenario file declares the facilities and the simulation duration. Every
facility's stores are snapshot once per tick; snapshots and the final item
inventories are written to the results database when the run completes.

Example:
  matflow run --db ./results.db ./scenarios/pwr.yaml
  matflow run --db /tmp/test.db ./scenarios/pwr.yaml --until 100 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().Int64Var(&opts.Until, "until", 0, "override the scenario duration in ticks")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	slog.Info("loading scenario", "path", path)
	sc, err := scenario.Load(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	until := sc.Duration
	if opts.Until > 0 {
		until = opts.Until
	}

	sched := sim.New(sim.WithPropagateErrors())
	facilities, err := scenario.Build(sched, material.NewIndexer(), sc)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build scenario", err)
	}
	if err := scenario.Start(sched, facilities); err != nil {
		_ = formatter.Error(ErrCodeRun, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to start facilities", err)
	}

	slog.Info("simulation starting", "scenario", sc.Name, "ticks", until, "facilities", len(facilities))
	if err := sched.Run(until); err != nil {
		_ = formatter.Error(ErrCodeRun, err.Error(), nil)
		return WrapExitError(ExitFailure, "simulation failed", err)
	}
	slog.Info("simulation finished", "scenario", sc.Name, "tick", sched.Now())

	rec, err := recorder.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open results database", err)
	}
	defer func() {
		if closeErr := rec.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	runID, err := rec.RecordRun(cmd.Context(), sc.Name, until, facilities)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}

	result := RunResult{
		RunID:      runID,
		Scenario:   sc.Name,
		Ticks:      until,
		Facilities: len(facilities),
		Database:   opts.Database,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Scenario %q completed after %d tick(s).\n", result.Scenario, result.Ticks)
	fmt.Fprintf(formatter.Writer, "Recorded run %s to %s\n", result.RunID, result.Database)
	return nil
}

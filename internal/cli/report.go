package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matflow/matflow/internal/recorder"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// Report is the payload of the report command.
type Report struct {
	Run    recorder.RunInfo        `json:"run"`
	Stores []recorder.StoreSummary `json:"stores"`
	Items  []recorder.ItemCount    `json:"items"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a recorded run",
		Long: `Summarize a recorded run from the results database.

Prints each store's state at its last recorded tick, the flows summed over
the whole run, and the final item inventories. Defaults to the most recent
run when --run is not given.

Example:
  matflow report --db ./results.db
  matflow report --db ./results.db --run 0192d5e8-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to report on (defaults to the latest)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	rec, err := recorder.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open results database", err)
	}
	defer rec.Close()

	report, err := buildReport(rec, opts.RunID, cmd)
	if err != nil {
		if errors.Is(err, recorder.ErrNoRuns) {
			_ = formatter.Error(ErrCodeNoRuns, err.Error(), nil)
			return WrapExitError(ExitCommandError, "no runs recorded", err)
		}
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return printReport(formatter, report)
}

func buildReport(rec *recorder.Recorder, runID string, cmd *cobra.Command) (*Report, error) {
	ctx := cmd.Context()

	var run recorder.RunInfo
	if runID == "" {
		latest, err := rec.LatestRun(ctx)
		if err != nil {
			return nil, err
		}
		run = latest
	} else {
		runs, err := rec.ListRuns(ctx)
		if err != nil {
			return nil, err
		}
		found := false
		for _, ri := range runs {
			if ri.ID == runID {
				run, found = ri, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("run %s not found", runID)
		}
	}

	stores, err := rec.Summarize(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	items, err := rec.FinalItemCounts(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &Report{Run: run, Stores: stores, Items: items}, nil
}

// printReport renders the report as aligned tables with locale-aware
// number formatting.
func printReport(f *OutputFormatter, r *Report) error {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(f.Writer, "Run %s\n", r.Run.ID)
	fmt.Fprintf(f.Writer, "  scenario: %s\n", r.Run.Scenario)
	fmt.Fprintf(f.Writer, "  duration: %d tick(s), recorded %s\n\n", r.Run.Duration, r.Run.CreatedAt)

	tw := tabwriter.NewWriter(f.Writer, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FACILITY\tSTORE\tTICK\tLEVEL (kg)\tITEMS\tIN (kg)\tOUT (kg)")
	for _, s := range r.Stores {
		p.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%d\t%.1f\t%.1f\n",
			s.Facility, s.Store, s.LastTick, s.Level, s.Count, s.TotalIns, s.TotalOuts)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Items) == 0 {
		return nil
	}

	fmt.Fprintln(f.Writer)
	tw = tabwriter.NewWriter(f.Writer, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FACILITY\tSTORE\tKIND\tCOUNT\tWEIGHT (kg)")
	for _, it := range r.Items {
		p.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\n",
			it.Facility, it.Store, it.Kind, it.Count, it.WeightKG)
	}
	return tw.Flush()
}

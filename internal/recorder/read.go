package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunInfo is one row of the runs table.
type RunInfo struct {
	ID        string
	Scenario  string
	Duration  int64
	CreatedAt string
}

// StoreSummary condenses one store's history: its state at the last recorded
// tick plus the flows summed over all accounting windows.
type StoreSummary struct {
	Facility  string
	Store     string
	LastTick  int64
	Level     float64
	Count     int
	TotalIns  float64
	TotalOuts float64
}

// ItemCount is the final inventory of one item kind in one store.
type ItemCount struct {
	Facility string
	Store    string
	Kind     string
	Count    int
	WeightKG float64
}

// ErrNoRuns is returned when the database holds no recorded runs.
var ErrNoRuns = errors.New("recorder: no runs recorded")

// ListRuns returns all recorded runs, newest first.
func (r *Recorder) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scenario, duration, created_at
		FROM runs ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var ri RunInfo
		if err := rows.Scan(&ri.ID, &ri.Scenario, &ri.Duration, &ri.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, ri)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run. UUIDv7 run IDs sort by creation
// time, so the maximum ID is the newest run.
func (r *Recorder) LatestRun(ctx context.Context) (RunInfo, error) {
	var ri RunInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, scenario, duration, created_at
		FROM runs ORDER BY id DESC LIMIT 1
	`).Scan(&ri.ID, &ri.Scenario, &ri.Duration, &ri.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, ErrNoRuns
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("latest run: %w", err)
	}
	return ri, nil
}

// Summarize returns one summary row per store of a run, ordered by facility
// then store.
func (r *Recorder) Summarize(ctx context.Context, runID string) ([]StoreSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.facility, s.store, s.tick, s.level, s.count, t.total_ins, t.total_outs
		FROM snapshots s
		JOIN (
			SELECT facility, store, MAX(tick) AS max_tick,
			       SUM(ins) AS total_ins, SUM(outs) AS total_outs
			FROM snapshots WHERE run_id = ?
			GROUP BY facility, store
		) t ON s.facility = t.facility AND s.store = t.store AND s.tick = t.max_tick
		WHERE s.run_id = ?
		ORDER BY s.facility, s.store
	`, runID, runID)
	if err != nil {
		return nil, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	defer rows.Close()

	var summaries []StoreSummary
	for rows.Next() {
		var ss StoreSummary
		if err := rows.Scan(&ss.Facility, &ss.Store, &ss.LastTick, &ss.Level, &ss.Count, &ss.TotalIns, &ss.TotalOuts); err != nil {
			return nil, fmt.Errorf("summarize run %s: %w", runID, err)
		}
		summaries = append(summaries, ss)
	}
	return summaries, rows.Err()
}

// FinalItemCounts returns the final item inventory of a run grouped by
// facility, store and kind.
func (r *Recorder) FinalItemCounts(ctx context.Context, runID string) ([]ItemCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT facility, store, kind, COUNT(*), SUM(weight)
		FROM items WHERE run_id = ?
		GROUP BY facility, store, kind
		ORDER BY facility, store, kind
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("final items for run %s: %w", runID, err)
	}
	defer rows.Close()

	var counts []ItemCount
	for rows.Next() {
		var ic ItemCount
		if err := rows.Scan(&ic.Facility, &ic.Store, &ic.Kind, &ic.Count, &ic.WeightKG); err != nil {
			return nil, fmt.Errorf("final items for run %s: %w", runID, err)
		}
		counts = append(counts, ic)
	}
	return counts, rows.Err()
}

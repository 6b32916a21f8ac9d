package recorder

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/matflow/matflow/internal/facility"
	"github.com/matflow/matflow/internal/material"
)

// itemHolder is implemented by stores that hold discrete items.
type itemHolder interface {
	Items() []*material.Item
}

// RecordRun writes a completed run in one transaction: the run row, every
// store's snapshots, and the final item inventories. Returns the new run ID,
// a time-sortable UUIDv7.
func (r *Recorder) RecordRun(ctx context.Context, scenario string, duration int64, facilities []facility.Facility) (string, error) {
	runID := uuid.Must(uuid.NewV7()).String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, duration) VALUES (?, ?, ?)`,
		runID, scenario, duration,
	); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for _, f := range facilities {
		stores := f.Stores()
		names := make([]string, 0, len(stores))
		for name := range stores {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			inv := stores[name]
			for _, snap := range inv.Snapshots() {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO snapshots (run_id, facility, store, tick, level, count, ins, outs)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				`, runID, f.Name(), name, snap.Tick, snap.Level, snap.Count, snap.Ins, snap.Outs); err != nil {
					return "", fmt.Errorf("record snapshot %s/%s@%d: %w", f.Name(), name, snap.Tick, err)
				}
			}

			holder, ok := inv.(itemHolder)
			if !ok {
				continue
			}
			for _, it := range holder.Items() {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO items (run_id, facility, store, kind, serial, weight, material, created, origin, arrival)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				`, runID, f.Name(), name, it.Kind, it.Serial, it.Weight, it.Material.Name, it.Created, it.Origin, it.Arrival); err != nil {
					return "", fmt.Errorf("record item %s: %w", it.Key(), err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return runID, nil
}

package store

// Snapshot is a store's state observed at one tick. Level is the bulk level
// for quantity stores and the total item mass for item stores; Count is only
// meaningful for item stores. Ins and Outs cover the window since the
// previous snapshot.
type Snapshot struct {
	Tick  int64
	Level float64
	Count int
	Ins   float64
	Outs  float64
}

// Inventory is what the monitoring loop and the recorder need from a store.
// Both store kinds implement it.
type Inventory interface {
	Name() string
	TakeSnapshot(tick int64)
	Snapshots() []Snapshot
}

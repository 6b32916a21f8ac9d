package facility

import "github.com/matflow/matflow/internal/sim"

// MonitorInventory spawns the accounting process for a facility: once per
// tick each of the facility's stores records a snapshot and closes its
// accounting window.
func MonitorInventory(sched *sim.Scheduler, f Facility) {
	stores := f.Stores()
	names := sortedStoreNames(stores)
	sched.Spawn(f.Name()+"/monitor", func(p *sim.Process) error {
		for {
			p.Wait(1)
			for _, name := range names {
				stores[name].TakeSnapshot(p.Now())
			}
		}
	})
}

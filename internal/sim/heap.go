package sim

// wakeup is a scheduled process resumption.
type wakeup struct {
	tick  int64
	seq   int64 // monotonic, breaks same-tick ties in FIFO order
	proc  *Process
	value any // delivered to the process on resume (event result)
}

// wakeupHeap is a min-heap of wakeups keyed (tick, seq).
// Implements container/heap.Interface.
type wakeupHeap []*wakeup

func (h wakeupHeap) Len() int { return len(h) }

func (h wakeupHeap) Less(i, j int) bool {
	if h[i].tick != h[j].tick {
		return h[i].tick < h[j].tick
	}
	return h[i].seq < h[j].seq
}

func (h wakeupHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *wakeupHeap) Push(x any) {
	*h = append(*h, x.(*wakeup))
}

func (h *wakeupHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil // release for GC
	*h = old[:n-1]
	return w
}

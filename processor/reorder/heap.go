package reorder

import "github.com/c360/accessmon/record"

// pendingEntry is a record whose position in the output is not yet known.
type pendingEntry struct {
	rec     record.Record
	arrival uint64
}

// pendingHeap is a min-heap on (Timestamp, arrival), driven through container/heap.
type pendingHeap []pendingEntry

func (h pendingHeap) Len() int { return len(h) }

func (h pendingHeap) Less(i, j int) bool {
	if h[i].rec.Timestamp != h[j].rec.Timestamp {
		return h[i].rec.Timestamp < h[j].rec.Timestamp
	}
	return h[i].arrival < h[j].arrival
}

func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pendingHeap) Push(x any) {
	*h = append(*h, x.(pendingEntry))
}

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = pendingEntry{}
	*h = old[:n-1]
	return e
}

package crawler

import "container/heap"

// queueItem is one pending URL. Lower priority values are crawled first;
// seq preserves FIFO order within a priority class.
type queueItem struct {
	priority int
	seq      int
	url      string
}

type urlQueue []queueItem

func (q urlQueue) Len() int { return len(q) }

func (q urlQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q urlQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *urlQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *urlQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

var _ heap.Interface = (*urlQueue)(nil)

package clock

import (
	"container/heap"
	"time"
)

// Clock schedules callbacks.
type Clock interface {
	// Now returns the current time on this clock.
	Now() time.Time
	// AfterFunc runs fn once d has elapsed. Scheduled callbacks cannot be
	// cancelled; callers guard their own state instead.
	AfterFunc(d time.Duration, fn func())
}

// entry is a scheduled callback.
type entry struct {
	deadline time.Time
	seq      uint64
	fn       func()
}

// timerQueue is a min-heap ordered by deadline, then registration sequence.
type timerQueue []*entry

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timerQueue) Push(x any) { *q = append(*q, x.(*entry)) }

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// schedule adds fn to the queue.
func (q *timerQueue) schedule(deadline time.Time, seq uint64, fn func()) {
	heap.Push(q, &entry{deadline: deadline, seq: seq, fn: fn})
}

// popDue removes and returns the earliest entry if it is due at now.
func (q *timerQueue) popDue(now time.Time) *entry {
	if q.Len() == 0 {
		return nil
	}
	if (*q)[0].deadline.After(now) {
		return nil
	}
	return heap.Pop(q).(*entry)
}

// next returns the earliest deadline, if any.
func (q timerQueue) next() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].deadline, true
}

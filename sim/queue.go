// Implements the ReadyQueue, which holds the processes assigned to one processor.
// Processes are enqueued at partition time and re-enqueued after a preempted slice.

package sim

import (
	"fmt"
	"strings"
)

// ReadyQueue is a FIFO queue of processes waiting for their processor.
// It is not safe for concurrent use; the engine guards every operation with a lock.
type ReadyQueue struct {
	queue []*Process
}

// NewReadyQueue creates a queue holding procs in the given order.
func NewReadyQueue(procs []*Process) *ReadyQueue {
	q := &ReadyQueue{queue: make([]*Process, 0, len(procs))}
	for _, p := range procs {
		q.Enqueue(p)
	}
	return q
}

// Enqueue adds a process to the tail of the queue.
func (rq *ReadyQueue) Enqueue(p *Process) {
	if p == nil {
		panic("Enqueue: process must not be nil")
	}
	rq.queue = append(rq.queue, p)
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range rq.queue {
		fmt.Fprintf(&sb, "%d", p.ID)
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of processes in the queue.
func (rq *ReadyQueue) Len() int {
	return len(rq.queue)
}

// Peek returns the process at the head of the queue without removing it.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) Peek() *Process {
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage: callers MUST NOT append to
// or reslice it. For reordering, use Reorder().
func (rq *ReadyQueue) Items() []*Process {
	return rq.queue
}

// Reorder applies fn to the queue contents, allowing in-place reordering.
// Policy.OrderQueue is the primary consumer:
//
//	rq.Reorder(policy.OrderQueue)
//
// fn MUST NOT change the slice length.
func (rq *ReadyQueue) Reorder(fn func([]*Process)) {
	if fn == nil {
		panic("Reorder: fn must not be nil")
	}
	n := len(rq.queue)
	fn(rq.queue)
	if len(rq.queue) != n {
		panic(fmt.Sprintf("Reorder: fn changed queue length from %d to %d", n, len(rq.queue)))
	}
}

// Dequeue removes and returns the process at the head of the queue.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) Dequeue() *Process {
	if len(rq.queue) == 0 {
		return nil
	}
	p := rq.queue[0]
	rq.queue[0] = nil
	rq.queue = rq.queue[1:]
	return p
}

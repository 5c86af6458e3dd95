package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/inference-sim/procsched/sim"
)

// lockedQueue pairs a processor's ReadyQueue with the mutex that guards it and a
// condition variable signalled on enqueue and on termination.
// In global lock mode every lockedQueue shares the same mutex.
type lockedQueue struct {
	mu    *sync.Mutex
	cond  *sync.Cond
	queue *sim.ReadyQueue
}

func newLockedQueue(mu *sync.Mutex, queue *sim.ReadyQueue) *lockedQueue {
	return &lockedQueue{mu: mu, cond: sync.NewCond(mu), queue: queue}
}

// push appends p at the tail and wakes the waiting worker.
func (q *lockedQueue) push(p *sim.Process) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue.Enqueue(p)
	q.cond.Signal()
}

// next blocks until the queue holds a process or ctx is done. It reorders the queue
// with policy and dequeues the new head, all under the lock.
// Returns nil once ctx is done, even if processes remain queued.
func (q *lockedQueue) next(ctx context.Context, policy sim.Policy) *sim.Process {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if q.queue.Len() > 0 {
			break
		}
		q.cond.Wait()
	}
	q.queue.Reorder(policy.OrderQueue)
	return q.queue.Dequeue()
}

// wake broadcasts to the waiting worker so it re-checks termination.
func (q *lockedQueue) wake() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *lockedQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}

// snapshot returns the queue depth and the pid at its head, or -1 when empty.
func (q *lockedQueue) snapshot() (depth int, head int32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if p := q.queue.Peek(); p != nil {
		return q.queue.Len(), p.ID
	}
	return 0, -1
}

// sharedState is the state every worker touches: the outstanding-process counter and
// the completion signal the controller waits on.
type sharedState struct {
	counterLock *sync.Mutex // global mode: the mutex shared by all queues; nil otherwise
	outstanding atomic.Int64
	done        chan struct{}
}

func newSharedState(outstanding int, counterLock *sync.Mutex) *sharedState {
	s := &sharedState{counterLock: counterLock, done: make(chan struct{})}
	s.outstanding.Store(int64(outstanding))
	if outstanding == 0 {
		close(s.done)
	}
	return s
}

// retire decrements the counter for one completed process and returns the new value.
// The retire that reaches zero closes done.
func (s *sharedState) retire() int64 {
	if s.counterLock != nil {
		s.counterLock.Lock()
	}
	left := s.outstanding.Add(-1)
	if s.counterLock != nil {
		s.counterLock.Unlock()
	}
	if left < 0 {
		panic(fmt.Sprintf("retire: outstanding counter went negative (%d)", left))
	}
	if left == 0 {
		close(s.done)
	}
	return left
}

// Outstanding returns the number of processes not yet fully executed.
func (s *sharedState) Outstanding() int64 {
	return s.outstanding.Load()
}

// buildQueues wraps each processor's queue according to mode and returns the counter lock.
func buildQueues(processors []*sim.ProcessorInfo, mode sim.LockMode) ([]*lockedQueue, *sync.Mutex) {
	queues := make([]*lockedQueue, len(processors))
	if mode == sim.LockPerProcessor {
		for i, p := range processors {
			queues[i] = newLockedQueue(&sync.Mutex{}, p.Queue)
		}
		return queues, nil
	}
	global := &sync.Mutex{}
	for i, p := range processors {
		queues[i] = newLockedQueue(global, p.Queue)
	}
	return queues, global
}

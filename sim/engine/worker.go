package engine

import (
	"context"
	"time"

	"github.com/markphelps/optional"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsched/internal/telemetry"
	"github.com/inference-sim/procsched/sim"
	"github.com/inference-sim/procsched/sim/trace"
)

// WorkerState is a step of the processor execution loop.
type WorkerState string

const (
	StatePolling   WorkerState = "polling"
	StateSelecting WorkerState = "selecting"
	StateExecuting WorkerState = "executing"
	StateRequeue   WorkerState = "requeue"
	StateRetire    WorkerState = "retire"
	StateStopped   WorkerState = "stopped"
)

// Worker runs one processor: it repeatedly selects a process from its own queue,
// executes slices of it, and requeues or retires it according to the policy.
// A Worker never touches another processor's queue.
type Worker struct {
	info    *sim.ProcessorInfo
	queue   *lockedQueue
	state   *sharedState
	quantum int32
	delay   time.Duration
	sink    trace.Sink
	metrics *Metrics
	log     *logrus.Entry
	onState func(WorkerState) // test hook; nil in production
}

// Run executes the worker loop until ctx is done. It returns only in the Stopped state.
func (w *Worker) Run(ctx context.Context) {
	w.log.Debug("worker started")
	defer func() {
		w.enter(StateStopped)
		w.log.Debug("worker stopped")
	}()
	for {
		w.enter(StatePolling)
		p := w.queue.next(ctx, w.info.Policy)
		if p == nil {
			return
		}
		w.enter(StateSelecting)
		if !w.dispatch(ctx, p) {
			return
		}
	}
}

// dispatch runs p for one slice, or until completion when the policy holds the processor.
// Returns false if ctx was cancelled mid-dispatch; p is then abandoned.
func (w *Worker) dispatch(ctx context.Context, p *sim.Process) bool {
	policy := w.info.Policy
	_, span := telemetry.StartSpan(ctx, "processor.dispatch")
	span.SetInt("processor", int64(w.info.Index)).SetInt("pid", int64(p.ID)).SetString("policy", policy.Algorithm().String())

	for {
		w.enter(StateExecuting)
		slice := policy.SliceLength(p, w.quantum)
		if !sleepCtx(ctx, w.delay) {
			span.End(ctx.Err())
			return false
		}
		executed := p.Execute(slice)
		w.emit(p, executed)
		span.AddEvent("slice", map[string]int64{"executed": int64(executed), "remaining": int64(p.RemainingBurst)})

		if p.Complete() {
			w.enter(StateRetire)
			left := w.state.retire()
			w.metrics.recordCompletion(w.info.Index)
			w.sink.RecordCompletion(trace.CompletionRecord{ProcessorID: w.info.Index, ProcessID: p.ID, Outstanding: left})
			w.log.WithFields(logrus.Fields{"pid": p.ID, "outstanding": left}).Debug("process retired")
			span.End(nil)
			return true
		}
		if !policy.HoldsProcessor() {
			w.enter(StateRequeue)
			w.queue.push(p)
			span.End(nil)
			return true
		}
	}
}

func (w *Worker) emit(p *sim.Process, executed int32) {
	policy := w.info.Policy.Algorithm()
	record := trace.SliceRecord{
		ProcessorID: w.info.Index,
		Policy:      policy.String(),
		ProcessID:   p.ID,
		ProcessName: p.Name,
		Executed:    executed,
		Remaining:   p.RemainingBurst,
	}
	if policy == sim.AlgorithmPriority {
		record.Priority = optional.NewInt(int(p.Priority))
	}
	w.metrics.recordSlice(w.info.Index, executed)
	w.sink.RecordSlice(record)
	w.log.WithFields(logrus.Fields{"pid": p.ID, "executed": executed, "remaining": p.RemainingBurst}).Trace("slice executed")
}

func (w *Worker) enter(s WorkerState) {
	if w.onState != nil {
		w.onState(s)
	}
}

// sleepCtx waits for d or until ctx is done. Returns false if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Package engine runs the configured processors concurrently and detects global completion.
//
// One Worker goroutine runs per processor. Workers share an outstanding-process counter;
// the Controller waits for it to reach zero, signals termination exactly once by
// cancelling the workers' context, and waits for every worker to stop.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsched/internal/telemetry"
	"github.com/inference-sim/procsched/sim"
	"github.com/inference-sim/procsched/sim/trace"
)

// Controller owns a run: it starts one Worker per processor, waits for every process
// to complete, then terminates the workers. It is the only writer of the termination signal.
type Controller struct {
	config     sim.EngineConfig
	processors []*sim.ProcessorInfo
	sink       trace.Sink
	runID      string
	metrics    *Metrics
	hasRun     bool
	onState    func(processor int, s WorkerState)
}

// NewController validates config and processors. sink may be nil.
func NewController(config sim.EngineConfig, processors []*sim.ProcessorInfo, sink trace.Sink) (*Controller, error) {
	if config.LockMode == "" {
		config.LockMode = sim.LockGlobal
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(processors) == 0 {
		return nil, fmt.Errorf("%w: at least one processor is required", sim.ErrConfig)
	}
	for i, p := range processors {
		if p == nil || p.Policy == nil || p.Queue == nil {
			return nil, fmt.Errorf("%w: processor %d has no policy or queue", sim.ErrConfig, i+1)
		}
	}
	if sink == nil {
		sink = trace.Tee()
	}
	runID := uuid.New().String()
	return &Controller{
		config:     config,
		processors: processors,
		sink:       sink,
		runID:      runID,
		metrics:    newMetrics(runID, len(processors)),
	}, nil
}

// RunID returns the identifier stamped on this run's logs and metrics.
func (c *Controller) RunID() string {
	return c.runID
}

// Run starts the workers and blocks until every process has completed and every
// worker has stopped. A processor that never drains blocks Run indefinitely.
// If ctx is cancelled first, the workers are terminated and ctx's error is returned.
// Panics if called more than once.
func (c *Controller) Run(ctx context.Context) (err error) {
	if c.hasRun {
		panic("Controller.Run() called more than once")
	}
	c.hasRun = true

	ctx, span := telemetry.StartSpan(ctx, "engine.run")
	defer func() { span.End(err) }()
	span.SetString("run", c.runID).SetString("lock_mode", string(c.config.LockMode)).SetInt("processors", int64(len(c.processors)))

	log := logrus.WithField("run", c.runID)
	queues, counterLock := buildQueues(c.processors, c.config.LockMode)
	total := 0
	for _, q := range queues {
		total += q.size()
	}
	state := newSharedState(total, counterLock)
	span.SetInt("processes", int64(total))
	log.Infof("Starting %d processors with %d processes, quantum=%d, lock mode=%s",
		len(c.processors), total, c.config.Quantum, c.config.LockMode)

	workerCtx, terminate := context.WithCancel(ctx)
	defer terminate()
	stopWake := context.AfterFunc(workerCtx, func() {
		for _, q := range queues {
			q.wake()
		}
	})
	defer stopWake()

	start := time.Now()
	c.metrics.start(start)
	var wg sync.WaitGroup
	for i, info := range c.processors {
		w := &Worker{
			info:    info,
			queue:   queues[i],
			state:   state,
			quantum: c.config.Quantum,
			delay:   c.config.SliceDelay,
			sink:    c.sink,
			metrics: c.metrics,
			log:     log.WithFields(logrus.Fields{"processor": info.Index, "policy": info.Policy.Algorithm().String()}),
		}
		if c.onState != nil {
			idx := info.Index
			w.onState = func(s WorkerState) { c.onState(idx, s) }
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(workerCtx)
		}()
	}

	err = c.awaitCompletion(ctx, state, queues, log)
	terminate()
	wg.Wait()
	c.metrics.finish(time.Since(start))

	if err != nil {
		log.Warnf("Run aborted with %d processes outstanding: %v", state.Outstanding(), err)
		return err
	}
	log.Infof("All %d processes completed in %v", total, time.Since(start))
	return nil
}

// awaitCompletion blocks until the outstanding counter reaches zero or ctx is done.
// With a positive ProgressInterval it logs the counter, queue depths and head pids on every tick.
func (c *Controller) awaitCompletion(ctx context.Context, state *sharedState, queues []*lockedQueue, log *logrus.Entry) error {
	var tick <-chan time.Time
	if c.config.ProgressInterval > 0 {
		ticker := time.NewTicker(c.config.ProgressInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-state.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
				depths := make([]int, len(queues))
				heads := make([]int32, len(queues))
				for i, q := range queues {
					depths[i], heads[i] = q.snapshot()
				}
				log.Debugf("outstanding=%d queue depths=%v heads=%v", state.Outstanding(), depths, heads)
			}
		}
	}
}

// Metrics returns the run's metrics.
// Panics if called before Run() has completed.
func (c *Controller) Metrics() *Metrics {
	if !c.hasRun {
		panic("Controller.Metrics() called before Run()")
	}
	return c.metrics
}

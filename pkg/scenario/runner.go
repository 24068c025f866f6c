package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"digital.vasic.contracts/pkg/cache"
	"digital.vasic.contracts/pkg/config"
	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/instrument"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/metrics"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/registry"
	"digital.vasic.contracts/pkg/sink"
)

// State is the phase of a scenario run.
type State string

const (
	StateIdle               State = "idle"
	StateLoadingFiles       State = "loading_files"
	StateExecutingScenarios State = "executing_scenarios"
	StateAwaitingCompletion State = "awaiting_completion"
	StateReporting          State = "reporting"
	StateDone               State = "done"
)

// Runner replays scenario files against registered targets and
// reports how their recorded calls validated.
type Runner struct {
	registry  registry.Registry
	book      *contract.Book
	cfg       config.Config
	logger    logging.Logger
	collector *monitor.EventCollector
	metrics   metrics.ContractMetrics
	extra     []sink.Sink

	timeout     time.Duration
	concurrency int

	cache        *cache.Cache
	instrumenter *instrument.Instrumenter

	runMu   sync.Mutex
	mu      sync.RWMutex
	state   State
	barrier *Barrier
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBook sets the contract declarations used to instrument
// targets whose methods carry no contract of their own.
func WithBook(b *contract.Book) RunnerOption {
	return func(r *Runner) { r.book = b }
}

// WithLogger sets the logger used by the runner.
func WithLogger(l logging.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithCollector emits call lifecycle events to c.
func WithCollector(c *monitor.EventCollector) RunnerOption {
	return func(r *Runner) { r.collector = c }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.ContractMetrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithSink adds a destination that receives every record
// besides the result cache.
func WithSink(s sink.Sink) RunnerOption {
	return func(r *Runner) { r.extra = append(r.extra, s) }
}

// WithTimeout bounds the wait for deferred validations.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithConcurrency bounds parallel file loading.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) { r.concurrency = n }
}

// NewRunner creates a runner and instruments every method of
// reg with its own instrumenter, so each call ends up in the
// runner's result cache. Methods instrumented earlier by
// another instrumenter are left as they are and will not
// report to this runner. Instrumentation is always enabled for
// a runner, whatever cfg says.
func NewRunner(
	reg registry.Registry,
	cfg *config.Config,
	opts ...RunnerOption,
) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{
		registry:    reg,
		cfg:         *cfg,
		metrics:     metrics.NoopMetrics{},
		timeout:     cfg.Scenario.Timeout,
		concurrency: cfg.Scenario.Concurrency,
		state:       StateIdle,
	}
	r.cfg.Enabled = true
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNull(r.logger)

	sinkCfg := r.cfg.Sink
	sinkCfg.Kinds = nil
	for _, kind := range r.cfg.Sink.Kinds {
		if kind != config.SinkCache {
			sinkCfg.Kinds = append(sinkCfg.Kinds, kind)
		}
	}
	configured, err := sink.FromConfig(sinkCfg, r.cfg.Verbose, r.logger, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sinks: %w", err)
	}

	r.cache = cache.New(r.cfg.Cache.Size, r.cfg.Cache.TTL)
	// The cache goes first so a slow or unreachable sink never
	// holds back the completion signal.
	sinks := []sink.Sink{sink.NewCacheSink(r.cache, r.signal), configured}
	sinks = append(sinks, r.extra...)

	r.instrumenter = instrument.New(&r.cfg,
		instrument.WithSink(sink.NewMultiSink(sinks...)),
		instrument.WithLogger(r.logger),
		instrument.WithCollector(r.collector),
		instrument.WithMetrics(r.metrics),
	)
	n := reg.Instrument(r.instrumenter, r.book)
	r.logger.Debug("targets instrumented", logging.IntField("methods", n))
	return r, nil
}

// State returns the current phase.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Cache returns the runner's result cache.
func (r *Runner) Cache() *cache.Cache {
	return r.cache
}

// Instrumenter returns the instrumenter wrapping the targets.
func (r *Runner) Instrumenter() *instrument.Instrumenter {
	return r.instrumenter
}

// Close drains pending validations and releases the sinks.
func (r *Runner) Close() error {
	err := r.instrumenter.Close()
	r.cache.Purge()
	return err
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

func (r *Runner) signal(key string) {
	r.mu.RLock()
	b := r.barrier
	r.mu.RUnlock()
	if b != nil {
		b.Signal(key)
	}
}

// planned is one scenario ready to execute. err is set when it
// cannot run.
type planned struct {
	file     *File
	scenario Scenario
	key      string
	target   *registry.Target
	method   *registry.Method
	err      error
}

// Run replays every scenario file under roots. Runs are
// serialized. Files that fail to load are reported and
// skipped; only a failure to resolve roots aborts the run.
func (r *Runner) Run(ctx context.Context, roots []string) (*Report, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	defer r.setState(StateDone)

	start := time.Now()
	report := &Report{StartedAt: start}

	r.setState(StateLoadingFiles)
	paths, err := ResolveFiles(roots)
	if err != nil {
		return nil, err
	}
	files, loadErrs := LoadFiles(ctx, paths, r.concurrency)
	for _, err := range loadErrs {
		r.logger.Error("scenario file skipped", logging.ErrorField(err))
		report.LoadErrors = append(report.LoadErrors, err.Error())
	}
	report.Files = len(files)

	plan := r.plan(files)
	var keys []string
	for _, p := range plan {
		if p.err == nil {
			keys = append(keys, p.key)
		}
	}
	barrier := NewBarrier(keys...)
	r.mu.Lock()
	r.barrier = barrier
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.barrier = nil
		r.mu.Unlock()
	}()

	r.setState(StateExecutingScenarios)
	for _, p := range plan {
		if p.err != nil {
			r.logger.Warn("scenario not started",
				logging.StringField("file", p.file.Path),
				logging.StringField("scenario", p.scenario.Key),
				logging.ErrorField(p.err),
			)
			continue
		}
		if err := r.execute(ctx, p); err != nil {
			p.err = err
			barrier.Forget(p.key)
			r.logger.Warn("scenario not started",
				logging.StringField("file", p.file.Path),
				logging.StringField("scenario", p.scenario.Key),
				logging.ErrorField(err),
			)
		}
	}

	r.setState(StateAwaitingCompletion)
	waitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := barrier.Wait(waitCtx); err != nil {
		report.TimedOut = true
		r.logger.Warn("scenario run incomplete", logging.ErrorField(err))
	}

	r.setState(StateReporting)
	for _, p := range plan {
		res := Result{
			File:        p.file.Path,
			Target:      p.file.Target,
			Method:      p.scenario.Method,
			Key:         p.scenario.Key,
			Description: p.scenario.Description,
			CacheKey:    p.key,
			ShouldFail:  p.scenario.ShouldFail,
		}
		if p.err != nil {
			res.Message = p.err.Error()
			report.add(res, nil)
			continue
		}
		rec, ok := r.cache.Get(p.key)
		if !ok {
			res.Message = "no record in result cache"
			report.add(res, nil)
			continue
		}
		report.add(res, rec)
	}
	report.Duration = time.Since(start)

	r.logger.Info("scenario run finished",
		logging.IntField("total", report.Total),
		logging.IntField("passed", report.Passed),
		logging.IntField("failed", report.Failed),
		logging.IntField("misses", report.Misses),
		logging.DurationField("duration", report.Duration),
	)
	return report, nil
}

func (r *Runner) plan(files []*File) []*planned {
	var plan []*planned
	for _, f := range files {
		target, terr := r.registry.Get(f.Target)
		for _, sc := range f.Scenarios {
			p := &planned{file: f, scenario: sc, target: target, err: terr}
			if p.err == nil {
				m, ok := target.Method(sc.Method)
				if !ok {
					p.err = fmt.Errorf("target %s has no method %s", f.Target, sc.Method)
				}
				p.method = m
			}
			if p.err == nil {
				p.key, p.err = cache.Key(sc.InputValues)
			}
			plan = append(plan, p)
		}
	}
	return plan
}

// execute invokes one scenario. It fails only when the call
// could not start; errors and panics of the target are part of
// its record.
func (r *Runner) execute(ctx context.Context, p *planned) error {
	recv, err := p.target.Receiver(ctx, p.method)
	if err != nil {
		return err
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("scenario target panicked",
				logging.StringField("scenario", p.scenario.Key),
				logging.LogField("panic", rec),
			)
		}
	}()
	if _, err := p.method.Call(ctx, recv, p.scenario.InputValues...); err != nil {
		r.logger.Debug("scenario target returned an error",
			logging.StringField("scenario", p.scenario.Key),
			logging.ErrorField(err),
		)
	}
	return nil
}

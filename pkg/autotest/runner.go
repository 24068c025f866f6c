package autotest

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
	"digital.vasic.contracts/pkg/record"
	"digital.vasic.contracts/pkg/sink"
)

// CaseResult pairs a generated case with the record its call
// produced.
type CaseResult struct {
	Case
	CacheKey string                     `json:"cache_key,omitempty"`
	Record   *record.FunctionTestRecord `json:"record,omitempty"`
	Passed   bool                       `json:"passed"`
	Message  string                     `json:"message,omitempty"`
}

// Result aggregates one auto-test run of a function.
type Result struct {
	Function string        `json:"function"`
	Cases    []CaseResult  `json:"cases"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Missing  int           `json:"missing"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether every case produced a passing
// record.
func (r *Result) Succeeded() bool {
	return r.Failed == 0 && r.Missing == 0
}

// Runner auto-tests functions against their contracts.
type Runner struct {
	cfg         config.Config
	gen         *Generator
	logger      logging.Logger
	collector   *monitor.EventCollector
	metrics     metrics.ContractMetrics
	extra       []sink.Sink
	concurrency int
}

// Option configures a Runner.
type Option func(*Runner)

// WithGenerator replaces the argument generator.
func WithGenerator(g *Generator) Option {
	return func(r *Runner) { r.gen = g }
}

// WithLogger sets the logger used by the runner.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithCollector emits call lifecycle events to c.
func WithCollector(c *monitor.EventCollector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.ContractMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSink forwards every record to s as well. The runner does
// not close s.
func WithSink(s sink.Sink) Option {
	return func(r *Runner) { r.extra = append(r.extra, s) }
}

// WithConcurrency sets how many cases run at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.concurrency = n }
}

// NewRunner creates a Runner. A nil cfg means config.Default.
// Instrumentation is always enabled for the runner's calls.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{
		cfg:         *cfg,
		metrics:     metrics.NoopMetrics{},
		concurrency: 1,
	}
	r.cfg.Enabled = true
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNull(r.logger)
	if r.gen == nil {
		r.gen = NewGenerator(nil, r.cfg.SampleCount)
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	return r
}

// Run generates cases for c, calls fn once per case and waits
// for every record to be validated. Errors and panics of fn
// become part of the records. Run fails only when ctx ends
// before the records arrive.
func (r *Runner) Run(
	ctx context.Context,
	c *contract.Compiled,
	fn instrument.Func,
) (*Result, error) {
	start := time.Now()
	cases := r.gen.Generate(c)

	collect := &collectSink{byKey: make(map[string][]*record.FunctionTestRecord)}
	sinks := make([]sink.Sink, 0, len(r.extra)+1)
	for _, s := range r.extra {
		sinks = append(sinks, keepOpen{s})
	}
	sinks = append(sinks, collect)

	in := instrument.New(&r.cfg,
		instrument.WithSink(sink.NewMultiSink(sinks...)),
		instrument.WithLogger(r.logger),
		instrument.WithCollector(r.collector),
		instrument.WithMetrics(r.metrics),
	)
	defer in.Close()
	wrapped := in.Wrap(c, fn)

	results := make([]CaseResult, len(cases))
	for i, cs := range cases {
		results[i].Case = cs
		key, err := cache.Key(cs.Args)
		if err != nil {
			results[i].Message = err.Error()
			continue
		}
		results[i].CacheKey = key
	}

	if err := r.runCases(ctx, wrapped, results); err != nil {
		return nil, err
	}
	if err := in.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to await auto-test records: %w", err)
	}

	res := &Result{Function: c.Decl.Key(), Cases: results}
	for i := range res.Cases {
		cr := &res.Cases[i]
		if cr.CacheKey != "" {
			cr.Record = collect.take(cr.CacheKey)
		}
		switch {
		case cr.Record == nil:
			if cr.Message == "" {
				cr.Message = "no record for case"
			}
			res.Missing++
		case cr.Record.Succeeded():
			cr.Passed = true
			cr.Message = cr.Record.ResultMessage
			res.Passed++
		default:
			cr.Message = cr.Record.ResultMessage
			res.Failed++
		}
	}
	res.Duration = time.Since(start)

	r.logger.Info("auto-test finished",
		logging.StringField("function", res.Function),
		logging.IntField("cases", len(res.Cases)),
		logging.IntField("passed", res.Passed),
		logging.IntField("failed", res.Failed),
		logging.IntField("missing", res.Missing),
	)
	return res, nil
}

// runCases calls fn for every case using at most r.concurrency
// goroutines. Cases whose key could not be computed are still
// called so their records reach the other sinks.
func (r *Runner) runCases(
	ctx context.Context,
	fn instrument.Func,
	cases []CaseResult,
) error {
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	var interrupted error

	for i := range cases {
		if interrupted = ctx.Err(); interrupted != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			interrupted = ctx.Err()
		}
		if interrupted != nil {
			break
		}

		wg.Add(1)
		go func(cs *CaseResult) {
			defer wg.Done()
			defer func() { <-sem }()
			r.call(ctx, fn, cs)
		}(&cases[i])
	}
	wg.Wait()

	if interrupted != nil {
		return fmt.Errorf("auto-test interrupted: %w", interrupted)
	}
	return nil
}

func (r *Runner) call(ctx context.Context, fn instrument.Func, cs *CaseResult) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("auto-test case panicked",
				logging.IntField("case", cs.Index),
				logging.LogField("panic", p),
			)
		}
	}()
	if _, err := fn(ctx, cs.Args...); err != nil {
		r.logger.Debug("auto-test case returned an error",
			logging.IntField("case", cs.Index),
			logging.ErrorField(err),
		)
	}
}

// collectSink keeps delivered records by cache key, in arrival
// order.
type collectSink struct {
	mu    sync.Mutex
	byKey map[string][]*record.FunctionTestRecord
}

func (s *collectSink) Name() string { return "autotest" }

func (s *collectSink) Deliver(_ context.Context, rec *record.FunctionTestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[rec.CacheKey] = append(s.byKey[rec.CacheKey], rec)
	return nil
}

func (s *collectSink) Close() error { return nil }

func (s *collectSink) take(key string) *record.FunctionTestRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.byKey[key]
	if len(recs) == 0 {
		return nil
	}
	s.byKey[key] = recs[1:]
	return recs[0]
}

// keepOpen shields a caller-owned sink from the instrumenter's
// Close.
type keepOpen struct {
	sink.Sink
}

func (keepOpen) Close() error { return nil }

// Package instrument wraps functions so that every call is run
// unchanged and then, out of band, validated against its
// contracts and reported.
//
// A wrapped call returns exactly what the target returned. The
// record of the call is completed on the caller's goroutine;
// validation and delivery happen later on the instrumenter's
// single scheduler goroutine.
//
//	in := instrument.New(cfg, instrument.WithSink(s))
//	defer in.Close()
//	create := in.Wrap(compiled, users.Create)
package instrument

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.contracts/pkg/cache"
	"digital.vasic.contracts/pkg/config"
	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/metrics"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/record"
	"digital.vasic.contracts/pkg/sink"
	"digital.vasic.contracts/pkg/validation"
)

// Func is an instrumentable function.
type Func func(ctx context.Context, args ...any) (any, error)

// MethodFunc is an instrumentable method; recv is passed through
// to the target untouched.
type MethodFunc func(ctx context.Context, recv any, args ...any) (any, error)

// deliveryTimeout bounds one sink delivery.
const deliveryTimeout = 10 * time.Second

// Instrumenter wraps functions for contract testing. It is safe
// for concurrent use.
type Instrumenter struct {
	cfg       *config.Config
	engine    *validation.Engine
	sink      sink.Sink
	logger    logging.Logger
	collector *monitor.EventCollector
	metrics   metrics.ContractMetrics
	now       func() time.Time
	scheduler *Scheduler
}

// Option configures an Instrumenter.
type Option func(*Instrumenter)

// WithEngine sets the validation engine.
func WithEngine(e *validation.Engine) Option {
	return func(in *Instrumenter) { in.engine = e }
}

// WithSink sets the destination of finished records.
func WithSink(s sink.Sink) Option {
	return func(in *Instrumenter) { in.sink = s }
}

// WithLogger sets the logger for validation and delivery
// failures.
func WithLogger(l logging.Logger) Option {
	return func(in *Instrumenter) { in.logger = l }
}

// WithCollector emits every lifecycle transition to c.
func WithCollector(c *monitor.EventCollector) Option {
	return func(in *Instrumenter) { in.collector = c }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.ContractMetrics) Option {
	return func(in *Instrumenter) { in.metrics = m }
}

// WithClock overrides the time source of record stopwatches.
func WithClock(now func() time.Time) Option {
	return func(in *Instrumenter) { in.now = now }
}

// New creates an Instrumenter. A nil cfg means config.Default.
// When cfg disables instrumentation no goroutine is started and
// every Wrap returns its target unchanged.
func New(cfg *config.Config, opts ...Option) *Instrumenter {
	if cfg == nil {
		cfg = config.Default()
	}
	in := &Instrumenter{
		cfg:     cfg,
		sink:    sink.Discard{},
		metrics: metrics.NoopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.logger = logging.OrNull(in.logger)
	if in.engine == nil {
		in.engine = validation.NewEngine(
			validation.WithLogger(in.logger),
			validation.WithSanitizeDepth(cfg.SanitizeDepth),
		)
	}
	if cfg.Enabled {
		in.scheduler = NewScheduler(in.logger, in.metrics.SetPending)
	}
	return in
}

// Enabled reports whether wrapping has any effect.
func (in *Instrumenter) Enabled() bool {
	return in.scheduler != nil
}

// Engine returns the validation engine.
func (in *Instrumenter) Engine() *validation.Engine {
	return in.engine
}

// Wrap returns a function with the same behavior as fn whose
// calls are validated against c and reported.
func (in *Instrumenter) Wrap(c *contract.Compiled, fn Func) Func {
	if !in.Enabled() || c == nil {
		return fn
	}
	return func(ctx context.Context, args ...any) (any, error) {
		return in.invoke(c, args, func() (any, error) {
			return fn(ctx, args...)
		})
	}
}

// WrapMethod is Wrap for methods. The receiver is not part of
// the validated arguments.
func (in *Instrumenter) WrapMethod(c *contract.Compiled, fn MethodFunc) MethodFunc {
	if !in.Enabled() || c == nil {
		return fn
	}
	return func(ctx context.Context, recv any, args ...any) (any, error) {
		return in.invoke(c, args, func() (any, error) {
			return fn(ctx, recv, args...)
		})
	}
}

// Flush waits until every call made so far has been validated
// and delivered.
func (in *Instrumenter) Flush(ctx context.Context) error {
	if in.scheduler == nil {
		return nil
	}
	return in.scheduler.Flush(ctx)
}

// Pending returns the number of calls awaiting validation.
func (in *Instrumenter) Pending() int {
	if in.scheduler == nil {
		return 0
	}
	return in.scheduler.Pending()
}

// Close drains pending validations, stops the scheduler and
// closes the sink.
func (in *Instrumenter) Close() error {
	if in.scheduler != nil {
		in.scheduler.Close()
	}
	if err := in.sink.Close(); err != nil {
		return fmt.Errorf("failed to close sink %s: %w", in.sink.Name(), err)
	}
	return nil
}

// invoke runs call synchronously and schedules the report. It
// must be called directly from the wrapper closure so caller
// attribution sees the right frame.
func (in *Instrumenter) invoke(
	c *contract.Compiled,
	args []any,
	call func() (any, error),
) (result any, err error) {
	rec := record.New(c.Decl.Class, c.Decl.Method, c.Decl.Signature)
	rec.CallerClassName, rec.CallerMethodName = callerOf(2)
	in.emit(rec, monitor.EventInvoked, "")

	rec.Begin(args, len(c.Params), in.now())
	rec.CacheKey = in.cacheKey(rec)
	in.emit(rec, monitor.EventExecuting, "")

	completed := false
	defer func() {
		if completed {
			return
		}
		// recover yields nil while runtime.Goexit unwinds the
		// goroutine; the exit must continue rather than panic.
		p := recover()
		failure := &TargetExecutionError{Function: rec.Name(), Panic: p}
		if p == nil {
			failure.Exited = true
		}
		rec.Complete(nil, failure, in.now())
		rec.Panicked = p != nil
		in.schedule(c, rec)
		if p != nil {
			panic(p)
		}
	}()

	result, err = call()
	completed = true

	var recorded error
	if err != nil {
		recorded = &TargetExecutionError{Function: rec.Name(), Err: err}
	}
	rec.Complete(result, recorded, in.now())
	in.schedule(c, rec)
	return result, err
}

// cacheKey hashes the arguments as they were passed, before the
// target had a chance to change them.
func (in *Instrumenter) cacheKey(rec *record.FunctionTestRecord) string {
	key, err := cache.Key(rec.Args())
	if err != nil {
		in.logger.Warn("cannot derive cache key",
			logging.StringField("function", rec.Name()),
			logging.ErrorField(err),
		)
	}
	return key
}

func (in *Instrumenter) schedule(c *contract.Compiled, rec *record.FunctionTestRecord) {
	in.emit(rec, monitor.EventCompleted, "")
	if !in.scheduler.Submit(func() { in.report(c, rec) }) {
		in.logger.Warn("instrumenter closed, record dropped",
			logging.StringField("function", rec.Name()),
			logging.StringField("record_id", rec.ID),
		)
	}
}

// report validates and delivers one record. Any failure is
// logged and swallowed.
func (in *Instrumenter) report(c *contract.Compiled, rec *record.FunctionTestRecord) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Error("validation failed",
				logging.StringField("function", rec.Name()),
				logging.StringField("record_id", rec.ID),
				logging.LogField("panic", r),
			)
		}
	}()

	in.emit(rec, monitor.EventValidating, "")
	in.engine.ValidateCall(c, rec)
	in.observe(rec)

	rec.State = record.StateReported
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	if err := in.sink.Deliver(ctx, rec); err != nil {
		in.metrics.RecordDelivery(in.sink.Name(), false)
		in.logger.Warn("record delivery failed",
			logging.StringField("function", rec.Name()),
			logging.StringField("record_id", rec.ID),
			logging.ErrorField(err),
		)
		in.emit(rec, monitor.EventDeliveryFailed, err.Error())
	} else {
		in.metrics.RecordDelivery(in.sink.Name(), true)
	}
	in.emit(rec, monitor.EventReported, rec.ResultMessage)
}

func (in *Instrumenter) observe(rec *record.FunctionTestRecord) {
	status := metrics.StatusPassed
	switch {
	case !rec.ExecutionPassed:
		status = metrics.StatusError
	case !rec.Passed:
		status = metrics.StatusFailed
	}
	in.metrics.RecordCall(rec.Name(), status, rec.StopWatchEnd.Sub(rec.StopWatchStart))
	for _, p := range rec.TestedParams {
		in.metrics.RecordParam(rec.Name(), p.Name, p.Passed)
	}
}

func (in *Instrumenter) emit(rec *record.FunctionTestRecord, typ monitor.EventType, msg string) {
	if in.collector == nil {
		return
	}
	var d time.Duration
	if !rec.StopWatchEnd.IsZero() {
		d = rec.StopWatchEnd.Sub(rec.StopWatchStart)
	}
	in.collector.Emit(monitor.Event{
		Type:     typ,
		RecordID: rec.ID,
		Function: rec.Name(),
		Passed:   rec.Succeeded(),
		Message:  msg,
		Duration: d,
	})
}

package sink

import (
	"context"

	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/record"
)

// ConsoleSink logs a summary line per record. In verbose mode
// every parameter and output verdict is logged too.
type ConsoleSink struct {
	logger  logging.Logger
	verbose bool
}

// NewConsoleSink creates a console sink writing to logger.
func NewConsoleSink(logger logging.Logger, verbose bool) *ConsoleSink {
	return &ConsoleSink{logger: logging.OrNull(logger), verbose: verbose}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Deliver(_ context.Context, rec *record.FunctionTestRecord) error {
	fields := []logging.Field{
		logging.StringField("record_id", rec.ID),
		logging.StringField("function", rec.Name()),
		logging.BoolField("passed", rec.Passed),
		logging.LogField("running_time_ms", rec.RunningTimeMillis),
	}
	if rec.CallerMethodName != "" {
		fields = append(fields, logging.StringField("caller", rec.CallerMethodName))
	}
	if rec.Succeeded() {
		s.logger.Info(rec.Summary(), fields...)
	} else {
		s.logger.Warn(rec.Summary(), fields...)
	}

	if !s.verbose {
		return nil
	}
	for _, p := range rec.TestedParams {
		s.logger.Info("param",
			logging.StringField("record_id", rec.ID),
			logging.StringField("name", p.Name),
			logging.BoolField("passed", p.Passed),
			logging.StringField("message", p.ResultMessage),
		)
	}
	for _, o := range rec.TestedOutput {
		s.logger.Info("output",
			logging.StringField("record_id", rec.ID),
			logging.StringField("name", o.Name),
			logging.BoolField("passed", o.Passed),
			logging.StringField("message", o.ResultMessage),
		)
	}
	return nil
}

func (s *ConsoleSink) Close() error { return nil }

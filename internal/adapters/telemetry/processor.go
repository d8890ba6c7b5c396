package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

// LogSpanProcessor reports finished spans and their durations through the logger.
type LogSpanProcessor struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*LogSpanProcessor)(nil)

// NewLogSpanProcessor returns a new LogSpanProcessor.
func NewLogSpanProcessor(logger ports.Logger) *LogSpanProcessor {
	return &LogSpanProcessor{logger: logger}
}

// OnStart does nothing.
func (p *LogSpanProcessor) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration and, for failed spans, the status description.
func (p *LogSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	d := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)
	if s.Status().Code == codes.Error {
		p.logger.Warn(fmt.Sprintf("%s failed after %s: %s", s.Name(), d, s.Status().Description))
		return
	}
	p.logger.Info(fmt.Sprintf("%s took %s", s.Name(), d))
}

// ForceFlush does nothing.
func (p *LogSpanProcessor) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (p *LogSpanProcessor) Shutdown(_ context.Context) error {
	return nil
}

// InstallProfiler registers a global tracer provider that logs span durations.
// Tracers created through the global provider before the call pick it up.
// The returned function shuts the provider down.
func InstallProfiler(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewLogSpanProcessor(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

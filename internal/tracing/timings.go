package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Phase names one measured step of a gesture.
type Phase string

const (
	PhaseClipboardRead  Phase = "clipboard.read"
	PhaseClipboardWrite Phase = "clipboard.write"
	PhaseDecode         Phase = "decode"
	PhaseSerialize      Phase = "serialize"
	PhaseValidate       Phase = "validate"
	PhasePlan           Phase = "plan"
	PhaseApply          Phase = "apply"
)

// Timings holds how long each phase of one gesture took.
type Timings struct {
	Gesture string
	Phases  map[Phase]time.Duration
	Total   time.Duration
	Err     error
}

// Of returns the duration recorded for p, or zero.
func (t Timings) Of(p Phase) time.Duration {
	return t.Phases[p]
}

func (t Timings) String() string {
	return fmt.Sprintf("%s total=%s read=%s decode=%s validate=%s plan=%s apply=%s",
		t.Gesture, t.Total, t.Of(PhaseClipboardRead), t.Of(PhaseDecode),
		t.Of(PhaseValidate), t.Of(PhasePlan), t.Of(PhaseApply))
}

// Observer receives timings after every gesture.
type Observer interface {
	ObserveTimings(Timings)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Timings)

// ObserveTimings calls f.
func (f ObserverFunc) ObserveTimings(t Timings) { f(t) }

// Recorder measures the phases of one gesture under a root span.
type Recorder struct {
	ctx     context.Context
	span    trace.Span
	now     func() time.Time
	start   time.Time
	timings Timings
}

// Start opens the root span for gesture. A nil tracer records timings only.
func Start(ctx context.Context, tracer trace.Tracer, gesture string, attrs ...attribute.KeyValue) *Recorder {
	r := &Recorder{
		now:     time.Now,
		timings: Timings{Gesture: gesture, Phases: make(map[Phase]time.Duration)},
	}
	if tracer != nil {
		r.ctx, r.span = tracer.Start(ctx, gesture, trace.WithAttributes(attrs...))
	} else {
		r.ctx, r.span = ctx, trace.SpanFromContext(ctx)
	}
	r.start = r.now()
	return r
}

// Context carries the root span.
func (r *Recorder) Context() context.Context { return r.ctx }

// SetAttributes annotates the root span.
func (r *Recorder) SetAttributes(attrs ...attribute.KeyValue) {
	r.span.SetAttributes(attrs...)
}

// AddEvent records a point-in-time event on the root span.
func (r *Recorder) AddEvent(name string, attrs ...attribute.KeyValue) {
	r.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Phase starts measuring p and returns the function that stops it. Calling
// the same phase twice accumulates.
func (r *Recorder) Phase(p Phase) func(error) {
	tracer := r.span.TracerProvider().Tracer(defaultServiceName)
	_, span := tracer.Start(r.ctx, string(p))
	began := r.now()
	return func(err error) {
		r.timings.Phases[p] += r.now().Sub(began)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// End closes the root span and returns the collected timings. err marks the
// span failed.
func (r *Recorder) End(err error) Timings {
	r.timings.Total = r.now().Sub(r.start)
	r.timings.Err = err
	if err != nil {
		r.span.RecordError(err)
		r.span.SetAttributes(attribute.String(AttrErrorType, fmt.Sprintf("%T", err)))
		r.span.SetStatus(codes.Error, err.Error())
	} else {
		r.span.SetStatus(codes.Ok, "")
	}
	r.span.End()
	return r.timings
}

package trace

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("blockedit.trace")

var (
	callsTotal metric.Int64Counter
	stuckTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		callsTotal, err = meter.Int64Counter(
			"blockedit.tool.calls",
			metric.WithDescription("Tool calls executed by tool and status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		stuckTotal, err = meter.Int64Counter(
			"blockedit.stuck.detections",
			metric.WithDescription("Stuck verdicts raised after a tool call"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// Recorder appends calls to a Buffer and runs Detect after each one.
type Recorder struct {
	buf *Buffer
}

// NewRecorder creates a recorder over a fresh buffer of the given capacity.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{buf: NewBuffer(capacity)}
}

// Buffer exposes the underlying ring buffer.
func (r *Recorder) Buffer() *Buffer {
	return r.buf
}

// Record stores the call and returns the detector verdict for the updated trace.
func (r *Recorder) Record(ctx context.Context, name, args string, status Status) Verdict {
	r.buf.Add(Entry{Name: name, Args: args, Status: status, Timestamp: time.Now()})
	v := Detect(r.buf.Recent(0))

	if err := initMetrics(); err == nil {
		callsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", name),
			attribute.String("status", string(status)),
		))
		if v.Stuck {
			stuckTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", name)))
		}
	}
	return v
}

// Reset clears the trace, e.g. when a new agent turn starts.
func (r *Recorder) Reset() {
	r.buf.Clear()
}

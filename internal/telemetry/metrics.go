// Package telemetry defines the console's OpenTelemetry instruments and the
// in-process Recorder that collects them for the activity line.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/five82/ams"

var (
	attrSubscription = attribute.Key("ams.subscription")
	attrReason       = attribute.Key("ams.skip_reason")
	attrResult       = attribute.Key("ams.result")
	attrResource     = attribute.Key("ams.resource")
	attrOperation    = attribute.Key("ams.operation")
)

// Skip reasons recorded for suppressed poll ticks, in gate order.
const (
	SkipDisabled   = "disabled"
	SkipPaused     = "paused"
	SkipNavigating = "navigating"
	SkipHidden     = "hidden"
	SkipBusy       = "busy"
)

// Metrics groups the poll and mutation instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	pollsIssued  metric.Int64Counter
	pollsSkipped metric.Int64Counter
	pollLatency  metric.Float64Histogram
	mutations    metric.Int64Counter
}

// New creates the instruments on meter.
func New(meter metric.Meter) *Metrics {
	m := &Metrics{}
	m.pollsIssued, _ = meter.Int64Counter("ams_poll_requests",
		metric.WithDescription("Poll requests issued by subscriptions"),
		metric.WithUnit("{request}"))
	m.pollsSkipped, _ = meter.Int64Counter("ams_poll_skipped",
		metric.WithDescription("Poll ticks suppressed by a gate"),
		metric.WithUnit("{tick}"))
	m.pollLatency, _ = meter.Float64Histogram("ams_poll_latency",
		metric.WithDescription("Time from poll request to settled response"),
		metric.WithUnit("ms"))
	m.mutations, _ = meter.Int64Counter("ams_mutations",
		metric.WithDescription("Create, update and delete requests by outcome"),
		metric.WithUnit("{request}"))
	return m
}

// PollIssued counts a request sent by subscription name.
func (m *Metrics) PollIssued(ctx context.Context, name string) {
	if m == nil || m.pollsIssued == nil {
		return
	}
	m.pollsIssued.Add(ctx, 1, metric.WithAttributes(attrSubscription.String(name)))
}

// PollSkipped counts a tick that was suppressed for reason.
func (m *Metrics) PollSkipped(ctx context.Context, name, reason string) {
	if m == nil || m.pollsSkipped == nil {
		return
	}
	m.pollsSkipped.Add(ctx, 1, metric.WithAttributes(
		attrSubscription.String(name),
		attrReason.String(reason),
	))
}

// PollSettled records the latency of a finished request.
func (m *Metrics) PollSettled(ctx context.Context, name string, elapsed time.Duration, err error) {
	if m == nil || m.pollLatency == nil {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}
	m.pollLatency.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(
		attrSubscription.String(name),
		attrResult.String(result(err)),
	))
}

// Mutation counts a create/update/delete against resource.
func (m *Metrics) Mutation(ctx context.Context, resource, op string, err error) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attrResource.String(resource),
		attrOperation.String(op),
		attrResult.String(result(err)),
	))
}

const (
	resultOK    = "ok"
	resultError = "error"
)

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

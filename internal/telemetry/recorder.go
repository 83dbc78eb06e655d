package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const serviceName = "ams-console"

// Recorder owns an SDK meter provider whose only reader is collected on
// demand. Nothing is exported; the counts feed the console's activity line
// and the shutdown log record.
type Recorder struct {
	*Metrics

	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewRecorder creates the provider and the instruments on it.
func NewRecorder() *Recorder {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdkmetric.WithReader(reader),
	)
	return &Recorder{
		Metrics:  New(provider.Meter(meterName)),
		reader:   reader,
		provider: provider,
	}
}

// Counts are cumulative totals since the recorder was created.
type Counts struct {
	PollsIssued     int64
	PollsSkipped    int64
	PollsFailed     int64
	MutationsFailed int64
}

func (c Counts) String() string {
	return fmt.Sprintf("polls %d  skipped %d  failed %d  mutation errors %d",
		c.PollsIssued, c.PollsSkipped, c.PollsFailed, c.MutationsFailed)
}

// Counts collects the reader and totals the instruments.
func (r *Recorder) Counts(ctx context.Context) (Counts, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return Counts{}, fmt.Errorf("collect metrics: %w", err)
	}
	var c Counts
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					switch m.Name {
					case "ams_poll_requests":
						c.PollsIssued += dp.Value
					case "ams_poll_skipped":
						c.PollsSkipped += dp.Value
					case "ams_mutations":
						if failed(dp.Attributes) {
							c.MutationsFailed += dp.Value
						}
					}
				}
			case metricdata.Histogram[float64]:
				if m.Name != "ams_poll_latency" {
					continue
				}
				for _, dp := range data.DataPoints {
					if failed(dp.Attributes) {
						c.PollsFailed += int64(dp.Count)
					}
				}
			}
		}
	}
	return c, nil
}

// Shutdown releases the provider. Counts fails afterwards.
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

func failed(set attribute.Set) bool {
	v, ok := set.Value(attrResult)
	return ok && v.AsString() == resultError
}

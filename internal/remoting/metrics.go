package remoting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, created lazily from the global meter provider.
var (
	metricsOnce   sync.Once
	callsCounter  metric.Int64Counter
	faultsCounter metric.Int64Counter
	callHistogram metric.Float64Histogram
)

// InitMetrics registers the remoting metric instruments. It is safe to call
// more than once; only the first call creates instruments. Call it after
// observability.InitMetrics so the instruments bind to the real provider.
func InitMetrics() error {
	var err error
	metricsOnce.Do(func() {
		err = createInstruments()
	})
	return err
}

func createInstruments() error {
	meter := otel.Meter("remoting")

	var err error

	callsCounter, err = meter.Int64Counter("remoting.calls.total",
		metric.WithDescription("Total number of remote procedure calls issued"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return fmt.Errorf("creating calls counter: %w", err)
	}

	faultsCounter, err = meter.Int64Counter("remoting.faults.total",
		metric.WithDescription("Total number of remote calls that resolved to a fault"),
		metric.WithUnit("{fault}"),
	)
	if err != nil {
		return fmt.Errorf("creating faults counter: %w", err)
	}

	callHistogram, err = meter.Float64Histogram("remoting.call.duration",
		metric.WithDescription("Round trip time of remote calls in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return fmt.Errorf("creating call histogram: %w", err)
	}

	return nil
}

func recordCall(ctx context.Context, procedure string, elapsed time.Duration, res Result) {
	if err := InitMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("procedure", procedure))
	callsCounter.Add(ctx, 1, attrs)
	callHistogram.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
	if res.Fault != nil {
		faultsCounter.Add(ctx, 1, attrs)
	}
}

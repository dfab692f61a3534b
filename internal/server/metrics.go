package server

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels of loginform_submits_total.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeAbandoned = "abandoned"
)

var submitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loginform_submits_total",
	Help: "Login form submits by outcome.",
}, []string{"outcome"})

var (
	metricsOnce  sync.Once
	metricsErr   error
	errorCounter metric.Int64Counter
)

// InitMetrics registers the OTel instruments of the HTTP surface.
// Call it after observability.InitMetrics.
func InitMetrics() error {
	metricsOnce.Do(func() {
		errorCounter, metricsErr = otel.Meter("server").Int64Counter("loginform.errors.total",
			metric.WithDescription("Total number of rejected form requests"),
			metric.WithUnit("{error}"),
		)
		if metricsErr != nil {
			metricsErr = fmt.Errorf("creating error counter: %w", metricsErr)
		}
	})
	return metricsErr
}

package stripe

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records Prometheus metrics for every logical call.
type Metrics struct {
	requests *prometheus.CounterVec
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		// requests counts logical calls by outcome
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stripe_client_requests_total",
				Help: "Total API calls by method, resource and status",
			},
			[]string{"method", "resource", "status"},
		),
		// attempts counts HTTP attempts, retries included
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stripe_client_attempts_total",
				Help: "Total HTTP attempts by method and resource",
			},
			[]string{"method", "resource"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stripe_client_request_duration_seconds",
				Help:    "Duration of API calls including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "resource"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stripe_client_requests_in_flight",
				Help: "Number of API calls currently in flight",
			},
		),
	}

	if reg == nil {
		return metrics, nil
	}

	for _, collector := range metrics.Collectors() {
		err := reg.Register(collector)
		if err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}

			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return metrics, nil
}

// Collectors returns every collector owned by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.attempts, m.latency, m.inFlight}
}

// Attach installs the metrics interceptors on chain.
func (m *Metrics) Attach(chain *InterceptorChain) {
	chain.AddRequestInterceptor(m.RequestInterceptor())
	chain.AddResponseInterceptor(m.ResponseInterceptor())
}

const inFlightKey = "metrics.in_flight"

// RequestInterceptor tracks in-flight calls.
func (m *Metrics) RequestInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[inFlightKey] = true
		m.inFlight.Inc()

		return nil
	}
}

// ResponseInterceptor records the outcome of a call.
func (m *Metrics) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		// An earlier interceptor may have rejected the call before Inc ran.
		if counted, _ := req.Metadata[inFlightKey].(bool); counted {
			m.inFlight.Dec()
		}

		resource := ResourceName(req.Path)
		m.requests.WithLabelValues(req.Method, resource, statusLabel(resp)).Inc()
		m.attempts.WithLabelValues(req.Method, resource).Add(float64(resp.Attempts))
		m.latency.WithLabelValues(req.Method, resource).Observe(resp.Duration.Seconds())

		return nil
	}
}

func statusLabel(resp *Response) string {
	if resp.StatusCode > 0 {
		return strconv.Itoa(resp.StatusCode)
	}

	var timeoutErr *TimeoutError
	if errors.As(resp.Error, &timeoutErr) {
		return "timeout"
	}

	if resp.Error != nil {
		return "error"
	}

	return "none"
}

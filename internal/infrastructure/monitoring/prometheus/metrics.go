package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/phimark/pkg/errors"
)

// Operation status label values.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// MarkupMetrics holds the metric vectors recorded by the markup service and
// the HTTP layer.
type MarkupMetrics struct {
	OperationsTotal   CounterVec   // op, status
	OperationDuration HistogramVec // op
	TagsFound         CounterVec   // op
	TokensMerged      CounterVec   // (none)
	InputBytes        HistogramVec // op

	HTTPRequestsTotal   CounterVec   // method, path, status_code
	HTTPRequestDuration HistogramVec // method, path
	HTTPInFlight        GaugeVec     // (none)
}

// DefaultSizeBuckets covers inputs from a short sentence to a long clinical
// letter.
var DefaultSizeBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144}

// NewMarkupMetrics registers every markup metric on collector.
func NewMarkupMetrics(collector MetricsCollector) *MarkupMetrics {
	return &MarkupMetrics{
		OperationsTotal:   collector.RegisterCounter("operations_total", "Markup operations by operation and status.", "op", "status"),
		OperationDuration: collector.RegisterHistogram("operation_duration_seconds", "Markup operation latency.", DefaultDurationBuckets, "op"),
		TagsFound:         collector.RegisterCounter("tags_found_total", "Top-level tags found in input text.", "op"),
		TokensMerged:      collector.RegisterCounter("tokens_merged_total", "Input tokens absorbed into merged phrases."),
		InputBytes:        collector.RegisterHistogram("input_bytes", "Size of operation input text.", DefaultSizeBuckets, "op"),

		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "HTTP requests by route and status.", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request latency.", nil, "method", "path"),
		HTTPInFlight:        collector.RegisterGauge("http_requests_in_flight", "HTTP requests being served."),
	}
}

// NewNoopMarkupMetrics returns metrics that record nothing.
func NewNoopMarkupMetrics() *MarkupMetrics {
	return &MarkupMetrics{
		OperationsTotal:     noopCounterVec{},
		OperationDuration:   noopHistogramVec{},
		TagsFound:           noopCounterVec{},
		TokensMerged:        noopCounterVec{},
		InputBytes:          noopHistogramVec{},
		HTTPRequestsTotal:   noopCounterVec{},
		HTTPRequestDuration: noopHistogramVec{},
		HTTPInFlight:        noopGaugeVec{},
	}
}

// StartOperation returns a Timer observing into op's duration histogram.
func (m *MarkupMetrics) StartOperation(op string) *Timer {
	return NewTimer(m.OperationDuration.WithLabelValues(op))
}

// RecordOperation counts one markup operation outcome.  Errors carrying a
// MARKUP_* code count as invalid input rather than failures.
func (m *MarkupMetrics) RecordOperation(op string, err error) {
	status := StatusOK
	switch {
	case errors.IsMarkupError(err):
		status = StatusInvalid
	case err != nil:
		status = StatusError
	}
	m.OperationsTotal.WithLabelValues(op, status).Inc()
}

// RecordInput records the size of an operation's input text.
func (m *MarkupMetrics) RecordInput(op string, text string) {
	m.InputBytes.WithLabelValues(op).Observe(float64(len(text)))
}

// RecordTags adds n found tags.
func (m *MarkupMetrics) RecordTags(op string, n int) {
	if n > 0 {
		m.TagsFound.WithLabelValues(op).Add(float64(n))
	}
}

// RecordMerge records how many tokens a merge absorbed.
func (m *MarkupMetrics) RecordMerge(in, out int) {
	if in > out {
		m.TokensMerged.WithLabelValues().Add(float64(in - out))
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *MarkupMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

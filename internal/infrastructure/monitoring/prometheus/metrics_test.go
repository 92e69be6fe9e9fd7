package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/turtacn/phimark/pkg/errors"
)

func TestNewMarkupMetrics_Registered(t *testing.T) {
	c := newTestCollector(t)
	m := NewMarkupMetrics(c)

	m.RecordOperation("flatten", nil)
	m.RecordOperation("flatten", errors.New("boom"))
	m.RecordOperation("flatten", apperrors.New(apperrors.ErrCodeMalformedMarkup, "unbalanced hooks"))
	m.RecordOperation("annotate", nil)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_operations_total{op="flatten",status="ok"} 1`)
	assert.Contains(t, out, `test_unit_operations_total{op="flatten",status="error"} 1`)
	assert.Contains(t, out, `test_unit_operations_total{op="flatten",status="invalid"} 1`)
	assert.Contains(t, out, `test_unit_operations_total{op="annotate",status="ok"} 1`)
}

func TestMarkupMetrics_StartOperation(t *testing.T) {
	c := newTestCollector(t)
	m := NewMarkupMetrics(c)

	m.StartOperation("flatten").ObserveDuration()
	m.StartOperation("flatten").ObserveDuration()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_operation_duration_seconds_count{op="flatten"} 2`)
}

func TestMarkupMetrics_Tags(t *testing.T) {
	c := newTestCollector(t)
	m := NewMarkupMetrics(c)

	m.RecordTags("find", 3)
	m.RecordTags("find", 0)
	m.RecordInput("find", "<A x> en <B y>")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_tags_found_total{op="find"} 3`)
	assert.Contains(t, out, `test_unit_input_bytes_sum{op="find"} 14`)
}

func TestMarkupMetrics_Merge(t *testing.T) {
	c := newTestCollector(t)
	m := NewMarkupMetrics(c)

	m.RecordMerge(6, 5)
	m.RecordMerge(3, 1)
	m.RecordMerge(2, 2)

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_tokens_merged_total 3")
}

func TestMarkupMetrics_HTTP(t *testing.T) {
	c := newTestCollector(t)
	m := NewMarkupMetrics(c)

	m.RecordHTTPRequest("POST", "/api/v1/tags/find", 200, 3*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/tags/find", 422, time.Millisecond)
	m.HTTPInFlight.WithLabelValues().Inc()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/tags/find",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/tags/find",status_code="422"} 1`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="POST",path="/api/v1/tags/find"} 2`)
	assert.Contains(t, out, "test_unit_http_requests_in_flight 1")
}

func TestNoopMarkupMetrics(t *testing.T) {
	m := NewNoopMarkupMetrics()
	assert.NotPanics(t, func() {
		m.StartOperation("flatten").ObserveDuration()
		m.RecordOperation("flatten", nil)
		m.RecordTags("find", 2)
		m.RecordInput("find", "x")
		m.RecordMerge(2, 1)
		m.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)
		m.HTTPInFlight.WithLabelValues().Dec()
	})
}

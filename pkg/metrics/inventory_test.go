package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestInventoryMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)
	m.IncConflict("debit")
	m.IncConflict("debit")
	m.IncShortfall()
	m.IncPartialWrite()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "inventory_version_conflicts_total", "operation", "debit"); err != nil {
		t.Fatalf("fetch conflicts: %v", err)
	} else if got != 2 {
		t.Fatalf("expected conflicts=2, got %f", got)
	}

	if got := fetchPlainCounter(mfs, "inventory_debit_shortfalls_total"); got != 1 {
		t.Fatalf("expected shortfalls=1, got %f", got)
	}
	if got := fetchPlainCounter(mfs, "inventory_partial_writes_total"); got != 1 {
		t.Fatalf("expected partial writes=1, got %f", got)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/materials", "200", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if mf := findMetricFamily(mfs, "http_requests_total"); mf == nil {
		t.Fatalf("request counter not registered")
	}
	if mf := findMetricFamily(mfs, "http_request_duration_seconds"); mf == nil {
		t.Fatalf("duration histogram not registered")
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewInventoryMetrics(nil)
	m.IncConflict("debit")
	m.IncShortfall()
	m.IncPartialWrite()

	h := NewHTTPMetrics(nil)
	h.Observe("GET", "/", "200", time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchPlainCounter(mfs []*dto.MetricFamily, name string) float64 {
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) == 0 {
		return -1
	}
	return mf.GetMetric()[0].GetCounter().GetValue()
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

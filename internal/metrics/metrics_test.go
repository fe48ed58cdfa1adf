package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordItem(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordItem("created")
	m.RecordItem("created")
	m.RecordItem("error")

	if got := testutil.ToFloat64(m.ItemsProcessed.WithLabelValues("created")); got != 2 {
		t.Errorf("Expected 2 created items, got %v", got)
	}
	if got := testutil.ToFloat64(m.ItemErrors); got != 1 {
		t.Errorf("Expected 1 item error, got %v", got)
	}
}

func TestRecordDispatch(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordDispatch(false, nil)
	m.RecordDispatch(true, errors.New("boom"))

	if got := testutil.ToFloat64(m.Dispatches.WithLabelValues("initial", "ok")); got != 1 {
		t.Errorf("Expected 1 initial ok dispatch, got %v", got)
	}
	if got := testutil.ToFloat64(m.Dispatches.WithLabelValues("retry", "error")); got != 1 {
		t.Errorf("Expected 1 retry error dispatch, got %v", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("Expected 2 misses, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordItem("created")
	m.RecordTransition("READY", "QUEUED")
	m.SetRecords(3)
	m.RecordDispatch(false, nil)
	m.RecordRateLimited()
	m.RecordVerdict("VERIFIED")
	m.RecordRetrieval("perplexity", nil, "", 0.1)
	m.RecordCacheLookup(true)
	m.RecordEventPublish("t", nil)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	NewMetrics(reg)
}

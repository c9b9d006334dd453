package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	m := New()

	if m.TotalRequests() != 0 {
		t.Errorf("expected 0 total requests, got %d", m.TotalRequests())
	}
	if len(m.StatusCounts()) != 0 {
		t.Errorf("expected no status counts, got %v", m.StatusCounts())
	}
}

func TestMetricsRecordResponse(t *testing.T) {
	m := New()

	m.RecordResponse(200, 10*time.Millisecond)
	m.RecordResponse(404, 10*time.Millisecond)
	m.RecordResponse(400, 10*time.Millisecond)
	m.RecordResponse(500, 10*time.Millisecond)
	m.RecordResponse(0, 10*time.Millisecond)

	if m.TotalRequests() != 5 {
		t.Errorf("expected 5 total requests, got %d", m.TotalRequests())
	}
	if m.SuccessRequests() != 3 {
		t.Errorf("expected 3 success requests (2xx/4xx), got %d", m.SuccessRequests())
	}
	if m.FailedRequests() != 2 {
		t.Errorf("expected 2 failed requests (5xx/no response), got %d", m.FailedRequests())
	}

	counts := m.StatusCounts()
	for _, code := range []int{0, 200, 400, 404, 500} {
		if counts[code] != 1 {
			t.Errorf("expected 1 response with status %d, got %d", code, counts[code])
		}
	}
}

func TestMetricsStatusCountsIsCopy(t *testing.T) {
	m := New()
	m.RecordResponse(200, time.Millisecond)

	counts := m.StatusCounts()
	counts[200] = 99

	if m.StatusCounts()[200] != 1 {
		t.Error("status count mutation leaked into metrics")
	}
}

func TestMetricsAverageLatency(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(20 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)

	avg := m.AverageLatency()
	expected := 20 * time.Millisecond

	if avg != expected {
		t.Errorf("expected average latency %v, got %v", expected, avg)
	}
}

func TestMetricsErrorRate(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordFailure(10 * time.Millisecond)

	rate := m.ErrorRate()
	if rate != 0.5 {
		t.Errorf("expected error rate 0.5, got %f", rate)
	}
}

func TestMetricsPercentiles(t *testing.T) {
	m := New()

	for i := 1; i <= 100; i++ {
		m.RecordSuccess(time.Duration(i) * time.Millisecond)
	}

	p99 := m.P99Latency()
	// P99 should be around 99ms or 100ms
	if p99 < 99*time.Millisecond || p99 > 100*time.Millisecond {
		t.Errorf("expected P99 around 99-100ms, got %v", p99)
	}

	p50 := m.P50Latency()
	if p50 < 50*time.Millisecond || p50 > 51*time.Millisecond {
		t.Errorf("expected P50 around 50-51ms, got %v", p50)
	}
}

func TestMetricsLatencySampleLimit(t *testing.T) {
	m := NewWithConfig(Config{MaxLatencySamples: 2})

	m.RecordSuccess(time.Millisecond)
	m.RecordSuccess(2 * time.Millisecond)
	m.RecordSuccess(time.Hour)

	if p99 := m.P99Latency(); p99 != 2*time.Millisecond {
		t.Errorf("expected samples capped at 2, P99 %v", p99)
	}
}

func TestMetricsReset(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(20 * time.Millisecond)

	m.Reset()

	// Window metrics should be reset
	if m.RPS() != 0 {
		t.Errorf("expected RPS 0 after reset, got %f", m.RPS())
	}

	// But total should remain
	if m.TotalRequests() != 2 {
		t.Errorf("expected total 2 after reset, got %d", m.TotalRequests())
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				m.RecordResponse(200, time.Millisecond)
			}
		}()
	}

	wg.Wait()

	if m.TotalRequests() != 10000 {
		t.Errorf("expected 10000 requests, got %d", m.TotalRequests())
	}
	if m.StatusCounts()[200] != 10000 {
		t.Errorf("expected 10000 status 200, got %d", m.StatusCounts()[200])
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := New()

	m.RecordResponse(202, 10*time.Millisecond)
	m.RecordResponse(500, 20*time.Millisecond)

	snap := m.Snapshot()

	if snap.TotalRequests != 2 {
		t.Errorf("expected 2 total, got %d", snap.TotalRequests)
	}
	if snap.SuccessRequests != 1 {
		t.Errorf("expected 1 success, got %d", snap.SuccessRequests)
	}
	if snap.FailedRequests != 1 {
		t.Errorf("expected 1 failed, got %d", snap.FailedRequests)
	}
	if snap.StatusCounts[202] != 1 {
		t.Errorf("expected one 202 in snapshot, got %d", snap.StatusCounts[202])
	}
}

package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}
}

func TestObserveLayer_CountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(layerResults.WithLabelValues("water", OutcomeHit))
	ObserveLayer("water", OutcomeHit)
	ObserveLayer("water", OutcomeHit)
	ObserveLayer("water", OutcomeFailed)

	if got := testutil.ToFloat64(layerResults.WithLabelValues("water", OutcomeHit)) - before; got != 2 {
		t.Fatalf("hit delta=%v want 2", got)
	}
}

func TestObserveCacheOp_ResultLabel(t *testing.T) {
	okBefore := testutil.ToFloat64(cacheOps.WithLabelValues("put", "ok"))
	errBefore := testutil.ToFloat64(cacheOps.WithLabelValues("put", "error"))

	ObserveCacheOp("put", nil, 0.001)
	ObserveCacheOp("put", errors.New("disk full"), 0.001)

	if d := testutil.ToFloat64(cacheOps.WithLabelValues("put", "ok")) - okBefore; d != 1 {
		t.Fatalf("ok delta=%v", d)
	}
	if d := testutil.ToFloat64(cacheOps.WithLabelValues("put", "error")) - errBefore; d != 1 {
		t.Fatalf("error delta=%v", d)
	}
}

func TestUpstreamLatency_Gathered(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ObserveUpstreamLatency("overpass", 1.5)

	n, err := testutil.GatherAndCount(reg, "poster_upstream_latency_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected upstream latency series")
	}
}

package scheduler

import (
	"testing"
	"time"

	"go.uber.org/atomic"
)

type countingRefresher struct {
	calls *atomic.Int32
}

func (r countingRefresher) Refresh() {
	r.calls.Inc()
}

func TestSchedulerDisabledWithoutInterval(t *testing.T) {
	r := countingRefresher{calls: atomic.NewInt32(0)}
	s := New(0, r)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if n := r.calls.Load(); n != 0 {
		t.Fatalf("expected no refreshes, got %d", n)
	}
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	r := countingRefresher{calls: atomic.NewInt32(0)}
	s := New(100*time.Millisecond, r)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r.calls.Load() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least two periodic refreshes, got %d", r.calls.Load())
}

package cronrunner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAdd_RejectsBadSchedule(t *testing.T) {
	r := New(zap.NewNop(), context.Background())
	if _, err := r.Add("not a schedule", func(context.Context) {}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := r.Add("@every 30m", func(context.Context) {}); err != nil {
		t.Fatalf("err=%v", err)
	}
}

func TestSkipIfStillRunning(t *testing.T) {
	r := New(nil, context.Background())
	var running, runs int32
	release := make(chan struct{})
	if _, err := r.Add("@every 1s", func(context.Context) {
		if atomic.AddInt32(&running, 1) > 1 {
			t.Errorf("overlapping run")
		}
		atomic.AddInt32(&runs, 1)
		<-release
		atomic.AddInt32(&running, -1)
	}); err != nil {
		t.Fatalf("err=%v", err)
	}
	r.Start()
	time.Sleep(3500 * time.Millisecond)
	got := atomic.LoadInt32(&runs)
	close(release)
	r.Stop()
	if got != 1 {
		t.Fatalf("runs=%d want 1", got)
	}
}

func TestCancelledBaseContextSkipsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(nil, ctx)
	var runs int32
	if _, err := r.Add("@every 1s", func(context.Context) { atomic.AddInt32(&runs, 1) }); err != nil {
		t.Fatalf("err=%v", err)
	}
	r.Start()
	time.Sleep(1500 * time.Millisecond)
	r.Stop()
	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Fatalf("runs=%d want 0", got)
	}
}

package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evanofslack/porkbun-ddns/internal/metrics"
	"github.com/evanofslack/porkbun-ddns/internal/reconcile"
)

type fakeResolver struct {
	ip    string
	err   error
	calls chan struct{}
}

func (f *fakeResolver) Resolve(ctx context.Context) (string, error) {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return f.ip, f.err
}

type fakeEngine struct {
	mu    sync.Mutex
	seen  []string
	calls chan struct{}
}

func (f *fakeEngine) Reconcile(ctx context.Context, observedIP string) reconcile.Results {
	f.mu.Lock()
	f.seen = append(f.seen, observedIP)
	f.mu.Unlock()
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return reconcile.Results{}
}

func TestRunSyncLoopFirstCycleIsImmediate(t *testing.T) {
	res := &fakeResolver{ip: "1.2.3.4", calls: make(chan struct{}, 8)}
	eng := &fakeEngine{calls: make(chan struct{}, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	// Interval far beyond the test runtime: only the immediate first cycle
	// can fire.
	go runSyncLoop(ctx, wg, res, eng, metrics.New(false), time.Hour)

	select {
	case <-eng.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle did not run immediately")
	}

	cancel()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	if len(eng.seen) == 0 || eng.seen[0] != "1.2.3.4" {
		t.Errorf("engine saw %v, want first cycle with 1.2.3.4", eng.seen)
	}
}

func TestRunSyncLoopSurvivesResolveFailure(t *testing.T) {
	res := &fakeResolver{err: errors.New("echo service down"), calls: make(chan struct{}, 8)}
	eng := &fakeEngine{calls: make(chan struct{}, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go runSyncLoop(ctx, wg, res, eng, metrics.New(false), 10*time.Millisecond)

	// A failed cycle must not kill the loop: wait for several resolve
	// attempts across ticks.
	for i := 0; i < 3; i++ {
		select {
		case <-res.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("resolve attempt %d never happened", i+1)
		}
	}

	cancel()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	if len(eng.seen) != 0 {
		t.Errorf("engine must not run when IP resolution fails, saw %v", eng.seen)
	}
}

package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDoDeliversLatest(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	p := New("test", time.Hour,
		func(ctx context.Context) (interface{}, error) { return "v1", nil },
		func(v interface{}) {
			mu.Lock()
			delivered = append(delivered, v.(string))
			mu.Unlock()
		})

	p.Do(context.Background())
	p.Do(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 2 {
		t.Fatalf("delivered %d results, want 2", len(delivered))
	}
}

func TestSlowFetchResultDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0

	var mu sync.Mutex
	var delivered []string

	p := New("test", time.Hour,
		func(ctx context.Context) (interface{}, error) {
			calls++
			if calls == 1 {
				close(started)
				<-release // first fetch stalls until the second one finished
				return "stale", nil
			}
			return "fresh", nil
		},
		func(v interface{}) {
			mu.Lock()
			delivered = append(delivered, v.(string))
			mu.Unlock()
		})

	done := make(chan struct{})
	go func() {
		p.Do(context.Background())
		close(done)
	}()

	<-started
	p.Do(context.Background()) // newer fetch completes first
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "fresh" {
		t.Fatalf("delivered = %v, want [fresh]", delivered)
	}
}

func TestFetchErrorDeliversNothing(t *testing.T) {
	deliveries := 0
	p := New("test", time.Hour,
		func(ctx context.Context) (interface{}, error) { return nil, errors.New("boom") },
		func(interface{}) { deliveries++ })

	p.Do(context.Background())
	if deliveries != 0 {
		t.Fatalf("failed fetch delivered %d results", deliveries)
	}
}

func TestKickCoalesces(t *testing.T) {
	p := New("test", time.Hour, func(ctx context.Context) (interface{}, error) { return nil, nil }, func(interface{}) {})

	// Kicks while nothing drains must never block.
	for i := 0; i < 10; i++ {
		p.Kick()
	}
	if len(p.kicks) != 1 {
		t.Fatalf("kick backlog = %d, want 1", len(p.kicks))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p := New("test", 5*time.Millisecond, func(ctx context.Context) (interface{}, error) { return nil, nil }, func(interface{}) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

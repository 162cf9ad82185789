package focus

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerTrigger(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var mu sync.Mutex
	var calls []int

	for i := 0; i < 5; i++ {
		i := i
		d.Trigger(func() {
			mu.Lock()
			calls = append(calls, i)
			mu.Unlock()
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("Function should be called once, got %d", len(calls))
	}
	if calls[0] != 4 {
		t.Errorf("Expected the last triggered function to run, got %d", calls[0])
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var mu sync.Mutex
	called := false
	d.Trigger(func() {
		mu.Lock()
		called = true
		mu.Unlock()
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("Function should not be called after cancel")
	}
	if d.Pending() {
		t.Error("Nothing should be pending after cancel")
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)

	called := 0
	d.Trigger(func() { called++ })
	if !d.Pending() {
		t.Fatal("Expected a pending function")
	}

	d.Flush()
	if called != 1 {
		t.Errorf("Flush should run the pending function once, got %d", called)
	}

	d.Flush()
	if called != 1 {
		t.Errorf("Second Flush should be a no-op, got %d", called)
	}
}

// timer/timer_test.go
package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleRunsCallback(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	done := make(chan struct{})
	m.Schedule(50*time.Millisecond, 0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
}

func TestScheduleRepeats(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var count int32
	m.Schedule(50*time.Millisecond, 50*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	deadline := time.After(3 * time.Second)
	for atomic.LoadInt32(&count) < 2 {
		select {
		case <-deadline:
			t.Fatalf("callback ran %d times, want at least 2", atomic.LoadInt32(&count))
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestCancelPreventsExecution(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	id := m.Schedule(200*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Cancel(id)

	time.Sleep(500 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("cancelled task still ran")
	}
}

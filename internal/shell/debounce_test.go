package shell

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceRunsOnlyLast(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var last atomic.Int32
	var runs atomic.Int32
	for i := 1; i <= 5; i++ {
		d.Trigger(func() {
			runs.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("last = %d, want 5", got)
	}
	if d.Pending() {
		t.Error("still pending after firing")
	}
}

func TestDebounceCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })
	if !d.Pending() {
		t.Fatal("not pending after Trigger")
	}
	d.Cancel()

	time.Sleep(80 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("runs = %d, want 0", got)
	}
}

func TestDebounceDefaultDelay(t *testing.T) {
	if d := NewDebouncer(0); d.delay != DefaultDebounce {
		t.Errorf("delay = %v, want %v", d.delay, DefaultDebounce)
	}
}

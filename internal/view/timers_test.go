package view

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerSetAndFire(t *testing.T) {
	tr := newTimerRegistry()
	defer tr.StopAll()

	var fired atomic.Int32
	tr.Set("k", 10*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("expected 1 fire, got %d", fired.Load())
	}
}

func TestTimerReplaceCancelsPrevious(t *testing.T) {
	tr := newTimerRegistry()
	defer tr.StopAll()

	var old, replacement atomic.Int32
	tr.Set("k", 30*time.Millisecond, func() { old.Add(1) })
	tr.Set("k", 60*time.Millisecond, func() { replacement.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if old.Load() != 0 {
		t.Error("replaced timer still fired")
	}
	if replacement.Load() != 1 {
		t.Errorf("expected replacement to fire once, got %d", replacement.Load())
	}
}

func TestTimerStop(t *testing.T) {
	tr := newTimerRegistry()

	var fired atomic.Int32
	tr.Set("k", 20*time.Millisecond, func() { fired.Add(1) })
	tr.Stop("k")

	time.Sleep(80 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("stopped timer fired")
	}
}

func TestTimerKeysAreIndependent(t *testing.T) {
	tr := newTimerRegistry()
	defer tr.StopAll()

	var a, b atomic.Int32
	tr.Set("a", 10*time.Millisecond, func() { a.Add(1) })
	tr.Set("b", 10*time.Millisecond, func() { b.Add(1) })
	tr.Stop("a")

	time.Sleep(60 * time.Millisecond)
	if a.Load() != 0 {
		t.Error("stopped key fired")
	}
	if b.Load() != 1 {
		t.Error("independent key did not fire")
	}
}

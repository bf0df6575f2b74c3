package application

import "time"

// Task is a pending deferred callback.
type Task interface {
	// Cancel prevents the callback from running if it has not started yet.
	// Calling Cancel more than once is safe.
	Cancel()
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// TimeScheduler schedules callbacks with time.AfterFunc.
type TimeScheduler struct{}

// AfterFunc implements Scheduler.
func (TimeScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return timerTask{timer: time.AfterFunc(d, fn)}
}

type timerTask struct {
	timer *time.Timer
}

func (t timerTask) Cancel() {
	t.timer.Stop()
}

// idleTimer is one cancellable timer slot on a player.
// The generation counter lets a callback that already fired detect that it
// was cancelled or replaced while waiting for the player lock.
type idleTimer struct {
	task Task
	gen  uint64
}

// arm cancels any pending task and schedules fn. fn receives the generation it
// was armed with.
func (t *idleTimer) arm(s Scheduler, d time.Duration, fn func(gen uint64)) {
	t.cancel()
	gen := t.gen
	t.task = s.AfterFunc(d, func() { fn(gen) })
}

func (t *idleTimer) cancel() {
	if t.task != nil {
		t.task.Cancel()
		t.task = nil
	}
	t.gen++
}

func (t *idleTimer) pending() bool {
	return t.task != nil
}

// fired reports whether gen still identifies the armed task and clears the slot.
func (t *idleTimer) fired(gen uint64) bool {
	if t.task == nil || t.gen != gen {
		return false
	}
	t.task = nil
	t.gen++
	return true
}

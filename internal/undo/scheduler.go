package undo

import "time"

// Timer is a cancellable deferred job.
type Timer interface {
	// Stop cancels the job. It reports whether the call stopped it; stopping
	// a fired or already stopped job is a no-op returning false.
	Stop() bool
}

// Scheduler runs f after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules jobs with time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Package sched provides an explicit scheduled-task queue driven by
// an external clock.
//
// Timers are single-shot: restarting a task is the only cancellation
// mechanism besides Stop. The queue advances only when the owner
// calls Advance or Tick, so timer behavior is testable without real
// wall-clock waits. Everything runs on the single UI mutator.
package sched

import (
	"sort"
	"time"
)

// Task is one scheduled callback.
type Task struct {
	s        *Scheduler
	deadline time.Time
	interval time.Duration // non-zero for recurring tasks
	fn       func()
	armed    bool
}

// Armed reports whether the task is waiting to fire.
func (t *Task) Armed() bool { return t.armed }

// Deadline returns the time the task will fire at.
func (t *Task) Deadline() time.Time { return t.deadline }

// Restart re-arms the task to fire d after the current clock,
// superseding any pending deadline.
func (t *Task) Restart(d time.Duration) {
	t.deadline = t.s.now.Add(d)
	t.armed = true
}

// Stop disarms the task.
func (t *Task) Stop() { t.armed = false }

// Scheduler is the task queue and its clock.
type Scheduler struct {
	now   time.Time
	tasks []*Task
}

// New creates a scheduler starting at the given clock time.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the scheduler's current clock.
func (s *Scheduler) Now() time.Time { return s.now }

// After schedules fn to run once, d from now.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	t := &Task{s: s, deadline: s.now.Add(d), fn: fn, armed: true}
	s.tasks = append(s.tasks, t)
	return t
}

// Stopped creates a disarmed single-shot task; arm it with Restart.
func (s *Scheduler) Stopped(fn func()) *Task {
	t := &Task{s: s, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Every schedules fn to run repeatedly at the given interval.
func (s *Scheduler) Every(d time.Duration, fn func()) *Task {
	t := &Task{s: s, deadline: s.now.Add(d), interval: d, fn: fn, armed: true}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every task whose
// deadline has passed, in deadline order. Recurring tasks re-arm
// themselves; fired single-shot tasks stay registered but disarmed.
func (s *Scheduler) Advance(d time.Duration) {
	s.Tick(s.now.Add(d))
}

// Tick sets the clock to now and runs due tasks in deadline order.
// Tasks that re-arm within the same tick window run again, so a
// recurring task catches up after a long gap.
func (s *Scheduler) Tick(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}

	for {
		due := s.dueTasks()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			if t.interval > 0 {
				t.deadline = t.deadline.Add(t.interval)
			} else {
				t.armed = false
			}
			t.fn()
		}
	}
}

// dueTasks returns armed tasks whose deadline has passed, oldest
// deadline first.
func (s *Scheduler) dueTasks() []*Task {
	var due []*Task
	for _, t := range s.tasks {
		if t.armed && !t.deadline.After(s.now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due
}

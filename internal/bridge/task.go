package bridge

import (
	"time"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Task timing.
const (
	eventCadence = 3 * time.Second
	pollCadence  = 30 * time.Second

	// LivenessCadence is how often the supervisor watchdog is petted.
	LivenessCadence = 30 * time.Second

	// branchStagger backdates the first run of branch and receptacle tasks
	// by branch number times this amount.
	branchStagger = 10 * time.Second

	// rescheduleDelay is how soon a receptacle is re-polled after a command.
	rescheduleDelay = 5 * time.Second
)

// Kind is the closed set of things a task can do.
type Kind uint8

// Task kinds.
const (
	KindEvents Kind = iota
	KindPDU
	KindBranch
	KindReceptacle
	KindLiveness
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindEvents:
		return "events"
	case KindPDU:
		return "pdu"
	case KindBranch:
		return "branch"
	case KindReceptacle:
		return "receptacle"
	case KindLiveness:
		return "liveness"
	default:
		return "unknown"
	}
}

// IsPoll reports whether the kind queries a device record.
func (k Kind) IsPoll() bool {
	return k == KindPDU || k == KindBranch || k == KindReceptacle
}

// Priority decides whether a task is swept every loop iteration.
type Priority uint8

// Priorities.
const (
	PriorityLow Priority = iota
	PriorityHigh
)

// Task is one recurring unit of work.
type Task struct {
	Kind     Kind
	Address  pdu.Address
	Priority Priority
	Cadence  time.Duration
	LastRun  time.Time

	cache Cache
}

// Elapsed returns the time since the task last ran.
func (t *Task) Elapsed(now time.Time) time.Duration {
	return now.Sub(t.LastRun)
}

// Due reports whether more than one cadence has passed since the last run.
func (t *Task) Due(now time.Time) bool {
	return t.Elapsed(now) > t.Cadence
}

// rescheduleIn makes the task due d after now.
func (t *Task) rescheduleIn(now time.Time, d time.Duration) {
	t.LastRun = now.Add(-t.Cadence).Add(d)
}

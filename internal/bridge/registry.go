package bridge

import (
	"time"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Registry owns every task. Tasks are addressed by index and only touched
// from the scheduling goroutine.
type Registry struct {
	tasks []Task
}

// NewRegistry builds the task set for the discovered receptacles: the event
// task first, then per receptacle (in order) its PDU and branch tasks if not
// yet present and its own receptacle task, then the liveness task.
func NewRegistry(receptacles []pdu.Address, now time.Time) *Registry {
	r := &Registry{}

	r.add(Task{Kind: KindEvents, Priority: PriorityHigh, Cadence: eventCadence, LastRun: now})

	for _, addr := range receptacles {
		stagger := now.Add(-time.Duration(addr.Branch) * branchStagger)

		if _, ok := r.Find(KindPDU, addr.PDUAddress()); !ok {
			r.add(Task{Kind: KindPDU, Address: addr.PDUAddress(), Cadence: pollCadence, LastRun: now})
		}
		if _, ok := r.Find(KindBranch, addr.BranchAddress()); !ok {
			r.add(Task{Kind: KindBranch, Address: addr.BranchAddress(), Cadence: pollCadence, LastRun: stagger})
		}
		r.add(Task{Kind: KindReceptacle, Address: addr, Cadence: pollCadence, LastRun: stagger})
	}

	r.add(Task{Kind: KindLiveness, Priority: PriorityHigh, Cadence: LivenessCadence, LastRun: now})
	return r
}

func (r *Registry) add(t Task) {
	r.tasks = append(r.tasks, t)
}

// Len returns the number of tasks.
func (r *Registry) Len() int {
	return len(r.tasks)
}

// Count returns the number of tasks of the given kind.
func (r *Registry) Count(kind Kind) int {
	n := 0
	for i := range r.tasks {
		if r.tasks[i].Kind == kind {
			n++
		}
	}
	return n
}

// task returns the task at index i.
func (r *Registry) task(i int) *Task {
	return &r.tasks[i]
}

// Find returns the index of the task with the given kind and address.
func (r *Registry) Find(kind Kind, addr pdu.Address) (int, bool) {
	for i := range r.tasks {
		if r.tasks[i].Kind == kind && r.tasks[i].Address == addr {
			return i, true
		}
	}
	return -1, false
}

// Reschedule makes the matching task due delay after now. It reports
// whether such a task exists.
func (r *Registry) Reschedule(kind Kind, addr pdu.Address, now time.Time, delay time.Duration) bool {
	i, ok := r.Find(kind, addr)
	if !ok {
		return false
	}
	r.tasks[i].rescheduleIn(now, delay)
	return true
}

// Oldest returns the index of the task that has gone longest without
// running, regardless of priority or cadence. Ties go to the later task.
func (r *Registry) Oldest(now time.Time) int {
	best := -1
	var bestElapsed time.Duration
	for i := range r.tasks {
		elapsed := r.tasks[i].Elapsed(now)
		if best < 0 || elapsed >= bestElapsed {
			best, bestElapsed = i, elapsed
		}
	}
	return best
}

// Polled reports whether every poll task has a populated cache.
func (r *Registry) Polled() bool {
	for i := range r.tasks {
		if r.tasks[i].Kind.IsPoll() && r.tasks[i].cache.Kind() == CacheEmpty {
			return false
		}
	}
	return true
}

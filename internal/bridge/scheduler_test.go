package bridge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

const testPrefix = "liebert-mpx"

type harness struct {
	sched    *Scheduler
	device   *mockDevice
	pub      *mockPublisher
	notifier *mockNotifier
	journal  *mockJournal
	clock    *fakeClock
	inbox    *Inbox
}

func newHarness(t *testing.T, receptacles []pdu.Address, mutate func(*Options)) *harness {
	t.Helper()

	h := &harness{
		device:   newMockDevice(),
		pub:      newMockPublisher(),
		notifier: &mockNotifier{},
		journal:  &mockJournal{},
		clock:    &fakeClock{t: testStart},
		inbox:    NewInbox(4),
	}

	opts := Options{
		Device:    h.device,
		Publisher: h.pub,
		Notifier:  h.notifier,
		Registry:  NewRegistry(receptacles, testStart),
		Inbox:     h.inbox,
		Journal:   h.journal,
		Prefix:    testPrefix,
		QoS:       1,
	}
	if mutate != nil {
		mutate(&opts)
	}

	s, err := NewScheduler(opts)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	s.now = h.clock.now
	s.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	h.sched = s
	return h
}

func (h *harness) step(t *testing.T) bool {
	t.Helper()
	idle, err := h.sched.step(context.Background())
	if err != nil {
		t.Fatalf("step() error = %v", err)
	}
	return idle
}

// pollAll steps until the scheduler goes idle.
func (h *harness) pollAll(t *testing.T) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if h.step(t) {
			return
		}
	}
	t.Fatal("scheduler never went idle")
}

func (h *harness) task(t *testing.T, kind Kind, a pdu.Address) *Task {
	t.Helper()
	i, ok := h.sched.registry.Find(kind, a)
	if !ok {
		t.Fatalf("no %v task at %v", kind, a)
	}
	return h.sched.registry.task(i)
}

func TestNewScheduler_RequiresDependencies(t *testing.T) {
	_, err := NewScheduler(Options{})
	if !errors.Is(err, ErrMissingDependency) {
		t.Errorf("NewScheduler() error = %v, want ErrMissingDependency", err)
	}
}

func TestScheduler_IdleWhenNothingDue(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)

	if !h.step(t) {
		t.Error("step() at start should be idle")
	}
	if len(h.pub.take()) != 0 {
		t.Error("nothing should be published before any task is due")
	}
}

func TestScheduler_FirstPollPublishesEverything(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)
	h.device.receptacles[addr(1, 1, 1)] = pdu.ReceptacleInfo{Settings: pdu.ReceptacleSettings{Label: "web-01"}}

	h.clock.advance(31 * time.Second)

	// Oldest is the receptacle (backdated by its branch stagger, later than
	// the branch task on a tie).
	if h.step(t) {
		t.Fatal("first step should run a task")
	}
	got := h.pub.take()
	want := FlattenReceptacle(addr(1, 1, 1), h.device.receptacles[addr(1, 1, 1)])
	if len(got) != len(want) {
		t.Fatalf("published %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].topic != testPrefix+want[i].Topic || got[i].payload != want[i].Payload || got[i].retained != want[i].Retained {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
		if got[i].qos != 1 {
			t.Errorf("message %d qos = %d, want 1", i, got[i].qos)
		}
	}

	// The high-priority sweep ran the event and liveness tasks first.
	if _, alive := h.notifier.counts(); alive != 1 {
		t.Errorf("alive notifications = %d, want 1", alive)
	}
	if h.device.eventPolls != 1 {
		t.Errorf("event polls = %d, want 1", h.device.eventPolls)
	}

	h.pollAll(t)
	if !strings.Contains(strings.Join(h.device.queries, ","), "1.1.0") {
		t.Errorf("branch never polled: %v", h.device.queries)
	}
}

func TestScheduler_PublishesOnlyChanges(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)
	a := addr(1, 1, 1)
	h.device.receptacles[a] = pdu.ReceptacleInfo{Status: pdu.ReceptacleStatus{Voltage: 230}}

	h.clock.advance(31 * time.Second)
	h.pollAll(t)
	h.pub.take()

	h.device.mu.Lock()
	h.device.receptacles[a] = pdu.ReceptacleInfo{Status: pdu.ReceptacleStatus{Voltage: 231}}
	h.device.mu.Unlock()

	h.task(t, KindReceptacle, a).LastRun = h.clock.now().Add(-time.Minute)
	h.step(t)

	got := h.pub.take()
	if len(got) != 1 {
		t.Fatalf("published %v, want only the voltage", got)
	}
	if got[0].topic != testPrefix+"/pdu-1/branch-1/receptacle-1/status/voltage" || got[0].payload != "231000" || got[0].retained {
		t.Errorf("published %+v", got[0])
	}
}

func TestScheduler_Readiness(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1), addr(1, 2, 1)}, nil)

	h.clock.advance(41 * time.Second)

	// Five poll tasks, one per step; readiness is checked at the start of a step.
	for i := 0; i < 5; i++ {
		if h.step(t) {
			t.Fatalf("step %d idle, want a poll", i)
		}
		if ready, _ := h.notifier.counts(); ready != 0 {
			t.Fatalf("ready sent after %d polls", i+1)
		}
	}

	h.step(t)
	h.step(t)
	if ready, _ := h.notifier.counts(); ready != 1 {
		t.Errorf("ready notifications = %d, want exactly 1", ready)
	}
	if !h.sched.Ready() {
		t.Error("Ready() = false after full poll")
	}
}

func TestScheduler_PollFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)
	h.device.queryErr = errMockDevice

	h.clock.advance(31 * time.Second)
	h.pollAll(t)

	if got := h.pub.take(); len(got) != 0 {
		t.Errorf("published %d messages despite failures", len(got))
	}
	task := h.task(t, KindReceptacle, addr(1, 1, 1))
	if task.cache.Kind() != CacheEmpty {
		t.Error("failed poll must leave the cache empty")
	}
	if !task.LastRun.Equal(h.clock.now()) {
		t.Error("failed poll must still advance the last-run time")
	}
	if h.sched.Stats().PollErrors != 3 {
		t.Errorf("poll errors = %d, want 3", h.sched.Stats().PollErrors)
	}

	h.step(t)
	if h.sched.Ready() {
		t.Error("Ready() = true without a successful poll")
	}
}

func TestScheduler_PublishFailureIsFatal(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)
	h.pub.err = errors.New("broker gone")
	h.clock.advance(31 * time.Second)

	_, err := h.sched.step(context.Background())
	if !errors.Is(err, ErrPublish) {
		t.Errorf("step() error = %v, want ErrPublish", err)
	}

	err = h.sched.Run(context.Background())
	if !errors.Is(err, ErrPublish) {
		t.Errorf("Run() error = %v, want ErrPublish", err)
	}
}

func TestScheduler_AvoidRetained(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, func(o *Options) { o.AvoidRetained = true })
	h.clock.advance(31 * time.Second)
	h.step(t)

	got := h.pub.take()
	if len(got) == 0 {
		t.Fatal("nothing published")
	}
	for _, m := range got {
		if m.retained {
			t.Errorf("%s published retained", m.topic)
		}
	}
}

func TestScheduler_Telemetry(t *testing.T) {
	tel := &mockTelemetry{}
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, func(o *Options) { o.Telemetry = tel })
	h.device.receptacles[addr(1, 1, 1)] = pdu.ReceptacleInfo{Status: pdu.ReceptacleStatus{Current: 1.5}}

	h.clock.advance(31 * time.Second)
	h.step(t)

	if len(tel.points) != 1 {
		t.Fatalf("points = %d, want 1", len(tel.points))
	}
	p := tel.points[0]
	if p.measurement != "pdu_status" || p.tags["address"] != "1.1.1" || p.tags["level"] != "receptacle" {
		t.Errorf("point = %+v", p)
	}
	if p.fields["current"] != 1500.0 {
		t.Errorf("current field = %v, want 1500", p.fields["current"])
	}
	if _, ok := p.fields["label"]; ok {
		t.Error("settings must not be mirrored")
	}
}

func TestScheduler_QueueOverflowIsFatal(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)
	for i := 0; i < 5; i++ {
		h.inbox.Handle("p/pdu-1/branch-1/receptacle-1/control", []byte("identify")) //nolint:errcheck // Last one overflows
	}

	_, err := h.sched.step(context.Background())
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("step() error = %v, want ErrQueueFull", err)
	}
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.sched.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestScheduler_RunIdlesUntilCancelled(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	h.sched.sleep = func(ctx context.Context, d time.Duration) error {
		if d != time.Second {
			t.Errorf("sleep(%v), want 1s", d)
		}
		sleeps++
		if sleeps == 3 {
			cancel()
		}
		return ctx.Err()
	}

	if err := h.sched.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if sleeps != 3 {
		t.Errorf("sleeps = %d, want 3", sleeps)
	}
}

func TestScheduler_StampsTaskOnCompletion(t *testing.T) {
	tests := []struct {
		name     string
		queryErr error
	}{
		{"success", nil},
		{"failure", errMockDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)
			h.device.queryErr = tt.queryErr
			h.device.onQuery = func() { h.clock.advance(20 * time.Second) }

			task := h.task(t, KindReceptacle, addr(1, 1, 1))
			h.clock.advance(31 * time.Second)
			start := h.clock.now()

			h.sched.execute(context.Background(), task)

			end := h.clock.now()
			if !end.Equal(start.Add(20 * time.Second)) {
				t.Fatalf("device call did not advance the clock: %v -> %v", start, end)
			}
			if !task.LastRun.Equal(end) {
				t.Errorf("LastRun = %v, want completion time %v", task.LastRun, end)
			}
			if task.Due(end) {
				t.Error("task due again immediately after a slow poll")
			}
		})
	}
}

func TestScheduler_StepOrder(t *testing.T) {
	h := newHarness(t, []pdu.Address{addr(1, 1, 1)}, nil)

	// Events (3s cadence) and the receptacle task (backdated 10s, 30s
	// cadence) are both due; a command is waiting.
	h.clock.advance(25 * time.Second)
	if err := h.inbox.Handle(testPrefix+"/pdu-1/branch-1/receptacle-1/control", []byte("identify")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if h.step(t) {
		t.Fatal("step() should have run a task")
	}

	got := h.device.callLog()
	want := []string{"Events", "ReceptacleCommand", "ReceptacleInfo"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

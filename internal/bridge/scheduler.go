package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// idleInterval is how long the loop sleeps when nothing is due.
const idleInterval = time.Second

// telemetryMeasurement is the InfluxDB measurement for mirrored status values.
const telemetryMeasurement = "pdu_status"

// Options configures a Scheduler.
type Options struct {
	// Device, Publisher, Notifier, Registry and Inbox are required.
	Device    pdu.Client
	Publisher Publisher
	Notifier  Notifier
	Registry  *Registry
	Inbox     *Inbox

	// Telemetry and Journal are optional sinks.
	Telemetry Telemetry
	Journal   Journal

	// Prefix is prepended to every published topic.
	Prefix string

	// QoS is used for every publish.
	QoS byte

	// AvoidRetained publishes every message without the retain flag.
	AvoidRetained bool

	Logger Logger
}

// Scheduler runs the polling loop. Run must be called from one goroutine;
// Ready, TaskCount and Stats may be called from any.
type Scheduler struct {
	device        pdu.Client
	publisher     Publisher
	notifier      Notifier
	registry      *Registry
	inbox         *Inbox
	telemetry     Telemetry
	journal       Journal
	prefix        string
	qos           byte
	avoidRetained bool
	logger        Logger

	ready atomic.Bool
	stats Stats

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScheduler validates opts and creates a Scheduler.
func NewScheduler(opts Options) (*Scheduler, error) {
	switch {
	case opts.Device == nil:
		return nil, fmt.Errorf("%w: device client", ErrMissingDependency)
	case opts.Publisher == nil:
		return nil, fmt.Errorf("%w: publisher", ErrMissingDependency)
	case opts.Notifier == nil:
		return nil, fmt.Errorf("%w: notifier", ErrMissingDependency)
	case opts.Registry == nil:
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	case opts.Inbox == nil:
		return nil, fmt.Errorf("%w: inbox", ErrMissingDependency)
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Scheduler{
		device:        opts.Device,
		publisher:     opts.Publisher,
		notifier:      opts.Notifier,
		registry:      opts.Registry,
		inbox:         opts.Inbox,
		telemetry:     opts.Telemetry,
		journal:       opts.Journal,
		prefix:        opts.Prefix,
		qos:           opts.QoS,
		avoidRetained: opts.AvoidRetained,
		logger:        logger,
		now:           time.Now,
		sleep:         sleepContext,
	}, nil
}

// Run loops until ctx is cancelled (returning nil) or a fatal fault occurs:
// a failed publish or an overflowing command inbox.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "tasks", s.registry.Len())

	for {
		if ctx.Err() != nil {
			s.logger.Info("scheduler stopped")
			return nil
		}

		idle, err := s.step(ctx)
		if err != nil {
			return err
		}
		if idle {
			if err := s.sleep(ctx, idleInterval); err != nil {
				s.logger.Info("scheduler stopped")
				return nil
			}
		}
	}
}

// step performs one loop iteration. It reports idle when the oldest task
// was not yet due.
func (s *Scheduler) step(ctx context.Context) (bool, error) {
	s.checkReady()

	if err := s.runHighPriority(ctx); err != nil {
		return false, err
	}

	if err := s.inbox.Err(); err != nil {
		return false, err
	}
	if cmd, ok := s.inbox.TryReceive(); ok {
		s.dispatch(ctx, cmd)
	}

	i := s.registry.Oldest(s.now())
	if i < 0 {
		return true, nil
	}
	t := s.registry.task(i)
	if !t.Due(s.now()) {
		return true, nil
	}
	return false, s.publish(t, s.execute(ctx, t))
}

// checkReady notifies the supervisor once every poll task has data.
func (s *Scheduler) checkReady() {
	if s.ready.Load() || !s.registry.Polled() {
		return
	}
	s.ready.Store(true)
	s.logger.Info("initial poll complete", "tasks", s.registry.Len())
	s.notifier.Ready()
}

func (s *Scheduler) runHighPriority(ctx context.Context) error {
	for i := 0; i < s.registry.Len(); i++ {
		t := s.registry.task(i)
		if t.Priority != PriorityHigh || !t.Due(s.now()) {
			continue
		}
		if err := s.publish(t, s.execute(ctx, t)); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one task and returns what should be published. The task
// is stamped when the device call returns, so its cadence counts from
// completion.
func (s *Scheduler) execute(ctx context.Context, t *Task) []Message {
	defer func() { t.LastRun = s.now() }()

	switch t.Kind {
	case KindPDU:
		s.stats.polls.Add(1)
		info, err := s.device.PDUInfo(ctx, t.Address.PDU)
		if err != nil {
			s.pollFailed(t, err)
			return nil
		}
		return t.cache.Update(FlattenPDU(t.Address, info))

	case KindBranch:
		s.stats.polls.Add(1)
		info, err := s.device.BranchInfo(ctx, t.Address.PDU, t.Address.Branch)
		if err != nil {
			s.pollFailed(t, err)
			return nil
		}
		return t.cache.Update(FlattenBranch(t.Address, info))

	case KindReceptacle:
		s.stats.polls.Add(1)
		info, err := s.device.ReceptacleInfo(ctx, t.Address)
		if err != nil {
			s.pollFailed(t, err)
			return nil
		}
		return t.cache.Update(FlattenReceptacle(t.Address, info))

	case KindEvents:
		s.pollEvents(ctx, t)
		return nil

	case KindLiveness:
		s.notifier.Alive()
		return nil

	default:
		panic(fmt.Sprintf("bridge: unknown task kind %d", t.Kind))
	}
}

func (s *Scheduler) pollFailed(t *Task, err error) {
	s.stats.pollErrors.Add(1)
	s.logger.Warn("poll failed",
		"kind", t.Kind.String(),
		"address", t.Address.String(),
		"error", err,
	)
}

// publish sends msgs in order. Any failure is fatal.
func (s *Scheduler) publish(t *Task, msgs []Message) error {
	for _, m := range msgs {
		topic := s.prefix + m.Topic
		retained := m.Retained && !s.avoidRetained
		if err := s.publisher.Publish(topic, []byte(m.Payload), s.qos, retained); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrPublish, topic, err)
		}
		s.stats.published.Add(1)
	}

	if len(msgs) > 0 {
		s.logger.Debug("published changes", "kind", t.Kind.String(), "address", t.Address.String(), "count", len(msgs))
		s.mirror(t, msgs)
	}
	return nil
}

// mirror writes the numeric status values of msgs to the telemetry sink as
// one point.
func (s *Scheduler) mirror(t *Task, msgs []Message) {
	if s.telemetry == nil {
		return
	}

	fields := make(map[string]interface{})
	for _, m := range msgs {
		parts := strings.Split(m.Topic, "/")
		if len(parts) < 2 || parts[len(parts)-2] != groupStatus {
			continue
		}
		v, err := strconv.ParseFloat(m.Payload, 64)
		if err != nil {
			continue
		}
		fields[parts[len(parts)-1]] = v
	}
	if len(fields) == 0 {
		return
	}

	tags := map[string]string{
		"level":   t.Kind.String(),
		"address": t.Address.String(),
	}
	s.telemetry.WritePointWithTime(telemetryMeasurement, tags, fields, s.now())
}

// Ready reports whether the initial poll has completed.
func (s *Scheduler) Ready() bool {
	return s.ready.Load()
}

// TaskCount returns the number of scheduled tasks.
func (s *Scheduler) TaskCount() int {
	return s.registry.Len()
}

// Stats returns a snapshot of the activity counters.
func (s *Scheduler) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

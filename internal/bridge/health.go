package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const defaultHealthInterval = 30 * time.Second

// healthMeasurement is the InfluxDB measurement for health reports.
const healthMeasurement = "bridge_health"

// HealthStatus is the operational state reported on the health topic.
type HealthStatus string

// Health states.
const (
	HealthStarting HealthStatus = "starting"
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is the retained JSON document on the health topic.
type HealthMessage struct {
	Bridge        string        `json:"bridge"`
	Status        HealthStatus  `json:"status"`
	Reason        string        `json:"reason,omitempty"`
	Version       string        `json:"version"`
	Timestamp     time.Time     `json:"timestamp"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Ready         bool          `json:"ready"`
	Tasks         int           `json:"tasks"`
	Statistics    StatsSnapshot `json:"statistics"`
}

// HealthSource exposes scheduler state to the reporter. Satisfied by
// *Scheduler.
type HealthSource interface {
	Ready() bool
	TaskCount() int
	Stats() StatsSnapshot
}

// HealthTopic returns the topic health messages are published on.
func HealthTopic(prefix string) string {
	return prefix + "/bridge/health"
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	Prefix    string
	Version   string
	Interval  time.Duration
	QoS       byte
	Publisher Publisher
	Source    HealthSource
	Telemetry Telemetry
	Logger    Logger
}

// HealthReporter publishes a HealthMessage at a fixed interval from its own
// goroutine.
type HealthReporter struct {
	topic     string
	version   string
	interval  time.Duration
	qos       byte
	startTime time.Time
	publisher Publisher
	source    HealthSource
	telemetry Telemetry
	logger    Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewHealthReporter creates a reporter. Call Start to begin reporting.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &HealthReporter{
		topic:     HealthTopic(cfg.Prefix),
		version:   cfg.Version,
		interval:  interval,
		qos:       cfg.QoS,
		startTime: time.Now(),
		publisher: cfg.Publisher,
		source:    cfg.Source,
		telemetry: cfg.Telemetry,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins periodic reporting until ctx is cancelled or Stop is called.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop ends reporting and publishes a final "stopping" status.
// Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		if err := h.publishStatus(HealthStopping, ""); err != nil {
			h.logger.Warn("failed to publish stopping health status", "error", err)
		}
	})
}

// PublishNow publishes the current status immediately.
func (h *HealthReporter) PublishNow() error {
	status, reason := h.determineStatus()
	return h.publishStatus(status, reason)
}

func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := h.PublishNow(); err != nil {
		h.logger.Error("failed to publish initial health", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logger.Error("failed to publish health", "error", err)
			}
		}
	}
}

func (h *HealthReporter) determineStatus() (HealthStatus, string) {
	if h.publisher == nil || !h.publisher.IsConnected() {
		return HealthDegraded, "MQTT disconnected"
	}
	if h.source != nil && !h.source.Ready() {
		return HealthStarting, "initial poll in progress"
	}
	return HealthHealthy, ""
}

func (h *HealthReporter) publishStatus(status HealthStatus, reason string) error {
	if h.publisher == nil {
		return nil
	}

	msg := HealthMessage{
		Bridge:        "mpx",
		Status:        status,
		Reason:        reason,
		Version:       h.version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
	if h.source != nil {
		msg.Ready = h.source.Ready()
		msg.Tasks = h.source.TaskCount()
		msg.Statistics = h.source.Stats()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := h.publisher.Publish(h.topic, payload, h.qos, true); err != nil {
		return err
	}
	h.record(msg)
	return nil
}

// record mirrors a published report to the telemetry sink.
func (h *HealthReporter) record(msg HealthMessage) {
	if h.telemetry == nil {
		return
	}
	st := msg.Statistics
	h.telemetry.WritePointWithTime(
		healthMeasurement,
		map[string]string{"status": string(msg.Status)},
		map[string]interface{}{
			"uptime_seconds":   msg.UptimeSeconds,
			"ready":            msg.Ready,
			"polls":            st.Polls,
			"poll_errors":      st.PollErrors,
			"published":        st.Published,
			"commands":         st.Commands,
			"command_failures": st.CommandFailures,
			"alarms_handled":   st.AlarmsHandled,
		},
		msg.Timestamp,
	)
}

package bridge

import (
	"context"
	"time"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Publisher sends messages to the broker.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Notifier reports process state to the service supervisor.
// Both calls are fire-and-forget.
type Notifier interface {
	Ready()
	Alive()
}

// Telemetry receives numeric status values after they have been published.
// Satisfied by *influxdb.Client.
type Telemetry interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time)
}

// Journal records actions taken against the device.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

// JournalEntry describes one command or alarm reaction.
type JournalEntry struct {
	Action   string
	Address  pdu.Address
	Source   string
	Attempts int
	Err      error
	Details  map[string]any
}

// Logger is the logging surface used by the bridge.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

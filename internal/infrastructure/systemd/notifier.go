// Package systemd reports bridge state to the service manager over the
// sd_notify protocol.
//
// When the process is not started by systemd (NOTIFY_SOCKET unset) every
// call is a no-op.
package systemd

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Logger is the logging surface used by the notifier.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Notifier sends READY, WATCHDOG and STOPPING notifications.
type Notifier struct {
	notify func(unsetEnvironment bool, state string) (bool, error)
	logger Logger
}

// New creates a notifier. logger may be nil.
func New(logger Logger) *Notifier {
	return &Notifier{notify: daemon.SdNotify, logger: logger}
}

// Ready signals that every task has completed its first poll.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Alive pets the service watchdog.
func (n *Notifier) Alive() {
	n.send(daemon.SdNotifyWatchdog)
}

// Stopping signals that shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// WatchdogInterval returns the configured WatchdogSec, or zero when the
// watchdog is disabled.
func WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return 0
	}
	return d
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if n.logger == nil {
		return
	}
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify sent", "state", state)
	}
}

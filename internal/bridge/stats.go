package bridge

import "sync/atomic"

// Stats counts scheduler activity. Safe for concurrent reads.
type Stats struct {
	polls           atomic.Uint64
	pollErrors      atomic.Uint64
	published       atomic.Uint64
	commands        atomic.Uint64
	commandFailures atomic.Uint64
	alarmsHandled   atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Polls           uint64 `json:"polls"`
	PollErrors      uint64 `json:"poll_errors"`
	Published       uint64 `json:"published"`
	Commands        uint64 `json:"commands"`
	CommandFailures uint64 `json:"command_failures"`
	AlarmsHandled   uint64 `json:"alarms_handled"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Polls:           s.polls.Load(),
		PollErrors:      s.pollErrors.Load(),
		Published:       s.published.Load(),
		Commands:        s.commands.Load(),
		CommandFailures: s.commandFailures.Load(),
		AlarmsHandled:   s.alarmsHandled.Load(),
	}
}

package bridge

import (
	"context"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// commandAttempts is the total number of tries for any command sent to the
// device.
const commandAttempts = 3

// Journal sources.
const (
	sourceControl = "mqtt"
	sourceEvent   = "event"
)

// retry calls fn up to attempts times, stopping at the first success or
// when ctx is done. It returns the number of calls made and the last error.
func retry(ctx context.Context, attempts int, fn func(context.Context) error) (int, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(ctx); err == nil {
			return i, nil
		}
		if ctx.Err() != nil {
			return i, err
		}
	}
	return attempts, err
}

// dispatch applies a control command on the scheduling goroutine.
func (s *Scheduler) dispatch(ctx context.Context, cmd Command) {
	s.stats.commands.Add(1)
	s.logger.Info("control command", "command", cmd.Kind.String(), "address", cmd.Address.String())

	switch cmd.Kind {
	case CommandEnable:
		s.switchReceptacle(ctx, cmd.Address, pdu.CommandEnable, sourceControl)
		s.reschedule(cmd.Address)
	case CommandDisable:
		s.switchReceptacle(ctx, cmd.Address, pdu.CommandDisable, sourceControl)
		s.reschedule(cmd.Address)
	case CommandIdentify:
		s.switchReceptacle(ctx, cmd.Address, pdu.CommandIdentify, sourceControl)
	case CommandSetLabel:
		s.setLabel(ctx, cmd.Address, cmd.Label)
		s.reschedule(cmd.Address)
	}
}

// switchReceptacle sends cmd with retry. Failures are logged, not returned.
func (s *Scheduler) switchReceptacle(ctx context.Context, addr pdu.Address, cmd pdu.ReceptacleCommand, source string) {
	attempts, err := retry(ctx, commandAttempts, func(ctx context.Context) error {
		return s.device.ReceptacleCommand(ctx, addr, cmd)
	})
	if err != nil {
		s.stats.commandFailures.Add(1)
		s.logger.Warn("receptacle command failed",
			"address", addr.String(),
			"action", cmd.String(),
			"attempts", attempts,
			"error", err,
		)
	}

	s.record(ctx, JournalEntry{
		Action:   cmd.String(),
		Address:  addr,
		Source:   source,
		Attempts: attempts,
		Err:      err,
	})
}

// setLabel replaces the receptacle label, keeping every other setting.
func (s *Scheduler) setLabel(ctx context.Context, addr pdu.Address, label string) {
	settings, err := s.device.ReceptacleSettings(ctx, addr)
	if err != nil {
		s.stats.commandFailures.Add(1)
		s.logger.Warn("fetching receptacle settings failed",
			"address", addr.String(),
			"action", CommandSetLabel.String(),
			"error", err,
		)
		s.record(ctx, JournalEntry{
			Action:  CommandSetLabel.String(),
			Address: addr,
			Source:  sourceControl,
			Err:     err,
			Details: map[string]any{"label": label},
		})
		return
	}

	previous := settings.Label
	settings.Label = label

	attempts, err := retry(ctx, commandAttempts, func(ctx context.Context) error {
		return s.device.SetReceptacleSettings(ctx, addr, settings)
	})
	if err != nil {
		s.stats.commandFailures.Add(1)
		s.logger.Warn("updating receptacle settings failed",
			"address", addr.String(),
			"action", CommandSetLabel.String(),
			"attempts", attempts,
			"error", err,
		)
	}

	s.record(ctx, JournalEntry{
		Action:   CommandSetLabel.String(),
		Address:  addr,
		Source:   sourceControl,
		Attempts: attempts,
		Err:      err,
		Details:  map[string]any{"label": label, "previous_label": previous},
	})
}

// reschedule makes the receptacle task at addr due shortly.
func (s *Scheduler) reschedule(addr pdu.Address) {
	if !s.registry.Reschedule(KindReceptacle, addr, s.now(), rescheduleDelay) {
		s.logger.Warn("command for unknown receptacle", "address", addr.String())
	}
}

func (s *Scheduler) record(ctx context.Context, entry JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("journal write failed", "action", entry.Action, "address", entry.Address.String(), "error", err)
	}
}

package bridge

import (
	"context"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// pollEvents fetches the event feed and reacts to it when it changed.
// Receptacle over-current alarms switch the receptacle off.
func (s *Scheduler) pollEvents(ctx context.Context, t *Task) {
	events, err := s.device.Events(ctx)
	if err != nil {
		s.pollFailed(t, err)
		return
	}
	if t.cache.SameEvents(events) {
		return
	}

	for _, e := range events {
		if e.Level == pdu.LevelAlarm && e.Type == pdu.EventReceptacleOverCurrent {
			s.stats.alarmsHandled.Add(1)
			s.logger.Warn("receptacle over-current alarm, disabling", "address", e.Address().String())
			s.switchReceptacle(ctx, e.Address(), pdu.CommandDisable, sourceEvent)
			continue
		}
		s.logger.Info("unhandled event",
			"level", string(e.Level),
			"type", string(e.Type),
			"address", e.Address().String(),
		)
	}

	t.cache.StoreEvents(events)
}

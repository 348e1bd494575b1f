package audit

import (
	"context"

	"github.com/nerrad567/mpx-bridge/internal/bridge"
)

// Recorder adapts a Repository to the bridge's Journal interface.
type Recorder struct {
	repo Repository
}

var _ bridge.Journal = (*Recorder)(nil)

// NewRecorder wraps repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record stores one command or alarm reaction.
func (r *Recorder) Record(ctx context.Context, entry bridge.JournalEntry) error {
	e := &Entry{
		Action:   entry.Action,
		Address:  entry.Address.String(),
		Source:   entry.Source,
		Attempts: entry.Attempts,
		Details:  entry.Details,
	}
	if entry.Err != nil {
		e.Error = entry.Err.Error()
	}
	return r.repo.Create(ctx, e)
}

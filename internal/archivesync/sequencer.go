package archivesync

import (
	"context"
	"time"

	"github.com/troop78/troophub/internal/models"
)

// Sequencer plays a Script. It never branches or retries; cancelling the context stops playback.
type Sequencer struct {
	script Script
	speed  float64
	now    func() time.Time
}

// NewSequencer creates a sequencer. speed scales every delay: 1 is real time, 0 plays instantly.
func NewSequencer(script Script, speed float64) *Sequencer {
	if speed < 0 {
		speed = 0
	}
	return &Sequencer{script: script, speed: speed, now: time.Now}
}

// Run plays the script, calling emit for every log line and every progress change, and a final
// event with Done set. Progress and files processed never decrease. Events carry no run id or
// sequence number; the caller stamps them.
func (s *Sequencer) Run(ctx context.Context, emit func(models.SyncEvent)) error {
	var state models.SyncEvent
	for _, st := range s.script {
		if err := s.wait(ctx, st.Delay); err != nil {
			return err
		}
		changed := st.Phase != state.Phase
		state.Phase = st.Phase
		if st.Progress > state.Progress {
			state.Progress = st.Progress
			changed = true
		}
		if st.Files > state.FilesProcessed {
			state.FilesProcessed = st.Files
			changed = true
		}
		for _, l := range st.Lines {
			ev := state
			ev.Line = &models.LogLine{Message: l.Message, Type: l.Type, Timestamp: s.now().UTC()}
			emit(ev)
		}
		if len(st.Lines) == 0 && changed {
			emit(state)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	state.Progress = 100
	state.Done = true
	emit(state)
	return nil
}

func (s *Sequencer) wait(ctx context.Context, d time.Duration) error {
	scaled := time.Duration(float64(d) * s.speed)
	if scaled <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(scaled)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

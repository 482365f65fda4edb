package archivesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
)

var (
	// ErrSyncInProgress is returned when a run is started while another is active.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrNotPermitted is returned when the viewer may not run the archive sync.
	ErrNotPermitted = errors.New("archive sync not permitted")
	// ErrRunNotFound is returned for an unknown run id.
	ErrRunNotFound = errors.New("sync run not found")
)

// Broadcaster receives every event of every run, e.g. to stream it to WebSocket viewers.
type Broadcaster interface {
	PublishSyncEvent(ev models.SyncEvent)
}

type run struct {
	snap   models.SyncRun
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns the archive sync runs. At most one run is active at a time.
type Manager struct {
	script      Script
	speed       float64
	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time

	mu     sync.Mutex
	runs   map[string]*run
	order  []string
	active string
}

// NewManager creates a manager playing script at speed. broadcaster may be nil.
func NewManager(script Script, speed float64, broadcaster Broadcaster, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		script:      script,
		speed:       speed,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
		runs:        make(map[string]*run),
	}
}

// Start begins a new run on behalf of v and returns its initial snapshot.
func (m *Manager) Start(v policy.Viewer) (models.SyncRun, error) {
	if !policy.CanRunArchiveSync(v.Role) {
		return models.SyncRun{}, ErrNotPermitted
	}
	startedBy := v.MemberID
	if startedBy == "" {
		startedBy = string(v.Role)
	}

	m.mu.Lock()
	if m.active != "" {
		id := m.active
		m.mu.Unlock()
		return models.SyncRun{}, fmt.Errorf("run %s: %w", id, ErrSyncInProgress)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		snap: models.SyncRun{
			ID:        uuid.New().String(),
			StartedBy: startedBy,
			StartedAt: m.now().UTC(),
			Status:    models.SyncStatusRunning,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.runs[r.snap.ID] = r
	m.order = append(m.order, r.snap.ID)
	m.active = r.snap.ID
	snap := r.snap
	m.mu.Unlock()

	m.logger.Info("archive sync started", zap.String("run_id", snap.ID), zap.String("started_by", startedBy))
	go m.play(ctx, r)
	return snap, nil
}

func (m *Manager) play(ctx context.Context, r *run) {
	defer close(r.done)
	id := r.snap.ID
	err := NewSequencer(m.script, m.speed).Run(ctx, func(ev models.SyncEvent) {
		m.mu.Lock()
		ev.RunID = id
		ev.Seq = len(r.snap.Events) + 1
		r.snap.Events = append(r.snap.Events, ev)
		r.snap.Phase = ev.Phase
		r.snap.Progress = ev.Progress
		r.snap.FilesProcessed = ev.FilesProcessed
		m.mu.Unlock()
		if m.broadcaster != nil {
			m.broadcaster.PublishSyncEvent(ev)
		}
	})

	m.mu.Lock()
	finished := m.now().UTC()
	r.snap.FinishedAt = &finished
	r.snap.Status = models.SyncStatusCompleted
	if err != nil {
		r.snap.Status = models.SyncStatusCancelled
	}
	if m.active == id {
		m.active = ""
	}
	status := r.snap.Status
	m.mu.Unlock()
	r.cancel()

	m.logger.Info("archive sync finished", zap.String("run_id", id), zap.String("status", status))
}

// Get returns a snapshot of a run, including its event history.
func (m *Manager) Get(id string) (models.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return models.SyncRun{}, ErrRunNotFound
	}
	snap := r.snap
	snap.Events = append([]models.SyncEvent(nil), r.snap.Events...)
	return snap, nil
}

// Events returns the events emitted so far by a run.
func (m *Manager) Events(id string) ([]models.SyncEvent, error) {
	snap, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return snap.Events, nil
}

// Active returns the id of the active run, if any.
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != ""
}

// Done returns a channel closed when the run stops playing.
func (m *Manager) Done(id string) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return r.done, nil
}

// Cancel stops a run and waits for it to wind down. Cancelling a finished run is a no-op.
func (m *Manager) Cancel(id string) (models.SyncRun, error) {
	m.mu.Lock()
	r, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return models.SyncRun{}, ErrRunNotFound
	}
	r.cancel()
	<-r.done
	return m.Get(id)
}

// Reset forgets every finished run and returns how many were removed.
func (m *Manager) Reset() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.order[:0]
	removed := 0
	for _, id := range m.order {
		if id == m.active {
			kept = append(kept, id)
			continue
		}
		delete(m.runs, id)
		removed++
	}
	m.order = kept
	return removed
}

// History returns snapshots of every known run, oldest first, without their events.
func (m *Manager) History() []models.SyncRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SyncRun, 0, len(m.order))
	for _, id := range m.order {
		snap := m.runs[id].snap
		snap.Events = nil
		out = append(out, snap)
	}
	return out
}

// Shutdown cancels the active run, if any, and waits for it.
func (m *Manager) Shutdown() {
	if id, ok := m.Active(); ok {
		_, _ = m.Cancel(id)
	}
}

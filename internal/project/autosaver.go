package project

import (
	"context"
	"sync/atomic"
	"time"
)

// Autosaver periodically writes an autosave when the session revision has
// moved since the last one.
type Autosaver struct {
	service  *Service
	session  Session
	interval time.Duration

	running   atomic.Bool
	paused    atomic.Bool
	lastSaved atomic.Int64
}

func NewAutosaver(service *Service, session Session, interval time.Duration) *Autosaver {
	a := &Autosaver{
		service:  service,
		session:  session,
		interval: interval,
	}
	a.lastSaved.Store(session.Revision())
	return a
}

// Start blocks until ctx is done. A non-positive interval disables it.
func (a *Autosaver) Start(ctx context.Context) {
	if a.interval <= 0 || a.running.Swap(true) {
		return
	}
	defer a.running.Store(false)

	logger := a.service.logger
	logger.Info("autosaver started", "interval", a.interval)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("autosaver stopping")
			return
		case <-ticker.C:
			if !a.paused.Load() {
				a.Tick(ctx)
			}
		}
	}
}

// Tick autosaves once if the session changed. It reports whether it saved.
func (a *Autosaver) Tick(ctx context.Context) bool {
	rev := a.session.Revision()
	if rev == a.lastSaved.Load() {
		return false
	}
	if err := a.service.Autosave(ctx, rev); err != nil {
		a.service.logger.Error("autosave failed", "error", err)
		return false
	}
	a.lastSaved.Store(rev)
	return true
}

// MarkSaved records rev as persisted, for example after an explicit save.
func (a *Autosaver) MarkSaved(rev int64) {
	a.lastSaved.Store(rev)
}

func (a *Autosaver) Pause() {
	a.paused.Store(true)
	a.service.logger.Info("autosaver paused")
}

func (a *Autosaver) Resume() {
	a.paused.Store(false)
	a.service.logger.Info("autosaver resumed")
}

func (a *Autosaver) IsPaused() bool {
	return a.paused.Load()
}

func (a *Autosaver) IsRunning() bool {
	return a.running.Load()
}

package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks the live sessions of this process and restores sessions
// from snapshots after a restart.
type Registry struct {
	rules  Rules
	ports  Ports
	repo   Repository
	logger *slog.Logger

	// TickEvery overrides the countdown granularity for every session the
	// registry creates. Zero keeps the one-second default.
	TickEvery time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry builds a session registry.
func NewRegistry(rules Rules, ports Ports, repo Repository, logger *slog.Logger) *Registry {
	return &Registry{
		rules:    rules,
		ports:    ports,
		repo:     repo,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create opens a fresh onboarding session at the home screen.
func (r *Registry) Create(ctx context.Context) *Session {
	sess := r.newSession(uuid.NewString())
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	sess.persist(ctx)
	return sess
}

// Get returns a live session, falling back to a persisted snapshot when the
// process restarted since the session was opened.
func (r *Registry) Get(ctx context.Context, id string) (*Session, bool) {
	r.mu.Lock()
	if sess, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return sess, true
	}
	r.mu.Unlock()

	if r.repo == nil {
		return nil, false
	}
	snap, err := r.repo.Find(ctx, id)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("restore session snapshot", "session_id", id, "error", err)
		return nil, false
	}

	sess := r.newSession(id)
	sess.mu.Lock()
	sess.state = snap.State
	// An in-flight operation died with the old process; the user retriggers.
	sess.state.Pending = ""
	resumeTimer := sess.state.Screen == ScreenVerifyOTP && sess.state.ResendIn > 0
	sess.mu.Unlock()

	r.mu.Lock()
	// Another request may have restored it concurrently; keep the first.
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return existing, true
	}
	r.sessions[id] = sess
	r.mu.Unlock()

	if resumeTimer {
		sess.startTimer()
	}
	return sess, true
}

// Remove closes and forgets a session, deleting its snapshot.
func (r *Registry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		sess.Close()
	}
	if r.repo != nil {
		if err := r.repo.Delete(ctx, id); err != nil {
			r.logger.Warn("delete session snapshot", "session_id", id, "error", err)
		}
	}
}

// Shutdown closes every live session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sess := range r.sessions {
		sess.Close()
	}
	r.sessions = make(map[string]*Session)
}

func (r *Registry) newSession(id string) *Session {
	sess := NewSession(id, r.rules, r.ports, r.repo, r.logger)
	if r.TickEvery > 0 {
		sess.tickEvery = r.TickEvery
	}
	return sess
}

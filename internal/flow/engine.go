package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sproutfin/sprout/internal/biometric"
	"github.com/sproutfin/sprout/internal/gateway"
	"github.com/sproutfin/sprout/internal/notification"
	"github.com/sproutfin/sprout/internal/prefs"
	"github.com/sproutfin/sprout/internal/profile"
)

const enrollPromptMessage = "Authenticate to enable biometrics"

// Gateway is the identity-provider port the engine calls.
type Gateway interface {
	LookupProfileByEmail(ctx context.Context, email string) (gateway.Record, error)
	RequestSignInCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	CreateProfile(ctx context.Context, p profile.Profile) error
}

// Enroller is the biometric capability port.
type Enroller interface {
	CheckAvailability(ctx context.Context) biometric.Availability
	Enroll(ctx context.Context, promptMessage string) (string, error)
	Skip(ctx context.Context)
	Decision(ctx context.Context) prefs.BiometricPreference
}

// Ports aggregates the collaborators effects run against.
type Ports struct {
	Gateway    Gateway
	Biometrics Enroller
	Notifier   notification.Notifier
}

// Session binds one device's machine instance to the ports. Dispatch is the
// only way state changes; callers receive value copies.
type Session struct {
	ID     string
	rules  Rules
	ports  Ports
	repo   Repository
	logger *slog.Logger

	// tickEvery controls countdown granularity; tests shrink it.
	tickEvery time.Duration

	mu          sync.Mutex
	state       State
	timerCancel context.CancelFunc
}

// NewSession builds a session at the initial state. repo may be nil when
// snapshots are not wanted.
func NewSession(id string, rules Rules, ports Ports, repo Repository, logger *slog.Logger) *Session {
	return &Session{
		ID:        id,
		rules:     rules,
		ports:     ports,
		repo:      repo,
		logger:    logger,
		tickEvery: time.Second,
		state:     NewState(),
	}
}

// State returns a copy of the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies one event, runs the resulting effects to completion and
// returns the settled state. Effects feed their completion events back in,
// so a single user event may advance the machine several steps.
func (s *Session) Dispatch(ctx context.Context, ev Event) State {
	s.mu.Lock()
	next, effects := s.rules.Transition(s.state, ev)
	s.state = next
	s.mu.Unlock()

	s.persist(ctx)

	for _, fx := range effects {
		s.run(ctx, fx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels the countdown timer. The session must not be dispatched to
// afterwards.
func (s *Session) Close() {
	s.stopTimer()
}

func (s *Session) run(ctx context.Context, fx Effect) {
	switch fx := fx.(type) {
	case FxLookupProfile:
		_, err := s.ports.Gateway.LookupProfileByEmail(ctx, fx.Email)
		found := err == nil
		if errors.Is(err, gateway.ErrNotFound) {
			err = nil
		}
		s.Dispatch(ctx, LookupFinished{Found: found, Err: err})

	case FxRequestCode:
		err := s.ports.Gateway.RequestSignInCode(ctx, fx.Email)
		s.Dispatch(ctx, CodeRequested{Err: err})

	case FxVerifyCode:
		err := s.ports.Gateway.VerifyCode(ctx, fx.Email, fx.Code)
		s.Dispatch(ctx, CodeVerified{Err: err})

	case FxCreateProfile:
		err := s.ports.Gateway.CreateProfile(ctx, fx.Profile)
		s.Dispatch(ctx, ProfileCreated{Err: err})

	case FxCheckBiometrics:
		decided := s.ports.Biometrics.Decision(ctx).Decision != prefs.BiometricUndecided
		avail := biometric.Availability{}
		if !decided {
			avail = s.ports.Biometrics.CheckAvailability(ctx)
		}
		s.Dispatch(ctx, BiometricsChecked{Avail: avail, AlreadyDecided: decided})

	case FxEnroll:
		keyRef, err := s.ports.Biometrics.Enroll(ctx, enrollPromptMessage)
		done := EnrollFinished{KeyRef: keyRef}
		if errors.Is(err, biometric.ErrPromptDeclined) {
			done.Declined = true
		} else if err != nil {
			done.Err = err
		}
		s.Dispatch(ctx, done)

	case FxSkipBiometrics:
		s.ports.Biometrics.Skip(ctx)

	case FxStartResendTimer:
		s.startTimer()

	case FxStopResendTimer:
		s.stopTimer()

	case FxNotify:
		if s.ports.Notifier == nil {
			return
		}
		msg := notification.Message{Kind: fx.Kind, Destination: s.State().Email, Body: fx.Key}
		if err := s.ports.Notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("send notification", "kind", fx.Kind, "error", err)
		}
	}
}

func (s *Session) startTimer() {
	s.mu.Lock()
	if s.timerCancel != nil {
		s.timerCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.timerCancel = cancel
	interval := s.tickEvery
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Dispatch(context.Background(), Tick{})
			}
		}
	}()
}

func (s *Session) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
}

// persist snapshots the state, best effort: a storage failure never blocks
// the flow.
func (s *Session) persist(ctx context.Context) {
	if s.repo == nil {
		return
	}
	snap := Snapshot{ID: s.ID, State: s.State(), UpdatedAt: time.Now().UTC()}
	if err := s.repo.Save(ctx, snap); err != nil {
		s.logger.Warn("save session snapshot", "session_id", s.ID, "error", err)
	}
}

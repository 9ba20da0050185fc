package biometric

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sproutfin/sprout/internal/prefs"
)

// Availability is the device's answer to a sensor query, with the capability
// kind (face, fingerprint) when present.
type Availability struct {
	Available bool   `json:"available"`
	Kind      string `json:"kind,omitempty"`
}

// Provider abstracts the platform biometric capability: sensor query,
// key-pair creation and the user-presence prompt.
type Provider interface {
	Availability(ctx context.Context) (Availability, error)
	// CreateKeys generates a device key pair and returns an opaque
	// reference to the public key.
	CreateKeys(ctx context.Context) (string, error)
	// Prompt asks for user presence. false with nil error means the user
	// declined or cancelled.
	Prompt(ctx context.Context, message string) (bool, error)
}

// ErrPromptDeclined marks a user-side rejection or cancellation of the
// presence prompt. Non-fatal; the user may retry or skip.
var ErrPromptDeclined = errors.New("biometric prompt declined")

// Manager wraps the device capability and records the enrollment outcome in
// the preference store.
type Manager struct {
	provider Provider
	store    prefs.Store
	logger   *slog.Logger
}

// NewManager builds an enrollment manager over the given provider and store.
func NewManager(provider Provider, store prefs.Store, logger *slog.Logger) *Manager {
	return &Manager{provider: provider, store: store, logger: logger}
}

// CheckAvailability queries the sensor. A query failure degrades to
// unavailable so the flow can advance past the step.
func (m *Manager) CheckAvailability(ctx context.Context) Availability {
	avail, err := m.provider.Availability(ctx)
	if err != nil {
		m.logger.Warn("biometric availability check", "error", err)
		return Availability{}
	}
	if avail.Available && avail.Kind == "" {
		// Kind metadata is advisory; availability without it counts as absent.
		return Availability{}
	}
	return avail
}

// Enroll creates a key pair, prompts for user presence and, on success,
// persists the enabled decision with the key reference. Every failure is
// non-fatal: the caller surfaces it and the user may retry or skip.
func (m *Manager) Enroll(ctx context.Context, promptMessage string) (string, error) {
	keyRef, err := m.provider.CreateKeys(ctx)
	if err != nil {
		return "", err
	}

	ok, err := m.provider.Prompt(ctx, promptMessage)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrPromptDeclined
	}

	prefs.WriteBiometrics(ctx, m.store, prefs.BiometricPreference{Decision: prefs.BiometricEnabled, KeyRef: keyRef}, m.logger)
	m.logger.Info("biometric enrollment completed", "key_ref", keyRef)
	return keyRef, nil
}

// Skip records the disabled decision.
func (m *Manager) Skip(ctx context.Context) {
	prefs.WriteBiometrics(ctx, m.store, prefs.BiometricPreference{Decision: prefs.BiometricDisabled}, m.logger)
}

// Decision returns the persisted enrollment state; once decided the flow
// never re-prompts unless the store is cleared.
func (m *Manager) Decision(ctx context.Context) prefs.BiometricPreference {
	return prefs.ReadBiometrics(ctx, m.store, m.logger)
}

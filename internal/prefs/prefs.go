package prefs

import (
	"context"
	"log/slog"
)

// Well-known preference keys. The language and biometric records are owned by
// different components and never require cross-key atomicity.
const (
	KeyLanguage          = "app_language"
	KeyBiometricsEnabled = "biometrics_enabled"
	KeyBiometricKeyRef   = "biometric_public_key"
)

// Store persists small key-value preference records across process restarts.
// A read miss and a read failure are both reported through ok=false; callers
// that must distinguish them inspect the error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// BiometricDecision is the tri-state outcome of the biometric setup step.
type BiometricDecision string

const (
	BiometricUndecided BiometricDecision = "undecided"
	BiometricEnabled   BiometricDecision = "enabled"
	BiometricDisabled  BiometricDecision = "disabled"
)

// BiometricPreference is the persisted enrollment decision plus the opaque
// key reference produced by enrollment.
type BiometricPreference struct {
	Decision BiometricDecision
	KeyRef   string
}

// ReadLanguage returns the persisted language code, treating any storage
// failure as absent.
func ReadLanguage(ctx context.Context, s Store, logger *slog.Logger) (string, bool) {
	value, ok, err := s.Get(ctx, KeyLanguage)
	if err != nil {
		logger.Warn("read language preference", "error", err)
		return "", false
	}
	return value, ok
}

// ReadBiometrics loads the biometric record. Storage failures degrade to
// "not decided" so the flow never blocks on the store.
func ReadBiometrics(ctx context.Context, s Store, logger *slog.Logger) BiometricPreference {
	enabled, ok, err := s.Get(ctx, KeyBiometricsEnabled)
	if err != nil {
		logger.Warn("read biometric preference", "error", err)
		return BiometricPreference{Decision: BiometricUndecided}
	}
	if !ok {
		return BiometricPreference{Decision: BiometricUndecided}
	}
	if enabled != "true" {
		return BiometricPreference{Decision: BiometricDisabled}
	}
	keyRef, _, err := s.Get(ctx, KeyBiometricKeyRef)
	if err != nil {
		logger.Warn("read biometric key reference", "error", err)
	}
	return BiometricPreference{Decision: BiometricEnabled, KeyRef: keyRef}
}

// WriteBiometrics records the enrollment decision. Writes are best effort:
// failures are logged and the caller proceeds regardless.
func WriteBiometrics(ctx context.Context, s Store, pref BiometricPreference, logger *slog.Logger) {
	switch pref.Decision {
	case BiometricEnabled:
		BestEffortSet(ctx, s, KeyBiometricsEnabled, "true", logger)
		BestEffortSet(ctx, s, KeyBiometricKeyRef, pref.KeyRef, logger)
	case BiometricDisabled:
		BestEffortSet(ctx, s, KeyBiometricsEnabled, "false", logger)
	}
}

// BestEffortSet writes a preference and logs instead of failing; persistence
// problems must never block user progress.
func BestEffortSet(ctx context.Context, s Store, key, value string, logger *slog.Logger) {
	if err := s.Set(ctx, key, value); err != nil {
		logger.Warn("persist preference", "key", key, "error", err)
	}
}

package biometric

import (
	"context"

	"github.com/google/uuid"
)

// StaticProvider simulates a device capability for development and tests.
type StaticProvider struct {
	Supported bool
	Kind      string
	// Decline makes the presence prompt report a user rejection.
	Decline bool
}

// Availability reports the configured capability.
func (p StaticProvider) Availability(_ context.Context) (Availability, error) {
	if !p.Supported {
		return Availability{}, nil
	}
	kind := p.Kind
	if kind == "" {
		kind = "fingerprint"
	}
	return Availability{Available: true, Kind: kind}, nil
}

// CreateKeys returns a synthetic key reference.
func (p StaticProvider) CreateKeys(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// Prompt approves unless configured to decline.
func (p StaticProvider) Prompt(_ context.Context, _ string) (bool, error) {
	return !p.Decline, nil
}

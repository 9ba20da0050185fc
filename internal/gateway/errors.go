package gateway

import (
	"errors"
	"fmt"
)

// Business rejections from the identity provider. They are distinct from
// transport failures so the flow can render field-level messages instead of a
// generic alert.
var (
	ErrNotFound       = errors.New("profile not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidCode    = errors.New("invalid or expired code")
)

// TransportError wraps network failures and unexpected upstream statuses.
// Status is zero when the request never produced a response.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err represents a transport-level failure
// rather than a business rejection.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

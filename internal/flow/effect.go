package flow

import "github.com/sproutfin/sprout/internal/profile"

// Effect is a side effect requested by a transition. The engine executes
// effects against its ports and feeds completion events back in.
type Effect interface{ isEffect() }

// FxLookupProfile queries the identity provider for an existing profile.
type FxLookupProfile struct {
	Email string
}

// FxRequestCode dispatches a one-time passcode to the address.
type FxRequestCode struct {
	Email string
}

// FxVerifyCode verifies the entered passcode.
type FxVerifyCode struct {
	Email string
	Code  string
}

// FxCreateProfile submits the personal-details record.
type FxCreateProfile struct {
	Profile profile.Profile
}

// FxCheckBiometrics queries device capability and the persisted decision.
type FxCheckBiometrics struct{}

// FxEnroll runs key creation plus the user-presence prompt.
type FxEnroll struct{}

// FxSkipBiometrics persists the disabled decision, best effort.
type FxSkipBiometrics struct{}

// FxStartResendTimer starts the one-second countdown scoped to the
// verification screen.
type FxStartResendTimer struct{}

// FxStopResendTimer cancels the countdown when the screen deactivates.
type FxStopResendTimer struct{}

// FxNotify emits a user-facing notification outside the screen itself.
// Kind classifies the notification; Key is the message key for its body.
type FxNotify struct {
	Kind string
	Key  string
}

func (FxLookupProfile) isEffect()    {}
func (FxRequestCode) isEffect()      {}
func (FxVerifyCode) isEffect()       {}
func (FxCreateProfile) isEffect()    {}
func (FxCheckBiometrics) isEffect()  {}
func (FxEnroll) isEffect()           {}
func (FxSkipBiometrics) isEffect()   {}
func (FxStartResendTimer) isEffect() {}
func (FxStopResendTimer) isEffect()  {}
func (FxNotify) isEffect()           {}

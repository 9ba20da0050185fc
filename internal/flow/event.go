package flow

import "github.com/sproutfin/sprout/internal/biometric"

// Event is one input to the transition function: either a user interaction
// or the completion of an asynchronous effect.
type Event interface{ isEvent() }

// User interactions.

// GoLogin navigates Home -> Login.
type GoLogin struct{}

// GoSignUp navigates Home -> SignUp.
type GoSignUp struct{}

// OpenSettings enters the settings side branch from Home or Dashboard.
type OpenSettings struct{}

// CloseSettings returns to the branch origin.
type CloseSettings struct{}

// SubmitLogin triggers the existing-profile lookup.
type SubmitLogin struct {
	Email string
}

// EditSignUp updates the sign-up form.
type EditSignUp struct {
	Email         string
	TermsAccepted bool
}

// SubmitSignUp requests the sign-in code for the sign-up form email.
type SubmitSignUp struct{}

// SetOTPDigit writes one passcode position.
type SetOTPDigit struct {
	Index int
	Value string
}

// ClearOTP empties the passcode entry.
type ClearOTP struct{}

// ResendCode requests a fresh passcode once the countdown reaches zero.
type ResendCode struct{}

// Tick advances the one-second resend countdown.
type Tick struct{}

// EditDetails updates the personal-details form; password and confirmation
// errors are recomputed on every edit.
type EditDetails struct {
	Form DetailsForm
}

// SubmitDetails submits the personal-details form.
type SubmitDetails struct{}

// EnrollBiometrics starts biometric enrollment.
type EnrollBiometrics struct{}

// SkipBiometrics records the disabled decision and advances.
type SkipBiometrics struct{}

// Logout resets the whole navigation state back to Home.
type Logout struct{}

// Effect completions, fed back by the engine.

// LookupFinished reports the login profile lookup. Err is nil for both
// found and not-found; the two outcomes stay distinguishable from a failed
// query.
type LookupFinished struct {
	Found bool
	Err   error
}

// CodeRequested reports the sign-in code dispatch.
type CodeRequested struct {
	Err error
}

// CodeVerified reports passcode verification.
type CodeVerified struct {
	Err error
}

// ProfileCreated reports the personal-details submission. The transition
// distinguishes duplicate-email rejections from transport failures via the
// gateway sentinels.
type ProfileCreated struct {
	Err error
}

// BiometricsChecked reports the capability query, plus whether a persisted
// decision already exists (in which case the step never re-prompts).
type BiometricsChecked struct {
	Avail          biometric.Availability
	AlreadyDecided bool
}

// EnrollFinished reports the enrollment attempt.
type EnrollFinished struct {
	KeyRef   string
	Declined bool
	Err      error
}

func (GoLogin) isEvent()          {}
func (GoSignUp) isEvent()         {}
func (OpenSettings) isEvent()     {}
func (CloseSettings) isEvent()    {}
func (SubmitLogin) isEvent()      {}
func (EditSignUp) isEvent()       {}
func (SubmitSignUp) isEvent()     {}
func (SetOTPDigit) isEvent()      {}
func (ClearOTP) isEvent()         {}
func (ResendCode) isEvent()       {}
func (Tick) isEvent()             {}
func (EditDetails) isEvent()      {}
func (SubmitDetails) isEvent()    {}
func (EnrollBiometrics) isEvent() {}
func (SkipBiometrics) isEvent()   {}
func (Logout) isEvent()           {}
func (LookupFinished) isEvent()   {}
func (CodeRequested) isEvent()    {}
func (CodeVerified) isEvent()     {}
func (ProfileCreated) isEvent()   {}
func (BiometricsChecked) isEvent() {}
func (EnrollFinished) isEvent()    {}

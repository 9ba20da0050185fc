package flow

import "github.com/sproutfin/sprout/internal/profile"

// Operation names held in State.Pending while an asynchronous call is in
// flight. While Pending is non-empty the triggering controls are disabled:
// duplicate submissions are ignored.
const (
	opLookup         = "lookup_profile"
	opRequestCode    = "request_code"
	opVerifyCode     = "verify_code"
	opCreateProfile  = "create_profile"
	opBiometricCheck = "biometric_check"
	opEnroll         = "enroll"
)

// SignUpForm holds the sign-up screen inputs.
type SignUpForm struct {
	Email         string `json:"email"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// DetailsForm holds the personal-details inputs. Password material is kept
// out of every serialization: snapshots and state views never carry it.
type DetailsForm struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Nationality string `json:"nationality"`
	Password    string `json:"-"`
	Confirm     string `json:"-"`
}

// BiometricState mirrors the biometric setup step on the state view.
type BiometricState struct {
	Checked   bool   `json:"checked"`
	Available bool   `json:"available"`
	Kind      string `json:"kind,omitempty"`
	KeyRef    string `json:"keyRef,omitempty"`
}

// State is the full machine state. Screens receive it read-only; only
// Transition produces new states.
type State struct {
	Screen Screen `json:"screen"`
	// ReturnTo is the origin of the settings side branch.
	ReturnTo Screen `json:"returnTo,omitempty"`
	// Email is the typed parameter carried from sign-up into verification.
	Email   string `json:"email,omitempty"`
	Pending string `json:"pending,omitempty"`
	// Err and Notice are message keys; FieldErrors carry inline texts.
	Err           string            `json:"error,omitempty"`
	Notice        string            `json:"notice,omitempty"`
	SuggestSignUp bool              `json:"suggestSignUp,omitempty"`
	FieldErrors   map[string]string `json:"fieldErrors,omitempty"`
	SignUp        SignUpForm        `json:"signUp"`
	OTP           OTPEntry          `json:"otp"`
	ResendIn      int               `json:"resendIn"`
	Details       DetailsForm       `json:"details"`
	Biometric     BiometricState    `json:"biometric"`
}

// NewState returns the initial machine state at the home screen.
func NewState() State {
	return State{Screen: ScreenHome}
}

// Busy reports whether an asynchronous operation is pending.
func (s State) Busy() bool {
	return s.Pending != ""
}

// profile assembles the submission payload from the collected details and
// the verified email.
func (s State) profile() profile.Profile {
	return profile.Profile{
		Email:       s.Email,
		FirstName:   s.Details.FirstName,
		MiddleName:  s.Details.MiddleName,
		LastName:    s.Details.LastName,
		DateOfBirth: s.Details.DateOfBirth,
		Nationality: s.Details.Nationality,
		Password:    s.Details.Password,
	}
}

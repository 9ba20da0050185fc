package flow

import (
	"errors"

	"github.com/sproutfin/sprout/internal/gateway"
	"github.com/sproutfin/sprout/internal/notification"
	"github.com/sproutfin/sprout/internal/profile"
)

// Rules holds the tunable policy of the machine.
type Rules struct {
	// ResendSeconds is the countdown before a fresh code may be requested.
	ResendSeconds int
}

// DefaultRules matches the observed product behavior.
func DefaultRules() Rules {
	return Rules{ResendSeconds: 60}
}

// Transition is the pure core of the onboarding flow: given the current
// state and one event it returns the next state and the side effects to run.
// Events that do not apply to the current screen, or that would re-enter a
// pending operation, are ignored.
func (r Rules) Transition(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case GoLogin:
		if s.Screen != ScreenHome {
			return s, nil
		}
		s.Screen = ScreenLogin
		s.Err = ""
		s.SuggestSignUp = false
		return s, nil

	case GoSignUp:
		if s.Screen != ScreenHome {
			return s, nil
		}
		s.Screen = ScreenSignUp
		s.Err = ""
		return s, nil

	case OpenSettings:
		if s.Screen != ScreenHome && s.Screen != ScreenDashboard {
			return s, nil
		}
		s.ReturnTo = s.Screen
		s.Screen = ScreenSettings
		return s, nil

	case CloseSettings:
		if s.Screen != ScreenSettings {
			return s, nil
		}
		if s.ReturnTo == "" {
			s.ReturnTo = ScreenHome
		}
		s.Screen = s.ReturnTo
		s.ReturnTo = ""
		return s, nil

	case SubmitLogin:
		if s.Screen != ScreenLogin || s.Busy() {
			return s, nil
		}
		email := profile.NormalizeEmail(ev.Email)
		if !profile.ValidEmail(email) {
			s.Err = MsgEmailRequired
			return s, nil
		}
		s.Email = email
		s.Err = ""
		s.SuggestSignUp = false
		s.Pending = opLookup
		return s, []Effect{FxLookupProfile{Email: email}}

	case LookupFinished:
		if s.Screen != ScreenLogin || s.Pending != opLookup {
			return s, nil
		}
		s.Pending = ""
		switch {
		case ev.Err != nil:
			s.Err = MsgSomethingWentWrong
		case ev.Found:
			// Existing profile: continue straight to the dashboard,
			// bypassing the remaining onboarding steps.
			s.Err = ""
			s.Screen = ScreenDashboard
		default:
			s.Err = MsgNoAccountForEmail
			s.SuggestSignUp = true
		}
		return s, nil

	case EditSignUp:
		if s.Screen != ScreenSignUp {
			return s, nil
		}
		s.SignUp = SignUpForm{Email: ev.Email, TermsAccepted: ev.TermsAccepted}
		s.Err = ""
		return s, nil

	case SubmitSignUp:
		if s.Screen != ScreenSignUp || s.Busy() {
			return s, nil
		}
		email := profile.NormalizeEmail(s.SignUp.Email)
		if !profile.ValidEmail(email) || !s.SignUp.TermsAccepted {
			return s, nil
		}
		s.Err = ""
		s.Pending = opRequestCode
		return s, []Effect{FxRequestCode{Email: email}}

	case CodeRequested:
		if s.Pending != opRequestCode {
			return s, nil
		}
		s.Pending = ""
		if ev.Err != nil {
			s.Err = MsgSomethingWentWrong
			return s, nil
		}
		if s.Screen == ScreenSignUp {
			s.Screen = ScreenVerifyOTP
			s.Email = profile.NormalizeEmail(s.SignUp.Email)
			s.OTP.Clear()
			s.ResendIn = r.ResendSeconds
			return s, []Effect{FxStartResendTimer{}, FxNotify{Kind: notification.KindCodeSent, Key: "weHaveSent"}}
		}
		// Resend from the verification screen. The timer restart covers
		// sessions restored after their countdown already expired.
		s.ResendIn = r.ResendSeconds
		return s, []Effect{FxStartResendTimer{}, FxNotify{Kind: notification.KindCodeSent, Key: "weHaveSent"}}

	case SetOTPDigit:
		if s.Screen != ScreenVerifyOTP || s.Busy() {
			return s, nil
		}
		if !s.OTP.Set(ev.Index, ev.Value) {
			return s, nil
		}
		s.Err = ""
		if s.OTP.ShouldSubmit() {
			s.OTP.Submitted = true
			s.Pending = opVerifyCode
			return s, []Effect{FxVerifyCode{Email: s.Email, Code: s.OTP.Code()}}
		}
		return s, nil

	case ClearOTP:
		if s.Screen != ScreenVerifyOTP || s.Busy() {
			return s, nil
		}
		s.OTP.Clear()
		s.Err = ""
		return s, nil

	case ResendCode:
		if s.Screen != ScreenVerifyOTP || s.Busy() || s.ResendIn > 0 {
			return s, nil
		}
		s.OTP.Clear()
		s.Err = ""
		s.Pending = opRequestCode
		return s, []Effect{FxRequestCode{Email: s.Email}}

	case Tick:
		if s.Screen != ScreenVerifyOTP || s.ResendIn <= 0 {
			return s, nil
		}
		s.ResendIn--
		return s, nil

	case CodeVerified:
		if s.Screen != ScreenVerifyOTP || s.Pending != opVerifyCode {
			return s, nil
		}
		s.Pending = ""
		if ev.Err != nil {
			// The entered code is kept on screen; the next edit
			// re-arms auto-submit.
			s.OTP.Failed = true
			if errors.Is(ev.Err, gateway.ErrInvalidCode) {
				s.Err = MsgInvalidCode
			} else {
				s.Err = MsgSomethingWentWrong
			}
			return s, nil
		}
		s.Err = ""
		s.Screen = ScreenPersonalDetails
		s.FieldErrors = nil
		return s, []Effect{FxStopResendTimer{}}

	case EditDetails:
		if s.Screen != ScreenPersonalDetails || s.Busy() {
			return s, nil
		}
		s.Details = ev.Form
		s.Err = ""
		s.FieldErrors = liveFieldErrors(ev.Form)
		return s, nil

	case SubmitDetails:
		if s.Screen != ScreenPersonalDetails || s.Busy() {
			return s, nil
		}
		if errs := s.profile().Validate(s.Details.Confirm); len(errs) > 0 {
			s.FieldErrors = errs
			return s, nil
		}
		s.Err = ""
		s.FieldErrors = nil
		s.Pending = opCreateProfile
		return s, []Effect{FxCreateProfile{Profile: s.profile()}}

	case ProfileCreated:
		if s.Screen != ScreenPersonalDetails || s.Pending != opCreateProfile {
			return s, nil
		}
		s.Pending = ""
		if ev.Err != nil {
			if errors.Is(ev.Err, gateway.ErrDuplicateEmail) {
				s.Err = MsgDuplicateEmail
			} else {
				s.Err = MsgSomethingWentWrong
			}
			return s, nil
		}
		// The plaintext password is not retained beyond the submission.
		s.Details.Password = ""
		s.Details.Confirm = ""
		s.Screen = ScreenBiometricSetup
		s.Pending = opBiometricCheck
		return s, []Effect{FxCheckBiometrics{}}

	case BiometricsChecked:
		if s.Screen != ScreenBiometricSetup || s.Pending != opBiometricCheck {
			return s, nil
		}
		s.Pending = ""
		s.Biometric.Checked = true
		if ev.AlreadyDecided {
			// A persisted decision exists; never re-prompt.
			s.Screen = ScreenDashboard
			return s, nil
		}
		if !ev.Avail.Available {
			s.Notice = MsgBiometricsUnavailable
			s.Screen = ScreenDashboard
			return s, []Effect{FxNotify{Kind: notification.KindBiometricsUnavailable, Key: MsgBiometricsUnavailable}}
		}
		s.Biometric.Available = true
		s.Biometric.Kind = ev.Avail.Kind
		return s, nil

	case EnrollBiometrics:
		if s.Screen != ScreenBiometricSetup || s.Busy() || !s.Biometric.Available {
			return s, nil
		}
		s.Err = ""
		s.Pending = opEnroll
		return s, []Effect{FxEnroll{}}

	case EnrollFinished:
		if s.Screen != ScreenBiometricSetup || s.Pending != opEnroll {
			return s, nil
		}
		s.Pending = ""
		switch {
		case ev.Declined:
			s.Err = MsgEnrollmentDeclined
		case ev.Err != nil:
			s.Err = MsgEnrollmentFailed
		default:
			s.Err = ""
			s.Biometric.KeyRef = ev.KeyRef
			s.Screen = ScreenDashboard
		}
		return s, nil

	case SkipBiometrics:
		if s.Screen != ScreenBiometricSetup || s.Busy() {
			return s, nil
		}
		s.Screen = ScreenDashboard
		return s, []Effect{FxSkipBiometrics{}}

	case Logout:
		if s.Screen != ScreenDashboard {
			return s, nil
		}
		return NewState(), []Effect{FxStopResendTimer{}}
	}

	return s, nil
}

// liveFieldErrors recomputes the inline errors shown while typing: password
// strength and confirmation mismatch. Required-field errors only appear on
// submit.
func liveFieldErrors(form DetailsForm) map[string]string {
	errs := map[string]string{}
	if form.Password != "" {
		if msg := profile.PasswordError(form.Password); msg != "" {
			errs[profile.FieldPassword] = msg
		}
	}
	if form.Confirm != "" {
		if msg := profile.ConfirmError(form.Password, form.Confirm); msg != "" {
			errs[profile.FieldConfirmPassword] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

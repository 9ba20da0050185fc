package flow

// Screen identifies a node in the onboarding navigation stack.
type Screen string

const (
	ScreenHome            Screen = "home"
	ScreenLogin           Screen = "login"
	ScreenSignUp          Screen = "signup"
	ScreenVerifyOTP       Screen = "verify_otp"
	ScreenPersonalDetails Screen = "personal_details"
	ScreenBiometricSetup  Screen = "biometric_setup"
	ScreenDashboard       Screen = "dashboard"
	ScreenSettings        Screen = "settings"
)

// Message keys surfaced on the state view; the API layer translates them
// through the language resolver.
const (
	MsgNoAccountForEmail     = "noAccountForEmail"
	MsgSomethingWentWrong    = "somethingWentWrong"
	MsgInvalidCode           = "invalidCode"
	MsgEmailRequired         = "emailRequired"
	MsgBiometricsUnavailable = "biometricsUnavailable"
	MsgDuplicateEmail        = "emailAlreadyRegistered"
	MsgEnrollmentFailed      = "enrollmentFailed"
	MsgEnrollmentDeclined    = "enrollmentDeclined"
)

package profile

import "unicode"

// Field error keys surfaced inline by the personal-details step.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// Password policy messages, one per failed rule. Only the first failure is
// reported, matching the inline error the form shows.
const (
	msgPasswordLength = "Password must be at least 8 characters"
	msgPasswordLower  = "Password must contain at least one lowercase letter"
	msgPasswordUpper  = "Password must contain at least one uppercase letter"
	msgPasswordDigit  = "Password must contain at least one number"
	msgRequired       = "This field is required"
	msgMismatch       = "Passwords do not match"
)

// PasswordError returns the first violated password rule, or "" when the
// password satisfies the policy: length >= 8 with at least one lowercase
// letter, one uppercase letter and one digit.
func PasswordError(password string) string {
	if len(password) < 8 {
		return msgPasswordLength
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower {
		return msgPasswordLower
	}
	if !hasUpper {
		return msgPasswordUpper
	}
	if !hasDigit {
		return msgPasswordDigit
	}
	return ""
}

// PasswordValid reports whether the password satisfies the policy.
func PasswordValid(password string) bool {
	return PasswordError(password) == ""
}

// ConfirmError reports the confirmation mismatch independently of password
// strength; re-equality clears it.
func ConfirmError(password, confirm string) string {
	if confirm != password {
		return msgMismatch
	}
	return ""
}

// Validate checks the whole personal-details form and returns inline errors
// keyed by field. An empty map means the form is submittable.
func (p Profile) Validate(confirm string) map[string]string {
	errs := map[string]string{}
	if p.FirstName == "" {
		errs[FieldFirstName] = msgRequired
	}
	if p.LastName == "" {
		errs[FieldLastName] = msgRequired
	}
	if p.Password == "" {
		errs[FieldPassword] = msgRequired
	} else if msg := PasswordError(p.Password); msg != "" {
		errs[FieldPassword] = msg
	}
	if msg := ConfirmError(p.Password, confirm); msg != "" {
		errs[FieldConfirmPassword] = msg
	}
	return errs
}

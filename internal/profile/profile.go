package profile

import "strings"

// Profile carries the personal details collected during onboarding. The
// password is transient: it is hashed at the gateway boundary and never
// serialized, persisted or logged in the clear.
type Profile struct {
	Email       string
	FirstName   string
	MiddleName  string
	LastName    string
	DateOfBirth string // YYYY-MM-DD
	Nationality string
	Password    string `json:"-"`
}

// NormalizeEmail canonicalizes an address the way the sign-up step does
// before it reaches the identity provider.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail is a light syntactic check: non-empty, a single @ with
// characters on both sides and a dot in the domain. The identity provider
// remains the authority on deliverability.
func ValidEmail(email string) bool {
	email = NormalizeEmail(email)
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	if domain == "" || strings.Contains(email, " ") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

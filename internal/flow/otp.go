package flow

// OTPDigits is the number of passcode positions.
const OTPDigits = 6

// OTPEntry models the six-box passcode input. Each position is empty or a
// single decimal digit. Completion triggers verification exactly once per
// completed entry: later edits do not re-trigger unless the code was cleared
// and refilled, or a failed attempt re-armed the entry.
type OTPEntry struct {
	Digits [OTPDigits]string `json:"digits"`
	// Submitted records that the current fill already fired verification.
	Submitted bool `json:"submitted"`
	// Failed records a verification failure for the current fill; the next
	// edit re-arms auto-submit.
	Failed bool `json:"failed"`
}

// validDigit accepts the empty string (cleared box) or one decimal digit.
func validDigit(value string) bool {
	if value == "" {
		return true
	}
	return len(value) == 1 && value[0] >= '0' && value[0] <= '9'
}

// Set writes one position and reports whether the entry changed. Invalid
// input is rejected without mutating the entry.
func (o *OTPEntry) Set(index int, value string) bool {
	if index < 0 || index >= OTPDigits || !validDigit(value) {
		return false
	}
	if o.Digits[index] == value {
		return false
	}
	o.Digits[index] = value
	if o.Failed {
		// An edit after a failed attempt re-arms auto-submit.
		o.Submitted = false
		o.Failed = false
	}
	if !o.Complete() {
		// Dropping below completion re-arms for the next full fill.
		o.Submitted = false
	}
	return true
}

// Clear empties every position and re-arms auto-submit.
func (o *OTPEntry) Clear() {
	*o = OTPEntry{}
}

// Complete reports whether all positions are filled.
func (o *OTPEntry) Complete() bool {
	for _, d := range o.Digits {
		if d == "" {
			return false
		}
	}
	return true
}

// ShouldSubmit reports whether verification should fire now. The caller
// marks the entry submitted when it does.
func (o *OTPEntry) ShouldSubmit() bool {
	return o.Complete() && !o.Submitted
}

// Code returns the concatenated passcode.
func (o *OTPEntry) Code() string {
	var code string
	for _, d := range o.Digits {
		code += d
	}
	return code
}

package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the lifecycle, gate, and alert services. The four
// category sentinels are what handlers map to HTTP statuses; the specific
// errors wrap a category so callers can match either level with errors.Is.
var (
	// ErrNotFound indicates a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential indicates a gate code mismatch
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidState indicates a transition attempted from a status that forbids it
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation indicates missing or malformed fields on a request
	ErrValidation = errors.New("validation failed")
)

var (
	// ErrPassNotFound indicates the pass record does not exist
	ErrPassNotFound = fmt.Errorf("%w: pass does not exist", ErrNotFound)

	// ErrEndUserNotFound indicates the end user record does not exist
	ErrEndUserNotFound = fmt.Errorf("%w: end user does not exist", ErrNotFound)

	// ErrAlertNotFound indicates the alert record does not exist
	ErrAlertNotFound = fmt.Errorf("%w: alert does not exist", ErrNotFound)

	// ErrAccountNotFound indicates no account matches the supplied email
	ErrAccountNotFound = fmt.Errorf("%w: no account found with this email", ErrNotFound)

	// ErrInvalidGateCode indicates the submitted OTP does not match the pass
	ErrInvalidGateCode = fmt.Errorf("%w: invalid OTP", ErrInvalidCredential)

	// ErrGateCodeExpired indicates the per-visit code is past its expiry
	ErrGateCodeExpired = fmt.Errorf("%w: OTP has expired", ErrInvalidCredential)

	// ErrIncorrectPassword indicates a failed password comparison
	ErrIncorrectPassword = fmt.Errorf("%w: incorrect email/password", ErrInvalidCredential)

	// ErrAlreadyCheckedIn indicates the pass has already been validated at the gate
	ErrAlreadyCheckedIn = fmt.Errorf("%w: already checked in", ErrInvalidState)

	// ErrPassExpired indicates the pass has already checked out; its QR and
	// code are no longer valid
	ErrPassExpired = fmt.Errorf("%w: this QR has expired", ErrInvalidState)

	// ErrPassDenied indicates the pass was denied at approval
	ErrPassDenied = fmt.Errorf("%w: pass was denied", ErrInvalidState)

	// ErrNotPending indicates an approval decision on a pass that has
	// already been decided
	ErrNotPending = fmt.Errorf("%w: pass is not pending approval", ErrInvalidState)

	// ErrNotCheckedIn indicates a checkout for a pass that is not on site
	ErrNotCheckedIn = fmt.Errorf("%w: pass is not checked in", ErrInvalidState)

	// ErrVisitorNotAllowed indicates the end user lacks the can_add_visitor
	// permission
	ErrVisitorNotAllowed = fmt.Errorf("%w: end user may not add visitors", ErrValidation)
)

package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned when the input for an operation is malformed
	// or missing required fields. Handlers map it to a 400 response.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus is returned when a status value is outside the
	// closed set of request statuses.
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrIllegalTransition is returned when a status update would violate
	// the request state machine (e.g. marking a draft request paid).
	ErrIllegalTransition = errors.New("status transition not allowed")

	// ErrAccessDenied is returned when the caller is not the owner of the
	// request being acted on.
	ErrAccessDenied = errors.New("access denied")

	// ErrRequestNotOpen is returned when an offer is accepted against a
	// request that is no longer open for acceptance.
	ErrRequestNotOpen = errors.New("request is not open for offers")

	// ErrOfferAlreadyDecided is returned when the target offer was already
	// rejected, or another offer on the same request has already won.
	ErrOfferAlreadyDecided = errors.New("offer has already been decided")

	// ErrConflict is returned when a unique constraint is violated,
	// e.g. signing up with an email that is already registered.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ErrorResponse is the generic JSON error body returned to clients.
type ErrorResponse struct {
	Message string `json:"message"`
}

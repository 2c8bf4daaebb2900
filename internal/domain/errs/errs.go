// Package errs defines the error categories shared by every layer.
//
// Categories:
//   - ErrValidation: client-detectable input problems; never reach the persistence gateway.
//   - ErrPersistence: the gateway rejected or failed the request; terminal for the operation.
//   - ErrAuth: the gateway answered 401; the session must be torn down.
//   - ErrNotification: a side-channel delivery failed; only ever surfaced as a warning.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrPersistence  = errors.New("persistence error")
	ErrAuth         = errors.New("authentication error")
	ErrNotification = errors.New("notification error")
)

// Validation returns a validation error carrying msg.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// PersistenceError reports a gateway failure. Detail is kept verbatim.
type PersistenceError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *PersistenceError) Error() string {
	switch {
	case e.Detail != "" && e.StatusCode != 0:
		return fmt.Sprintf("persistence error (status %d): %s", e.StatusCode, e.Detail)
	case e.Detail != "":
		return "persistence error: " + e.Detail
	case e.Err != nil:
		return "persistence error: " + e.Err.Error()
	default:
		return ErrPersistence.Error()
	}
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPersistence, e.Err}
	}
	return []error{ErrPersistence}
}

// Persistence wraps a driver or transport error. Nil in, nil out.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return err
	}
	return &PersistenceError{Detail: err.Error(), Err: err}
}

// AuthError reports an invalid or expired session.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return ErrAuth.Error()
	}
	return "authentication error: " + e.Detail
}

func (e *AuthError) Unwrap() error { return ErrAuth }

// NotificationError is produced by notification collaborators.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("notification error (%s)", e.Channel)
	}
	return fmt.Sprintf("notification error (%s): %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotification, e.Err}
	}
	return []error{ErrNotification}
}

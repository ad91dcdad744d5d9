package errors

import (
	"errors"
	"fmt"
)

// Common error types for the tunnel backend
var (
	// Session / credential errors
	ErrNoSession      = errors.New("no session for credential")
	ErrInvalidPointer = errors.New("invalid pointer token")
	ErrPointerExpired = errors.New("pointer token expired")
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")

	// Customer directory errors
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrDuplicateCustomer = errors.New("customer already exists for subject")

	// Entity errors
	ErrProjectNotFound    = errors.New("project not found")
	ErrSharedPortNotFound = errors.New("shared port not found")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

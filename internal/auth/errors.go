package auth

import "errors"

var (
	// ErrAuthentication means the mechanism rejected the presented
	// credentials.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrUserNotFound means no user exists for the presented identity.
	ErrUserNotFound = errors.New("user not found")

	// ErrProviderNotFound means the request named a provider no
	// strategy is registered for.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProvider means the upstream provider call failed; the cause
	// is wrapped.
	ErrProvider = errors.New("provider error")

	// ErrUserExists means signup reused an already registered email.
	ErrUserExists = errors.New("user already exists")
)

package auth

import "errors"

var (
	// ErrMalformedToken is returned when a token cannot be parsed or its
	// signature does not verify.
	ErrMalformedToken = errors.New("malformed token")

	// ErrExpiredToken is returned when a token carries a valid signature
	// but its expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrUserNotFound is returned when a token subject does not map to an
	// existing user.
	ErrUserNotFound = errors.New("user not found")
)

package auth

import "errors"

// Token validation failures. ValidateToken returns exactly one of these.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	// ErrWrongTokenType is a well-formed, correctly signed token whose type
	// claim is not "access".
	ErrWrongTokenType = errors.New("wrong authentication token type")
)

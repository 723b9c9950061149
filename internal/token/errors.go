package token

import "errors"

var (
	ErrMissingSecret    = errors.New("token secret is empty")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrMalformedClaim   = errors.New("token claim malformed")
	ErrAudienceMismatch = errors.New("token audience mismatch")
)

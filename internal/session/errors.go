package session

import (
	"errors"
	"fmt"

	"github.com/mehmetcc/ppdb/internal/token"
)

// Kind classifies why a request is not authenticated.
type Kind int

const (
	NoCookiePresent Kind = iota + 1
	CookieMissingExpectedName
	SignatureInvalid
	Expired
	MalformedClaim
)

func (k Kind) String() string {
	switch k {
	case NoCookiePresent:
		return "no_cookie"
	case CookieMissingExpectedName:
		return "cookie_missing"
	case SignatureInvalid:
		return "signature_invalid"
	case Expired:
		return "expired"
	case MalformedClaim:
		return "malformed_claim"
	default:
		return "unknown"
	}
}

// AuthError is returned by every verifier. Callers surface all kinds the
// same way (401, generic message); Kind is for logs and metrics.
type AuthError struct {
	Kind     Kind
	Audience string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("session %s: %s", e.Audience, e.Kind)
	}
	return fmt.Sprintf("session %s: %s: %v", e.Audience, e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is(err, ErrExpired) works regardless of
// audience or cause.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoCookiePresent           = &AuthError{Kind: NoCookiePresent}
	ErrCookieMissingExpectedName = &AuthError{Kind: CookieMissingExpectedName}
	ErrSignatureInvalid          = &AuthError{Kind: SignatureInvalid}
	ErrExpired                   = &AuthError{Kind: Expired}
	ErrMalformedClaim            = &AuthError{Kind: MalformedClaim}
)

// KindOf reports the Kind carried by err, or 0 if err is not an AuthError.
func KindOf(err error) Kind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

func fromTokenError(audience string, err error) *AuthError {
	kind := MalformedClaim
	switch {
	case errors.Is(err, token.ErrExpired):
		kind = Expired
	case errors.Is(err, token.ErrSignatureInvalid), errors.Is(err, token.ErrAudienceMismatch):
		kind = SignatureInvalid
	}
	return &AuthError{Kind: kind, Audience: audience, Err: err}
}

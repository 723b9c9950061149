package session

import (
	"net/http"
	"strings"

	"github.com/mehmetcc/ppdb/internal/cookie"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/token"
	"go.uber.org/zap"
)

// Audience is a class of user a session is issued for. Each audience owns
// exactly one cookie name, and Roles is the claim shape it may carry.
type Audience struct {
	Name       string
	CookieName string
	Roles      role.Set
}

const (
	ApplicantAudience = "applicant"
	StaffAudience     = "staff"
)

// SessionVerifier answers "is this request authenticated, and as whom".
type SessionVerifier interface {
	VerifySession(r *http.Request) (*Identity, error)
	VerifyHeader(cookieHeader string) (*Identity, error)
}

// Verifier checks the session cookie of a single audience. It holds no
// mutable state.
type Verifier struct {
	audience Audience
	codec    *token.Codec
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewVerifier(a Audience, codec *token.Codec, logger *zap.Logger, m *metrics.Metrics) *Verifier {
	return &Verifier{
		audience: a,
		codec:    codec,
		logger:   logger.With(zap.String("audience", a.Name)),
		metrics:  m,
	}
}

func (v *Verifier) Audience() Audience {
	return v.audience
}

func (v *Verifier) VerifySession(r *http.Request) (*Identity, error) {
	return v.VerifyHeader(CookieHeader(r))
}

func (v *Verifier) VerifyHeader(cookieHeader string) (*Identity, error) {
	raw, ok := cookie.Read(cookieHeader, v.audience.CookieName)
	if !ok || raw == "" {
		return nil, v.fail(missingCookie(v.audience.Name, cookieHeader))
	}
	return v.verifyToken(raw)
}

func (v *Verifier) verifyToken(raw string) (*Identity, error) {
	claims, err := v.codec.Verify(raw, v.audience.Name)
	if err != nil {
		return nil, v.fail(fromTokenError(v.audience.Name, err))
	}
	if !v.audience.Roles.Has(claims.Role) {
		return nil, v.fail(&AuthError{
			Kind:     MalformedClaim,
			Audience: v.audience.Name,
			Err:      role.ErrUnknown,
		})
	}

	v.metrics.Verification(v.audience.Name, "ok")
	return &Identity{
		ID:        claims.Subject,
		Role:      claims.Role,
		Name:      claims.Name,
		Gender:    claims.Gender,
		Email:     claims.Email,
		Audience:  v.audience.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (v *Verifier) fail(err *AuthError) *AuthError {
	v.metrics.Verification(v.audience.Name, err.Kind.String())
	switch err.Kind {
	case NoCookiePresent, CookieMissingExpectedName, Expired:
		v.logger.Debug("session not authenticated", zap.Stringer("reason", err.Kind))
	default:
		v.logger.Warn("session rejected", zap.Stringer("reason", err.Kind), zap.Error(err.Err))
	}
	return err
}

func missingCookie(audience, header string) *AuthError {
	if strings.TrimSpace(header) == "" {
		return &AuthError{Kind: NoCookiePresent, Audience: audience}
	}
	return &AuthError{Kind: CookieMissingExpectedName, Audience: audience}
}

// CookieHeader joins every Cookie header on r; HTTP/2 clients may split them.
func CookieHeader(r *http.Request) string {
	return strings.Join(r.Header.Values("Cookie"), "; ")
}

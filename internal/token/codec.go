package token

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mehmetcc/ppdb/internal/role"
)

// Codec signs and verifies HS256 session tokens with one process-wide
// secret. It is immutable after NewCodec and safe for concurrent use.
type Codec struct {
	secret     []byte
	issuer     string
	signingAlg jwt.SigningMethod
	now        func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, issuer string, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret:     append([]byte(nil), secret...),
		issuer:     issuer,
		signingAlg: jwt.SigningMethodHS256,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subject describes who a token is minted for.
type Subject struct {
	ID     string
	Role   role.Role
	Name   string
	Gender string
	Email  string
}

// Issue mints a token for sub, valid for ttl, scoped to audience.
func (c *Codec) Issue(sub Subject, audience string, ttl time.Duration) (string, time.Time, error) {
	issuedAt := c.now().UTC().Truncate(time.Second)
	exp := issuedAt.Add(ttl)
	tok, err := c.Sign(&Claims{
		Role:   sub.Role,
		Name:   sub.Name,
		Gender: sub.Gender,
		Email:  sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        generateJTI(),
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Sign serializes claims as-is. The issuer is filled in when empty.
func (c *Codec) Sign(claims *Claims) (string, error) {
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: sub", ErrMalformedClaim)
	}
	if !claims.Role.Valid() {
		return "", fmt.Errorf("%w: role %q", ErrMalformedClaim, claims.Role)
	}
	if claims.ExpiresAt == nil {
		return "", fmt.Errorf("%w: exp", ErrMalformedClaim)
	}
	if claims.Issuer == "" {
		claims.Issuer = c.issuer
	}
	return jwt.NewWithClaims(c.signingAlg, claims).SignedString(c.secret)
}

// Verify checks the signature, then expiry, then claim shape. When audiences
// is non-empty the token's audience must be one of them.
func (c *Codec) Verify(tokenString string, audiences ...string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signingAlg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !tkn.Valid {
		return nil, ErrSignatureInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMalformedClaim)
	}
	r, err := role.Parse(string(claims.Role))
	if err != nil || r != claims.Role {
		return nil, fmt.Errorf("%w: role %q", ErrMalformedClaim, claims.Role)
	}

	if len(audiences) > 0 && !slices.ContainsFunc(claims.RegisteredClaims.Audience, func(a string) bool {
		return slices.Contains(audiences, a)
	}) {
		return nil, ErrAudienceMismatch
	}
	return &claims, nil
}

// classify folds jwt's error tree into our four outcomes.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformedClaim, err)
	}
}

func generateJTI() string {
	return uuid.NewString()
}

package session

import (
	"net/http"
	"strings"

	"github.com/mehmetcc/ppdb/internal/cookie"
)

// Multi accepts the session of any of its audiences, trying their cookies in
// the order given and verifying only the first one present. It keeps the old
// "either cookie" endpoints working; new routes should take a single
// Verifier.
type Multi struct {
	verifiers []*Verifier
}

func NewMulti(verifiers ...*Verifier) *Multi {
	return &Multi{verifiers: verifiers}
}

func (m *Multi) VerifySession(r *http.Request) (*Identity, error) {
	return m.VerifyHeader(CookieHeader(r))
}

func (m *Multi) VerifyHeader(cookieHeader string) (*Identity, error) {
	names := make([]string, len(m.verifiers))
	for i, v := range m.verifiers {
		names[i] = v.audience.CookieName
	}

	raw, name, ok := cookie.ReadFirst(cookieHeader, names...)
	if !ok || raw == "" {
		return nil, missingCookie(strings.Join(m.audienceNames(), ","), cookieHeader)
	}
	for _, v := range m.verifiers {
		if v.audience.CookieName == name {
			return v.verifyToken(raw)
		}
	}
	return nil, missingCookie(name, cookieHeader)
}

func (m *Multi) audienceNames() []string {
	out := make([]string, len(m.verifiers))
	for i, v := range m.verifiers {
		out[i] = v.audience.Name
	}
	return out
}

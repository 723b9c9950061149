package authz

import (
	"net/http"

	"github.com/mehmetcc/ppdb/internal/httpx"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"go.uber.org/zap"
)

// Authorize reports whether id may act under the allow-list. An absent
// identity is never authorized, and roles missing from allowed are denied.
func Authorize(id *session.Identity, allowed role.Set) bool {
	if id == nil {
		return false
	}
	return allowed.Has(id.Role)
}

type Gate struct {
	verifier session.SessionVerifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewGate(verifier session.SessionVerifier, logger *zap.Logger, m *metrics.Metrics) *Gate {
	return &Gate{verifier: verifier, logger: logger, metrics: m}
}

// Require rejects API requests with 401 when unauthenticated and 403 when
// the role is not allowed. The identity is stored in the request context.
func (g *Gate) Require(allowed ...role.Role) func(http.Handler) http.Handler {
	set := role.NewSet(allowed...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.verifier.VerifySession(r)
			if err != nil {
				g.metrics.GateDecision("unauthenticated")
				httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
					Code:    httpx.ErrUnauthorized,
					Message: "authentication required",
				})
				return
			}
			if !Authorize(id, set) {
				g.metrics.GateDecision("forbidden")
				g.logger.Info("role not allowed",
					zap.String("subject", id.ID),
					zap.String("role", string(id.Role)),
					zap.String("path", r.URL.Path),
				)
				httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
					Code:    httpx.ErrForbidden,
					Message: "insufficient role",
				})
				return
			}
			g.metrics.GateDecision("allowed")
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

// Paths are the redirect targets for server-rendered pages.
type Paths struct {
	Login        string
	Unauthorized string
}

// RequirePage is Require for pages: it redirects instead of writing JSON.
func (g *Gate) RequirePage(paths Paths, allowed ...role.Role) func(http.Handler) http.Handler {
	set := role.NewSet(allowed...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.verifier.VerifySession(r)
			if err != nil {
				g.metrics.GateDecision("unauthenticated")
				http.Redirect(w, r, paths.Login, http.StatusSeeOther)
				return
			}
			if !Authorize(id, set) {
				g.metrics.GateDecision("forbidden")
				http.Redirect(w, r, paths.Unauthorized, http.StatusSeeOther)
				return
			}
			g.metrics.GateDecision("allowed")
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

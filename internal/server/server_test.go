package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mehmetcc/ppdb/internal/config"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type routerFixture struct {
	handler http.Handler
	codec   *token.Codec
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	cfg, err := config.FromEnv(func(k string) string {
		if k == "JWT_SECRET" {
			return "server-test-secret"
		}
		return ""
	})
	require.NoError(t, err)

	codec, err := token.NewCodec([]byte(cfg.JWTConfig.Secret), cfg.JWTConfig.Issuer)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := zap.NewNop()
	applicant := session.NewVerifier(session.Audience{
		Name: session.ApplicantAudience, CookieName: cfg.CookieConfig.ApplicantName, Roles: role.Applicants,
	}, codec, logger, m)
	staff := session.NewVerifier(session.Audience{
		Name: session.StaffAudience, CookieName: cfg.CookieConfig.StaffName, Roles: role.Staff,
	}, codec, logger, m)

	h := NewRouter(Deps{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Gatherer:  reg,
		Applicant: applicant,
		Staff:     staff,
	})
	return routerFixture{handler: h, codec: codec}
}

func (f routerFixture) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f routerFixture) cookie(t *testing.T, name, audience string, r role.Role) *http.Cookie {
	t.Helper()
	tok, _, err := f.codec.Issue(token.Subject{ID: "subject-1", Role: r, Name: "Siti"}, audience, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: name, Value: tok}
}

func TestRouter_DashboardPageGuard(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get(t, "/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/login", rec.Header().Get("Location"))

	rec = f.get(t, "/dashboard", f.cookie(t, "token_dashboard", session.StaffAudience, role.Committee))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard Panitia")
	assert.Contains(t, rec.Body.String(), "Siti (committee)")
}

func TestRouter_ApplicantPageGuard(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get(t, "/pendaftaran")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// a staff session is not an applicant session
	rec = f.get(t, "/pendaftaran", f.cookie(t, "token_dashboard", session.StaffAudience, role.Admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.get(t, "/pendaftaran", f.cookie(t, "auth_token", session.ApplicantAudience, role.Applicant))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_APIWiring(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusOK, f.get(t, "/healthz").Code)
	assert.Equal(t, http.StatusForbidden, f.get(t, "/unauthorized").Code)

	rec := f.get(t, "/api/auth/verify")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.get(t, "/api/auth/verify", f.cookie(t, "auth_token", session.ApplicantAudience, role.Applicant))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.get(t, "/api/dashboard/registrants")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.get(t, "/api/dashboard/auth/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = f.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ppdb_session_verifications_total")
}

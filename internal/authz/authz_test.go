package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthorize(t *testing.T) {
	staff := role.NewSet(role.Admin, role.Committee)

	tests := []struct {
		name    string
		id      *session.Identity
		allowed role.Set
		want    bool
	}{
		{name: "admin in staff", id: &session.Identity{Role: role.Admin}, allowed: staff, want: true},
		{name: "committee in staff", id: &session.Identity{Role: role.Committee}, allowed: staff, want: true},
		{name: "applicant in staff", id: &session.Identity{Role: role.Applicant}, allowed: staff, want: false},
		{name: "unknown role", id: &session.Identity{Role: "superuser"}, allowed: staff, want: false},
		{name: "nil identity", id: nil, allowed: staff, want: false},
		{name: "nil identity all roles", id: nil, allowed: role.NewSet(role.Applicant, role.Admin, role.Committee), want: false},
		{name: "empty allow-list", id: &session.Identity{Role: role.Admin}, allowed: role.NewSet(), want: false},
		{name: "nil allow-list", id: &session.Identity{Role: role.Admin}, allowed: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.id, tt.allowed))
		})
	}
}

type fixture struct {
	gate  *Gate
	codec *token.Codec
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	codec, err := token.NewCodec([]byte("authz-test-secret"), "ppdb")
	require.NoError(t, err)
	v := session.NewVerifier(session.Audience{
		Name:       session.StaffAudience,
		CookieName: "token_dashboard",
		Roles:      role.Staff,
	}, codec, zap.NewNop(), nil)
	return fixture{gate: NewGate(v, zap.NewNop(), nil), codec: codec}
}

func (f fixture) request(t *testing.T, r role.Role) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, "/api/dashboard/registrants/1", nil)
	if r == "" {
		return req
	}
	tok, _, err := f.codec.Issue(token.Subject{ID: "staff-1", Role: r}, session.StaffAudience, time.Hour)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "token_dashboard", Value: tok})
	return req
}

func TestGate_Require(t *testing.T) {
	f := newFixture(t)
	var seen *session.Identity
	h := f.gate.Require(role.Admin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = session.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, role.Committee))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, seen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, role.Admin))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "staff-1", seen.ID)
}

func TestGate_RequirePage(t *testing.T) {
	f := newFixture(t)
	paths := Paths{Login: "/dashboard/login", Unauthorized: "/unauthorized"}
	h := f.gate.RequirePage(paths, role.Admin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, ""))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, role.Committee))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, role.Admin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

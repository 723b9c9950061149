package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mehmetcc/ppdb/internal/httpx"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	hashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

var (
	applicantAudience = session.Audience{Name: session.ApplicantAudience, CookieName: "auth_token", Roles: role.Applicants}
	staffAudience     = session.Audience{Name: session.StaffAudience, CookieName: "token_dashboard", Roles: role.Staff}
)

type serviceFixture struct {
	svc    AuthService
	people *fakePersonRepo
	logins *fakeLoginRepo
	codec  *token.Codec
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	codec, err := token.NewCodec([]byte("auth-test-secret"), "ppdb")
	require.NoError(t, err)
	people := newFakePersonRepo()
	logins := &fakeLoginRepo{}
	svc := NewAuthenticationService(people, logins, codec, []AudiencePolicy{
		{Audience: applicantAudience, TTL: 24 * time.Hour},
		{Audience: staffAudience, TTL: 8 * time.Hour},
	}, zap.NewNop())
	return serviceFixture{svc: svc, people: people, logins: logins, codec: codec}
}

func TestService_RegisterAndLogin(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	pid, err := f.svc.Register(ctx, RegisterInput{
		Email: "Siti@Example.com", Name: "Siti Rahma", Gender: person.GenderFemale,
		NISN: "0051234567", Password: "rahasia123",
	})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, session.ApplicantAudience, "siti@example.com", "rahasia123", httpx.DeviceMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, pid, res.Person.PublicID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, 2*time.Second)

	claims, err := f.codec.Verify(res.Token, session.ApplicantAudience)
	require.NoError(t, err)
	assert.Equal(t, string(pid), claims.Subject)
	assert.Equal(t, role.Applicant, claims.Role)
	assert.Equal(t, "P", claims.Gender)

	require.Len(t, f.logins.events, 1)
	assert.Equal(t, "10.0.0.1", f.logins.events[0].IP)
	assert.Equal(t, session.ApplicantAudience, f.logins.events[0].Audience)
}

func TestService_LoginRejections(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: "budi@example.com", Name: "Budi", Gender: person.GenderMale, NISN: "0051234568", Password: "rahasia123"})
	require.NoError(t, err)
	_, err = f.svc.CreateStaff(ctx, StaffInput{Email: "tu@sman1.sch.id", Name: "TU", Role: role.Admin, Password: "admin12345"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		audience string
		email    string
		password string
		want     error
	}{
		{name: "unknown email", audience: session.ApplicantAudience, email: "nobody@example.com", password: "rahasia123", want: ErrInvalidCredentials},
		{name: "wrong password", audience: session.ApplicantAudience, email: "budi@example.com", password: "salah", want: ErrInvalidCredentials},
		{name: "applicant on dashboard", audience: session.StaffAudience, email: "budi@example.com", password: "rahasia123", want: ErrInvalidCredentials},
		{name: "staff on public site", audience: session.ApplicantAudience, email: "tu@sman1.sch.id", password: "admin12345", want: ErrInvalidCredentials},
		{name: "unknown audience", audience: "parents", email: "budi@example.com", password: "rahasia123", want: ErrUnknownAudience},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tt.audience, tt.email, tt.password, httpx.DeviceMeta{})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	f.people.setActive("budi@example.com", false)
	_, err = f.svc.Login(ctx, session.ApplicantAudience, "budi@example.com", "rahasia123", httpx.DeviceMeta{})
	assert.ErrorIs(t, err, ErrUserNotActive)
	assert.Empty(t, f.logins.events)
}

func TestService_LoginHistoryFailureDoesNotBlockLogin(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.logins.err = errUpstream

	_, err := f.svc.CreateStaff(ctx, StaffInput{Email: "panitia@sman1.sch.id", Name: "Panitia", Role: role.Committee, Password: "panitia123"})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, session.StaffAudience, "panitia@sman1.sch.id", "panitia123", httpx.DeviceMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestService_CreateStaffRejectsApplicantRole(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.CreateStaff(context.Background(), StaffInput{Email: "x@y.z", Name: "X", Role: role.Applicant, Password: "12345678"})
	assert.ErrorIs(t, err, role.ErrUnknown)
}

func TestService_Profile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	pid, err := f.svc.CreateStaff(ctx, StaffInput{Email: "tu@sman1.sch.id", Name: "TU", Role: role.Admin, Password: "admin12345"})
	require.NoError(t, err)

	p, err := f.svc.Profile(ctx, string(pid))
	require.NoError(t, err)
	assert.Equal(t, "TU", p.Name)

	_, err = f.svc.Profile(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, person.ErrNotFound)
}

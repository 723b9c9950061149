package auth

import (
	"context"
	"errors"
	"time"

	"github.com/mehmetcc/ppdb/internal/audit"
	"github.com/mehmetcc/ppdb/internal/httpx"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/internal/token"
	"github.com/mehmetcc/ppdb/pkg/id"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

type RegisterInput struct {
	Email    string
	Name     string
	Gender   person.Gender
	NISN     string
	Password string
}

type StaffInput struct {
	Email    string
	Name     string
	Role     role.Role
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Person    *person.Person
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (id.PublicID, error)
	CreateStaff(ctx context.Context, in StaffInput) (id.PublicID, error)
	Login(ctx context.Context, audience, email, password string, meta httpx.DeviceMeta) (*LoginResult, error)
	Profile(ctx context.Context, publicID string) (*person.Person, error)
	LoginHistory(ctx context.Context, publicID string, limit int) ([]audit.LoginEvent, error)
}

// AudiencePolicy binds an audience to the roles that may log into it and
// the lifetime of the tokens it issues.
type AudiencePolicy struct {
	Audience session.Audience
	TTL      time.Duration
}

type authService struct {
	personRepo person.PersonRepo
	loginRepo  audit.LoginRepo
	codec      *token.Codec
	audiences  map[string]AudiencePolicy
	logger     *zap.Logger
	dummyHash  []byte
}

func NewAuthenticationService(
	personRepo person.PersonRepo,
	loginRepo audit.LoginRepo,
	codec *token.Codec,
	audiences []AudiencePolicy,
	logger *zap.Logger,
) AuthService {
	byName := make(map[string]AudiencePolicy, len(audiences))
	for _, a := range audiences {
		byName[a.Audience.Name] = a
	}
	// compared against when the email is unknown so both paths cost a bcrypt
	dummy, _ := bcrypt.GenerateFromPassword([]byte("ppdb-dummy-password"), hashCost)
	return &authService{
		personRepo: personRepo,
		loginRepo:  loginRepo,
		codec:      codec,
		audiences:  byName,
		logger:     logger,
		dummyHash:  dummy,
	}
}

func (a *authService) Register(ctx context.Context, in RegisterInput) (id.PublicID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		a.logger.Error("failed to hash password", zap.Error(err))
		return "", err
	}

	return a.personRepo.Create(ctx, &person.PersonDTO{
		Email:    in.Email,
		Name:     in.Name,
		Gender:   in.Gender,
		NISN:     in.NISN,
		Password: string(hashed),
		Role:     role.Applicant,
		IsActive: true,
	})
}

func (a *authService) CreateStaff(ctx context.Context, in StaffInput) (id.PublicID, error) {
	if !role.Staff.Has(in.Role) {
		return "", role.ErrUnknown
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		a.logger.Error("failed to hash password", zap.Error(err))
		return "", err
	}

	return a.personRepo.Create(ctx, &person.PersonDTO{
		Email:    in.Email,
		Name:     in.Name,
		Password: string(hashed),
		Role:     in.Role,
		IsActive: true,
	})
}

func (a *authService) Login(ctx context.Context, audience, email, password string, meta httpx.DeviceMeta) (*LoginResult, error) {
	policy, ok := a.audiences[audience]
	if !ok {
		return nil, ErrUnknownAudience
	}

	p, err := a.personRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	// a staff account logging in on the applicant site (or the reverse) looks
	// exactly like a wrong password
	if !policy.Audience.Roles.Has(p.Role) {
		a.logger.Info("login role does not match audience",
			zap.String("audience", audience),
			zap.String("role", string(p.Role)),
		)
		return nil, ErrInvalidCredentials
	}
	if !p.IsActive {
		return nil, ErrUserNotActive
	}

	tok, exp, err := a.codec.Issue(token.Subject{
		ID:     string(p.PublicID),
		Role:   p.Role,
		Name:   p.Name,
		Gender: string(p.Gender),
		Email:  p.Email,
	}, audience, policy.TTL)
	if err != nil {
		a.logger.Error("failed to sign session token", zap.Error(err))
		return nil, err
	}

	if _, err := a.loginRepo.Record(ctx, audit.NewLoginEvent(p.ID, audience, meta)); err != nil {
		a.logger.Warn("login history not recorded", zap.String("public_id", string(p.PublicID)), zap.Error(err))
	}

	return &LoginResult{Token: tok, ExpiresAt: exp, Person: p}, nil
}

func (a *authService) Profile(ctx context.Context, publicID string) (*person.Person, error) {
	pid, err := id.ParsePublicID(publicID)
	if err != nil {
		return nil, person.ErrNotFound
	}
	return a.personRepo.GetByPublicID(ctx, pid)
}

func (a *authService) LoginHistory(ctx context.Context, publicID string, limit int) ([]audit.LoginEvent, error) {
	p, err := a.Profile(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return a.loginRepo.ListByPerson(ctx, p.ID, limit)
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/ppdb/internal/config"
	"github.com/mehmetcc/ppdb/internal/cookie"
	"github.com/mehmetcc/ppdb/internal/httpx"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/session"
	"go.uber.org/zap"
)

type AuthenticationHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	ApplicantLogin(w http.ResponseWriter, r *http.Request)
	StaffLogin(w http.ResponseWriter, r *http.Request)
	Verify(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Logins(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

// Verifiers are the session checks the handler needs: one per audience and
// the compatibility verifier behind /auth/verify.
type Verifiers struct {
	Applicant *session.Verifier
	Staff     *session.Verifier
	Either    session.SessionVerifier
}

type authenticationHandler struct {
	logger      *zap.Logger
	authService AuthService
	verifiers   Verifiers
	cookies     *config.CookieConfig
	loginRate   int
	metrics     *metrics.Metrics
	validator   *validator.Validate
}

func NewAuthenticationHandler(
	authService AuthService,
	verifiers Verifiers,
	cookies *config.CookieConfig,
	rate *config.RateConfig,
	m *metrics.Metrics,
	l *zap.Logger,
) AuthenticationHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &authenticationHandler{
		logger:      l,
		authService: authService,
		verifiers:   verifiers,
		cookies:     cookies,
		loginRate:   rate.LoginPerMinute,
		metrics:     m,
		validator:   v,
	}
}

// Routes is mounted under /api.
func (a *authenticationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(a.loginRate, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.WriteError(w, http.StatusTooManyRequests, httpx.ErrorResponse[any]{
					Code:    httpx.ErrTooManyRequests,
					Message: "too many attempts, try again later",
				})
			}),
		))
		r.Post("/register", a.Register)
		r.Post("/auth/login", a.ApplicantLogin)
		r.Post("/dashboard/auth/login", a.StaffLogin)
	})
	r.Get("/auth/verify", a.Verify)
	r.Get("/dashboard/auth/me", a.Me)
	r.Get("/dashboard/auth/logins", a.Logins)
	r.Post("/logout", a.Logout)
	return r
}

func (a *authenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req registerApplicantRequest
	if !httpx.DecodeJSON(w, r, &req) {
		a.logger.Warn("failed to decode register request body")
		return
	}
	if !a.validate(w, req) {
		return
	}

	/** Business logic */
	id, err := a.authService.Register(ctx, RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Gender:   person.Gender(req.Gender),
		NISN:     req.NISN,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, person.ErrDuplicateEmail):
			a.logger.Debug("duplicate email", zap.String("email", req.Email))
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code:    httpx.ErrConflict,
				Message: "email already exists",
			})
		case errors.Is(err, person.ErrDuplicateNISN):
			a.logger.Debug("duplicate nisn", zap.String("nisn", req.NISN))
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code:    httpx.ErrConflict,
				Message: "nisn already registered",
			})
		default:
			a.logger.Error("failed to register applicant", zap.Error(err))
			a.internalError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerApplicantResponse{
		PublicID: string(id),
	})
}

func (a *authenticationHandler) ApplicantLogin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, a.verifiers.Applicant.Audience())
}

func (a *authenticationHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, a.verifiers.Staff.Audience())
}

func (a *authenticationHandler) login(w http.ResponseWriter, r *http.Request, aud session.Audience) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req loginRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if !a.validate(w, req) {
		return
	}

	res, err := a.authService.Login(ctx, aud.Name, req.Email, req.Password, httpx.DeviceMetaFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserNotActive):
			a.metrics.Login(aud.Name, "rejected")
			a.logger.Info("login rejected", zap.String("audience", aud.Name), zap.Error(err))
			httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "invalid email or password",
			})
		default:
			a.metrics.Login(aud.Name, "error")
			a.logger.Error("login failed", zap.String("audience", aud.Name), zap.Error(err))
			a.internalError(w)
		}
		return
	}

	a.metrics.Login(aud.Name, "ok")
	cookie.Set(w, a.cookies, aud.CookieName, res.Token, res.ExpiresAt)
	httpx.WriteRaw(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    userFromPerson(res.Person),
	})
}

// Verify accepts either session cookie. It answers only "who is this"; the
// caller applies its own role gate.
func (a *authenticationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := a.verifiers.Either.VerifySession(r)
	if err != nil {
		httpx.WriteRaw(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}
	httpx.WriteRaw(w, http.StatusOK, verifyResponse{User: verifiedUser{
		ID:    id.ID,
		Email: id.Email,
		Role:  string(id.Role),
	}})
}

func (a *authenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := a.verifiers.Staff.VerifySession(r)
	if err != nil {
		httpx.WriteRaw(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	u := userFromIdentity(id)
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	// enrichment only; the claim is enough to answer
	if p, err := a.authService.Profile(ctx, id.ID); err != nil {
		a.logger.Warn("profile lookup failed, answering from claim", zap.String("subject", id.ID), zap.Error(err))
	} else {
		u = userFromPerson(p)
	}

	httpx.WriteRaw(w, http.StatusOK, meResponse{Success: true, User: u})
}

func (a *authenticationHandler) Logins(w http.ResponseWriter, r *http.Request) {
	id, err := a.verifiers.Staff.VerifySession(r)
	if err != nil {
		httpx.WriteRaw(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	events, err := a.authService.LoginHistory(ctx, id.ID, 20)
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			httpx.WriteRaw(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		a.logger.Error("failed to load login history", zap.Error(err))
		a.internalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, events)
}

// Logout clears both session cookies. Tokens stay valid until they expire;
// nothing is revoked server-side.
func (a *authenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie.Clear(w, a.cookies, a.cookies.ApplicantName)
	cookie.Clear(w, a.cookies, a.cookies.StaffName)
	httpx.WriteRaw(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (a *authenticationHandler) validate(w http.ResponseWriter, req any) bool {
	if err := a.validator.Struct(req); err != nil {
		a.logger.Warn("request validation failed", zap.Error(err))
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: "validation failed",
			Details: httpx.ValidationDetails(err),
		})
		return false
	}
	return true
}

func (a *authenticationHandler) internalError(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code:    httpx.ErrInternal,
		Message: "internal server error",
	})
}

package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

type AppConfig struct {
	Env          string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

func (a *AppConfig) Production() bool {
	return a.Env == "production"
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	ApplicantTTL time.Duration
	StaffTTL     time.Duration
}

type CookieConfig struct {
	ApplicantName string
	StaffName     string
	Domain        string
	Secure        bool
	SameSite      http.SameSite
}

type GuardConfig struct {
	LoginPath          string
	DashboardLoginPath string
	UnauthorizedPath   string
}

type RateConfig struct {
	LoginPerMinute int
}

type Config struct {
	AppConfig    *AppConfig
	DbConfig     *DbConfig
	JWTConfig    *JWTConfig
	CookieConfig *CookieConfig
	GuardConfig  *GuardConfig
	RateConfig   *RateConfig
}

// LoadConfig reads .env (when present) and the process environment once.
// The result is treated as immutable for the life of the process.
func LoadConfig(logger *zap.Logger, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			logger.Debug("no .env file loaded", zap.String("file", f), zap.Error(err))
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests don't touch the
// process environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{get: getenv}

	/** app config */
	appEnv := e.str("APP_ENV", "development")
	appConfig := &AppConfig{
		Env:          appEnv,
		Port:         e.str("APP_PORT", "8080"),
		ReadTimeout:  e.duration("APP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: e.duration("APP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  e.duration("APP_IDLE_TIMEOUT", 60*time.Second),
		CORSOrigins:  e.list("CORS_ORIGINS"),
	}

	/** db config */
	dbConfig := &DbConfig{
		DSN:             getenv("POSTGRES_DSN"),
		MaxOpenConns:    e.int("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    e.int("DB_MAX_IDLE_CONNS", 5),
		MaxConnLifetime: e.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}

	/** jwt config */
	secret := strings.TrimSpace(getenv("JWT_SECRET"))
	if secret == "" {
		return nil, ErrMissingSecret
	}
	jwtConfig := &JWTConfig{
		Secret:       secret,
		Issuer:       e.str("JWT_ISSUER", "ppdb"),
		ApplicantTTL: e.duration("APPLICANT_TOKEN_TTL", 24*time.Hour),
		StaffTTL:     e.duration("STAFF_TOKEN_TTL", 8*time.Hour),
	}

	/** cookie config */
	cookieConfig := &CookieConfig{
		ApplicantName: e.str("APPLICANT_COOKIE_NAME", "auth_token"),
		StaffName:     e.str("STAFF_COOKIE_NAME", "token_dashboard"),
		Domain:        getenv("COOKIE_DOMAIN"),
		Secure:        e.bool("COOKIE_SECURE", appConfig.Production()),
		SameSite:      e.sameSite("COOKIE_SAMESITE"),
	}
	if cookieConfig.ApplicantName == cookieConfig.StaffName {
		e.fail("STAFF_COOKIE_NAME", errors.New("must differ from APPLICANT_COOKIE_NAME"))
	}

	guardConfig := &GuardConfig{
		LoginPath:          e.str("LOGIN_PATH", "/login"),
		DashboardLoginPath: e.str("DASHBOARD_LOGIN_PATH", "/dashboard/login"),
		UnauthorizedPath:   e.str("UNAUTHORIZED_PATH", "/unauthorized"),
	}

	rateConfig := &RateConfig{
		LoginPerMinute: e.int("LOGIN_RATE_PER_MINUTE", 10),
	}

	if e.err != nil {
		return nil, e.err
	}

	return &Config{
		AppConfig:    appConfig,
		DbConfig:     dbConfig,
		JWTConfig:    jwtConfig,
		CookieConfig: cookieConfig,
		GuardConfig:  guardConfig,
		RateConfig:   rateConfig,
	}, nil
}

// env collects the first parse failure instead of returning after every
// variable.
type env struct {
	get func(string) string
	err error
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config %s: %w", key, err)
	}
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	if d <= 0 {
		e.fail(key, errors.New("must be positive"))
		return def
	}
	return d
}

func (e *env) bool(key string, def bool) bool {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}

func (e *env) list(key string) []string {
	var out []string
	for _, p := range strings.Split(e.get(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *env) sameSite(key string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(e.get(key))) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		e.fail(key, errors.New("expected lax, strict or none"))
		return http.SameSiteLaxMode
	}
}

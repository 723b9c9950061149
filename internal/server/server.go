package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mehmetcc/ppdb/internal/auth"
	"github.com/mehmetcc/ppdb/internal/authz"
	"github.com/mehmetcc/ppdb/internal/config"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/registrant"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"moul.io/chizap"
)

// Deps is everything the router needs. It is built once in main.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	AuthService auth.AuthService
	People      person.PersonRepo
	Applicant   *session.Verifier
	Staff       *session.Verifier
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chizap.New(d.Logger, &chizap.Opts{
		WithReferer:   false,
		WithUserAgent: true,
	}))
	r.Use(middleware.Recoverer)
	if origins := d.Config.AppConfig.CORSOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Device-Id", "X-Device-Name", "X-Client-Platform", "X-App-Version"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	staffGate := authz.NewGate(d.Staff, d.Logger, d.Metrics)
	applicantGate := authz.NewGate(d.Applicant, d.Logger, d.Metrics)

	authHandler := auth.NewAuthenticationHandler(d.AuthService, auth.Verifiers{
		Applicant: d.Applicant,
		Staff:     d.Staff,
		Either:    session.NewMulti(d.Applicant, d.Staff),
	}, d.Config.CookieConfig, d.Config.RateConfig, d.Metrics, d.Logger)
	registrantHandler := registrant.NewRegistrantHandler(d.People, staffGate, d.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Mount("/dashboard/registrants", registrantHandler.Routes())
		r.Mount("/", authHandler.Routes())
	})

	g := d.Config.GuardConfig
	pages := newPages(d.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get(g.UnauthorizedPath, pages.unauthorized)
	r.With(staffGate.RequirePage(authz.Paths{
		Login:        g.DashboardLoginPath,
		Unauthorized: g.UnauthorizedPath,
	}, role.Admin, role.Committee)).Get("/dashboard", pages.dashboard)
	r.With(applicantGate.RequirePage(authz.Paths{
		Login:        g.LoginPath,
		Unauthorized: g.UnauthorizedPath,
	}, role.Applicant)).Get("/pendaftaran", pages.applicant)

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func NewHTTPServer(cfg *config.AppConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

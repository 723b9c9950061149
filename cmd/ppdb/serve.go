package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehmetcc/ppdb/internal/audit"
	"github.com/mehmetcc/ppdb/internal/auth"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			codec, err := e.codec()
			if err != nil {
				return err
			}

			db, err := e.database(ctx, true)
			if err != nil {
				return err
			}
			defer db.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			people := person.NewPersonRepo(db, e.logger)
			logins := audit.NewLoginRepo(db, e.logger)
			applicant, staff := e.verifiers(codec, m)
			authService := auth.NewAuthenticationService(people, logins, codec, []auth.AudiencePolicy{
				{Audience: applicant.Audience(), TTL: e.config.JWTConfig.ApplicantTTL},
				{Audience: staff.Audience(), TTL: e.config.JWTConfig.StaffTTL},
			}, e.logger)

			router := server.NewRouter(server.Deps{
				Config:      e.config,
				Logger:      e.logger,
				Metrics:     m,
				Gatherer:    reg,
				AuthService: authService,
				People:      people,
				Applicant:   applicant,
				Staff:       staff,
			})
			srv := server.NewHTTPServer(e.config.AppConfig, router)

			errCh := make(chan error, 1)
			go func() {
				e.logger.Info("application started",
					zap.String("addr", srv.Addr),
					zap.String("env", e.config.AppConfig.Env),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			e.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.logger.Error("graceful shutdown failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")

	return cmd
}

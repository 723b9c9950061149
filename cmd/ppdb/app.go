package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mehmetcc/ppdb/internal/config"
	"github.com/mehmetcc/ppdb/internal/database"
	"github.com/mehmetcc/ppdb/internal/metrics"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/internal/token"
	"go.uber.org/zap"
)

type rootOptions struct {
	envFiles []string
	debug    bool
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	if o.debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// env is what every subcommand starts from: a logger and the loaded config.
type env struct {
	logger *zap.Logger
	config *config.Config
}

func (o *rootOptions) load() (*env, error) {
	logger, err := o.logger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	cfg, err := config.LoadConfig(logger, o.envFiles...)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &env{logger: logger, config: cfg}, nil
}

func (e *env) codec() (*token.Codec, error) {
	return token.NewCodec([]byte(e.config.JWTConfig.Secret), e.config.JWTConfig.Issuer)
}

func (e *env) database(ctx context.Context, migrate bool) (*sql.DB, error) {
	db, err := database.Init(ctx, e.config.DbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if !migrate {
		return db, nil
	}
	database.SetMigrationLogger(e.logger)
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func (e *env) audiences() (applicant, staff session.Audience) {
	applicant = session.Audience{
		Name:       session.ApplicantAudience,
		CookieName: e.config.CookieConfig.ApplicantName,
		Roles:      role.Applicants,
	}
	staff = session.Audience{
		Name:       session.StaffAudience,
		CookieName: e.config.CookieConfig.StaffName,
		Roles:      role.Staff,
	}
	return applicant, staff
}

func (e *env) verifiers(codec *token.Codec, m *metrics.Metrics) (applicant, staff *session.Verifier) {
	a, s := e.audiences()
	return session.NewVerifier(a, codec, e.logger, m), session.NewVerifier(s, codec, e.logger, m)
}

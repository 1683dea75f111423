// Package app assembles the service: configuration, logging, the database
// pool, repositories, the per-entity action services and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres"
	actorrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/actor"
	auditrecordrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/auditrecord"
	codeauditrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/codeaudit"
	invoicerepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/invoice"
	progresslogrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/progresslog"
	projectrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/project"
	sponsorshiprepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/sponsorship"
	"github.com/rmarrand/sponsorhub-backend/internal/auth"
	"github.com/rmarrand/sponsorhub-backend/internal/config"
	"github.com/rmarrand/sponsorhub-backend/internal/service/auditrecord"
	"github.com/rmarrand/sponsorhub-backend/internal/service/invoice"
	"github.com/rmarrand/sponsorhub-backend/internal/service/progresslog"
	"github.com/rmarrand/sponsorhub-backend/internal/service/sponsorship"
	"github.com/rmarrand/sponsorhub-backend/internal/transport/middleware"
	"github.com/rmarrand/sponsorhub-backend/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is cancelled, then
// shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	settings := cfg.Finance.Settings()

	actors := actorrepo.New(pool)
	projects := projectrepo.New(pool)
	codeAudits := codeauditrepo.New(pool)
	auditRecords := auditrecordrepo.New(pool)
	progressLogs := progresslogrepo.New(pool)
	sponsorships := sponsorshiprepo.New(pool)
	invoices := invoicerepo.New(pool)

	auditRecordSvc := auditrecord.NewService(logger, auditRecords, codeAudits)
	progressLogSvc := progresslog.NewService(logger, progressLogs, projects)
	sponsorshipSvc := sponsorship.NewService(logger, sponsorships, invoices, projects, settings, txm)
	invoiceSvc := invoice.NewService(logger, invoices, sponsorships, settings, txm)

	router := rest.NewRouter(rest.Resources{
		AuditRecords: rest.NewResourceHandler(auditRecordSvc, logger, "audit_record"),
		ProgressLogs: rest.NewResourceHandler(progressLogSvc, logger, "progress_log"),
		Sponsorships: rest.NewResourceHandler(sponsorshipSvc, logger, "sponsorship"),
		Invoices:     rest.NewResourceHandler(invoiceSvc, logger, "invoice"),
		Me:           rest.NewMeHandler(actors, logger),
		Health:       rest.NewHealthHandler(pool, BuildVersion()),
	})

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
		mws = append(mws, limiter.Limit(cfg.Server.RateLimitPerMinute))
	}
	mws = append(mws, middleware.Auth(jwtManager))

	handler := middleware.Chain(mws...)(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-enrollment-server/internal/config"
	"go-enrollment-server/internal/database"
	"go-enrollment-server/internal/handler"
	"go-enrollment-server/internal/logger"
	"go-enrollment-server/internal/middleware"
	"go-enrollment-server/internal/processor"
	"go-enrollment-server/internal/repository"
	"go-enrollment-server/internal/repository/memory"
	"go-enrollment-server/internal/router"
	"go-enrollment-server/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

// stores is the persistence backend selected by STORE_DRIVER.
type stores struct {
	accounts   service.AccountStore
	payments   service.PaymentStore
	classes    service.ClassStore
	selections service.SelectionStore
	audit      service.AuditStore
	health     interface{ Ping(ctx context.Context) error }
	close      func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	backend, err := openStores(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	proc := processor.NewStripeProcessor(cfg.PaymentSecretKey)
	appRouter := buildRouter(cfg, backend, proc)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: []func(){backend.close},
	}, nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		store := memory.New()
		return &stores{
			accounts:   store.Accounts(),
			payments:   store.Payments(),
			classes:    store.Classes(),
			selections: store.Selections(),
			audit:      store.Audit(),
			health:     store,
			close:      func() {},
		}, nil
	}

	slog.Info("applying database migrations")
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool := db.Pool
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	return &stores{
		accounts:   repository.NewAccountRepository(pool, auditRepo),
		payments:   repository.NewPaymentRepository(pool),
		classes:    repository.NewClassRepository(pool),
		selections: repository.NewSelectionRepository(pool),
		audit:      auditRepo,
		health:     db,
		close:      db.Close,
	}, nil
}

func buildRouter(cfg *config.Config, backend *stores, proc processor.Processor) http.Handler {
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.AccessTokenTTL, cfg.JWTIssuer)
	auditService := service.NewAuditService(backend.audit, cfg.IOTimeout)
	roleService := service.NewRoleService(backend.accounts, auditService, cfg.AdminBootstrapTokenHash, cfg.IOTimeout)
	accountService := service.NewAccountService(backend.accounts, cfg.IOTimeout)
	classService := service.NewClassService(backend.classes, cfg.IOTimeout)
	selectionService := service.NewSelectionService(backend.selections, backend.classes, cfg.IOTimeout)
	paymentService := service.NewPaymentService(proc, backend.payments, service.PaymentConfig{
		Currency:           cfg.PaymentCurrency,
		PaymentMethodTypes: cfg.PaymentMethodTypes,
		IOTimeout:          cfg.IOTimeout,
	})
	enrollmentService := service.NewEnrollmentService(backend.payments, cfg.IOTimeout)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, roleService)

	if cfg.TokenIssuerKeyHash == "" {
		slog.Warn("token issuance is open to any caller", "hint", "set TOKEN_ISSUER_KEY_HASH to require X-Issuer-Key on /jwt")
	}

	return router.New(cfg, authMiddleware, router.Handlers{
		Health:     handler.NewHealthHandler(backend.health, cfg.IOTimeout),
		Docs:       handler.NewDocsHandler(),
		Token:      handler.NewTokenHandler(tokenService, cfg.TokenIssuerKeyHash),
		Account:    handler.NewAccountHandler(accountService),
		Role:       handler.NewRoleHandler(roleService),
		Class:      handler.NewClassHandler(classService),
		Selection:  handler.NewSelectionHandler(selectionService),
		Payment:    handler.NewPaymentHandler(paymentService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Audit:      handler.NewAuditHandler(auditService),
	})
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}
